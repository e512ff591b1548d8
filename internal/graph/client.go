package graph

import (
	"context"
	"errors"
	"time"
)

// Client defines the minimal contract required by the repositories to interact
// with the underlying graph database.
type Client interface {
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	// ExecuteWrite is reserved for offline dataset seeding; request handling never writes.
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	VerifyAuthentication(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result is a simplified representation of a query response.
type Result struct {
	Records []Record
}

// Record groups key-value pairs returned from the graph engine. Values are
// scalars, []any, map[string]any, Node, Relationship or Path.
type Record map[string]any

// Node is a driver-independent graph node.
type Node struct {
	ElementID string
	Labels    []string
	Props     map[string]any
}

// Relationship is a driver-independent graph relationship.
type Relationship struct {
	ElementID      string
	Type           string
	StartElementID string
	EndElementID   string
	Props          map[string]any
}

// Path is an alternating node/relationship sequence; len(Relationships) == len(Nodes)-1.
type Path struct {
	Nodes         []Node
	Relationships []Relationship
}

// HasLabel reports whether the node carries label.
func (n Node) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
	QueryTimeout   time.Duration
	ConnectRetries int
	Observer       QueryObserver
}

// QueryObserver receives one callback per executed query.
type QueryObserver interface {
	ObserveQuery(mode string, elapsed time.Duration, err error)
}

// Access modes reported to observers.
const (
	ModeRead  = "read"
	ModeWrite = "write"
)

var (
	// ErrMissingURI indicates the graph URI is not provided.
	ErrMissingURI = errors.New("graph URI is required")
	// ErrConnection indicates the graph store could not be reached.
	ErrConnection = errors.New("graph connection failed")
	// ErrAuthentication indicates the graph store rejected the credentials.
	ErrAuthentication = errors.New("graph authentication failed")
	// ErrQuery indicates the graph store rejected or failed a query.
	ErrQuery = errors.New("graph query failed")
	// ErrUpstreamTimeout indicates a query exceeded its deadline.
	ErrUpstreamTimeout = errors.New("graph query timed out")
)
