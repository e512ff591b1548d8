package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultConnectRetries = 3

var tracer = otel.Tracer("github.com/gophermaps/navigator/internal/graph")

// NewNeo4jClient establishes a Bolt connection using the official Neo4j driver.
// Connectivity and authentication are both verified before the client is
// returned so that misconfiguration surfaces at startup rather than on the
// first request. Transient connectivity failures are retried with backoff;
// rejected credentials are not.
func NewNeo4jClient(ctx context.Context, opts Options) (Client, error) {
	if opts.URI == "" {
		return nil, ErrMissingURI
	}

	auth := neo4j.NoAuth()
	if opts.Username != "" {
		auth = neo4j.BasicAuth(opts.Username, opts.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(opts.URI, auth, func(c *neo4j.Config) {
		if opts.MaxConnections > 0 {
			c.MaxConnectionPoolSize = opts.MaxConnections
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w: %w", ErrConnection, err)
	}

	client := &neo4jClient{
		driver:       driver,
		database:     opts.Database,
		queryTimeout: opts.QueryTimeout,
		observer:     opts.Observer,
	}

	retries := opts.ConnectRetries
	if retries <= 0 {
		retries = defaultConnectRetries
	}
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		if err := client.VerifyConnectivity(ctx); err != nil {
			if errors.Is(err, ErrAuthentication) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(uint(retries)))
	if err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify graph connectivity: %w", err)
	}

	if err := client.VerifyAuthentication(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify graph authentication: %w", err)
	}

	return client, nil
}

type neo4jClient struct {
	driver       neo4j.DriverWithContext
	database     string
	queryTimeout time.Duration
	observer     QueryObserver
}

func (c *neo4jClient) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return c.execute(ctx, neo4j.AccessModeWrite, cypher, params)
}

func (c *neo4jClient) ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return c.execute(ctx, neo4j.AccessModeRead, cypher, params)
}

func (c *neo4jClient) execute(ctx context.Context, mode neo4j.AccessMode, cypher string, params map[string]any) (res Result, err error) {
	modeName := ModeRead
	if mode == neo4j.AccessModeWrite {
		modeName = ModeWrite
	}

	ctx, span := tracer.Start(ctx, "graph."+modeName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "neo4j"),
			attribute.String("db.name", c.database),
		),
	)
	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Int("db.records", len(res.Records)))
		span.End()
		if c.observer != nil {
			c.observer.ObserveQuery(modeName, time.Since(start), err)
		}
	}()

	var txConfig []func(*neo4j.TransactionConfig)
	if c.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.queryTimeout)
		defer cancel()
		txConfig = append(txConfig, neo4j.WithTxTimeout(c.queryTimeout))
	}

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   mode,
	})
	defer session.Close(ctx)

	raw, err := session.Run(ctx, cypher, params, txConfig...)
	if err != nil {
		return Result{}, classify(ctx, err)
	}

	res, err = consumeResult(ctx, raw)
	if err != nil {
		return Result{}, classify(ctx, err)
	}
	return res, nil
}

func (c *neo4jClient) VerifyConnectivity(ctx context.Context) error {
	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		return classifyConnect(ctx, err)
	}
	return nil
}

func (c *neo4jClient) VerifyAuthentication(ctx context.Context) error {
	if err := c.driver.VerifyAuthentication(ctx, nil); err != nil {
		return classifyConnect(ctx, err)
	}
	return nil
}

func (c *neo4jClient) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func consumeResult(ctx context.Context, res neo4j.ResultWithContext) (Result, error) {
	var records []Record
	for res.Next(ctx) {
		rec := res.Record()
		record := make(Record, len(rec.Keys))
		for _, key := range rec.Keys {
			value, _ := rec.Get(key)
			record[key] = decodeValue(value)
		}
		records = append(records, record)
	}
	if err := res.Err(); err != nil {
		return Result{}, err
	}
	return Result{Records: records}, nil
}

// decodeValue converts driver types into the package's driver-independent types.
func decodeValue(value any) any {
	switch v := value.(type) {
	case neo4j.Node:
		return decodeNode(v)
	case neo4j.Relationship:
		return decodeRelationship(v)
	case neo4j.Path:
		path := Path{
			Nodes:         make([]Node, 0, len(v.Nodes)),
			Relationships: make([]Relationship, 0, len(v.Relationships)),
		}
		for _, n := range v.Nodes {
			path.Nodes = append(path.Nodes, decodeNode(n))
		}
		for _, r := range v.Relationships {
			path.Relationships = append(path.Relationships, decodeRelationship(r))
		}
		return path
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = decodeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = decodeValue(item)
		}
		return out
	default:
		return value
	}
}

func decodeNode(n neo4j.Node) Node {
	return Node{
		ElementID: n.ElementId,
		Labels:    append([]string(nil), n.Labels...),
		Props:     n.Props,
	}
}

func decodeRelationship(r neo4j.Relationship) Relationship {
	return Relationship{
		ElementID:      r.ElementId,
		Type:           r.Type,
		StartElementID: r.StartElementId,
		EndElementID:   r.EndElementId,
		Props:          r.Props,
	}
}

func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if isTimeout(ctx, err) {
		return fmt.Errorf("%w: %w", ErrUpstreamTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if isAuthFailure(err) {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	if neo4j.IsConnectivityError(err) {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return fmt.Errorf("%w: %w", ErrQuery, err)
}

// classifyConnect treats every non-auth, non-timeout failure as a connection failure.
func classifyConnect(ctx context.Context, err error) error {
	if isTimeout(ctx, err) {
		return fmt.Errorf("%w: %w", ErrUpstreamTimeout, err)
	}
	if isAuthFailure(err) {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	return fmt.Errorf("%w: %w", ErrConnection, err)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if neo4j.IsTransactionExecutionLimit(err) {
		return true
	}
	var dbErr *neo4j.Neo4jError
	if errors.As(err, &dbErr) {
		return strings.HasPrefix(dbErr.Code, "Neo.ClientError.Transaction.TransactionTimedOut")
	}
	return false
}

func isAuthFailure(err error) bool {
	var dbErr *neo4j.Neo4jError
	if errors.As(err, &dbErr) {
		return strings.HasPrefix(dbErr.Code, "Neo.ClientError.Security.")
	}
	return false
}
