package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gophermaps/navigator/internal/graph"
)

const defaultProbeTimeout = 2 * time.Second

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// HealthFunc adapts a function to HealthService.
type HealthFunc func(ctx context.Context) error

// Probe implements the HealthService interface.
func (f HealthFunc) Probe(ctx context.Context) error { return f(ctx) }

// GraphHealthService verifies that the graph store is reachable. It does not
// re-run authentication; credentials are checked once at startup.
type GraphHealthService struct {
	Client  graph.Client
	Timeout time.Duration
}

// Probe implements the HealthService interface.
func (s GraphHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Client.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	return nil
}
