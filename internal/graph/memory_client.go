package graph

import (
	"context"
	"maps"
	"sync"
)

// ExecutedQuery captures a cypher statement and parameters executed against the graph.
type ExecutedQuery struct {
	Query  string
	Params map[string]any
}

// MemoryClient is an in-memory Client for exercising query and planner logic
// without a running graph. Results are served per access mode in the order
// they were pushed; an empty queue yields an empty Result.
type MemoryClient struct {
	mu           sync.Mutex
	reads        scriptedQueue
	writes       scriptedQueue
	err          error
	connectivity error
	auth         error
	closed       bool
}

type scriptedQueue struct {
	results []Result
	calls   []ExecutedQuery
}

func (q *scriptedQueue) next(cypher string, params map[string]any) Result {
	q.calls = append(q.calls, ExecutedQuery{Query: cypher, Params: maps.Clone(params)})
	if len(q.results) == 0 {
		return Result{}
	}
	res := q.results[0]
	q.results = q.results[1:]
	return res
}

// NewMemoryClient returns an empty MemoryClient.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithError makes every subsequent query fail with err.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
	return m
}

// WithConnectivityError forces VerifyConnectivity to return err.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	m.connectivity = err
	m.mu.Unlock()
	return m
}

// WithAuthenticationError forces VerifyAuthentication to return err.
func (m *MemoryClient) WithAuthenticationError(err error) *MemoryClient {
	m.mu.Lock()
	m.auth = err
	m.mu.Unlock()
	return m
}

// PushReadResult queues the result for the next ExecuteRead.
func (m *MemoryClient) PushReadResult(res Result) {
	m.mu.Lock()
	m.reads.results = append(m.reads.results, res)
	m.mu.Unlock()
}

// PushWriteResult queues the result for the next ExecuteWrite.
func (m *MemoryClient) PushWriteResult(res Result) {
	m.mu.Lock()
	m.writes.results = append(m.writes.results, res)
	m.mu.Unlock()
}

// ExecuteWrite records the statement. Seed writes are not cancellable.
func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Result{}, m.err
	}
	return m.writes.next(cypher, params), nil
}

// ExecuteRead records the statement unless ctx is already done.
func (m *MemoryClient) ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if m.err != nil {
		return Result{}, m.err
	}
	return m.reads.next(cypher, params), nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) VerifyAuthentication(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.auth
}

func (m *MemoryClient) Close(context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Closed reports whether Close has been called.
func (m *MemoryClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// WriteCalls returns a snapshot of executed write statements.
func (m *MemoryClient) WriteCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.writes.calls...)
}

// ReadCalls returns a snapshot of executed read statements.
func (m *MemoryClient) ReadCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.reads.calls...)
}
