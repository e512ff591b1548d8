package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// TaskError accumulates the per-record failures of a bulk load.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d errors:", len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString(" " + err.Error() + ";")
	}
	return b.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BulkIngestor loads campus datasets using a bounded worker pool.
type BulkIngestor struct {
	service *SeedService
	workers int
}

// NewBulkIngestor creates a new BulkIngestor instance with the provided concurrency.
func NewBulkIngestor(service *SeedService, workers int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	return &BulkIngestor{
		service: service,
		workers: workers,
	}
}

// IngestBuildings upserts building records concurrently.
func (bi *BulkIngestor) IngestBuildings(ctx context.Context, buildings []BuildingInput) error {
	return bi.run(ctx, len(buildings), func(idx int) error {
		if err := bi.service.UpsertBuilding(ctx, buildings[idx]); err != nil {
			return fmt.Errorf("building %d: %w", idx, err)
		}
		return nil
	})
}

// IngestWaypoints upserts waypoint records concurrently.
func (bi *BulkIngestor) IngestWaypoints(ctx context.Context, waypoints []WaypointInput) error {
	return bi.run(ctx, len(waypoints), func(idx int) error {
		if err := bi.service.UpsertWaypoint(ctx, waypoints[idx]); err != nil {
			return fmt.Errorf("waypoint %d: %w", idx, err)
		}
		return nil
	})
}

// IngestConnections upserts walkable edges concurrently. Endpoints must
// already exist, so this runs after buildings and waypoints.
func (bi *BulkIngestor) IngestConnections(ctx context.Context, conns []ConnectionInput) error {
	return bi.run(ctx, len(conns), func(idx int) error {
		if err := bi.service.UpsertConnection(ctx, conns[idx]); err != nil {
			return fmt.Errorf("connection %d: %w", idx, err)
		}
		return nil
	})
}

func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < bi.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	var taskErr TaskError
	for err := range errCh {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
