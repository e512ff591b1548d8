package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gophermaps/navigator/internal/graph"
)

// RequestStarted marks a request as in flight.
func (r *Registry) RequestStarted() {
	r.HTTPRequestsInFlight.Inc()
}

// RequestFinished releases a request counted by RequestStarted.
func (r *Registry) RequestFinished() {
	r.HTTPRequestsInFlight.Dec()
}

// RecordHTTPRequest records a completed HTTP request.
func (r *Registry) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveQuery implements graph.QueryObserver.
func (r *Registry) ObserveQuery(mode string, elapsed time.Duration, err error) {
	r.GraphQueriesTotal.WithLabelValues(mode, queryOutcome(err)).Inc()
	r.GraphQueryDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	if elapsed > time.Second {
		r.GraphSlowQueries.WithLabelValues(mode).Inc()
	}
}

// CacheHit implements repository.CacheRecorder.
func (r *Registry) CacheHit(cache string) {
	r.CacheLookupsTotal.WithLabelValues(cache, "hit").Inc()
}

// CacheMiss implements repository.CacheRecorder.
func (r *Registry) CacheMiss(cache string) {
	r.CacheLookupsTotal.WithLabelValues(cache, "miss").Inc()
}

func queryOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, graph.ErrUpstreamTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, graph.ErrConnection), errors.Is(err, graph.ErrAuthentication):
		return "unavailable"
	default:
		return "error"
	}
}
