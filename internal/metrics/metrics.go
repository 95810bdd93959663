// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// EventsTotal counts domain events by type and outcome (published, failed, skipped).
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_events_total",
			Help: "Domain events handed to the broker by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	// CacheLookups counts user cache lookups by result (hit, miss, error).
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_user_cache_lookups_total",
			Help: "User cache lookups by result",
		},
		[]string{"result"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	registerOnce       sync.Once
)

func init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, EventsTotal, CacheLookups)
	})
}

// NormalizePath replaces numeric path segments with {id}, e.g. /api/users/12/posts -> /api/users/{id}/posts.
// Used when the router did not match a route pattern.
func NormalizePath(path string) string {
	for {
		next := numericPathSegment.ReplaceAllString(path, "/{id}$1")
		if next == path {
			return path
		}
		path = next
	}
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncEvent counts one event of eventType with the given outcome.
func IncEvent(eventType, outcome string) {
	EventsTotal.WithLabelValues(eventType, outcome).Inc()
}

// IncCacheLookup counts one user cache lookup.
func IncCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}
