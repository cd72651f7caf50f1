// Package metrics exposes Prometheus collectors and the /metrics
// listener, kept off the public API port.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts HTTP requests by method, route, and status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "divvy",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route pattern, and status code.",
	}, []string{"method", "route", "status"})

	// RequestDuration observes request latency by method and route.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "divvy",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// BillsCreated counts bills recorded since process start.
	BillsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "divvy",
		Name:      "bills_created_total",
		Help:      "Bills recorded since process start.",
	})

	// ProjectsCreated counts projects created since process start.
	ProjectsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "divvy",
		Name:      "projects_created_total",
		Help:      "Projects created since process start.",
	})
)

// ListenAndServe serves /metrics on its own port. It blocks like
// http.ListenAndServe.
func ListenAndServe(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}
