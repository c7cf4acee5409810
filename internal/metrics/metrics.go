package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "travel_journal",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travel_journal",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "travel_journal",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	mediaOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travel_journal",
			Subsystem: "media",
			Name:      "operations_total",
			Help:      "Media storage operations by kind and outcome.",
		},
		[]string{"op", "success"},
	)

	orphanSweeps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travel_journal",
			Subsystem: "media",
			Name:      "orphan_sweeps_total",
			Help:      "Completed orphan sweeps by outcome.",
		},
		[]string{"success"},
	)

	orphansRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "travel_journal",
			Subsystem: "media",
			Name:      "orphans_removed_total",
			Help:      "Media files removed because no story referenced them.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		mediaOps,
		orphanSweeps,
		orphansRemoved,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
// Requests are labelled by their chi route pattern so ids do not explode
// the label space.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordMediaOp counts a media backend operation.
func RecordMediaOp(op string, err error) {
	mediaOps.WithLabelValues(op, strconv.FormatBool(err == nil)).Inc()
}

// RecordOrphanSweep counts a finished sweep and the files it removed.
func RecordOrphanSweep(removed int, err error) {
	orphanSweeps.WithLabelValues(strconv.FormatBool(err == nil)).Inc()
	if removed > 0 {
		orphansRemoved.Add(float64(removed))
	}
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched"
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return "unmatched"
}
