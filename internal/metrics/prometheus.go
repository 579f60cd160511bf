package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder aggregates stage outcomes into Prometheus collectors on
// a private registry, so repeated runs in one process never collide with
// other instrumentation.
type PrometheusRecorder struct {
	registry *prometheus.Registry
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
	results  *prometheus.CounterVec
}

// NewPrometheusRecorder constructs a recorder with its own registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	rec := &PrometheusRecorder{
		registry: registry,
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "srtingest",
			Name:      "stage_duration_seconds",
			Help:      "Wall time per pipeline stage run.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"stage"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "srtingest",
			Name:      "stage_rows_total",
			Help:      "Output rows per pipeline stage.",
		}, []string{"stage"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "srtingest",
			Name:      "stage_results_total",
			Help:      "Stage completions by status.",
		}, []string{"stage", "status"}),
	}
	registry.MustRegister(rec.duration, rec.rows, rec.results)
	return rec
}

// ObserveStage records one stage outcome.
func (r *PrometheusRecorder) ObserveStage(stage string, success bool, rowsOut int, duration time.Duration) {
	if stage == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.duration.WithLabelValues(stage).Observe(duration.Seconds())
	r.rows.WithLabelValues(stage).Add(float64(rowsOut))
	r.results.WithLabelValues(stage, status).Inc()
}

// Registry exposes the private registry, mainly for tests.
func (r *PrometheusRecorder) Registry() *prometheus.Registry { return r.registry }

// Serve exposes /metrics on addr until ctx is canceled. Intended for batch
// runs long enough for a scraper to observe; short runs can ignore it.
func (r *PrometheusRecorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
