package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"sunbench/internal/benchmark"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "sunbench"

// Metrics records workload timings as Prometheus collectors. It implements
// benchmark.Observer.
type Metrics struct {
	Registry *prometheus.Registry

	WorkloadRuns     *prometheus.CounterVec
	WorkloadDuration *prometheus.HistogramVec
	PassDuration     prometheus.Histogram
	PassesTotal      prometheus.Counter
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.WorkloadRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workload_runs_total",
			Help:      "Workload invocations, warm-up included.",
		},
		[]string{"category", "test"},
	)

	m.WorkloadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workload_duration_seconds",
			Help:      "Duration of measured workload invocations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
		},
		[]string{"category", "test"},
	)

	m.PassDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Total duration of measured passes.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 16),
		},
	)

	m.PassesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Completed passes, warm-up included.",
		},
	)

	m.Registry.MustRegister(m.WorkloadRuns, m.WorkloadDuration, m.PassDuration, m.PassesTotal)
	return m
}

// ObserveWorkload records one workload invocation. Warm-up timings are
// counted but not observed.
func (m *Metrics) ObserveWorkload(id benchmark.ID, pass int, d time.Duration) {
	m.WorkloadRuns.WithLabelValues(id.Category, id.Name).Inc()
	if pass >= 0 {
		m.WorkloadDuration.WithLabelValues(id.Category, id.Name).Observe(d.Seconds())
	}
}

// ObservePass records a completed pass.
func (m *Metrics) ObservePass(pass int, total time.Duration) {
	m.PassesTotal.Inc()
	if pass >= 0 {
		m.PassDuration.Observe(total.Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Starting metrics server", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Push sends the registry to a Pushgateway under job "sunbench", grouped by
// run id.
func (m *Metrics) Push(ctx context.Context, url, runID string) error {
	err := push.New(url, namespace).
		Gatherer(m.Registry).
		Grouping("run_id", runID).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
