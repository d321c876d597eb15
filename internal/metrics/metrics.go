// Package metrics exposes run and per-source counters in Prometheus
// exposition format.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	runsTotal       prometheus.Counter
	runDuration     prometheus.Summary
	processedTotal  *prometheus.CounterVec
	scrapeErrors    *prometheus.CounterVec
	inactiveTotal   *prometheus.CounterVec
	cleanedTotal    prometheus.Counter
	lastRunUnixtime prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.runsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eventsync",
		Name:      "runs_total",
		Help:      "Completed orchestrator passes",
	})
	m.runDuration = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "eventsync",
		Name:      "run_duration_seconds",
		Help:      "Wall time of a full orchestrator pass",
	})
	m.processedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventsync",
		Name:      "events_processed_total",
		Help:      "Candidates processed by source and resulting action",
	}, []string{"source", "action"})
	m.scrapeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventsync",
		Name:      "scrape_errors_total",
		Help:      "Fetch and per-candidate processing errors by source",
	}, []string{"source"})
	m.inactiveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventsync",
		Name:      "events_inactive_total",
		Help:      "Events swept to inactive by source",
	}, []string{"source"})
	m.cleanedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eventsync",
		Name:      "events_cleaned_total",
		Help:      "Events removed by the retention sweep",
	})
	m.lastRunUnixtime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "eventsync",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last completed orchestrator pass",
	})

	m.registry.MustRegister(
		m.runsTotal, m.runDuration, m.processedTotal,
		m.scrapeErrors, m.inactiveTotal, m.cleanedTotal, m.lastRunUnixtime,
	)
	return m
}

func (m *Metrics) ObserveRun(d time.Duration) {
	m.runsTotal.Inc()
	m.runDuration.Observe(d.Seconds())
	m.lastRunUnixtime.SetToCurrentTime()
}

func (m *Metrics) ObserveAction(source, action string) {
	m.processedTotal.WithLabelValues(source, action).Inc()
}

func (m *Metrics) ObserveError(source string) {
	m.scrapeErrors.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveInactive(source string, n int64) {
	m.inactiveTotal.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) ObserveCleanup(n int64) {
	m.cleanedTotal.Add(float64(n))
}

// Serve exposes /metrics on addr until the context is cancelled. A blank
// addr disables the endpoint.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
