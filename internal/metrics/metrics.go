// Package metrics exposes Prometheus collectors for scans, extractions
// and review decisions.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nhle/agendify/internal/model"
)

const namespace = "agendify"

// Metrics holds the application's collectors.
type Metrics struct {
	registry *prometheus.Registry

	scans           prometheus.Counter
	scanDuration    prometheus.Histogram
	messages        *prometheus.CounterVec
	extractions     *prometheus.CounterVec
	modelFallbacks  prometheus.Counter
	decisions       *prometheus.CounterVec
	lastScanSuccess prometheus.Gauge
}

// New creates Metrics registered on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		scans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "runs_total",
			Help:      "Completed inbox scans.",
		}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Wall time of inbox scans.",
			Buckets:   prometheus.DefBuckets,
		}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "messages_total",
			Help:      "Messages processed by outcome.",
		}, []string{"outcome"}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "results_total",
			Help:      "Extraction results by source and confidence.",
		}, []string{"source", "confidence"}),
		modelFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "model_fallbacks_total",
			Help:      "Model-backed extractions that fell back to pattern matching.",
		}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "review",
			Name:      "decisions_total",
			Help:      "Review decisions by resulting state.",
		}, []string{"state"}),
		lastScanSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "last_completed_timestamp_seconds",
			Help:      "Unix time the last scan finished.",
		}),
	}

	reg.MustRegister(
		m.scans, m.scanDuration, m.messages, m.extractions,
		m.modelFallbacks, m.decisions, m.lastScanSuccess,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordExtraction counts one processed message.
func (m *Metrics) RecordExtraction(ev model.ExtractedEvent) {
	m.messages.WithLabelValues("extracted").Inc()
	m.extractions.WithLabelValues(string(ev.Source), string(ev.Confidence)).Inc()
}

// RecordMessageFailure counts one skipped message.
func (m *Metrics) RecordMessageFailure() {
	m.messages.WithLabelValues("failed").Inc()
}

// RecordScan counts a finished scan.
func (m *Metrics) RecordScan(run model.ScanRun) {
	m.scans.Inc()
	m.scanDuration.Observe(run.Duration().Seconds())
	m.lastScanSuccess.Set(float64(run.FinishedAt.Unix()))
}

// RecordFallback counts a model-backed extraction that fell back.
func (m *Metrics) RecordFallback(error) {
	m.modelFallbacks.Inc()
}

// RecordDecision counts an approve or deny.
func (m *Metrics) RecordDecision(state model.ReviewState) {
	m.decisions.WithLabelValues(string(state)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
