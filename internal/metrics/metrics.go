// Package metrics exposes Prometheus collectors for a single harvest run.
//
// Each run owns a Recorder backed by a private registry, so overlapping runs never
// share counters. When a textfile path is configured the registry is written out in
// the node_exporter textfile format at the end of the run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tradeshow"

// Recorder holds the collectors for one run. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	records     *prometheus.CounterVec
	rowsSkipped *prometheus.CounterVec
	pages       *prometheus.CounterVec
	fetchErrors *prometheus.CounterVec
	tokens      prometheus.Counter
	resolveDur  *prometheus.HistogramVec
	lastRunTS   prometheus.Gauge
}

// New creates a Recorder and registers its collectors on a fresh registry.
func New() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.records = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_total",
		Help:      "Event records appended, by company name source",
	}, []string{"source"})
	r.rowsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_skipped_total",
		Help:      "Listing rows skipped, by reason",
	}, []string{"reason"})
	r.pages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pages_visited_total",
		Help:      "Result pages scanned, by month",
	}, []string{"month"})
	r.fetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_errors_total",
		Help:      "Failed website or contact page fetches, by stage",
	}, []string{"stage"})
	r.tokens = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_tokens_total",
		Help:      "Language model tokens consumed",
	})
	r.resolveDur = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resolve_duration_seconds",
		Help:      "Time spent enriching one row, by resolver",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"resolver"})
	r.lastRunTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the run finished",
	})

	r.registry.MustRegister(r.records, r.rowsSkipped, r.pages, r.fetchErrors, r.tokens, r.resolveDur, r.lastRunTS)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) RecordAppended(source string) {
	if r == nil {
		return
	}
	r.records.WithLabelValues(source).Inc()
}

func (r *Recorder) RowSkipped(reason string) {
	if r == nil {
		return
	}
	r.rowsSkipped.WithLabelValues(reason).Inc()
}

func (r *Recorder) PageVisited(month string) {
	if r == nil {
		return
	}
	r.pages.WithLabelValues(month).Inc()
}

func (r *Recorder) FetchError(stage string) {
	if r == nil {
		return
	}
	r.fetchErrors.WithLabelValues(stage).Inc()
}

func (r *Recorder) AddTokens(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.tokens.Add(float64(n))
}

func (r *Recorder) ObserveResolve(resolver string, d time.Duration) {
	if r == nil {
		return
	}
	r.resolveDur.WithLabelValues(resolver).Observe(d.Seconds())
}

// WriteTextfile stamps the finish time and writes every collector to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	r.lastRunTS.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
