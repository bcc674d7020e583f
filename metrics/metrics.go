// Package metrics exposes graph, ingestion, query and scoring counters as
// Prometheus metrics. A CLI run writes them once as a node-exporter
// textfile. Every method is a no-op on a nil *Metrics.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/c360studio/acf/ingest"
	"github.com/c360studio/acf/scoring"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	triples         prometheus.Gauge
	recordsIngested prometheus.Counter
	recordsSkipped  prometheus.Counter
	entities        prometheus.Counter
	queries         *prometheus.CounterVec
	queryDuration   prometheus.Histogram
	scoringRuns     *prometheus.CounterVec
	aggregate       *prometheus.GaugeVec
	dimension       *prometheus.GaugeVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		triples: f.NewGauge(prometheus.GaugeOpts{
			Name: "acf_graph_triples",
			Help: "Triples in the loaded graph",
		}),
		recordsIngested: f.NewCounter(prometheus.CounterOpts{
			Name: "acf_records_ingested_total",
			Help: "Evaluation records ingested into the graph",
		}),
		recordsSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "acf_records_skipped_total",
			Help: "Evaluation record files skipped as unreadable or malformed",
		}),
		entities: f.NewCounter(prometheus.CounterOpts{
			Name: "acf_entities_ingested_total",
			Help: "Profile entities folded into a served graph",
		}),
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "acf_queries_total",
			Help: "Pattern queries evaluated",
		}, []string{"status"}),
		queryDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "acf_query_duration_seconds",
			Help:    "Time to parse and evaluate a pattern query",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
		}),
		scoringRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "acf_scoring_runs_total",
			Help: "Scoring pipeline runs",
		}, []string{"outcome"}),
		aggregate: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "acf_aggregate_score",
			Help: "Aggregate score of the last profile per system",
		}, []string{"system"}),
		dimension: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "acf_dimension_score",
			Help: "Dimension score of the last profile per system",
		}, []string{"system", "dimension"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// ObserveGraph records the size of a loaded graph and its ingest report.
func (m *Metrics) ObserveGraph(triples int, report ingest.Report) {
	if m == nil {
		return
	}
	m.triples.Set(float64(triples))
	m.recordsIngested.Add(float64(report.Records))
	m.recordsSkipped.Add(float64(len(report.Skipped)))
}

// ObserveEntity records one ingested entity and the resulting graph size.
func (m *Metrics) ObserveEntity(triples int) {
	if m == nil {
		return
	}
	m.entities.Inc()
	m.triples.Set(float64(triples))
}

// ObserveQuery records one query evaluation.
func (m *Metrics) ObserveQuery(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.queries.WithLabelValues(status).Inc()
	m.queryDuration.Observe(elapsed.Seconds())
}

// ObserveScore records a scoring run; a nil profile counts as no data.
func (m *Metrics) ObserveScore(p *scoring.Profile, err error) {
	if m == nil {
		return
	}
	switch {
	case err != nil:
		m.scoringRuns.WithLabelValues("error").Inc()
		return
	case p == nil:
		m.scoringRuns.WithLabelValues("no_data").Inc()
		return
	}
	m.scoringRuns.WithLabelValues("scored").Inc()
	m.aggregate.WithLabelValues(p.SystemID).Set(p.AggregateScore())
	for id, d := range p.Dimensions {
		m.dimension.WithLabelValues(p.SystemID, id).Set(d.Score)
	}
}

// WriteTextfile writes the metrics in the text exposition format,
// atomically replacing path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
