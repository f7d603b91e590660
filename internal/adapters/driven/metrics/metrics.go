// Package metrics records pipeline metrics with the Prometheus client.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.Metrics = (*Metrics)(nil)

const namespace = "concierge"

// Metrics holds the collectors on a private registry, so several instances
// can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	intents         *prometheus.CounterVec
	rankingReturned prometheus.Histogram
	rankingIssues   prometheus.Counter
	rankingDuration prometheus.Histogram
	turns           *prometheus.CounterVec
	turnDuration    *prometheus.HistogramVec
}

// New registers the pipeline collectors plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		intents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_total",
			Help:      "Utterances classified, by detection method",
		}, []string{"method"}),
		rankingReturned: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_documents",
			Help:      "Documents returned per ranking",
			Buckets:   []float64{0, 1, 2, 3, 5, 10},
		}),
		rankingIssues: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_issues_total",
			Help:      "Corpus files skipped while ranking",
		}),
		rankingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_duration_seconds",
			Help:      "Time to rank documents for one utterance",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Completed turns, by reply source",
		}, []string{"source"}),
		turnDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "End-to-end turn latency, by reply source",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"source"}),
	}
}

// ObserveIntent records how an utterance was classified.
func (m *Metrics) ObserveIntent(method domain.DetectionMethod) {
	m.intents.WithLabelValues(string(method)).Inc()
}

// ObserveRanking records how many documents a ranking returned and skipped.
func (m *Metrics) ObserveRanking(returned, issues int, elapsed time.Duration) {
	m.rankingReturned.Observe(float64(returned))
	m.rankingIssues.Add(float64(issues))
	m.rankingDuration.Observe(elapsed.Seconds())
}

// ObserveTurn records which path produced a reply and how long the turn took.
func (m *Metrics) ObserveTurn(source domain.ReplySource, elapsed time.Duration) {
	m.turns.WithLabelValues(string(source)).Inc()
	m.turnDuration.WithLabelValues(string(source)).Observe(elapsed.Seconds())
}

// TrackActiveSessions exports the live session count as a gauge.
func (m *Metrics) TrackActiveSessions(count func() int) {
	promauto.With(m.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Sessions currently held in memory",
	}, func() float64 { return float64(count()) })
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
