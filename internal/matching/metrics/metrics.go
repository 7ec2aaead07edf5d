// Package metrics exposes Prometheus instrumentation for the matching
// domain. Counters track volumes only; no per-recipient or per-donor
// labels exist, so the metrics endpoint cannot leak who was matched.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the matching collectors, registered on the default
// Prometheus registry.
type Metrics struct {
	RankingsServed     prometheus.Counter
	RankingsPartial    prometheus.Counter
	CandidatesScored   prometheus.Counter
	CandidatesExcluded prometheus.Counter
	ExactDisclosures   prometheus.Counter
	BudgetRefusals     prometheus.Counter
	RankingDuration    prometheus.Histogram
}

// New registers and returns the matching collectors. Call once per
// process; promauto panics on duplicate registration.
func New() *Metrics {
	return &Metrics{
		RankingsServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifebridge_matching_rankings_served_total",
			Help: "Total ranking requests completed successfully",
		}),
		RankingsPartial: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifebridge_matching_rankings_partial_total",
			Help: "Total ranking requests that hit the deadline and returned partial results",
		}),
		CandidatesScored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifebridge_matching_candidates_scored_total",
			Help: "Total donor candidates scored across all rankings",
		}),
		CandidatesExcluded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifebridge_matching_candidates_excluded_total",
			Help: "Total donor candidates excluded by the blood compatibility gate",
		}),
		ExactDisclosures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifebridge_matching_exact_disclosures_total",
			Help: "Total responses that included exact scores for an authorized viewer",
		}),
		BudgetRefusals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifebridge_matching_budget_refusals_total",
			Help: "Total ranking requests refused because the privacy budget was exhausted",
		}),
		RankingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lifebridge_matching_ranking_duration_seconds",
			Help:    "Wall time of ranking requests",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncrementRankingsServed()   { m.RankingsServed.Inc() }
func (m *Metrics) IncrementRankingsPartial()  { m.RankingsPartial.Inc() }
func (m *Metrics) IncrementBudgetRefusals()   { m.BudgetRefusals.Inc() }
func (m *Metrics) IncrementExactDisclosures() { m.ExactDisclosures.Inc() }

func (m *Metrics) AddCandidatesScored(n int) {
	m.CandidatesScored.Add(float64(n))
}

func (m *Metrics) AddCandidatesExcluded(n int) {
	m.CandidatesExcluded.Add(float64(n))
}

func (m *Metrics) ObserveRankingDuration(seconds float64) {
	m.RankingDuration.Observe(seconds)
}
