package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments the seating workflows.  A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	saves        *prometheus.CounterVec
	reviews      *prometheus.CounterVec
	archived     *prometheus.CounterVec
	restores     prometheus.Counter
	sweeps       *prometheus.CounterVec
	sweepSeconds prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg
// (prometheus.DefaultRegisterer if nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	const ns = "seatplan"
	m := &Metrics{
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "assignment_saves_total",
			Help:      "Assignment saves by result (ok, stale, error).",
		}, []string{"result"}),
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "proposal_reviews_total",
			Help:      "Proposal reviews by decision.",
		}, []string{"decision"}),
		archived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "subrooms_archived_total",
			Help:      "Archived sub-rooms by reason.",
		}, []string{"reason"}),
		restores: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "archives_restored_total",
			Help:      "Archives restored into new sub-rooms.",
		}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "expiry_sweeps_total",
			Help:      "Expiry sweep runs by outcome (ok, error, skipped).",
		}, []string{"outcome"}),
		sweepSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "expiry_sweep_duration_seconds",
			Help:      "Duration of expiry sweeps.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.saves, m.reviews, m.archived, m.restores, m.sweeps, m.sweepSeconds)
	return m
}

func (m *Metrics) save(result string) {
	if m != nil {
		m.saves.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) review(decision string) {
	if m != nil {
		m.reviews.WithLabelValues(decision).Inc()
	}
}

func (m *Metrics) archive(reason string, n int) {
	if m != nil && n > 0 {
		m.archived.WithLabelValues(reason).Add(float64(n))
	}
}

func (m *Metrics) restore() {
	if m != nil {
		m.restores.Inc()
	}
}

func (m *Metrics) sweep(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.sweeps.WithLabelValues(outcome).Inc()
	if outcome != "skipped" {
		m.sweepSeconds.Observe(time.Since(started).Seconds())
	}
}
