package elector

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NewMetrics initializes and registers the Prometheus collectors for
// monitoring one node's coordinator. Callers wire the result into a Context
// by assigning it to the Metrics field; a Context with a nil Metrics simply
// skips every metrics call.
func NewMetrics(nodeID, namespace string) *Metrics {
	labels := []string{"node_id"}
	m := &Metrics{
		id: nodeID,
		stateIdle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "elector", Name: "state_idle",
			Help: "Indicates the coordinator is idle",
		}, labels),
		stateFresh: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "elector", Name: "state_fresh",
			Help: "Indicates the coordinator is running the freshness phase",
		}, labels),
		stateElect: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "elector", Name: "state_elect",
			Help: "Indicates the coordinator is running the elect phase",
		}, labels),
		stateSleep: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "elector", Name: "state_sleep",
			Help: "Indicates the coordinator is holding a tie-break sleep",
		}, labels),
		statePrimary: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "elector", Name: "state_primary",
			Help: "Indicates this node believes it is the primary",
		}, labels),
		electedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "elector", Name: "elected_total",
			Help: "Number of times this node completed a successful election",
		}),
		abortTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "elector", Name: "aborted_total",
			Help: "Number of aborted election attempts by reason",
		}, []string{"reason"}),
		electionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "elector", Name: "attempt_duration_seconds",
			Help: "How long one coordinator attempt took end to end",
		}),
	}

	if prometheus.DefaultRegisterer != nil {
		prometheus.DefaultRegisterer.MustRegister(
			m.stateIdle, m.stateFresh, m.stateElect, m.stateSleep, m.statePrimary,
			m.electedTotal, m.abortTotal, m.electionDuration,
		)
	}
	return m
}

// setCoordinatorStateGauge sets the gauge for the given state to 1 and
// resets the others, mirroring setNodeStateGauge.
func (m *Metrics) setCoordinatorStateGauge(s CoordinatorState) {
	m.stateIdle.WithLabelValues(m.id).Set(0)
	m.stateFresh.WithLabelValues(m.id).Set(0)
	m.stateElect.WithLabelValues(m.id).Set(0)
	m.stateSleep.WithLabelValues(m.id).Set(0)
	m.statePrimary.WithLabelValues(m.id).Set(0)

	switch s {
	case Fresh:
		m.stateFresh.WithLabelValues(m.id).Set(1)
	case Elect:
		m.stateElect.WithLabelValues(m.id).Set(1)
	case Sleep:
		m.stateSleep.WithLabelValues(m.id).Set(1)
	case PrimaryState:
		m.statePrimary.WithLabelValues(m.id).Set(1)
	default:
		m.stateIdle.WithLabelValues(m.id).Set(1)
	}
}

// observeAbort increments the abort counter for err's reason and records
// how long the attempt ran before aborting.
func (m *Metrics) observeAbort(err error, duration time.Duration) {
	reason := "unknown"
	switch {
	case errors.Is(err, ErrNotFreshest):
		reason = "not_freshest"
	case errors.Is(err, ErrInsufficientVotes):
		reason = "insufficient_votes"
	case errors.Is(err, ErrConfigChanged):
		reason = "config_changed"
	case errors.Is(err, ErrEpochRejected):
		reason = "epoch_rejected"
	case errors.Is(err, ErrTimeout):
		reason = "timeout"
	case errors.Is(err, ErrAssumePrimaryFailed):
		reason = "assume_primary_failed"
	case errors.Is(err, ErrStartupGrace):
		reason = "startup_grace"
	default:
		if _, ok := AsVeto(err); ok {
			reason = "vetoed"
		}
	}
	m.abortTotal.WithLabelValues(reason).Inc()
	m.electionDuration.Observe(duration.Seconds())
}

// observeElected increments the elected counter and records how long the
// winning attempt took end to end.
func (m *Metrics) observeElected(duration time.Duration) {
	m.electedTotal.Inc()
	m.electionDuration.Observe(duration.Seconds())
}
