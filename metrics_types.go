package elector

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every Prometheus collector this module registers, mirroring
// metrics_types.go's flat struct-of-collectors shape. Exported so a caller
// constructing a Context outside this package can build one with NewMetrics
// and attach it via Context.Metrics.
type Metrics struct {
	id string

	stateIdle    *prometheus.GaugeVec
	stateFresh   *prometheus.GaugeVec
	stateElect   *prometheus.GaugeVec
	stateSleep   *prometheus.GaugeVec
	statePrimary *prometheus.GaugeVec

	electedTotal     prometheus.Counter
	abortTotal       *prometheus.CounterVec
	electionDuration prometheus.Histogram
}
