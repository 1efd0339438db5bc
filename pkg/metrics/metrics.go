// Package metrics provides Prometheus metrics for certpipe.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "certpipe"
)

// Stream metrics
var (
	// EventsTotal counts CertStream messages by type.
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "events_total",
			Help:      "Total number of CertStream messages processed",
		},
		[]string{"type"},
	)

	// DomainsTotal counts observed domains.
	DomainsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "domains_total",
			Help:      "Total number of certificate domains evaluated",
		},
	)

	// MatchesTotal counts first-seen matches by source list.
	MatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "match",
			Name:      "matches_total",
			Help:      "Total number of first-seen matching domains",
		},
		[]string{"source"},
	)
)

// Alerting metrics
var (
	// FlushesTotal counts non-empty alert flushes.
	FlushesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alert",
			Name:      "flushes_total",
			Help:      "Total number of alert batches sent",
		},
	)

	// SinkErrorsTotal counts failed deliveries by sink.
	SinkErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sink",
			Name:      "errors_total",
			Help:      "Total number of failed sink deliveries",
		},
		[]string{"sink"},
	)
)

// State metrics
var (
	// LedgerSize tracks the number of domains in the dedup ledger.
	LedgerSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "domains",
			Help:      "Number of domains already seen",
		},
	)

	// UniverseSize is the number of fuzzed tokens.
	UniverseSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "universe",
			Name:      "tokens",
			Help:      "Number of fuzzed keyword tokens",
		},
	)
)

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}
