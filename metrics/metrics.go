// Package metrics provides Prometheus instrumentation for the package
// reader, grounded on datastore/postgres's promauto.NewCounterVec
// pattern: a namespace/subsystem-scoped counter vector, registered once
// at package init via promauto's default registerer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var verdictTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rpmverify",
	Subsystem: "reader",
	Name:      "verdict_total",
	Help:      "Total number of package reads, by verification verdict.",
}, []string{"verdict"})

// ObserveVerdict increments the counter for the given verdict string
// (e.g. "OK", "NOKEY", "FAIL" -- see sig.Verdict.String).
func ObserveVerdict(verdict string) {
	verdictTotal.WithLabelValues(verdict).Inc()
}
