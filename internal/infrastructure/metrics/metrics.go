// Package metrics exposes investing counters in Prometheus format.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Kinds of record that can start an investing pass.
const (
	KindProject  = "charity_project"
	KindDonation = "donation"
)

var (
	passes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "charity_investing_passes_total",
		Help: "Investing passes run, by the kind of the new record.",
	}, []string{"kind"})
	moved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "charity_investing_moved_amount_total",
		Help: "Money moved between donations and projects.",
	}, []string{"kind"})
	closed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "charity_records_closed_total",
		Help: "Projects and donations that became fully invested.",
	}, []string{"kind"})
	exports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "charity_report_exports_total",
		Help: "Spreadsheet report exports, by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(passes, moved, closed, exports)
}

// ObservePass records one committed investing pass started by a record of kind.
func ObservePass(kind string, amount int64, closedByKind map[string]int) {
	passes.WithLabelValues(kind).Inc()
	if amount > 0 {
		moved.WithLabelValues(kind).Add(float64(amount))
	}
	for k, n := range closedByKind {
		if n > 0 {
			closed.WithLabelValues(k).Add(float64(n))
		}
	}
}

// ObserveExport counts a report export attempt.
func ObserveExport(err error) {
	if err != nil {
		exports.WithLabelValues("error").Inc()
		return
	}
	exports.WithLabelValues("ok").Inc()
}

// Handler serves the default registry.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
