package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FixesReceivedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "guide_fixes_received_total",
		Help: "Total location fixes handed to the engine",
	})
	FixesDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "guide_fixes_dropped_total",
		Help: "Location fixes dropped before processing, by reason",
	}, []string{"reason"})
	VisitsRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "guide_visits_recorded_total",
		Help: "First visits recorded by the ledger",
	})
	PersistenceFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "guide_persistence_failures_total",
		Help: "Failed storage operations, by key",
	}, []string{"key"})
	TrackingTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "guide_tracking_transitions_total",
		Help: "Tracking state machine transitions, by target state",
	}, []string{"state"})
	ProximityTier = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "guide_proximity_tier",
		Help: "Last classified proximity tier (0 far, 1 approaching, 2 inside)",
	})
	VisitLogsSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "guide_visit_logs_sent_total",
		Help: "Visit log entries delivered to the analytics collector",
	})
	VisitLogsDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "guide_visit_logs_dropped_total",
		Help: "Visit log entries lost, by reason",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(FixesReceivedTotal)
	prometheus.MustRegister(FixesDroppedTotal)
	prometheus.MustRegister(VisitsRecordedTotal)
	prometheus.MustRegister(PersistenceFailuresTotal)
	prometheus.MustRegister(TrackingTransitionsTotal)
	prometheus.MustRegister(ProximityTier)
	prometheus.MustRegister(VisitLogsSentTotal)
	prometheus.MustRegister(VisitLogsDroppedTotal)
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler { return promhttp.Handler() }
