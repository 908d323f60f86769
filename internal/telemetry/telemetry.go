// Package telemetry exposes prometheus metrics for the search and
// verification pipeline.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Telemetry bundles the service's prometheus collectors. A nil *Telemetry
// is valid and records nothing, which keeps tests and one-shot CLI runs
// free of a registry.
type Telemetry struct {
	searches      *prometheus.CounterVec
	verifications *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	retailerUp    *prometheus.GaugeVec
}

// New registers the service collectors on reg.
func New(reg prometheus.Registerer) *Telemetry {
	t := &Telemetry{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricepilot_searches_total",
			Help: "Search index calls by retailer and terminal status.",
		}, []string{"retailer", "status"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricepilot_verifications_total",
			Help: "Link verification outcomes by status.",
		}, []string{"status"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pricepilot_stage_duration_seconds",
			Help:    "Pipeline stage wall-clock duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		retailerUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pricepilot_retailer_up",
			Help: "1 when the retailer homepage verified on the last sweep.",
		}, []string{"retailer"}),
	}
	reg.MustRegister(t.searches, t.verifications, t.stageDuration, t.retailerUp)
	return t
}

func (t *Telemetry) ObserveSearch(retailerID, status string) {
	if t == nil {
		return
	}
	t.searches.WithLabelValues(retailerID, status).Inc()
}

func (t *Telemetry) ObserveVerification(status string) {
	if t == nil {
		return
	}
	t.verifications.WithLabelValues(status).Inc()
}

func (t *Telemetry) ObserveStage(stage string, d time.Duration) {
	if t == nil {
		return
	}
	t.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (t *Telemetry) SetRetailerUp(retailerID string, up bool) {
	if t == nil {
		return
	}
	v := 0.0
	if up {
		v = 1.0
	}
	t.retailerUp.WithLabelValues(retailerID).Set(v)
}
