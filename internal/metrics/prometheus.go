package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	routeComputations      *prometheus.CounterVec
	geolocationResolutions *prometheus.CounterVec
	planSessions           prometheus.Gauge
	planSockets            *prometheus.GaugeVec
	catalogLocations       prometheus.Gauge
}

func NewMetrics() *Metrics {
	metrics := &Metrics{
		routeComputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "route_computations",
			Help: "The total number of route computations by transport mode and result",
		}, []string{"mode", "result"}),
		geolocationResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geolocation_resolutions",
			Help: "The total number of device position resolutions by result",
		}, []string{"result"}),
		planSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plan_sessions",
			Help: "The number of live route planning sessions",
		}),
		planSockets: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "plan_sockets",
			Help: "The total number of plan websocket connections",
		}, []string{"plan_id"}),
		catalogLocations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_locations",
			Help: "The number of locations in the catalog snapshot",
		}),
	}
	metrics.register()
	return metrics
}

func (m *Metrics) register() {
	prometheus.MustRegister(m.routeComputations)
	prometheus.MustRegister(m.geolocationResolutions)
	prometheus.MustRegister(m.planSessions)
	prometheus.MustRegister(m.planSockets)
	prometheus.MustRegister(m.catalogLocations)
}

// A nil *Metrics is a no-op so callers need no registry in tests.

func (m *Metrics) IncrementRouteComputations(mode string, result string) {
	if m == nil {
		return
	}
	m.routeComputations.WithLabelValues(mode, result).Inc()
}

func (m *Metrics) IncrementGeolocationResolutions(result string) {
	if m == nil {
		return
	}
	m.geolocationResolutions.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementPlanSessions() {
	if m == nil {
		return
	}
	m.planSessions.Inc()
}

func (m *Metrics) DecrementPlanSessions() {
	if m == nil {
		return
	}
	m.planSessions.Dec()
}

func (m *Metrics) IncrementPlanSockets(planID string) {
	if m == nil {
		return
	}
	m.planSockets.WithLabelValues(planID).Inc()
}

func (m *Metrics) DecrementPlanSockets(planID string) {
	if m == nil {
		return
	}
	m.planSockets.WithLabelValues(planID).Dec()
}

func (m *Metrics) SetCatalogLocations(count int) {
	if m == nil {
		return
	}
	m.catalogLocations.Set(float64(count))
}
