package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the business counters of the order engine. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	reservations *prometheus.CounterVec
	transitions  *prometheus.CounterVec
	conversions  *prometheus.CounterVec
	placements   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stone_reservations_total",
			Help: "Stock reservations and releases by operation and result.",
		}, []string{"operation", "result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_transitions_total",
			Help: "Order status transitions by target status and result.",
		}, []string{"to", "result"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "custom_order_conversions_total",
			Help: "Custom order conversions and rejections by result.",
		}, []string{"operation", "result"}),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Order placements by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.reservations, m.transitions, m.conversions, m.placements)
	}
	return m
}

func (m *Metrics) RecordStock(operation string, err error) {
	if m == nil {
		return
	}
	m.reservations.WithLabelValues(operation, resultLabel(err)).Inc()
}

func (m *Metrics) RecordTransition(to string, err error) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to, resultLabel(err)).Inc()
}

// RecordUnchangedTransition counts a request for the status the order already has.
func (m *Metrics) RecordUnchangedTransition(to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to, "unchanged").Inc()
}

func (m *Metrics) RecordConversion(operation string, err error) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(operation, resultLabel(err)).Inc()
}

func (m *Metrics) RecordPlacement(err error) {
	if m == nil {
		return
	}
	m.placements.WithLabelValues(resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
