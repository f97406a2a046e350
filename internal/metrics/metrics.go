package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors shared by the webhook, router and gateway.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	WebhookRequests *prometheus.CounterVec
	Events          *prometheus.CounterVec
	Deliveries      *prometheus.CounterVec
	GatewayCalls    *prometheus.CounterVec
	InFlight        prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WebhookRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linebot",
			Name:      "webhook_requests_total",
			Help:      "Webhook requests by outcome.",
		}, []string{"outcome"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linebot",
			Name:      "events_total",
			Help:      "Inbound webhook events by kind.",
		}, []string{"kind"}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linebot",
			Name:      "deliveries_total",
			Help:      "Message deliveries by message type and result.",
		}, []string{"message_type", "result"}),
		GatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linebot",
			Name:      "gateway_calls_total",
			Help:      "Outbound LINE API calls by operation and result.",
		}, []string{"op", "result"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "linebot",
			Name:      "deliveries_in_flight",
			Help:      "Background deliveries currently running.",
		}),
	}
	reg.MustRegister(m.WebhookRequests, m.Events, m.Deliveries, m.GatewayCalls, m.InFlight)
	return m
}

func (m *Metrics) Webhook(outcome string) {
	if m == nil {
		return
	}
	m.WebhookRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Event(kind string) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(kind).Inc()
}

func (m *Metrics) Delivery(messageType string, ok bool) {
	if m == nil {
		return
	}
	m.Deliveries.WithLabelValues(messageType, result(ok)).Inc()
}

func (m *Metrics) Gateway(op string, ok bool) {
	if m == nil {
		return
	}
	m.GatewayCalls.WithLabelValues(op, result(ok)).Inc()
}

// TaskStarted and TaskDone track background deliveries.
func (m *Metrics) TaskStarted() {
	if m == nil {
		return
	}
	m.InFlight.Inc()
}

func (m *Metrics) TaskDone() {
	if m == nil {
		return
	}
	m.InFlight.Dec()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
