package metrics

import "github.com/prometheus/client_golang/prometheus"

// AssistantMetrics exposes counters/histograms for the answer pipeline.
type AssistantMetrics struct {
	answersTotal   *prometheus.CounterVec
	polishTotal    *prometheus.CounterVec
	answerLatency  *prometheus.HistogramVec
	rejectedTotal  *prometheus.CounterVec
	wsSessionsOpen prometheus.Gauge
}

func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		answersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guest",
			Subsystem: "assistant",
			Name:      "answers_total",
			Help:      "Answers served, by matched intent (none for fallback)",
		}, []string{"intent", "property_id"}),
		polishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guest",
			Subsystem: "assistant",
			Name:      "polish_total",
			Help:      "Polish attempts by provider and outcome",
		}, []string{"provider", "outcome", "cached"}),
		answerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "guest",
			Subsystem: "assistant",
			Name:      "answer_latency_seconds",
			Help:      "Latency of answering one guest message",
			Buckets:   prometheus.DefBuckets,
		}, []string{"polished"}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guest",
			Subsystem: "assistant",
			Name:      "rejected_total",
			Help:      "Requests rejected before matching",
		}, []string{"reason"}),
		wsSessionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "guest",
			Subsystem: "webchat",
			Name:      "websocket_sessions_open",
			Help:      "Currently open WebSocket chat sessions",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.answersTotal, m.polishTotal, m.answerLatency, m.rejectedTotal, m.wsSessionsOpen)
	return m
}

func (m *AssistantMetrics) ObserveAnswer(intent, propertyID string) {
	if m == nil {
		return
	}
	if intent == "" {
		intent = "none"
	}
	m.answersTotal.WithLabelValues(intent, propertyID).Inc()
}

func (m *AssistantMetrics) ObservePolish(provider, outcome string, cached bool) {
	if m == nil {
		return
	}
	m.polishTotal.WithLabelValues(provider, outcome, boolLabel(cached)).Inc()
}

func (m *AssistantMetrics) ObserveLatency(polished bool, seconds float64) {
	if m == nil {
		return
	}
	m.answerLatency.WithLabelValues(boolLabel(polished)).Observe(seconds)
}

func (m *AssistantMetrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(reason).Inc()
}

// SessionOpened and SessionClosed track live WebSocket sessions.
func (m *AssistantMetrics) SessionOpened() {
	if m == nil {
		return
	}
	m.wsSessionsOpen.Inc()
}

func (m *AssistantMetrics) SessionClosed() {
	if m == nil {
		return
	}
	m.wsSessionsOpen.Dec()
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
