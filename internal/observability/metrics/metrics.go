package metrics

import "github.com/prometheus/client_golang/prometheus"

// AssistantMetrics exposes counters/histograms for conversational turns.
type AssistantMetrics struct {
	turnsTotal   *prometheus.CounterVec
	modelLatency *prometheus.HistogramVec
	actionsTotal *prometheus.CounterVec
	cacheTotal   *prometheus.CounterVec
}

func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aicrm",
			Subsystem: "assistant",
			Name:      "turns_total",
			Help:      "Total conversational turns handled",
		}, []string{"model", "status"}),
		modelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aicrm",
			Subsystem: "assistant",
			Name:      "model_latency_seconds",
			Help:      "Latency of language model calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"model"}),
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aicrm",
			Subsystem: "assistant",
			Name:      "actions_total",
			Help:      "Total assistant action executions",
		}, []string{"action", "status"}),
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aicrm",
			Subsystem: "assistant",
			Name:      "instruction_cache_total",
			Help:      "Instruction cache lookups by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.modelLatency, m.actionsTotal, m.cacheTotal)
	return m
}

func (m *AssistantMetrics) ObserveTurn(model, status string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(model, status).Inc()
}

func (m *AssistantMetrics) ObserveModelLatency(model string, seconds float64) {
	if m == nil {
		return
	}
	m.modelLatency.WithLabelValues(model).Observe(seconds)
}

func (m *AssistantMetrics) ObserveAction(action string, success bool) {
	if m == nil {
		return
	}
	status := "error"
	if success {
		status = "ok"
	}
	m.actionsTotal.WithLabelValues(action, status).Inc()
}

func (m *AssistantMetrics) ObserveCache(outcome string) {
	if m == nil {
		return
	}
	m.cacheTotal.WithLabelValues(outcome).Inc()
}
