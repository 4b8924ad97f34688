package metrics

import "github.com/prometheus/client_golang/prometheus"

// APIMetrics exposes counters/histograms for the intake and dialogue flows.
type APIMetrics struct {
	intakeTotal         *prometheus.CounterVec
	proposalGenerations *prometheus.CounterVec
	llmLatency          *prometheus.HistogramVec
	dialogueTurns       *prometheus.CounterVec
	storeFailures       prometheus.Counter
}

func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	m := &APIMetrics{
		intakeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "intake",
			Name:      "submissions_total",
			Help:      "Total intake form submissions",
		}, []string{"status"}),
		proposalGenerations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "proposal",
			Name:      "generations_total",
			Help:      "Total proposal generation attempts",
		}, []string{"outcome"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadflow",
			Subsystem: "llm",
			Name:      "completion_latency_seconds",
			Help:      "Latency of LLM completions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"model", "status"}),
		dialogueTurns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Total dialogue turns processed",
		}, []string{"capture_intent"}),
		storeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "store",
			Name:      "failures_total",
			Help:      "Total record store write failures",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.intakeTotal, m.proposalGenerations, m.llmLatency, m.dialogueTurns, m.storeFailures)
	return m
}

func (m *APIMetrics) ObserveIntake(status string) {
	if m == nil {
		return
	}
	m.intakeTotal.WithLabelValues(status).Inc()
}

// ObserveGeneration records one proposal generation attempt.
// Outcome is one of ok, repaired, failed.
func (m *APIMetrics) ObserveGeneration(outcome string) {
	if m == nil {
		return
	}
	m.proposalGenerations.WithLabelValues(outcome).Inc()
}

// ObserveLLMLatency satisfies llm.LatencyObserver.
func (m *APIMetrics) ObserveLLMLatency(model, status string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(model, status).Observe(seconds)
}

func (m *APIMetrics) ObserveDialogueTurn(captureIntent string) {
	if m == nil {
		return
	}
	m.dialogueTurns.WithLabelValues(captureIntent).Inc()
}

func (m *APIMetrics) ObserveStoreFailure() {
	if m == nil {
		return
	}
	m.storeFailures.Inc()
}
