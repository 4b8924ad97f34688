package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsRegisterAndObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAPIMetrics(reg)

	m.ObserveIntake("ok")
	m.ObserveIntake("crm_failed")
	m.ObserveGeneration("repaired")
	m.ObserveLLMLatency("gemini-2.5-flash", "ok", 1.2)
	m.ObserveDialogueTurn("ask_contact")
	m.ObserveStoreFailure()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() = %v", err)
	}
	want := map[string]bool{
		"leadflow_intake_submissions_total":       false,
		"leadflow_proposal_generations_total":     false,
		"leadflow_llm_completion_latency_seconds": false,
		"leadflow_dialogue_turns_total":           false,
		"leadflow_store_failures_total":           false,
	}
	for _, fam := range families {
		if _, ok := want[fam.GetName()]; ok {
			want[fam.GetName()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("metric %q not registered", name)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *APIMetrics
	m.ObserveIntake("ok")
	m.ObserveGeneration("ok")
	m.ObserveLLMLatency("m", "ok", 0)
	m.ObserveDialogueTurn("none")
	m.ObserveStoreFailure()
}
