package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rowanhq/leadflow/internal/llm"
)

// fixedAckClient always answers with the same acknowledgement.
type fixedAckClient struct {
	text string
	err  error
}

func (c *fixedAckClient) Complete(_ context.Context, _ llm.Request) (llm.Response, error) {
	if c.err != nil {
		return llm.Response{}, c.err
	}
	return llm.Response{Text: c.text}, nil
}

func TestStepFillsSlotsAndAdvances(t *testing.T) {
	engine := NewEngine(EngineConfig{})
	ctx := context.Background()

	result := engine.Step(ctx, "We sell landscaping services to homeowners", Notes{}, 0)

	if result.CaptureIntent != IntentNone {
		t.Fatalf("capture_intent = %q", result.CaptureIntent)
	}
	if result.Notes.Stage != StageBusinessType {
		t.Fatalf("stage = %q", result.Notes.Stage)
	}
	if result.Notes.Slots.PrimaryGoal != "sales" {
		t.Fatalf("primary_goal = %q", result.Notes.Slots.PrimaryGoal)
	}
	if result.Notes.AnsweredTurns != 1 {
		t.Fatalf("answered_turns = %d", result.Notes.AnsweredTurns)
	}
	if result.NextQuestion != questions[StageBusinessType] {
		t.Fatalf("next_question = %q", result.NextQuestion)
	}
}

func TestStepCaptureAfterThreeAnswers(t *testing.T) {
	engine := NewEngine(EngineConfig{})
	ctx := context.Background()

	answers := []string{
		"I want more leads",
		"Residential landscaping",
		"Double our monthly booked jobs",
	}

	notes := Notes{}
	var result Result
	for i, answer := range answers {
		result = engine.Step(ctx, answer, notes, i)
		notes = result.Notes
		if i < len(answers)-1 && result.CaptureIntent != IntentNone {
			t.Fatalf("turn %d: premature capture intent", i)
		}
	}

	if result.CaptureIntent != IntentAskContact {
		t.Fatalf("capture_intent = %q after 3 answers", result.CaptureIntent)
	}
	if !notes.CaptureLocked || notes.Stage != StageCapture {
		t.Fatalf("notes = %+v", notes)
	}
	if notes.Slots.PrimaryGoal != "lead_generation" {
		t.Fatalf("primary_goal = %q", notes.Slots.PrimaryGoal)
	}
}

func TestStepCaptureIntentNeverReverts(t *testing.T) {
	engine := NewEngine(EngineConfig{})
	ctx := context.Background()

	notes := Notes{CaptureLocked: true, Stage: StageCapture}
	for i := 0; i < 5; i++ {
		result := engine.Step(ctx, "actually let me ask something else entirely", notes, i)
		notes = result.Notes
		if result.CaptureIntent != IntentAskContact {
			t.Fatalf("turn %d: capture_intent = %q", i, result.CaptureIntent)
		}
		if result.NextQuestion != capturePrompt {
			t.Fatalf("turn %d: next_question = %q", i, result.NextQuestion)
		}
	}
}

func TestStepLowSignalDoesNotAdvance(t *testing.T) {
	engine := NewEngine(EngineConfig{})
	ctx := context.Background()

	for _, msg := range []string{"ok", "hmm", "y", "OK!", "sure", "?"} {
		result := engine.Step(ctx, msg, Notes{}, 0)
		if result.Notes.Stage != StageStart {
			t.Fatalf("%q advanced stage to %q", msg, result.Notes.Stage)
		}
		if result.Notes.AnsweredTurns != 0 {
			t.Fatalf("%q counted as an answer", msg)
		}
		if result.NextQuestion != questions[StageStart] {
			t.Fatalf("%q changed next_question to %q", msg, result.NextQuestion)
		}
		if result.CaptureIntent != IntentNone {
			t.Fatalf("%q triggered capture", msg)
		}
	}
}

func TestStepLowSignalNeverReachesCapture(t *testing.T) {
	engine := NewEngine(EngineConfig{MaxQuestionTurns: 2})
	ctx := context.Background()

	notes := Notes{}
	for i := 0; i < 10; i++ {
		result := engine.Step(ctx, "ok", notes, i)
		notes = result.Notes
		if result.CaptureIntent != IntentNone {
			t.Fatalf("turn %d: low-signal run reached capture", i)
		}
	}
}

func TestStepDeterministicForSameInput(t *testing.T) {
	engine := NewEngine(EngineConfig{})
	ctx := context.Background()

	notes := Notes{Stage: StageBusinessType, AnsweredTurns: 1}
	a := engine.Step(ctx, "home services", notes, 1)
	b := engine.Step(ctx, "home services", notes, 1)

	if a.Notes.Stage != b.Notes.Stage || a.NextQuestion != b.NextQuestion || a.CaptureIntent != b.CaptureIntent {
		t.Fatalf("same input diverged: %+v vs %+v", a, b)
	}
}

func TestStepGoalNormalization(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"I need more leads", "lead_generation"},
		{"grow sales", "sales"},
		{"we want to sell more", "sales"},
		{"get more bookings", "bookings"},
		{"save time on manual work", "time_savings"},
		{"automate the follow-ups", "time_savings"},
		{"brand awareness mostly", "brand awareness mostly"},
	}

	engine := NewEngine(EngineConfig{})
	for _, tt := range tests {
		result := engine.Step(context.Background(), tt.message, Notes{}, 0)
		if result.Notes.Slots.PrimaryGoal != tt.want {
			t.Errorf("goal(%q) = %q, want %q", tt.message, result.Notes.Slots.PrimaryGoal, tt.want)
		}
	}
}

func TestStepTranscriptBounded(t *testing.T) {
	engine := NewEngine(EngineConfig{MaxQuestionTurns: 1000})
	ctx := context.Background()

	notes := Notes{}
	for i := 0; i < maxTranscriptTurns+10; i++ {
		result := engine.Step(ctx, "ok", notes, i)
		notes = result.Notes
	}
	if len(notes.Transcript) != maxTranscriptTurns {
		t.Fatalf("transcript length = %d, want %d", len(notes.Transcript), maxTranscriptTurns)
	}
	// The oldest entries are dropped, the newest kept.
	last := notes.Transcript[len(notes.Transcript)-1]
	if last.Turn != maxTranscriptTurns+9 {
		t.Fatalf("last turn = %d", last.Turn)
	}
}

func TestAcknowledgementUsesModelText(t *testing.T) {
	engine := NewEngine(EngineConfig{AckClient: &fixedAckClient{text: "Love that, landscaping is a great niche."}})
	result := engine.Step(context.Background(), "I run a landscaping company", Notes{Stage: StageBusinessType, AnsweredTurns: 1}, 1)

	if !strings.HasPrefix(result.Reply, "Love that") {
		t.Fatalf("reply = %q", result.Reply)
	}
	if result.NextQuestion != questions[StageTargetMetric] {
		t.Fatalf("ack must not change next_question: %q", result.NextQuestion)
	}
}

func TestAcknowledgementFallsBackOnModelFailure(t *testing.T) {
	engine := NewEngine(EngineConfig{AckClient: &fixedAckClient{err: errors.New("model down")}})
	result := engine.Step(context.Background(), "I want more leads", Notes{}, 0)

	if result.Reply == "" {
		t.Fatal("expected deterministic reply despite model failure")
	}
	if result.Notes.Stage != StageBusinessType {
		t.Fatalf("model failure must not stall progression: stage = %q", result.Notes.Stage)
	}
}

func TestAcknowledgementRejectsQuestions(t *testing.T) {
	engine := NewEngine(EngineConfig{AckClient: &fixedAckClient{text: "Interesting, but what is your budget?"}})
	result := engine.Step(context.Background(), "I want more leads", Notes{}, 0)

	if strings.Contains(result.Reply, "budget?") {
		t.Fatalf("model question leaked into reply: %q", result.Reply)
	}
}

func TestNotesNormalizedRepairsTamperedStage(t *testing.T) {
	n := Notes{Stage: "totally_bogus"}.normalized()
	if n.Stage != StageStart {
		t.Fatalf("stage = %q", n.Stage)
	}

	locked := Notes{Stage: "goal", CaptureLocked: true}.normalized()
	if locked.Stage != StageCapture {
		t.Fatalf("locked notes must stay in capture, got %q", locked.Stage)
	}
}
