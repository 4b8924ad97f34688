package dialogue

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rowanhq/leadflow/internal/llm"
	"github.com/rowanhq/leadflow/pkg/logging"
)

// Intent tells the client what the widget should do next.
type Intent string

const (
	IntentNone       Intent = "none"
	IntentAskContact Intent = "ask_contact"
)

const (
	defaultMaxQuestionTurns = 3
	ackTimeout              = 5 * time.Second
	ackMaxTokens            = 80
)

// questions maps each stage to the question asked while in it.
var questions = map[Stage]string{
	StageStart:        "What's the main thing you want to improve right now: more leads, more sales, more bookings, or saving time?",
	StageGoal:         "What's the main thing you want to improve right now: more leads, more sales, more bookings, or saving time?",
	StageBusinessType: "Got it. What kind of business do you run?",
	StageTargetMetric: "What number would you most like to move in the next 90 days?",
	StageBottleneck:   "What's the biggest thing slowing that down today?",
}

const capturePrompt = "Thanks, that's everything I need. Drop your name and email below and we'll send over a tailored plan."

// lowSignalTokens are replies that carry no slot-worthy content. They never
// advance the stage and never count toward the answered-turn ceiling.
var lowSignalTokens = map[string]struct{}{
	"ok": {}, "okay": {}, "k": {}, "kk": {},
	"yes": {}, "y": {}, "yeah": {}, "yep": {}, "yup": {}, "sure": {},
	"no": {}, "nah": {}, "nope": {},
	"idk": {}, "dunno": {}, "maybe": {}, "hmm": {}, "hm": {},
	"thanks": {}, "thank you": {}, "thx": {},
	"hi": {}, "hello": {}, "hey": {},
	"cool": {}, "nice": {},
}

// Engine runs one qualification turn at a time. All progression is
// deterministic; the optional completion client only phrases the short
// acknowledgement sentence and can never change stage, question, or intent.
type Engine struct {
	maxQuestionTurns int
	ack              llm.Client
	ackModel         string
	logger           *logging.Logger
}

// EngineConfig controls the answered-turn ceiling and the optional
// acknowledgement model.
type EngineConfig struct {
	MaxQuestionTurns int
	AckClient        llm.Client
	AckModel         string
	Logger           *logging.Logger
}

// NewEngine creates a dialogue engine.
func NewEngine(cfg EngineConfig) *Engine {
	maxTurns := cfg.MaxQuestionTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxQuestionTurns
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		maxQuestionTurns: maxTurns,
		ack:              cfg.AckClient,
		ackModel:         cfg.AckModel,
		logger:           logger,
	}
}

// Result is the outcome of a single dialogue turn.
type Result struct {
	Reply         string
	NextQuestion  string
	CaptureIntent Intent
	Notes         Notes
}

// Step advances the dialogue by one user message. The same (message, notes)
// pair always produces the same stage, next question, and capture intent.
func (e *Engine) Step(ctx context.Context, message string, notes Notes, turn int) Result {
	notes = notes.normalized()
	now := time.Now().UTC()
	message = strings.TrimSpace(message)

	notes = notes.withTurn(turn, message, now)
	notes.UpdatedAt = now

	// Once capture is reached the dialogue only ever re-asks for contact
	// details, no matter what else the user says.
	if notes.CaptureLocked || notes.Stage == StageCapture {
		notes.CaptureLocked = true
		notes.Stage = StageCapture
		return Result{
			Reply:         capturePrompt,
			NextQuestion:  capturePrompt,
			CaptureIntent: IntentAskContact,
			Notes:         notes,
		}
	}

	if isLowSignal(message) {
		question := questions[notes.Stage]
		return Result{
			Reply:         "No rush. " + question,
			NextQuestion:  question,
			CaptureIntent: IntentNone,
			Notes:         notes,
		}
	}

	answer := message
	if notes.Stage == StageStart || notes.Stage == StageGoal {
		answer = normalizeGoal(message)
	}
	notes = notes.withSlot(notes.Stage, answer)
	notes.AnsweredTurns++
	// start and goal share the goal slot, so advancing may need to skip a
	// stage whose slot is already filled.
	notes.Stage = notes.Stage.next()
	for notes.Stage != StageCapture && notes.slotForStage(notes.Stage) != "" {
		notes.Stage = notes.Stage.next()
	}

	if notes.AnsweredTurns >= e.maxQuestionTurns || notes.Stage == StageCapture {
		notes.Stage = StageCapture
		notes.CaptureLocked = true
		return Result{
			Reply:         e.acknowledge(ctx, message, notes) + " " + capturePrompt,
			NextQuestion:  capturePrompt,
			CaptureIntent: IntentAskContact,
			Notes:         notes,
		}
	}

	question := questions[notes.Stage]
	return Result{
		Reply:         e.acknowledge(ctx, message, notes) + " " + question,
		NextQuestion:  question,
		CaptureIntent: IntentNone,
		Notes:         notes,
	}
}

// acknowledge produces a one-sentence acknowledgement of the user's answer.
// Any model failure falls back to the fixed phrase; the acknowledgement is
// cosmetic and never carries dialogue state.
func (e *Engine) acknowledge(ctx context.Context, message string, notes Notes) string {
	const fallback = "Makes sense."
	if e.ack == nil {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, ackTimeout)
	defer cancel()

	resp, err := e.ack.Complete(ctx, llm.Request{
		Model: e.ackModel,
		System: []string{
			"You acknowledge a prospect's answer in one short, warm sentence. No questions, no advice, no emojis.",
		},
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: message}},
		MaxTokens:   ackMaxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		e.logger.Warn("dialogue: acknowledgement model failed", "error", err)
		return fallback
	}

	ack := strings.TrimSpace(resp.Text)
	if ack == "" || strings.Contains(ack, "?") || utf8.RuneCountInString(ack) > 200 {
		return fallback
	}
	return ack
}

// isLowSignal reports whether a message carries no usable answer.
func isLowSignal(message string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(message))
	trimmed = strings.Trim(trimmed, ".!?,")
	if utf8.RuneCountInString(trimmed) < 2 {
		return true
	}
	_, found := lowSignalTokens[trimmed]
	return found
}

// normalizeGoal maps free-text goal answers onto canonical goal labels.
// Unrecognized answers are kept verbatim.
func normalizeGoal(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "lead"):
		return "lead_generation"
	case strings.Contains(lower, "sale"), strings.Contains(lower, "sell"), strings.Contains(lower, "revenue"):
		return "sales"
	case strings.Contains(lower, "book"), strings.Contains(lower, "appointment"), strings.Contains(lower, "schedul"):
		return "bookings"
	case strings.Contains(lower, "time"), strings.Contains(lower, "automat"), strings.Contains(lower, "manual"):
		return "time_savings"
	}
	return message
}
