// Package dialogue implements the deterministic qualification dialogue:
// a bounded question sequence whose state is round-tripped through the
// caller, never stored server side.
package dialogue

import "time"

// Stage identifies the current question in the fixed sequence.
type Stage string

const (
	StageStart        Stage = "start"
	StageGoal         Stage = "goal"
	StageBusinessType Stage = "business_type"
	StageTargetMetric Stage = "target_metric"
	StageBottleneck   Stage = "bottleneck"
	StageCapture      Stage = "capture"
)

// stageOrder defines the forward-only progression.
var stageOrder = []Stage{StageStart, StageGoal, StageBusinessType, StageTargetMetric, StageBottleneck, StageCapture}

func stageIndex(s Stage) int {
	for i, stage := range stageOrder {
		if stage == s {
			return i
		}
	}
	return 0
}

// next returns the stage after s; capture is terminal.
func (s Stage) next() Stage {
	idx := stageIndex(s)
	if idx+1 < len(stageOrder) {
		return stageOrder[idx+1]
	}
	return StageCapture
}

// maxTranscriptTurns bounds the recent-turn window kept in notes.
// Older turns are dropped from the front; the order is never changed.
const maxTranscriptTurns = 20

// Turn is one entry in the append-only transcript.
type Turn struct {
	Turn      int       `json:"turn"`
	UserText  string    `json:"user_text"`
	Timestamp time.Time `json:"timestamp"`
}

// Slots holds the answers collected so far.
type Slots struct {
	PrimaryGoal  string `json:"primary_goal,omitempty"`
	BusinessType string `json:"business_type,omitempty"`
	TargetMetric string `json:"target_metric,omitempty"`
	Bottleneck   string `json:"bottleneck,omitempty"`
}

// Notes is the dialogue state echoed back to the caller each turn.
// The caller must resend it verbatim; the engine treats it as a value and
// returns an updated copy rather than mutating shared state.
type Notes struct {
	Stage         Stage     `json:"stage"`
	Slots         Slots     `json:"slots"`
	Transcript    []Turn    `json:"transcript,omitempty"`
	AnsweredTurns int       `json:"answered_turns"`
	CaptureLocked bool      `json:"capture_locked"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// normalized maps a zero value onto the initial stage and repairs a stage
// string the engine does not recognize. Capture lock always wins: a tampered
// stage can never unlock a locked dialogue.
func (n Notes) normalized() Notes {
	if n.Stage == "" || stageIndex(n.Stage) == 0 && n.Stage != StageStart {
		n.Stage = StageStart
	}
	if n.CaptureLocked {
		n.Stage = StageCapture
	}
	return n
}

// withTurn appends a transcript entry, keeping the bounded recent window.
func (n Notes) withTurn(turn int, userText string, at time.Time) Notes {
	transcript := make([]Turn, 0, len(n.Transcript)+1)
	transcript = append(transcript, n.Transcript...)
	transcript = append(transcript, Turn{Turn: turn, UserText: userText, Timestamp: at})
	if len(transcript) > maxTranscriptTurns {
		transcript = transcript[len(transcript)-maxTranscriptTurns:]
	}
	n.Transcript = transcript
	return n
}

// slotForStage returns the value of the slot the given stage asks about.
func (n Notes) slotForStage(s Stage) string {
	switch s {
	case StageStart, StageGoal:
		return n.Slots.PrimaryGoal
	case StageBusinessType:
		return n.Slots.BusinessType
	case StageTargetMetric:
		return n.Slots.TargetMetric
	case StageBottleneck:
		return n.Slots.Bottleneck
	}
	return ""
}

// withSlot returns a copy with the given stage's slot filled.
func (n Notes) withSlot(s Stage, value string) Notes {
	switch s {
	case StageStart, StageGoal:
		n.Slots.PrimaryGoal = value
	case StageBusinessType:
		n.Slots.BusinessType = value
	case StageTargetMetric:
		n.Slots.TargetMetric = value
	case StageBottleneck:
		n.Slots.Bottleneck = value
	}
	return n
}
