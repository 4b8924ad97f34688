package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rowanhq/leadflow/internal/dialogue"
	"github.com/rowanhq/leadflow/internal/intake"
	"github.com/rowanhq/leadflow/internal/observability/metrics"
	"github.com/rowanhq/leadflow/pkg/logging"
)

// DialogueHandler runs one qualification turn per request. The server keeps
// no session state: everything lives in the notes blob the client echoes back.
type DialogueHandler struct {
	engine  *dialogue.Engine
	metrics *metrics.APIMetrics
	logger  *logging.Logger
}

// NewDialogueHandler creates the dialogue handler.
func NewDialogueHandler(engine *dialogue.Engine, m *metrics.APIMetrics, logger *logging.Logger) *DialogueHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DialogueHandler{engine: engine, metrics: m, logger: logger}
}

// TurnRequest is the body of POST /dialogue/turn.
type TurnRequest struct {
	Message   string         `json:"message"`
	SessionID string         `json:"session_id"`
	Turn      int            `json:"turn"`
	Notes     dialogue.Notes `json:"notes"`
}

// TurnResponse is the reply for POST /dialogue/turn. Notes must be sent back
// verbatim on the next turn.
type TurnResponse struct {
	OK            bool            `json:"ok"`
	SessionID     string          `json:"session_id"`
	Turn          int             `json:"turn"`
	Reply         string          `json:"reply"`
	NextQuestion  string          `json:"next_question"`
	CaptureIntent dialogue.Intent `json:"capture_intent"`
	Notes         dialogue.Notes  `json:"notes"`
}

// Turn handles POST /dialogue/turn.
func (h *DialogueHandler) Turn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = intake.NewID()
	}

	result := h.engine.Step(r.Context(), req.Message, req.Notes, req.Turn)
	h.metrics.ObserveDialogueTurn(string(result.CaptureIntent))
	h.logger.Info("dialogue: turn processed",
		"session_id", sessionID,
		"turn", req.Turn,
		"stage", result.Notes.Stage,
		"capture_intent", result.CaptureIntent,
	)

	writeJSON(w, http.StatusOK, TurnResponse{
		OK:            true,
		SessionID:     sessionID,
		Turn:          req.Turn + 1,
		Reply:         result.Reply,
		NextQuestion:  result.NextQuestion,
		CaptureIntent: result.CaptureIntent,
		Notes:         result.Notes,
	})
}
