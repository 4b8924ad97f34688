package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rowanhq/leadflow/internal/crm"
	"github.com/rowanhq/leadflow/internal/intake"
	"github.com/rowanhq/leadflow/internal/notify"
	"github.com/rowanhq/leadflow/internal/observability/metrics"
	"github.com/rowanhq/leadflow/internal/proposal"
	"github.com/rowanhq/leadflow/pkg/logging"
)

// LeadForwarder pushes a new lead to the CRM.
type LeadForwarder interface {
	Forward(ctx context.Context, rec *intake.Record) error
}

// ProposalGenerator produces a proposal document for a lead.
type ProposalGenerator interface {
	Generate(ctx context.Context, rec *intake.Record) (*proposal.Document, bool, error)
}

// RecordStore persists and retrieves intake records with their proposals.
type RecordStore interface {
	Put(ctx context.Context, id string, rec proposal.StoredRecord) error
	Get(ctx context.Context, id string) (*proposal.StoredRecord, bool, error)
}

// IntakeHandler handles form submission and proposal retrieval.
type IntakeHandler struct {
	forwarder LeadForwarder
	generator ProposalGenerator
	store     RecordStore
	notifier  *notify.LeadNotifier
	metrics   *metrics.APIMetrics
	logger    *logging.Logger

	// crmBestEffort downgrades CRM failures from a hard 502 to
	// logged-and-continue.
	crmBestEffort bool
}

// IntakeConfig wires the intake handler's collaborators.
type IntakeConfig struct {
	Forwarder     LeadForwarder
	Generator     ProposalGenerator
	Store         RecordStore
	Notifier      *notify.LeadNotifier
	Metrics       *metrics.APIMetrics
	Logger        *logging.Logger
	CRMBestEffort bool
}

// NewIntakeHandler creates the intake handler.
func NewIntakeHandler(cfg IntakeConfig) *IntakeHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &IntakeHandler{
		forwarder:     cfg.Forwarder,
		generator:     cfg.Generator,
		store:         cfg.Store,
		notifier:      cfg.Notifier,
		metrics:       cfg.Metrics,
		logger:        logger,
		crmBestEffort: cfg.CRMBestEffort,
	}
}

// SubmitResponse is the success envelope for POST /intake.
type SubmitResponse struct {
	OK       bool   `json:"ok"`
	ID       string `json:"id"`
	Redirect string `json:"redirect"`
}

// Submit handles POST /intake: validate, forward to the CRM, generate the
// proposal, persist it, and answer with the record id. Persistence and
// notification are best effort; validation, forwarding, and generation gate
// the response.
func (h *IntakeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req intake.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.ObserveIntake("bad_request")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.metrics.ObserveIntake("invalid")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec := intake.NewRecord(&req)
	ctx := r.Context()

	if err := h.forwardLead(ctx, rec); err != nil {
		if errors.Is(err, crm.ErrWebhookNotConfigured) {
			h.logger.Error("intake: crm webhook not configured", "lead_id", rec.ID)
			h.metrics.ObserveIntake("crm_unconfigured")
			writeError(w, http.StatusInternalServerError, "lead intake is not configured")
			return
		}
		h.logger.Error("intake: crm forward failed", "lead_id", rec.ID, "error", err)
		h.metrics.ObserveIntake("crm_failed")
		writeError(w, http.StatusBadGateway, "could not register lead, please retry")
		return
	}

	doc, repaired, err := h.generator.Generate(ctx, rec)
	if err != nil {
		var genErr *proposal.GenerationError
		if errors.As(err, &genErr) {
			h.logger.Error("intake: proposal output never validated",
				"lead_id", rec.ID,
				"error", genErr.Reason,
				"raw_first", genErr.RawFirst,
				"raw_repair", genErr.RawRepair,
			)
		} else {
			h.logger.Error("intake: proposal generation failed", "lead_id", rec.ID, "error", err)
		}
		h.metrics.ObserveGeneration("failed")
		h.metrics.ObserveIntake("generation_failed")
		h.notifyLead(rec, nil)
		writeError(w, http.StatusBadGateway, "proposal generation failed, our team has been notified")
		return
	}
	if repaired {
		h.metrics.ObserveGeneration("repaired")
	} else {
		h.metrics.ObserveGeneration("ok")
	}

	// The lead is already in the CRM; a store failure only costs the
	// proposal page, so it never fails the request.
	if err := h.store.Put(ctx, rec.ID, proposal.StoredRecord{Intake: rec, Proposal: doc}); err != nil {
		h.logger.Error("intake: store put failed", "lead_id", rec.ID, "error", err)
		h.metrics.ObserveStoreFailure()
	}

	h.notifyLead(rec, doc)
	h.metrics.ObserveIntake("ok")
	h.logger.Info("intake: lead accepted", "lead_id", rec.ID)

	writeJSON(w, http.StatusOK, SubmitResponse{
		OK:       true,
		ID:       rec.ID,
		Redirect: "/proposal?id=" + rec.ID,
	})
}

func (h *IntakeHandler) forwardLead(ctx context.Context, rec *intake.Record) error {
	err := h.forwarder.Forward(ctx, rec)
	if err == nil {
		return nil
	}
	if h.crmBestEffort && !errors.Is(err, crm.ErrWebhookNotConfigured) {
		h.logger.Warn("intake: crm forward failed, continuing (best effort)", "lead_id", rec.ID, "error", err)
		return nil
	}
	return err
}

// notifyLead emails the operator off the request path.
func (h *IntakeHandler) notifyLead(rec *intake.Record, doc *proposal.Document) {
	if h.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		h.notifier.NotifyNewLead(ctx, rec, doc)
	}()
}

// FetchResponse is the success envelope for GET /proposal.
type FetchResponse struct {
	OK     bool                   `json:"ok"`
	Record *proposal.StoredRecord `json:"record"`
}

// FetchProposal handles GET /proposal?id=: absent, expired, and corrupt
// records all answer 404.
func (h *IntakeHandler) FetchProposal(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	rec, found, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("intake: store get failed", "lead_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "proposal lookup failed")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "proposal not found or expired")
		return
	}

	writeJSON(w, http.StatusOK, FetchResponse{OK: true, Record: rec})
}
