// Package crm forwards intake submissions to the configured CRM webhook.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rowanhq/leadflow/internal/intake"
	"github.com/rowanhq/leadflow/pkg/logging"
)

const (
	// maxFieldLen caps every forwarded field so a hostile submission
	// cannot blow up the webhook payload.
	maxFieldLen = 500
	// maxErrorBody limits how much of a rejection body is kept for diagnostics.
	maxErrorBody = 300
)

// ErrWebhookNotConfigured is returned when no webhook URL is set.
var ErrWebhookNotConfigured = errors.New("crm: webhook url not configured")

// WebhookRejectedError is returned when the CRM responds with a non-success status.
type WebhookRejectedError struct {
	StatusCode int
	Body       string
}

func (e *WebhookRejectedError) Error() string {
	return fmt.Sprintf("crm: webhook rejected lead with status %d: %s", e.StatusCode, e.Body)
}

// Payload is the flattened shape the CRM webhook expects.
type Payload struct {
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Email               string `json:"email"`
	Phone               string `json:"phone,omitempty"`
	BusinessName        string `json:"business_name,omitempty"`
	Website             string `json:"website,omitempty"`
	Industry            string `json:"industry,omitempty"`
	PrimaryGoal         string `json:"primary_goal,omitempty"`
	BudgetRange         string `json:"budget_range,omitempty"`
	Timeline            string `json:"timeline,omitempty"`
	Bottleneck          string `json:"bottleneck,omitempty"`
	Source              string `json:"source,omitempty"`
	PageURL             string `json:"page_url,omitempty"`
	ConversationSummary string `json:"conversation_summary,omitempty"`
}

// Config controls how the forwarder behaves.
type Config struct {
	WebhookURL string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Forwarder posts flattened intake payloads to the CRM webhook.
type Forwarder struct {
	webhookURL string
	httpClient *http.Client
	logger     *logging.Logger
}

// New creates a configured Forwarder with sane defaults.
func New(cfg Config) *Forwarder {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Forwarder{
		webhookURL: strings.TrimSpace(cfg.WebhookURL),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Forward flattens the record and posts it to the webhook synchronously.
func (f *Forwarder) Forward(ctx context.Context, rec *intake.Record) error {
	if f.webhookURL == "" {
		return ErrWebhookNotConfigured
	}

	payload := BuildPayload(rec)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("crm: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("crm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("crm: webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &WebhookRejectedError{
			StatusCode: resp.StatusCode,
			Body:       truncate(strings.TrimSpace(string(raw)), maxErrorBody),
		}
	}

	f.logger.Info("crm: lead forwarded", "lead_id", rec.ID, "status", resp.StatusCode)
	return nil
}

// BuildPayload flattens an intake record into the webhook shape.
// The name is split into first/last at the first whitespace boundary.
func BuildPayload(rec *intake.Record) Payload {
	first, last := SplitName(rec.Name)
	return Payload{
		FirstName:           capField(first),
		LastName:            capField(last),
		Email:               capField(rec.Email),
		Phone:               capField(rec.Phone),
		BusinessName:        capField(rec.Business),
		Website:             capField(rec.Website),
		Industry:            capField(rec.Industry),
		PrimaryGoal:         capField(rec.PrimaryGoal),
		BudgetRange:         capField(rec.BudgetRange),
		Timeline:            capField(rec.Timeline),
		Bottleneck:          capField(rec.Bottleneck),
		Source:              capField(rec.Source),
		PageURL:             capField(rec.PageURL),
		ConversationSummary: capField(rec.ConversationSummary),
	}
}

// SplitName divides a full name at the first whitespace boundary.
// A single word becomes the first name with an empty last name.
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	if idx := strings.IndexFunc(name, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n'
	}); idx >= 0 {
		return name[:idx], strings.TrimSpace(name[idx+1:])
	}
	return name, ""
}

func capField(s string) string {
	return truncate(strings.TrimSpace(s), maxFieldLen)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
