package intake

import (
	"strings"
	"time"
)

// Record represents one lead submission. Records are immutable after creation
// and expire from the store together with their proposal.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Contact fields
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Business string `json:"business,omitempty"`
	Website  string `json:"website,omitempty"`
	Industry string `json:"industry,omitempty"`

	// Qualification fields
	PrimaryGoal string `json:"primary_goal,omitempty"`
	BudgetRange string `json:"budget_range,omitempty"`
	Timeline    string `json:"timeline,omitempty"`
	Bottleneck  string `json:"bottleneck,omitempty"`

	// Provenance fields
	Source              string `json:"source,omitempty"`
	PageURL             string `json:"page_url,omitempty"`
	ConversationSummary string `json:"conversation_summary,omitempty"`
}

// SubmitRequest represents the request body for submitting an intake form.
type SubmitRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Business string `json:"business"`
	Website  string `json:"website"`
	Industry string `json:"industry"`

	PrimaryGoal string `json:"primary_goal"`
	BudgetRange string `json:"budget_range"`
	Timeline    string `json:"timeline"`
	Bottleneck  string `json:"bottleneck"`

	Source              string `json:"source"`
	PageURL             string `json:"page_url"`
	ConversationSummary string `json:"conversation_summary"`
}

// Normalize trims whitespace on every field.
func (r *SubmitRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Business = strings.TrimSpace(r.Business)
	r.Website = strings.TrimSpace(r.Website)
	r.Industry = strings.TrimSpace(r.Industry)
	r.PrimaryGoal = strings.TrimSpace(r.PrimaryGoal)
	r.BudgetRange = strings.TrimSpace(r.BudgetRange)
	r.Timeline = strings.TrimSpace(r.Timeline)
	r.Bottleneck = strings.TrimSpace(r.Bottleneck)
	r.Source = strings.TrimSpace(r.Source)
	r.PageURL = strings.TrimSpace(r.PageURL)
	r.ConversationSummary = strings.TrimSpace(r.ConversationSummary)
}

// Validate normalizes the request and checks required fields.
func (r *SubmitRequest) Validate() error {
	r.Normalize()
	if r.Email == "" {
		return ErrMissingEmail
	}
	return nil
}

// NewRecord assigns an id and timestamp to a validated submission.
// The id is assigned once and never reused.
func NewRecord(req *SubmitRequest) *Record {
	return &Record{
		ID:                  NewID(),
		CreatedAt:           time.Now().UTC(),
		Name:                req.Name,
		Email:               req.Email,
		Phone:               req.Phone,
		Business:            req.Business,
		Website:             req.Website,
		Industry:            req.Industry,
		PrimaryGoal:         req.PrimaryGoal,
		BudgetRange:         req.BudgetRange,
		Timeline:            req.Timeline,
		Bottleneck:          req.Bottleneck,
		Source:              req.Source,
		PageURL:             req.PageURL,
		ConversationSummary: req.ConversationSummary,
	}
}
