package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rowanhq/leadflow/internal/intake"
	"github.com/rowanhq/leadflow/internal/proposal"
	"github.com/rowanhq/leadflow/pkg/logging"
)

// LeadNotifier emails the operator when a new lead lands. Delivery is best
// effort: a send failure is logged and swallowed, it never blocks intake.
type LeadNotifier struct {
	sender  EmailSender
	toEmail string
	baseURL string
	logger  *logging.Logger
}

// NewLeadNotifier creates a lead notifier. Returns nil when there is no
// sender or no destination address, so callers can treat it as optional.
func NewLeadNotifier(sender EmailSender, toEmail, baseURL string, logger *logging.Logger) *LeadNotifier {
	if sender == nil || toEmail == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadNotifier{
		sender:  sender,
		toEmail: toEmail,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// NotifyNewLead sends the operator a summary of a freshly-submitted lead and
// the outcome of proposal generation.
func (n *LeadNotifier) NotifyNewLead(ctx context.Context, rec *intake.Record, doc *proposal.Document) {
	if n == nil || rec == nil {
		return
	}

	msg := EmailMessage{
		To:      n.toEmail,
		Subject: fmt.Sprintf("New lead: %s (%s)", displayName(rec), rec.Email),
		Body:    n.buildBody(rec, doc),
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Warn("lead notification failed", "lead_id", rec.ID, "error", err)
		return
	}
	n.logger.Info("lead notification sent", "lead_id", rec.ID)
}

func (n *LeadNotifier) buildBody(rec *intake.Record, doc *proposal.Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Lead ID: %s\n", rec.ID)
	fmt.Fprintf(&b, "Name: %s\n", displayName(rec))
	fmt.Fprintf(&b, "Email: %s\n", rec.Email)
	writeIfSet(&b, "Phone", rec.Phone)
	writeIfSet(&b, "Business", rec.Business)
	writeIfSet(&b, "Website", rec.Website)
	writeIfSet(&b, "Primary goal", rec.PrimaryGoal)
	writeIfSet(&b, "Budget", rec.BudgetRange)
	writeIfSet(&b, "Timeline", rec.Timeline)
	writeIfSet(&b, "Bottleneck", rec.Bottleneck)

	if doc != nil {
		fmt.Fprintf(&b, "\nProposal fit: %s / %s\n", doc.PricingFit.Temperature, doc.PricingFit.Complexity)
		b.WriteString(doc.ExecutiveSummary)
		b.WriteString("\n")
	} else {
		b.WriteString("\nProposal generation failed; lead was still captured.\n")
	}

	if n.baseURL != "" {
		fmt.Fprintf(&b, "\nView: %s/proposal?id=%s\n", n.baseURL, rec.ID)
	}
	return b.String()
}

func displayName(rec *intake.Record) string {
	if rec.Name != "" {
		return rec.Name
	}
	return "unknown"
}

func writeIfSet(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}
