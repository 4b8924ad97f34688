package proposal

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rowanhq/leadflow/internal/intake"
)

const personaPrompt = `You are a senior growth consultant at a digital agency.
You write concise, confident proposals for small-business owners.
You never invent prices: the pricing below is locked and must be echoed back exactly.`

const schemaDescription = `{
  "executive_summary": "2-4 sentence summary of the engagement, non-empty string",
  "pricing_fit": {
    "temperature": "one of: cold, warm, hot",
    "complexity": "one of: simple, standard, complex",
    "reasoning": "1-2 sentences on why the recommended focus fits"
  },
  "tiers": [
    {
      "name": "tier name, non-empty string",
      "monthly_price": 0,
      "setup_fee": 0,
      "best_for": "who this tier is for",
      "scope": ["list of in-scope items, may be empty"],
      "timeline": "expected ramp-up"
    }
  ],
  "one_off_services": [
    {"name": "service name", "price_range": "$x-$y", "use_case": "when to pick it"}
  ],
  "next_steps": ["ordered list of next-step strings"]
}`

// BuildPrompt assembles the full generation prompt for an intake record:
// persona, locked pricing, hard formatting rules, the serialized record,
// and the literal schema.
func BuildPrompt(rec *intake.Record) string {
	var b strings.Builder

	b.WriteString(personaPrompt)
	b.WriteString("\n\nLOCKED PRICING (echo exactly, never change):\n")
	for _, tier := range LockedTiers {
		fmt.Fprintf(&b, "- %s: $%d/month, $%d one-time activation fee\n", tier.Name, tier.MonthlyPrice, ActivationFee)
	}
	b.WriteString("One-off services:\n")
	for _, offer := range LockedOffers {
		fmt.Fprintf(&b, "- %s: %s\n", offer.Name, offer.PriceRange)
	}

	b.WriteString("\nLEAD SUBMISSION:\n")
	if data, err := json.MarshalIndent(rec, "", "  "); err == nil {
		b.Write(data)
	}

	b.WriteString("\n\nRespond with JSON only. No markdown, no code fences, no commentary.\n")
	b.WriteString("The response must match this schema exactly, with exactly ")
	fmt.Fprintf(&b, "%d entries in \"tiers\" and %d in \"one_off_services\":\n", TierCount, len(LockedOffers))
	b.WriteString(schemaDescription)

	return b.String()
}

// BuildRepairPrompt asks the model to fix its previous invalid output.
// The invalid text is embedded verbatim together with the schema again.
func BuildRepairPrompt(invalid string, reason error) string {
	var b strings.Builder

	b.WriteString("Your previous response was not valid against the required schema.\n")
	fmt.Fprintf(&b, "Problem: %v\n\n", reason)
	b.WriteString("Previous response:\n")
	b.WriteString(invalid)
	b.WriteString("\n\nProduce a corrected response. JSON only, no markdown, no commentary.\n")
	fmt.Fprintf(&b, "Exactly %d entries in \"tiers\". The schema:\n", TierCount)
	b.WriteString(schemaDescription)

	return b.String()
}
