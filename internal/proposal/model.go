package proposal

import (
	"errors"
	"fmt"
	"strings"
)

// TierCount is the fixed number of pricing tiers in every proposal.
const TierCount = 3

// Document is the generated structured proposal attached to an intake record.
// Documents are produced once and immutable thereafter.
type Document struct {
	ExecutiveSummary string         `json:"executive_summary"`
	PricingFit       PricingFit     `json:"pricing_fit"`
	Tiers            []Tier         `json:"tiers"`
	OneOffServices   []OneOffOffer  `json:"one_off_services"`
	NextSteps        []string       `json:"next_steps"`
}

// PricingFit is the model's rationale for how the lead maps onto the tiers.
type PricingFit struct {
	Temperature string `json:"temperature"`
	Complexity  string `json:"complexity"`
	Reasoning   string `json:"reasoning"`
}

// Tier is one of exactly three pricing tiers.
//
// The monthly price historically appeared under two field names;
// both are accepted on input and normalized to monthly_price.
type Tier struct {
	Name               string   `json:"name"`
	MonthlyPrice       *float64 `json:"monthly_price,omitempty"`
	LegacyMonthlyPrice *float64 `json:"price_monthly,omitempty"`
	SetupFee           float64  `json:"setup_fee"`
	BestFor            string   `json:"best_for,omitempty"`
	Scope              []string `json:"scope"`
	Timeline           string   `json:"timeline,omitempty"`
}

// Monthly returns the tier's monthly price under either field name.
func (t *Tier) Monthly() (float64, bool) {
	if t.MonthlyPrice != nil {
		return *t.MonthlyPrice, true
	}
	if t.LegacyMonthlyPrice != nil {
		return *t.LegacyMonthlyPrice, true
	}
	return 0, false
}

// OneOffOffer is a modular one-time service with a price range.
type OneOffOffer struct {
	Name       string `json:"name"`
	PriceRange string `json:"price_range"`
	UseCase    string `json:"use_case,omitempty"`
}

var errNoDocument = errors.New("proposal: document is nil")

// Validate checks the document against the fixed schema and normalizes it in
// place: the legacy price field is folded into monthly_price and nil scope
// slices become empty lists.
func (d *Document) Validate() error {
	if d == nil {
		return errNoDocument
	}
	if strings.TrimSpace(d.ExecutiveSummary) == "" {
		return errors.New("proposal: executive_summary must be a non-empty string")
	}
	if len(d.Tiers) != TierCount {
		return fmt.Errorf("proposal: expected exactly %d tiers, got %d", TierCount, len(d.Tiers))
	}
	for i := range d.Tiers {
		tier := &d.Tiers[i]
		if strings.TrimSpace(tier.Name) == "" {
			return fmt.Errorf("proposal: tier %d is missing a name", i)
		}
		monthly, ok := tier.Monthly()
		if !ok {
			return fmt.Errorf("proposal: tier %q is missing a numeric monthly price", tier.Name)
		}
		tier.MonthlyPrice = &monthly
		tier.LegacyMonthlyPrice = nil
		if tier.Scope == nil {
			tier.Scope = []string{}
		}
	}
	if d.NextSteps == nil {
		d.NextSteps = []string{}
	}
	if d.OneOffServices == nil {
		d.OneOffServices = []OneOffOffer{}
	}
	return nil
}
