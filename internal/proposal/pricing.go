package proposal

// Locked pricing. These values are embedded verbatim in the generation prompt
// and the model is instructed never to invent different numbers.

// ActivationFee is the one-time setup fee applied to every tier, in USD.
const ActivationFee = 750

// TierPricing is one locked tier the model must echo back.
type TierPricing struct {
	Name         string
	MonthlyPrice int
}

// LockedTiers are the three retainer tiers, cheapest first.
var LockedTiers = [TierCount]TierPricing{
	{Name: "Starter", MonthlyPrice: 497},
	{Name: "Growth", MonthlyPrice: 997},
	{Name: "Scale", MonthlyPrice: 1997},
}

// OfferPricing is one locked one-off service with its price range.
type OfferPricing struct {
	Name       string
	PriceRange string
}

// LockedOffers are the four modular one-off services.
var LockedOffers = [4]OfferPricing{
	{Name: "Website Revamp", PriceRange: "$1,500-$3,500"},
	{Name: "Automation Setup", PriceRange: "$750-$2,000"},
	{Name: "Ad Campaign Launch", PriceRange: "$500-$1,500"},
	{Name: "CRM Migration", PriceRange: "$400-$1,200"},
}
