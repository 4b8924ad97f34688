package proposal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rowanhq/leadflow/internal/intake"
	"github.com/rowanhq/leadflow/internal/llm"
)

const validProposalJSON = `{
  "executive_summary": "A focused growth plan for Doe Landscaping.",
  "pricing_fit": {"temperature": "warm", "complexity": "standard", "reasoning": "clear goal"},
  "tiers": [
    {"name": "Starter", "monthly_price": 497, "setup_fee": 750, "scope": ["landing page"]},
    {"name": "Growth", "monthly_price": 997, "setup_fee": 750, "scope": ["ads"]},
    {"name": "Scale", "monthly_price": 1997, "setup_fee": 750, "scope": ["full funnel"]}
  ],
  "one_off_services": [{"name": "Website Revamp", "price_range": "$1,500-$3,500"}],
  "next_steps": ["book a call"]
}`

// scriptedClient returns canned responses in order, recording each request.
type scriptedClient struct {
	responses []string
	errs      []error
	requests  []llm.Request
}

func (c *scriptedClient) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	i := len(c.requests)
	c.requests = append(c.requests, req)
	if i < len(c.errs) && c.errs[i] != nil {
		return llm.Response{}, c.errs[i]
	}
	if i >= len(c.responses) {
		return llm.Response{}, errors.New("scripted client exhausted")
	}
	return llm.Response{Text: c.responses[i]}, nil
}

func testRecord() *intake.Record {
	return &intake.Record{ID: "abc123", Email: "jane@example.com", Business: "Doe Landscaping"}
}

func TestGenerateValidFirstAttempt(t *testing.T) {
	client := &scriptedClient{responses: []string{validProposalJSON}}
	gen := NewGenerator(client, GeneratorConfig{})

	doc, repaired, err := gen.Generate(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("Generate() = %v", err)
	}
	if repaired {
		t.Fatal("first attempt should not be marked repaired")
	}
	if len(doc.Tiers) != TierCount {
		t.Fatalf("tiers = %d", len(doc.Tiers))
	}
	if len(client.requests) != 1 {
		t.Fatalf("expected 1 model call, got %d", len(client.requests))
	}

	req := client.requests[0]
	if !req.JSONOnly {
		t.Error("expected JSON-only response mode")
	}
	if req.Temperature != generationTemperature {
		t.Errorf("temperature = %v", req.Temperature)
	}
}

func TestGenerateAcceptsFencedJSON(t *testing.T) {
	client := &scriptedClient{responses: []string{"```json\n" + validProposalJSON + "\n```"}}
	gen := NewGenerator(client, GeneratorConfig{})

	doc, _, err := gen.Generate(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("Generate() = %v", err)
	}
	if doc.Tiers[0].Name != "Starter" {
		t.Fatalf("tiers = %+v", doc.Tiers)
	}
}

func TestGenerateAcceptsJSONWithSurroundingProse(t *testing.T) {
	client := &scriptedClient{responses: []string{"Here is your proposal:\n" + validProposalJSON + "\nLet me know!"}}
	gen := NewGenerator(client, GeneratorConfig{})

	if _, _, err := gen.Generate(context.Background(), testRecord()); err != nil {
		t.Fatalf("Generate() = %v", err)
	}
}

func TestGenerateRepairsInvalidOutput(t *testing.T) {
	client := &scriptedClient{responses: []string{"not json at all", validProposalJSON}}
	gen := NewGenerator(client, GeneratorConfig{})

	doc, repaired, err := gen.Generate(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("Generate() = %v", err)
	}
	if !repaired {
		t.Fatal("expected repaired=true")
	}
	if len(doc.Tiers) != TierCount {
		t.Fatalf("tiers = %d", len(doc.Tiers))
	}
	if len(client.requests) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(client.requests))
	}
	repairPrompt := client.requests[1].Messages[0].Content
	if !strings.Contains(repairPrompt, "not json at all") {
		t.Error("repair prompt should embed the invalid output")
	}
}

func TestGenerateFailsAfterSingleRepair(t *testing.T) {
	client := &scriptedClient{responses: []string{`{"tiers": []}`, "still broken"}}
	gen := NewGenerator(client, GeneratorConfig{})

	_, _, err := gen.Generate(context.Background(), testRecord())
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.RawFirst != `{"tiers": []}` || genErr.RawRepair != "still broken" {
		t.Fatalf("raw outputs not kept: %+v", genErr)
	}
	if len(client.requests) != 2 {
		t.Fatalf("expected exactly 2 model calls, got %d", len(client.requests))
	}
}

func TestGenerateRejectsWrongTierCountEvenWhenWellFormed(t *testing.T) {
	twoTiers := `{
	  "executive_summary": "ok",
	  "tiers": [
	    {"name": "A", "monthly_price": 1},
	    {"name": "B", "monthly_price": 2}
	  ]
	}`
	client := &scriptedClient{responses: []string{twoTiers, twoTiers}}
	gen := NewGenerator(client, GeneratorConfig{})

	_, _, err := gen.Generate(context.Background(), testRecord())
	if err == nil {
		t.Fatal("expected failure for a two-tier document")
	}
}

func TestGenerateCompletionError(t *testing.T) {
	client := &scriptedClient{errs: []error{errors.New("model down")}}
	gen := NewGenerator(client, GeneratorConfig{})

	_, _, err := gen.Generate(context.Background(), testRecord())
	if err == nil || !strings.Contains(err.Error(), "completion failed") {
		t.Fatalf("err = %v", err)
	}
}

func TestParseDocumentLegacyPriceField(t *testing.T) {
	legacy := strings.ReplaceAll(validProposalJSON, "monthly_price", "price_monthly")
	doc, err := ParseDocument(legacy)
	if err != nil {
		t.Fatalf("ParseDocument() = %v", err)
	}
	price, ok := doc.Tiers[0].Monthly()
	if !ok || price != 497 {
		t.Fatalf("monthly = (%v, %v)", price, ok)
	}
}

func TestBuildPromptEmbedsLockedPricing(t *testing.T) {
	prompt := BuildPrompt(testRecord())
	for _, tier := range LockedTiers {
		if !strings.Contains(prompt, tier.Name) {
			t.Errorf("prompt missing tier %q", tier.Name)
		}
	}
	if !strings.Contains(prompt, "jane@example.com") {
		t.Error("prompt missing lead fields")
	}
}
