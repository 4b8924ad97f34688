package proposal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rowanhq/leadflow/internal/intake"
	"github.com/rowanhq/leadflow/internal/llm"
	"github.com/rowanhq/leadflow/pkg/logging"
)

const (
	// generationTemperature keeps sampling near-deterministic so the locked
	// pricing comes back intact.
	generationTemperature = 0.2
	defaultMaxTokens      = 2048
	defaultTimeout        = 30 * time.Second
)

// Generator produces proposal documents from intake records.
type Generator struct {
	client    llm.Client
	model     string
	maxTokens int32
	timeout   time.Duration
	logger    *logging.Logger
}

// GeneratorConfig controls model selection and bounds.
type GeneratorConfig struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Logger    *logging.Logger
}

// NewGenerator creates a generator backed by the given completion client.
func NewGenerator(client llm.Client, cfg GeneratorConfig) *Generator {
	maxTokens := int32(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Generator{
		client:    client,
		model:     cfg.Model,
		maxTokens: maxTokens,
		timeout:   timeout,
		logger:    logger,
	}
}

// Generate builds the prompt, invokes the model, and coerces the output into
// a valid Document: strict parse, then brace extraction, then schema
// validation, with exactly one repair attempt before giving up. The returned
// bool reports whether the repair path produced the document.
//
// A failed call never yields a partially-valid document.
func (g *Generator) Generate(ctx context.Context, rec *intake.Record) (*Document, bool, error) {
	first, err := g.complete(ctx, BuildPrompt(rec))
	if err != nil {
		return nil, false, fmt.Errorf("proposal: completion failed: %w", err)
	}

	doc, parseErr := ParseDocument(first)
	if parseErr == nil {
		return doc, false, nil
	}

	g.logger.Warn("proposal: output invalid, attempting repair",
		"lead_id", rec.ID,
		"error", parseErr,
	)

	repair, err := g.complete(ctx, BuildRepairPrompt(first, parseErr))
	if err != nil {
		return nil, false, fmt.Errorf("proposal: repair completion failed: %w", err)
	}

	doc, repairErr := ParseDocument(repair)
	if repairErr != nil {
		return nil, false, &GenerationError{
			Reason:    repairErr,
			RawFirst:  first,
			RawRepair: repair,
		}
	}

	g.logger.Info("proposal: repair attempt succeeded", "lead_id", rec.ID)
	return doc, true, nil
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Complete(ctx, llm.Request{
		Model:       g.model,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   g.maxTokens,
		Temperature: generationTemperature,
		JSONOnly:    true,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// ParseDocument coerces raw model output into a validated Document.
// It tries a strict parse first, then falls back to the substring between
// the first '{' and the last '}'.
func ParseDocument(raw string) (*Document, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var doc Document
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		extracted, ok := extractJSON(text)
		if !ok {
			return nil, fmt.Errorf("proposal: output is not JSON: %w", err)
		}
		doc = Document{}
		if err := json.Unmarshal([]byte(extracted), &doc); err != nil {
			return nil, fmt.Errorf("proposal: extracted output is not JSON: %w", err)
		}
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// extractJSON returns the substring between the first '{' and the last '}'.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
