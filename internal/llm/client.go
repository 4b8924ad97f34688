package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is an internal chat message representation that can include system prompts.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type Request struct {
	Model       string
	System      []string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
	TopP        float32
	// JSONOnly asks the provider for its native structured-output mode
	// when it has one. Providers without one ignore it.
	JSONOnly bool
}

type Response struct {
	Text       string
	Usage      Usage
	StopReason string
}

type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
