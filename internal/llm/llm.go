// Package llm defines the provider abstraction for chat completion and
// embedding backends.
package llm

// Role identifies who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Prompt is the full input to a completion call.
type Prompt struct {
	SystemPrompt string    `json:"system_prompt,omitempty"`
	Messages     []Message `json:"messages"`
}

// RequestOptions tune a single completion request. Nil fields use the
// provider's defaults.
type RequestOptions struct {
	Model       string
	Temperature *float32
	MaxTokens   *int
}

// Response wraps a completion result.
type Response struct {
	Content      string  `json:"content"`
	Model        string  `json:"model,omitempty"`
	InputTokens  int     `json:"input_tokens,omitempty"`
	OutputTokens int     `json:"output_tokens,omitempty"`
	LatencyMs    float64 `json:"latency_ms,omitempty"`
}
