package llm

// Message roles understood by every backend.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatRequest describes a single LLM chat invocation.
type ChatRequest struct {
	Model       string    `json:"model,omitempty"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

// Message is one conversation turn. A trailing assistant message is sent as
// a prefill the model continues from.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse captures a non-streaming completion result.
type ChatResponse struct {
	ID         string `json:"id"`
	Model      string `json:"model"`
	Content    string `json:"content"`
	StopReason string `json:"stop_reason,omitempty"`
	Usage      Usage  `json:"usage"`
	RawJSON    string `json:"raw_json,omitempty"`
}

// Usage summarises token accounting for a completion.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Float returns a pointer to v, for optional request fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for optional request fields.
func Int(v int) *int { return &v }
