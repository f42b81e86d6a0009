package types

// TokenUsage represents token consumption statistics for one model call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// Add adds another TokenUsage to this one.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// TokenCounter is the minimal token counting interface consumed by context
// budgeting. The llm/tokenizer package provides implementations.
type TokenCounter interface {
	CountTokens(text string) (int, error)
}
