package llm

type LLMRequest struct {
	// Model overrides the client's default model when set.
	Model        string
	SystemPrompt string
	Prompt       string
	MaxTokens    int
	Temperature  float64
}

type LLMResponse struct {
	Content    string
	StopReason string
}
