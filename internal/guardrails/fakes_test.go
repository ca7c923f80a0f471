package guardrails

import (
	"context"

	"github.com/povarna/generative-ai-agents/proposal-agent/internal/config"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/llm"
)

type MockLLMClient struct {
	ResponseToReturn *llm.LLMResponse
	ErrorToReturn    error
	WasCalled        bool
	LastRequest      *llm.LLMRequest
}

func (m *MockLLMClient) InvokeModel(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
	m.WasCalled = true
	m.LastRequest = &request
	if m.ErrorToReturn != nil {
		return nil, m.ErrorToReturn
	}
	return m.ResponseToReturn, nil
}

func (m *MockLLMClient) InvokeModelWithRetry(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
	return m.InvokeModel(ctx, request)
}

type fakeModerator struct {
	flagged map[string]bool
	err     error
}

func (f *fakeModerator) Moderate(ctx context.Context, text string) (map[string]bool, error) {
	return f.flagged, f.err
}

// fakeChecker records every call and delegates to run.
type fakeChecker struct {
	run   func(text string, cfg *config.GuardrailsConfig) ([]CheckResult, error)
	calls []*config.GuardrailsConfig
}

func (f *fakeChecker) Run(ctx context.Context, text string, cfg *config.GuardrailsConfig) ([]CheckResult, error) {
	f.calls = append(f.calls, cfg)
	return f.run(text, cfg)
}

func strPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}
