package guardrails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/povarna/generative-ai-agents/proposal-agent/internal/config"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/llm"
	"github.com/rs/zerolog"
)

const (
	judgeMaxTokens   = 400
	judgeTemperature = 0.0
)

type promptData struct {
	Text      string
	Details   string
	Knowledge string
}

type judgeVerdict struct {
	Flagged                bool     `json:"flagged"`
	Confidence             float64  `json:"confidence"`
	Reason                 string   `json:"reason"`
	HallucinationType      string   `json:"hallucination_type"`
	HallucinatedStatements []string `json:"hallucinated_statements"`
	VerifiedStatements     []string `json:"verified_statements"`
}

// LLMCheck asks a model to classify the input and trips when the model flags
// it with confidence at or above the configured threshold.
type LLMCheck struct {
	name      string
	prompt    *template.Template
	llmClient llm.LLMClient
	logger    *zerolog.Logger
}

func NewLLMCheck(name string, llmClient llm.LLMClient, logger *zerolog.Logger) (*LLMCheck, error) {
	raw, ok := judgePrompts[name]
	if !ok {
		return nil, fmt.Errorf("%w: no prompt for %q", ErrCheckNotRegistered, name)
	}

	tmpl, err := template.New(name).Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template for guardrail %s: %w", name, err)
	}

	return &LLMCheck{
		name:      name,
		prompt:    tmpl,
		llmClient: llmClient,
		logger:    logger,
	}, nil
}

// NewLLMChecks builds every model-judged check.
func NewLLMChecks(llmClient llm.LLMClient, logger *zerolog.Logger) ([]Check, error) {
	names := []string{
		config.CheckJailbreak,
		config.CheckHallucination,
		config.CheckNSFW,
		config.CheckCustomPrompt,
		config.CheckPromptInjection,
	}

	checks := make([]Check, 0, len(names))
	for _, name := range names {
		c, err := NewLLMCheck(name, llmClient, logger)
		if err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, nil
}

func (c *LLMCheck) Name() string {
	return c.name
}

func (c *LLMCheck) Run(ctx context.Context, text string, cfg config.CheckConfig) (CheckResult, error) {
	var buf bytes.Buffer
	err := c.prompt.Execute(&buf, promptData{
		Text:      text,
		Details:   cfg.SystemPromptDetails,
		Knowledge: cfg.KnowledgeSource,
	})
	if err != nil {
		return CheckResult{}, fmt.Errorf("template execution failed: %w", err)
	}

	resp, err := c.llmClient.InvokeModelWithRetry(ctx, llm.LLMRequest{
		Model:       cfg.Model,
		Prompt:      buf.String(),
		MaxTokens:   judgeMaxTokens,
		Temperature: judgeTemperature,
	})
	if err != nil {
		return CheckResult{}, fmt.Errorf("LLM call failed: %w", err)
	}

	var verdict judgeVerdict
	if err := json.Unmarshal([]byte(stripMarkdownCodeBlock(resp.Content)), &verdict); err != nil {
		c.logger.Error().
			Err(err).
			Str("guardrail", c.name).
			Str("content", resp.Content).
			Msg("failed to deserialize LLM response")
		return CheckResult{}, fmt.Errorf("failed to deserialize LLM response: %w", err)
	}

	if verdict.Confidence < 0 || verdict.Confidence > 1 {
		return CheckResult{}, fmt.Errorf("invalid LLM response: confidence %f out of range [0.0, 1.0]", verdict.Confidence)
	}

	tripped := verdict.Flagged && verdict.Confidence >= cfg.ConfidenceThreshold

	result := CheckResult{
		Name:              c.name,
		TripwireTriggered: tripped,
	}
	if c.name == config.CheckHallucination {
		result.Info = HallucinationInfo{
			Flagged:                verdict.Flagged,
			Confidence:             verdict.Confidence,
			Threshold:              cfg.ConfidenceThreshold,
			Reasoning:              verdict.Reason,
			HallucinationType:      verdict.HallucinationType,
			HallucinatedStatements: verdict.HallucinatedStatements,
			VerifiedStatements:     verdict.VerifiedStatements,
		}
	} else {
		result.Info = LLMCheckInfo{
			Flagged:    verdict.Flagged,
			Confidence: verdict.Confidence,
			Threshold:  cfg.ConfidenceThreshold,
			Reason:     verdict.Reason,
		}
	}

	return result, nil
}

// stripMarkdownCodeBlock removes markdown code block formatting if present
func stripMarkdownCodeBlock(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	firstNewline := strings.Index(content, "\n")
	if firstNewline == -1 {
		return content
	}

	closing := strings.LastIndex(content, "```")
	if closing <= firstNewline {
		return content
	}

	return strings.TrimSpace(content[firstNewline+1 : closing])
}
