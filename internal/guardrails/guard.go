package guardrails

import (
	"context"
	"fmt"

	"github.com/povarna/generative-ai-agents/proposal-agent/internal/config"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/models"
	"github.com/rs/zerolog"
)

// workflowTextFields are the workflow input fields scrubbed when PII is masked.
var workflowTextFields = []string{"input_as_text", "input_text"}

type Evaluation struct {
	Blocked       bool
	SafeText      string
	FailureReport FailureReport
	Results       []CheckResult
	Sanitization  SanitizeOutcome
}

// Guard evaluates user input against the process-wide guardrail config.
type Guard struct {
	checker Checker
	config  *config.GuardrailsConfig
	logger  *zerolog.Logger
}

func NewGuard(checker Checker, cfg *config.GuardrailsConfig, logger *zerolog.Logger) *Guard {
	return &Guard{
		checker: checker,
		config:  cfg,
		logger:  logger,
	}
}

// Evaluate runs every configured check against text. When PII is configured
// to mask, the user text parts of history and the workflow input are
// rewritten in place using the PII check alone; failures there are recorded
// in Evaluation.Sanitization and never returned.
func (g *Guard) Evaluate(
	ctx context.Context,
	text string,
	history []models.ConversationItem,
	input *models.WorkflowInput,
) (*Evaluation, error) {
	results, err := g.checker.Run(ctx, text, g.config)
	if err != nil {
		return nil, fmt.Errorf("guardrail evaluation failed: %w", err)
	}

	sanitization := SanitizeOutcome{Status: SanitizeSkipped}
	if g.config.MasksPII() {
		sanitization = g.sanitize(ctx, history, input)
		if sanitization.Status != SanitizeSuccess {
			g.logger.Warn().
				Str("status", string(sanitization.Status)).
				Str("reason", sanitization.Reason).
				Int("attempted", sanitization.Attempted).
				Msg("PII sanitization incomplete")
		}
	}

	return &Evaluation{
		Blocked:       HasTripwire(results),
		SafeText:      SafeText(results, text),
		FailureReport: BuildFailureReport(results),
		Results:       results,
		Sanitization:  sanitization,
	}, nil
}

func (g *Guard) sanitize(ctx context.Context, history []models.ConversationItem, input *models.WorkflowInput) SanitizeOutcome {
	piiOnly, ok := g.config.Only(config.CheckPII)
	if !ok {
		return SanitizeOutcome{Status: SanitizeSkipped}
	}

	s := &sanitizer{
		mask: func(ctx context.Context, text string) (string, error) {
			results, err := g.checker.Run(ctx, text, piiOnly)
			if err != nil {
				return "", err
			}
			return SafeText(results, text), nil
		},
	}

	for i := range history {
		for j := range history[i].Content {
			part := &history[i].Content[j]
			if part.Type != models.ContentInputText {
				continue
			}
			s.apply(ctx, &part.Text)
		}
	}

	for _, name := range workflowTextFields {
		if field, ok := input.TextField(name); ok {
			s.apply(ctx, field)
		}
	}

	return s.outcome()
}
