package guardrails

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/povarna/generative-ai-agents/proposal-agent/internal/config"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/models"
	"github.com/rs/zerolog"
)

const ssnText = "My SSN is 123-45-6789"

func piiConfig(block *bool) *config.GuardrailsConfig {
	return &config.GuardrailsConfig{
		Guardrails: []config.GuardrailSpec{
			{
				Name: config.CheckPII,
				Config: config.CheckConfig{
					Block:    block,
					Entities: []string{EntitySSN, EntityCreditCard},
				},
			},
			{
				Name:   config.CheckModeration,
				Config: config.CheckConfig{Categories: []string{"hate", "hate/threatening"}},
			},
		},
	}
}

func newTestGuard(cfg *config.GuardrailsConfig, flagged map[string]bool) *Guard {
	logger := zerolog.Nop()
	runner := NewRunner(&logger, NewPIICheck(), NewModerationCheck(&fakeModerator{flagged: flagged}))
	return NewGuard(runner, cfg, &logger)
}

func TestGuard_Evaluate_CleanInput(t *testing.T) {
	guard := newTestGuard(piiConfig(boolPtr(false)), nil)

	eval, err := guard.Evaluate(context.Background(), "evaluate", nil, &models.WorkflowInput{InputAsText: "evaluate"})
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if eval.Blocked {
		t.Error("Expected clean input not to be blocked")
	}
	if eval.SafeText != "evaluate" {
		t.Errorf("Expected safe text 'evaluate', got %q", eval.SafeText)
	}
	if len(eval.Results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(eval.Results))
	}
	if eval.Sanitization.Status != SanitizeSuccess {
		t.Errorf("Expected sanitization success, got %s", eval.Sanitization.Status)
	}
}

func TestGuard_Evaluate_ModerationBlocks(t *testing.T) {
	guard := newTestGuard(piiConfig(boolPtr(false)), map[string]bool{"hate/threatening": true, "violence": true})

	eval, err := guard.Evaluate(context.Background(), "evaluate agent", nil, &models.WorkflowInput{InputAsText: "evaluate agent"})
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if !eval.Blocked {
		t.Fatal("Expected input to be blocked")
	}
	if !eval.FailureReport.Moderation.Failed {
		t.Error("Expected moderation to be reported as failed")
	}
	cats := eval.FailureReport.Moderation.FlaggedCategories
	if len(cats) != 1 || cats[0] != "hate/threatening" {
		t.Errorf("Expected only configured categories, got %v", cats)
	}
}

func TestGuard_Evaluate_MasksHistoryWhenPIIMasked(t *testing.T) {
	guard := newTestGuard(piiConfig(boolPtr(false)), nil)

	history := []models.ConversationItem{
		models.UserText(ssnText),
		models.AssistantText("Your card is 4111 1111 1111 1111"),
	}
	input := &models.WorkflowInput{InputAsText: ssnText}

	eval, err := guard.Evaluate(context.Background(), ssnText, history, input)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if eval.Blocked {
		t.Error("Expected masking policy not to block")
	}
	if got := history[0].Content[0].Text; got != "My SSN is <US_SSN>" {
		t.Errorf("Expected history text to be masked, got %q", got)
	}
	if got := history[1].Content[0].Text; got != "Your card is 4111 1111 1111 1111" {
		t.Errorf("Expected output_text parts to be left alone, got %q", got)
	}
	if input.InputAsText != "My SSN is <US_SSN>" {
		t.Errorf("Expected workflow input to be masked, got %q", input.InputAsText)
	}
	if eval.SafeText != "My SSN is <US_SSN>" {
		t.Errorf("Expected masked safe text, got %q", eval.SafeText)
	}
	if eval.Sanitization.Masked != 2 {
		t.Errorf("Expected 2 masked fields, got %d", eval.Sanitization.Masked)
	}
	if !eval.FailureReport.PII.Failed {
		t.Error("Expected PII to be reported")
	}
}

func TestGuard_Evaluate_NoMaskingWhenBlocking(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.GuardrailsConfig
	}{
		{name: "block true", cfg: piiConfig(boolPtr(true))},
		{name: "block unset", cfg: piiConfig(nil)},
		{
			name: "pii not configured",
			cfg: &config.GuardrailsConfig{Guardrails: []config.GuardrailSpec{
				{Name: config.CheckModeration, Config: config.CheckConfig{Categories: []string{"hate"}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := newTestGuard(tt.cfg, nil)
			history := []models.ConversationItem{models.UserText(ssnText)}
			input := &models.WorkflowInput{InputAsText: ssnText}

			eval, err := guard.Evaluate(context.Background(), ssnText, history, input)
			if err != nil {
				t.Fatalf("Evaluate() failed: %v", err)
			}

			if history[0].Content[0].Text != ssnText {
				t.Errorf("Expected history untouched, got %q", history[0].Content[0].Text)
			}
			if input.InputAsText != ssnText {
				t.Errorf("Expected workflow input untouched, got %q", input.InputAsText)
			}
			if eval.Sanitization.Status != SanitizeSkipped {
				t.Errorf("Expected sanitization skipped, got %s", eval.Sanitization.Status)
			}
		})
	}
}

func TestGuard_Evaluate_BlockingPIITrips(t *testing.T) {
	guard := newTestGuard(piiConfig(boolPtr(true)), nil)

	eval, err := guard.Evaluate(context.Background(), ssnText, nil, &models.WorkflowInput{InputAsText: ssnText})
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if !eval.Blocked {
		t.Error("Expected blocking PII config to trip")
	}
	if len(eval.FailureReport.PII.DetectedCounts) != 1 || eval.FailureReport.PII.DetectedCounts[0] != "US_SSN:1" {
		t.Errorf("Unexpected detected counts %v", eval.FailureReport.PII.DetectedCounts)
	}
}

func TestGuard_Evaluate_CheckErrorPropagates(t *testing.T) {
	logger := zerolog.Nop()
	checker := &fakeChecker{run: func(text string, cfg *config.GuardrailsConfig) ([]CheckResult, error) {
		return nil, errors.New("moderation endpoint down")
	}}
	guard := NewGuard(checker, piiConfig(boolPtr(false)), &logger)

	_, err := guard.Evaluate(context.Background(), "hello", nil, &models.WorkflowInput{InputAsText: "hello"})
	if err == nil {
		t.Fatal("Expected error from main evaluation")
	}
	if !strings.Contains(err.Error(), "moderation endpoint down") {
		t.Errorf("Expected wrapped error, got %v", err)
	}
}

func TestGuard_Evaluate_SanitizationFailureIsSwallowed(t *testing.T) {
	logger := zerolog.Nop()
	checker := &fakeChecker{run: func(text string, cfg *config.GuardrailsConfig) ([]CheckResult, error) {
		if len(cfg.Guardrails) == 1 {
			return nil, errors.New("pii service unavailable")
		}
		return []CheckResult{{Name: config.CheckModeration, Info: ModerationInfo{}}}, nil
	}}
	guard := NewGuard(checker, piiConfig(boolPtr(false)), &logger)

	history := []models.ConversationItem{models.UserText(ssnText)}
	input := &models.WorkflowInput{InputAsText: ssnText}

	eval, err := guard.Evaluate(context.Background(), ssnText, history, input)
	if err != nil {
		t.Fatalf("Expected sanitization failure to be swallowed, got %v", err)
	}

	if eval.Sanitization.Status != SanitizeFailed {
		t.Errorf("Expected sanitization failed, got %s", eval.Sanitization.Status)
	}
	if !strings.Contains(eval.Sanitization.Reason, "pii service unavailable") {
		t.Errorf("Expected reason to carry the error, got %q", eval.Sanitization.Reason)
	}
	if history[0].Content[0].Text != ssnText {
		t.Error("Expected history to stay unmasked after failure")
	}
}

func TestGuard_Evaluate_PartialSanitization(t *testing.T) {
	logger := zerolog.Nop()
	checker := &fakeChecker{run: func(text string, cfg *config.GuardrailsConfig) ([]CheckResult, error) {
		if len(cfg.Guardrails) > 1 {
			return nil, nil
		}
		if strings.Contains(text, "boom") {
			return nil, errors.New("boom")
		}
		return []CheckResult{{Name: config.CheckPII, Info: PIIInfo{CheckedText: strPtr("masked")}}}, nil
	}}
	guard := NewGuard(checker, piiConfig(boolPtr(false)), &logger)

	history := []models.ConversationItem{models.UserText("boom"), models.UserText(ssnText)}
	input := &models.WorkflowInput{InputAsText: ssnText}

	eval, err := guard.Evaluate(context.Background(), ssnText, history, input)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if eval.Sanitization.Status != SanitizePartial {
		t.Errorf("Expected partial sanitization, got %s", eval.Sanitization.Status)
	}
	if eval.Sanitization.Attempted != 3 || eval.Sanitization.Masked != 2 {
		t.Errorf("Expected 3 attempted and 2 masked, got %+v", eval.Sanitization)
	}
	if history[1].Content[0].Text != "masked" || input.InputAsText != "masked" {
		t.Error("Expected the remaining fields to be masked")
	}
}

func TestGuard_Evaluate_SanitizationUsesPIIOnly(t *testing.T) {
	logger := zerolog.Nop()
	checker := &fakeChecker{run: func(text string, cfg *config.GuardrailsConfig) ([]CheckResult, error) {
		return nil, nil
	}}
	guard := NewGuard(checker, piiConfig(boolPtr(false)), &logger)

	history := []models.ConversationItem{models.UserText("hello")}
	if _, err := guard.Evaluate(context.Background(), "hello", history, &models.WorkflowInput{InputAsText: "hello"}); err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if len(checker.calls) != 3 {
		t.Fatalf("Expected 3 checker calls, got %d", len(checker.calls))
	}
	if len(checker.calls[0].Guardrails) != 2 {
		t.Error("Expected the first call to use the full config")
	}
	for _, cfg := range checker.calls[1:] {
		if len(cfg.Guardrails) != 1 || cfg.Guardrails[0].Name != config.CheckPII {
			t.Errorf("Expected PII-only config, got %+v", cfg.Guardrails)
		}
	}
}

func TestRunner_UnregisteredCheck(t *testing.T) {
	logger := zerolog.Nop()
	runner := NewRunner(&logger, NewPIICheck())

	_, err := runner.Run(context.Background(), "hi", &config.GuardrailsConfig{
		Guardrails: []config.GuardrailSpec{{Name: config.CheckJailbreak}},
	})
	if !errors.Is(err, ErrCheckNotRegistered) {
		t.Errorf("Expected ErrCheckNotRegistered, got %v", err)
	}
}
