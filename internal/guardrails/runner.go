package guardrails

import (
	"context"
	"errors"
	"fmt"

	"github.com/povarna/generative-ai-agents/proposal-agent/internal/config"
	"github.com/rs/zerolog"
)

var ErrCheckNotRegistered = errors.New("guardrail check not registered")

// Check runs a single guardrail against text.
type Check interface {
	Name() string
	Run(ctx context.Context, text string, cfg config.CheckConfig) (CheckResult, error)
}

// Checker runs every guardrail in cfg and returns one result per guardrail,
// in configuration order.
type Checker interface {
	Run(ctx context.Context, text string, cfg *config.GuardrailsConfig) ([]CheckResult, error)
}

type Runner struct {
	checks map[string]Check
	logger *zerolog.Logger
}

func NewRunner(logger *zerolog.Logger, checks ...Check) *Runner {
	registry := make(map[string]Check, len(checks))
	for _, c := range checks {
		registry[c.Name()] = c
	}
	return &Runner{
		checks: registry,
		logger: logger,
	}
}

// Run executes the configured checks one after another. The first check that
// fails to execute aborts the run.
func (r *Runner) Run(ctx context.Context, text string, cfg *config.GuardrailsConfig) ([]CheckResult, error) {
	if cfg == nil {
		return nil, config.ErrNoGuardrails
	}

	results := make([]CheckResult, 0, len(cfg.Guardrails))
	for _, spec := range cfg.Guardrails {
		check, ok := r.checks[spec.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrCheckNotRegistered, spec.Name)
		}

		result, err := check.Run(ctx, text, spec.Config)
		if err != nil {
			return nil, fmt.Errorf("guardrail %q failed: %w", spec.Name, err)
		}
		result.Name = spec.Name

		r.logger.Debug().
			Str("guardrail", spec.Name).
			Bool("tripwire", result.TripwireTriggered).
			Msg("guardrail completed")

		results = append(results, result)
	}

	return results, nil
}
