package workflow

import (
	"context"
	"fmt"

	"github.com/povarna/generative-ai-agents/proposal-agent/internal/config"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/guardrails"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/models"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=dispatcher.go -destination=mocks/mock_dispatcher.go -package=mocks

// Guard checks input before any agent sees it.
type Guard interface {
	Evaluate(ctx context.Context, text string, history []models.ConversationItem, input *models.WorkflowInput) (*guardrails.Evaluation, error)
}

// AgentRunner executes one agent persona against the conversation.
type AgentRunner interface {
	Run(ctx context.Context, agent config.AgentDefinition, history []models.ConversationItem) (*models.AgentRunResult, error)
}

type Result struct {
	Intent        Intent
	Agent         string
	Blocked       bool
	OutputText    string
	FailureReport *guardrails.FailureReport
	Sanitization  guardrails.SanitizeOutcome
	History       []models.ConversationItem
}

type textOutput struct {
	OutputText string `json:"output_text"`
}

// Output is what the caller shows the user: the failure report when the
// input was blocked, otherwise the agent's text.
func (r *Result) Output() any {
	if r.Blocked {
		return r.FailureReport
	}
	return r.OutputText
}

// Raw is the unformatted workflow result.
func (r *Result) Raw() any {
	if r.Blocked {
		return r.FailureReport
	}
	return textOutput{OutputText: r.OutputText}
}

type Dispatcher struct {
	guard  Guard
	runner AgentRunner
	agents *config.AgentsConfig
	logger *zerolog.Logger
}

func NewDispatcher(guard Guard, runner AgentRunner, agents *config.AgentsConfig, logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		guard:  guard,
		runner: runner,
		agents: agents,
		logger: logger,
	}
}

// Run guards the input, picks an agent by intent and returns its output.
// A blocked input returns the failure report without invoking any agent.
func (d *Dispatcher) Run(ctx context.Context, input *models.WorkflowInput) (*Result, error) {
	ctx, span := otel.Tracer("proposal-agent/workflow").Start(ctx, d.agents.Workflow.Name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("workflow_id", d.agents.Workflow.ID),
			attribute.String("trace_source", d.agents.Workflow.TraceSource),
		),
	)
	defer span.End()

	history := []models.ConversationItem{models.UserText(input.InputAsText)}

	eval, err := d.guard.Evaluate(ctx, input.InputAsText, history, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if eval.Blocked {
		span.SetAttributes(attribute.Bool("blocked", true))
		d.logger.Warn().Msg("input blocked by guardrails")
		return &Result{
			Blocked:       true,
			FailureReport: &eval.FailureReport,
			Sanitization:  eval.Sanitization,
			History:       history,
		}, nil
	}

	intent := Classify(input.InputAsText)
	agent := d.agents.WebSearch
	if intent == IntentEvaluate {
		agent = d.agents.Evaluator
	}

	span.SetAttributes(
		attribute.Bool("blocked", false),
		attribute.String("intent", string(intent)),
		attribute.String("agent", agent.Name),
	)
	d.logger.Info().
		Str("intent", string(intent)).
		Str("agent", agent.Name).
		Msg("dispatching workflow")

	run, err := d.runner.Run(ctx, agent, history)
	if err != nil {
		err = fmt.Errorf("agent %s failed: %w", agent.Name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	history = append(history, run.NewItems...)

	output := run.FinalOutput
	if output == "" {
		output = agent.FallbackOutput
	}

	return &Result{
		Intent:       intent,
		Agent:        agent.Name,
		OutputText:   output,
		Sanitization: eval.Sanitization,
		History:      history,
	}, nil
}
