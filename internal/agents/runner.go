package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/config"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/models"
	"github.com/rs/zerolog"
)

// ResponsesRunner runs agent personas through the OpenAI Responses API.
type ResponsesRunner struct {
	client        openai.Client
	vectorStoreID string
	defaults      config.ModelSettings
	logger        *zerolog.Logger
}

func NewResponsesRunner(client openai.Client, vectorStoreID string, defaults config.ModelSettings, logger *zerolog.Logger) *ResponsesRunner {
	return &ResponsesRunner{
		client:        client,
		vectorStoreID: vectorStoreID,
		defaults:      defaults,
		logger:        logger,
	}
}

func (r *ResponsesRunner) Run(ctx context.Context, agent config.AgentDefinition, history []models.ConversationItem) (*models.AgentRunResult, error) {
	settings := r.defaults
	if agent.Model != nil {
		settings = *agent.Model
	}

	params := responses.ResponseNewParams{
		Model:        settings.Model,
		Instructions: openai.String(agent.Instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: toInputItems(history),
		},
		Tools: r.tools(agent),
		Store: openai.Bool(settings.Store),
		Reasoning: shared.ReasoningParam{
			Effort:  shared.ReasoningEffort(settings.ReasoningEffort),
			Summary: shared.ReasoningSummary(settings.ReasoningSummary),
		},
	}

	resp, err := r.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("responses request failed: %w", err)
	}

	r.logger.Debug().
		Str("agent", agent.Name).
		Str("response_id", resp.ID).
		Msg("agent run completed")

	return &models.AgentRunResult{
		ResponseID:  resp.ID,
		NewItems:    outputItems(resp),
		FinalOutput: resp.OutputText(),
	}, nil
}

func (r *ResponsesRunner) tools(agent config.AgentDefinition) []responses.ToolUnionParam {
	var tools []responses.ToolUnionParam

	if agent.HasTool(config.ToolFileSearch) {
		if r.vectorStoreID == "" {
			r.logger.Warn().Str("agent", agent.Name).Msg("file_search declared but no vector store configured")
		} else {
			tools = append(tools, responses.ToolUnionParam{
				OfFileSearch: &responses.FileSearchToolParam{
					VectorStoreIDs: []string{r.vectorStoreID},
				},
			})
		}
	}

	if agent.HasTool(config.ToolWebSearch) {
		tools = append(tools, responses.ToolUnionParam{
			OfWebSearchPreview: &responses.WebSearchToolParam{
				Type: responses.WebSearchToolTypeWebSearchPreview,
			},
		})
	}

	return tools
}

func toInputItems(history []models.ConversationItem) responses.ResponseInputParam {
	items := make(responses.ResponseInputParam, 0, len(history))
	for _, item := range history {
		role := responses.EasyInputMessageRoleUser
		if item.Role == models.RoleAssistant {
			role = responses.EasyInputMessageRoleAssistant
		}

		items = append(items, responses.ResponseInputItemUnionParam{
			OfMessage: &responses.EasyInputMessageParam{
				Role: role,
				Content: responses.EasyInputMessageContentUnionParam{
					OfString: openai.String(joinText(item.Content)),
				},
			},
		})
	}
	return items
}

func joinText(parts []models.ContentPart) string {
	texts := make([]string, 0, len(parts))
	for _, part := range parts {
		texts = append(texts, part.Text)
	}
	return strings.Join(texts, "\n")
}

// outputItems converts the assistant messages of a response into
// conversation items; tool calls and reasoning items are dropped.
func outputItems(resp *responses.Response) []models.ConversationItem {
	var items []models.ConversationItem
	for _, out := range resp.Output {
		if out.Type != "message" {
			continue
		}

		var parts []models.ContentPart
		for _, content := range out.Content {
			if content.Type == "output_text" {
				parts = append(parts, models.ContentPart{Type: models.ContentOutputText, Text: content.Text})
			}
		}
		if len(parts) == 0 {
			continue
		}

		items = append(items, models.ConversationItem{Role: models.RoleAssistant, Content: parts})
	}
	return items
}
