package agents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/config"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/models"
	"github.com/rs/zerolog"
)

const responseBody = `{
	"id": "resp_123",
	"object": "response",
	"created_at": 1741476542,
	"status": "completed",
	"model": "gpt-5.2",
	"output": [
		{"type": "reasoning", "id": "rs_1", "summary": []},
		{
			"type": "message",
			"id": "msg_1",
			"status": "completed",
			"role": "assistant",
			"content": [{"type": "output_text", "text": "Overall score: 7/10", "annotations": []}]
		}
	],
	"parallel_tool_calls": true,
	"tool_choice": "auto",
	"tools": []
}`

func newTestRunner(t *testing.T, handler http.HandlerFunc, vectorStoreID string) *ResponsesRunner {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := openai.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL+"/"),
		option.WithMaxRetries(0),
	)
	logger := zerolog.Nop()

	return NewResponsesRunner(client, vectorStoreID, config.ModelSettings{
		Model:            "gpt-5.2",
		ReasoningEffort:  "low",
		ReasoningSummary: "auto",
		Store:            true,
	}, &logger)
}

func TestResponsesRunner_Run_Evaluator(t *testing.T) {
	var captured map[string]any

	runner := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/responses" {
			t.Errorf("Expected /responses, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responseBody))
	}, "vs_abc")

	agent := config.AgentDefinition{
		Name:         "Proposal Evaluator",
		Instructions: "Evaluate strictly.",
		Tools:        []string{config.ToolFileSearch},
	}
	history := []models.ConversationItem{models.UserText("evaluate")}

	result, err := runner.Run(context.Background(), agent, history)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if result.ResponseID != "resp_123" {
		t.Errorf("Expected response id resp_123, got %s", result.ResponseID)
	}
	if result.FinalOutput != "Overall score: 7/10" {
		t.Errorf("Unexpected final output %q", result.FinalOutput)
	}
	if len(result.NewItems) != 1 || result.NewItems[0].Role != models.RoleAssistant {
		t.Errorf("Expected one assistant item, got %+v", result.NewItems)
	}

	if captured["model"] != "gpt-5.2" {
		t.Errorf("Expected model gpt-5.2, got %v", captured["model"])
	}
	if captured["instructions"] != "Evaluate strictly." {
		t.Errorf("Unexpected instructions %v", captured["instructions"])
	}
	if captured["store"] != true {
		t.Errorf("Expected store=true, got %v", captured["store"])
	}

	reasoning, _ := captured["reasoning"].(map[string]any)
	if reasoning["effort"] != "low" || reasoning["summary"] != "auto" {
		t.Errorf("Unexpected reasoning %v", reasoning)
	}

	tools, _ := captured["tools"].([]any)
	if len(tools) != 1 {
		t.Fatalf("Expected 1 tool, got %v", captured["tools"])
	}
	tool := tools[0].(map[string]any)
	if tool["type"] != "file_search" {
		t.Errorf("Expected file_search tool, got %v", tool["type"])
	}
	ids, _ := tool["vector_store_ids"].([]any)
	if len(ids) != 1 || ids[0] != "vs_abc" {
		t.Errorf("Unexpected vector store ids %v", tool["vector_store_ids"])
	}

	input, _ := captured["input"].([]any)
	if len(input) != 1 {
		t.Fatalf("Expected 1 input item, got %v", captured["input"])
	}
	msg := input[0].(map[string]any)
	if msg["role"] != "user" || msg["content"] != "evaluate" {
		t.Errorf("Unexpected input item %v", msg)
	}
}

func TestResponsesRunner_Run_WebSearchTool(t *testing.T) {
	var captured map[string]any

	runner := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responseBody))
	}, "")

	agent := config.AgentDefinition{
		Name:         "Web search Agent",
		Instructions: "Search.",
		Tools:        []string{config.ToolWebSearch},
		Model:        &config.ModelSettings{Model: "gpt-5.2-mini", ReasoningEffort: "medium", ReasoningSummary: "auto"},
	}

	if _, err := runner.Run(context.Background(), agent, []models.ConversationItem{models.UserText("Acme Corp")}); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if captured["model"] != "gpt-5.2-mini" {
		t.Errorf("Expected agent model override, got %v", captured["model"])
	}
	tools, _ := captured["tools"].([]any)
	if len(tools) != 1 || tools[0].(map[string]any)["type"] != "web_search_preview" {
		t.Errorf("Expected web search tool, got %v", captured["tools"])
	}
}

func TestResponsesRunner_Run_FileSearchWithoutVectorStore(t *testing.T) {
	var captured map[string]any

	runner := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responseBody))
	}, "")

	agent := config.AgentDefinition{Name: "Proposal Evaluator", Instructions: "x", Tools: []string{config.ToolFileSearch}}
	if _, err := runner.Run(context.Background(), agent, []models.ConversationItem{models.UserText("evaluate")}); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if _, ok := captured["tools"]; ok {
		t.Errorf("Expected no tools without a vector store, got %v", captured["tools"])
	}
}

func TestResponsesRunner_Run_APIError(t *testing.T) {
	runner := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "bad model", "type": "invalid_request_error"}}`))
	}, "vs_abc")

	agent := config.AgentDefinition{Name: "Proposal Evaluator", Instructions: "x"}
	if _, err := runner.Run(context.Background(), agent, []models.ConversationItem{models.UserText("evaluate")}); err == nil {
		t.Error("Expected error from API")
	}
}

func TestToInputItems_AssistantRole(t *testing.T) {
	items := toInputItems([]models.ConversationItem{
		models.UserText("hello"),
		models.AssistantText("hi there"),
	})

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[1].OfMessage.Role != "assistant" {
		t.Errorf("Expected assistant role, got %s", items[1].OfMessage.Role)
	}
}
