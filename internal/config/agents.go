package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	ToolFileSearch = "file_search"
	ToolWebSearch  = "web_search"
)

var ErrEmptyInstructions = errors.New("agent instructions are empty")

// AgentsConfig holds the two agent personas and the settings shared by every run.
type AgentsConfig struct {
	Workflow  WorkflowSettings `yaml:"workflow"`
	Model     ModelSettings    `yaml:"model"`
	Evaluator AgentDefinition  `yaml:"evaluator"`
	WebSearch AgentDefinition  `yaml:"web_search"`
}

type WorkflowSettings struct {
	Name        string `yaml:"name"`
	ID          string `yaml:"id"`
	TraceSource string `yaml:"trace_source"`
}

type ModelSettings struct {
	Model            string `yaml:"model"`
	ReasoningEffort  string `yaml:"reasoning_effort"`
	ReasoningSummary string `yaml:"reasoning_summary"`
	Store            bool   `yaml:"store"`
}

// AgentDefinition is a named persona: instructions plus declared tools.
type AgentDefinition struct {
	Name           string         `yaml:"name"`
	Instructions   string         `yaml:"instructions"`
	Tools          []string       `yaml:"tools"`
	FallbackOutput string         `yaml:"fallback_output"`
	Model          *ModelSettings `yaml:"model,omitempty"`
}

// HasTool reports whether the agent declares the named tool.
func (a AgentDefinition) HasTool(name string) bool {
	for _, tool := range a.Tools {
		if tool == name {
			return true
		}
	}
	return false
}

func LoadAgentsConfig() (*AgentsConfig, error) {
	path := os.Getenv("AGENTS_CONFIG_PATH")

	data := defaultAgentsYAML
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		data = raw
	}

	return ParseAgentsConfig(data)
}

func ParseAgentsConfig(data []byte) (*AgentsConfig, error) {
	var cfg AgentsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyAgentDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyAgentDefaults(cfg *AgentsConfig) {
	if cfg.Workflow.Name == "" {
		cfg.Workflow.Name = "Proposal Evaluator"
	}
	if cfg.Workflow.TraceSource == "" {
		cfg.Workflow.TraceSource = "agent-builder"
	}
	if cfg.Model.Model == "" {
		cfg.Model.Model = "gpt-5.2"
	}
	if cfg.Model.ReasoningEffort == "" {
		cfg.Model.ReasoningEffort = "low"
	}
	if cfg.Model.ReasoningSummary == "" {
		cfg.Model.ReasoningSummary = "auto"
	}

	if cfg.Evaluator.FallbackOutput == "" {
		cfg.Evaluator.FallbackOutput = "No evaluation result"
	}
	if cfg.WebSearch.FallbackOutput == "" {
		cfg.WebSearch.FallbackOutput = "No response received"
	}

	// Per-agent overrides inherit whatever they leave unset.
	for _, agent := range []*AgentDefinition{&cfg.Evaluator, &cfg.WebSearch} {
		if agent.Model == nil {
			model := cfg.Model
			agent.Model = &model
			continue
		}
		if agent.Model.Model == "" {
			agent.Model.Model = cfg.Model.Model
		}
		if agent.Model.ReasoningEffort == "" {
			agent.Model.ReasoningEffort = cfg.Model.ReasoningEffort
		}
		if agent.Model.ReasoningSummary == "" {
			agent.Model.ReasoningSummary = cfg.Model.ReasoningSummary
		}
	}
}

func (c *AgentsConfig) Validate() error {
	for _, agent := range []AgentDefinition{c.Evaluator, c.WebSearch} {
		if agent.Name == "" {
			return fmt.Errorf("agent missing name")
		}
		if agent.Instructions == "" {
			return fmt.Errorf("agent %q: %w", agent.Name, ErrEmptyInstructions)
		}
		for _, tool := range agent.Tools {
			if tool != ToolFileSearch && tool != ToolWebSearch {
				return fmt.Errorf("agent %q: unsupported tool %q", agent.Name, tool)
			}
		}
	}
	return nil
}
