package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Guardrail names understood by the checker.
const (
	CheckPII             = "Contains PII"
	CheckModeration      = "Moderation"
	CheckJailbreak       = "Jailbreak"
	CheckHallucination   = "Hallucination Detection"
	CheckNSFW            = "NSFW Text"
	CheckURLFilter       = "URL Filter"
	CheckCustomPrompt    = "Custom Prompt Check"
	CheckPromptInjection = "Prompt Injection Detection"
)

// KnownChecks lists every guardrail name in report order.
var KnownChecks = []string{
	CheckPII,
	CheckModeration,
	CheckJailbreak,
	CheckHallucination,
	CheckNSFW,
	CheckURLFilter,
	CheckCustomPrompt,
	CheckPromptInjection,
}

var (
	ErrNoGuardrails       = errors.New("no guardrails configured")
	ErrUnknownGuardrail   = errors.New("unknown guardrail")
	ErrDuplicateGuardrail = errors.New("duplicate guardrail")
)

const defaultConfidenceThreshold = 0.7

// GuardrailsConfig is the ordered list of checks run against every input.
// It is loaded once at startup and never mutated afterwards.
type GuardrailsConfig struct {
	Guardrails []GuardrailSpec `yaml:"guardrails"`
}

type GuardrailSpec struct {
	Name   string      `yaml:"name"`
	Config CheckConfig `yaml:"config"`
}

// CheckConfig carries the union of per-check settings. Each check reads
// only the fields that apply to it.
type CheckConfig struct {
	// Contains PII
	Block            *bool    `yaml:"block,omitempty"`
	DetectEncodedPII bool     `yaml:"detect_encoded_pii,omitempty"`
	Entities         []string `yaml:"entities,omitempty"`

	// Moderation
	Categories []string `yaml:"categories,omitempty"`

	// LLM-judged checks
	Model               string  `yaml:"model,omitempty"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold,omitempty"`
	SystemPromptDetails string  `yaml:"system_prompt_details,omitempty"`
	// KnowledgeSource is reference text hallucination claims are checked against.
	KnowledgeSource string `yaml:"knowledge_source,omitempty"`

	// URL Filter
	URLAllowList   []string `yaml:"url_allow_list,omitempty"`
	AllowedSchemes []string `yaml:"allowed_schemes,omitempty"`
}

// Blocks reports whether the check is configured to block.
func (c CheckConfig) Blocks() bool {
	return c.Block != nil && *c.Block
}

// Masks reports whether the check is explicitly configured to mask
// instead of block. An absent block setting neither masks nor blocks.
func (c CheckConfig) Masks() bool {
	return c.Block != nil && !*c.Block
}

func LoadGuardrailsConfig() (*GuardrailsConfig, error) {
	path := os.Getenv("GUARDRAILS_CONFIG_PATH")

	data := defaultGuardrailsYAML
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		data = raw
	}

	return ParseGuardrailsConfig(data)
}

func ParseGuardrailsConfig(data []byte) (*GuardrailsConfig, error) {
	var cfg GuardrailsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyGuardrailDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGuardrailDefaults(cfg *GuardrailsConfig) {
	for i := range cfg.Guardrails {
		spec := &cfg.Guardrails[i]
		switch spec.Name {
		case CheckJailbreak, CheckHallucination, CheckNSFW, CheckCustomPrompt, CheckPromptInjection:
			if spec.Config.ConfidenceThreshold == 0 {
				spec.Config.ConfidenceThreshold = defaultConfidenceThreshold
			}
		case CheckURLFilter:
			if len(spec.Config.AllowedSchemes) == 0 {
				spec.Config.AllowedSchemes = []string{"https"}
			}
		}
	}
}

func (c *GuardrailsConfig) Validate() error {
	if len(c.Guardrails) == 0 {
		return ErrNoGuardrails
	}

	seen := make(map[string]bool, len(c.Guardrails))
	for _, spec := range c.Guardrails {
		if !isKnownCheck(spec.Name) {
			return fmt.Errorf("%w: %q", ErrUnknownGuardrail, spec.Name)
		}
		if seen[spec.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateGuardrail, spec.Name)
		}
		seen[spec.Name] = true

		if t := spec.Config.ConfidenceThreshold; t < 0 || t > 1 {
			return fmt.Errorf("guardrail %q: invalid confidence_threshold %f", spec.Name, t)
		}
	}

	return nil
}

// Find returns the spec for the named guardrail.
func (c *GuardrailsConfig) Find(name string) (GuardrailSpec, bool) {
	if c == nil {
		return GuardrailSpec{}, false
	}
	for _, spec := range c.Guardrails {
		if spec.Name == name {
			return spec, true
		}
	}
	return GuardrailSpec{}, false
}

// Only returns a config holding just the named guardrail.
func (c *GuardrailsConfig) Only(name string) (*GuardrailsConfig, bool) {
	spec, ok := c.Find(name)
	if !ok {
		return nil, false
	}
	return &GuardrailsConfig{Guardrails: []GuardrailSpec{spec}}, true
}

// MasksPII reports whether PII is configured to be masked rather than blocked.
func (c *GuardrailsConfig) MasksPII() bool {
	spec, ok := c.Find(CheckPII)
	return ok && spec.Config.Masks()
}

func isKnownCheck(name string) bool {
	for _, known := range KnownChecks {
		if known == name {
			return true
		}
	}
	return false
}
