package config

import _ "embed"

//go:embed defaults/guardrails.yaml
var defaultGuardrailsYAML []byte

//go:embed defaults/agents.yaml
var defaultAgentsYAML []byte
