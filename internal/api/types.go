package api

import (
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/models"
)

// ChatResponse is returned for every workflow run, blocked or not. Output
// holds the failure report when a guardrail blocked the message.
type ChatResponse struct {
	Success   bool                       `json:"success"`
	RequestID string                     `json:"request_id"`
	Output    any                        `json:"output"`
	Raw       any                        `json:"raw"`
	File      *models.UploadedFileRecord `json:"file"`
	Timestamp string                     `json:"timestamp"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
