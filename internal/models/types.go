package models

import (
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ContentType string

const (
	ContentInputText  ContentType = "input_text"
	ContentOutputText ContentType = "output_text"
)

// ContentPart is one piece of a conversation item. Only text parts carry Text.
type ContentPart struct {
	Type ContentType `json:"type"`
	Text string      `json:"text"`
}

// ConversationItem is a single turn of the request-scoped conversation.
type ConversationItem struct {
	Role    Role          `json:"role"`
	Content []ContentPart `json:"content"`
}

// UserText builds a user turn holding a single input_text part.
func UserText(text string) ConversationItem {
	return ConversationItem{
		Role:    RoleUser,
		Content: []ContentPart{{Type: ContentInputText, Text: text}},
	}
}

// AssistantText builds an assistant turn holding a single output_text part.
func AssistantText(text string) ConversationItem {
	return ConversationItem{
		Role:    RoleAssistant,
		Content: []ContentPart{{Type: ContentOutputText, Text: text}},
	}
}

// WorkflowInput is the user's message for the current turn.
type WorkflowInput struct {
	InputAsText string `json:"input_as_text" jsonschema:"the user's message for this turn"`
}

// TextField returns a pointer to the named text field, if the input has one.
func (w *WorkflowInput) TextField(name string) (*string, bool) {
	if w == nil {
		return nil, false
	}
	switch name {
	case "input_as_text":
		return &w.InputAsText, true
	default:
		return nil, false
	}
}

// AgentRunResult is what the remote agent runtime hands back for one run.
type AgentRunResult struct {
	ResponseID  string
	NewItems    []ConversationItem
	FinalOutput string
}

type IndexStatus string

const (
	IndexStatusPending   IndexStatus = "pending"
	IndexStatusCompleted IndexStatus = "completed"
	IndexStatusFailed    IndexStatus = "failed"
	IndexStatusUnknown   IndexStatus = "unknown"
)

// Terminal reports whether indexing has finished one way or the other.
func (s IndexStatus) Terminal() bool {
	return s == IndexStatusCompleted || s == IndexStatusFailed
}

// UploadedFileRecord tracks a file attached to a single request.
type UploadedFileRecord struct {
	Name        string      `json:"name"`
	Size        int64       `json:"size"`
	MimeType    string      `json:"type"`
	FileID      string      `json:"openai_file_id,omitempty"`
	IndexFileID string      `json:"vector_store_file_id,omitempty"`
	IndexStatus IndexStatus `json:"vector_store_status,omitempty"`
}

// WorkflowEvent is published after every workflow run.
type WorkflowEvent struct {
	ID          string      `json:"id"`
	RequestID   string      `json:"request_id"`
	Intent      string      `json:"intent,omitempty"`
	Agent       string      `json:"agent,omitempty"`
	Blocked     bool        `json:"blocked"`
	FileID      string      `json:"file_id,omitempty"`
	IndexStatus IndexStatus `json:"index_status,omitempty"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
