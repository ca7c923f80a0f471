package mcpadapter

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/guardrails"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/models"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/workflow"
)

const defaultMessage = "evaluate"

var ErrMissingPath = errors.New("file_path is required")

type WorkflowRunner interface {
	Run(ctx context.Context, input *models.WorkflowInput) (*workflow.Result, error)
}

type Uploader interface {
	Ingest(ctx context.Context, data []byte, name, mimeType string) (*models.UploadedFileRecord, error)
}

// RunWorkflowInput is the MCP tool input schema (matches the HTTP form fields).
type RunWorkflowInput struct {
	Message  string `json:"message,omitempty" jsonschema:"user message, defaults to evaluate"`
	FilePath string `json:"file_path,omitempty" jsonschema:"optional local document to upload before running"`
}

type RunWorkflowOutput struct {
	Intent        string                     `json:"intent"`
	Agent         string                     `json:"agent,omitempty"`
	Blocked       bool                       `json:"blocked"`
	OutputText    string                     `json:"output_text,omitempty"`
	FailureReport *guardrails.FailureReport  `json:"failure_report,omitempty"`
	File          *models.UploadedFileRecord `json:"file,omitempty"`
}

type IngestFileInput struct {
	FilePath string `json:"file_path" jsonschema:"local document to upload and index"`
}

type IngestFileOutput struct {
	File models.UploadedFileRecord `json:"file"`
}

// NewRunWorkflowHandler returns a tool handler that uploads the optional file
// and runs one workflow. Pass the returned function to mcp.AddTool.
func NewRunWorkflowHandler(runner WorkflowRunner, uploader Uploader) func(context.Context, *mcp.CallToolRequest, RunWorkflowInput) (*mcp.CallToolResult, RunWorkflowOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RunWorkflowInput) (*mcp.CallToolResult, RunWorkflowOutput, error) {
		return RunWorkflow(ctx, runner, uploader, input)
	}
}

func RunWorkflow(
	ctx context.Context,
	runner WorkflowRunner,
	uploader Uploader,
	input RunWorkflowInput,
) (*mcp.CallToolResult, RunWorkflowOutput, error) {
	var output RunWorkflowOutput

	if input.FilePath != "" {
		record, err := ingestPath(ctx, uploader, input.FilePath)
		if err != nil {
			return nil, output, err
		}
		output.File = record
	}

	message := input.Message
	if message == "" {
		message = defaultMessage
	}

	result, err := runner.Run(ctx, &models.WorkflowInput{InputAsText: message})
	if err != nil {
		return nil, output, err
	}

	output.Intent = string(result.Intent)
	output.Agent = result.Agent
	output.Blocked = result.Blocked
	if result.Blocked {
		output.FailureReport = result.FailureReport
	} else {
		output.OutputText = result.OutputText
	}
	return nil, output, nil
}

// NewIngestFileHandler returns a tool handler that uploads and indexes a file.
// Pass the returned function to mcp.AddTool.
func NewIngestFileHandler(uploader Uploader) func(context.Context, *mcp.CallToolRequest, IngestFileInput) (*mcp.CallToolResult, IngestFileOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input IngestFileInput) (*mcp.CallToolResult, IngestFileOutput, error) {
		if input.FilePath == "" {
			return nil, IngestFileOutput{}, ErrMissingPath
		}
		record, err := ingestPath(ctx, uploader, input.FilePath)
		if err != nil {
			return nil, IngestFileOutput{}, err
		}
		return nil, IngestFileOutput{File: *record}, nil
	}
}

func ingestPath(ctx context.Context, uploader Uploader, path string) (*models.UploadedFileRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	name := filepath.Base(path)
	return uploader.Ingest(ctx, data, name, mime.TypeByExtension(filepath.Ext(name)))
}
