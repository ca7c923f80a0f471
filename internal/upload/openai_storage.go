package upload

import (
	"bytes"
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/models"
)

// OpenAIStorage stores files with the OpenAI Files API and indexes them in a
// vector store.
type OpenAIStorage struct {
	client openai.Client
}

func NewOpenAIStorage(client openai.Client) *OpenAIStorage {
	return &OpenAIStorage{client: client}
}

func (s *OpenAIStorage) Upload(ctx context.Context, data []byte, name, mimeType string) (string, error) {
	file, err := s.client.Files.New(ctx, openai.FileNewParams{
		File:    openai.File(bytes.NewReader(data), name, mimeType),
		Purpose: openai.FilePurposeAssistants,
	})
	if err != nil {
		return "", fmt.Errorf("files API: %w", err)
	}
	return file.ID, nil
}

func (s *OpenAIStorage) AttachToIndex(ctx context.Context, indexID, fileID string) (string, error) {
	vsFile, err := s.client.VectorStores.Files.New(ctx, indexID, openai.VectorStoreFileNewParams{
		FileID: fileID,
	})
	if err != nil {
		return "", fmt.Errorf("vector store files API: %w", err)
	}
	return vsFile.ID, nil
}

func (s *OpenAIStorage) IndexStatus(ctx context.Context, indexID, membershipID string) (models.IndexStatus, error) {
	vsFile, err := s.client.VectorStores.Files.Get(ctx, indexID, membershipID)
	if err != nil {
		return models.IndexStatusUnknown, fmt.Errorf("vector store files API: %w", err)
	}
	return mapStatus(vsFile.Status), nil
}

func mapStatus(status openai.VectorStoreFileStatus) models.IndexStatus {
	switch status {
	case openai.VectorStoreFileStatusInProgress:
		return models.IndexStatusPending
	case openai.VectorStoreFileStatusCompleted:
		return models.IndexStatusCompleted
	case openai.VectorStoreFileStatusFailed, openai.VectorStoreFileStatusCancelled:
		return models.IndexStatusFailed
	default:
		return models.IndexStatusUnknown
	}
}
