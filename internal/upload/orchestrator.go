package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/povarna/generative-ai-agents/proposal-agent/internal/models"
	"github.com/rs/zerolog"
)

var ErrFileTooLarge = errors.New("file exceeds upload limit")

const (
	DefaultPollInterval = time.Second
	DefaultPollTimeout  = 30 * time.Second

	defaultMimeType = "application/octet-stream"
)

// RemoteStorage is the file store and search index files are ingested into.
type RemoteStorage interface {
	Upload(ctx context.Context, data []byte, name, mimeType string) (string, error)
	AttachToIndex(ctx context.Context, indexID, fileID string) (string, error)
	IndexStatus(ctx context.Context, indexID, membershipID string) (models.IndexStatus, error)
}

type Options struct {
	IndexID      string
	PollInterval time.Duration
	PollTimeout  time.Duration
	MaxBytes     int64
}

// Orchestrator uploads a file, registers it with the search index and waits
// a bounded time for indexing to finish.
type Orchestrator struct {
	storage RemoteStorage
	opts    Options
	logger  *zerolog.Logger
}

func NewOrchestrator(storage RemoteStorage, opts Options, logger *zerolog.Logger) *Orchestrator {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = DefaultPollTimeout
	}
	return &Orchestrator{
		storage: storage,
		opts:    opts,
		logger:  logger,
	}
}

// Ingest never waits on indexing longer than the poll timeout. Timeouts,
// failed polls and missing identifiers yield status "unknown" rather than an
// error; only upload and registration failures are returned.
func (o *Orchestrator) Ingest(ctx context.Context, data []byte, name, mimeType string) (*models.UploadedFileRecord, error) {
	record := &models.UploadedFileRecord{
		Name:     name,
		Size:     int64(len(data)),
		MimeType: mimeType,
	}

	if o.opts.MaxBytes > 0 && record.Size > o.opts.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, record.Size, o.opts.MaxBytes)
	}

	o.logger.Info().Str("file", name).Int64("size", record.Size).Msg("file received")

	uploadType := mimeType
	if uploadType == "" {
		uploadType = defaultMimeType
	}

	fileID, err := o.storage.Upload(ctx, data, name, uploadType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file %s: %w", name, err)
	}
	record.FileID = fileID

	if o.opts.IndexID == "" || fileID == "" {
		record.IndexStatus = models.IndexStatusUnknown
		return record, nil
	}

	membershipID, err := o.storage.AttachToIndex(ctx, o.opts.IndexID, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to add file %s to index: %w", fileID, err)
	}
	record.IndexFileID = membershipID

	if membershipID == "" {
		record.IndexStatus = models.IndexStatusUnknown
		return record, nil
	}

	record.IndexStatus = o.waitForIndex(ctx, membershipID)

	o.logger.Info().
		Str("file_id", record.FileID).
		Str("index_file_id", record.IndexFileID).
		Str("status", string(record.IndexStatus)).
		Msg("file ingested")

	return record, nil
}

// waitForIndex polls until the membership reaches a terminal state. A failed
// poll stops polling immediately.
func (o *Orchestrator) waitForIndex(ctx context.Context, membershipID string) models.IndexStatus {
	deadline := time.Now().Add(o.opts.PollTimeout)

	for {
		status, err := o.storage.IndexStatus(ctx, o.opts.IndexID, membershipID)
		if err != nil {
			o.logger.Warn().Err(err).Str("index_file_id", membershipID).Msg("index status poll failed")
			return models.IndexStatusUnknown
		}
		if status.Terminal() {
			return status
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return models.IndexStatusUnknown
		}

		timer := time.NewTimer(min(o.opts.PollInterval, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			return models.IndexStatusUnknown
		case <-timer.C:
		}
	}
}
