package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/models"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/upload"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/workflow"
	"github.com/rs/zerolog"
)

//go:generate mockgen -source=handler.go -destination=mocks/mock_handler.go -package=mocks

const (
	DefaultMessage = "evaluate"
	Version        = "1.0.0"

	messageField = "message"
	fileField    = "file"

	// multipart parts above this size are spooled to disk
	formMemoryLimit = 32 << 20

	// room for the message field and part headers on top of the file limit
	formOverhead = 1 << 20
)

var errUnsupportedContentType = errors.New("unsupported content type")

type WorkflowRunner interface {
	Run(ctx context.Context, input *models.WorkflowInput) (*workflow.Result, error)
}

type Uploader interface {
	Ingest(ctx context.Context, data []byte, name, mimeType string) (*models.UploadedFileRecord, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event models.WorkflowEvent) error
}

type Handler struct {
	workflow       WorkflowRunner
	uploader       Uploader
	publisher      EventPublisher
	maxUploadBytes int64
	logger         *zerolog.Logger
}

// NewHandler builds the chat handler. A maxUploadBytes of zero disables the
// upload size limit.
func NewHandler(workflow WorkflowRunner, uploader Uploader, publisher EventPublisher, maxUploadBytes int64, logger *zerolog.Logger) *Handler {
	return &Handler{
		workflow:       workflow,
		uploader:       uploader,
		publisher:      publisher,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

type submission struct {
	message  string
	fileName string
	mimeType string
	data     []byte
}

func (s submission) hasFile() bool {
	return s.fileName != ""
}

// POST /api/v1/chat
// Form: message (optional, defaults to "evaluate"), file (optional)
// Returns: ChatResponse
func (h *Handler) Chat(req *restful.Request, resp *restful.Response) {
	requestID := uuid.NewString()
	ctx := req.Request.Context()

	if h.maxUploadBytes > 0 {
		req.Request.Body = http.MaxBytesReader(resp.ResponseWriter, req.Request.Body, h.maxUploadBytes+formOverhead)
	}

	sub, err := readSubmission(req.Request, h.maxUploadBytes)
	if err != nil {
		h.logger.Error().Err(err).Str("request_id", requestID).Msg("Failed to read form")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("request_id", requestID).
		Str("message", sub.message).
		Bool("file", sub.hasFile()).
		Msg("Start workflow")

	var file *models.UploadedFileRecord
	if sub.hasFile() {
		file, err = h.uploader.Ingest(ctx, sub.data, sub.fileName, sub.mimeType)
		if err != nil {
			h.logger.Error().Err(err).Str("request_id", requestID).Msg("Upload failed")
			h.publish(ctx, newEvent(requestID, nil, nil, err))
			middleware.HandleError(resp, err, http.StatusInternalServerError)
			return
		}
	}

	result, err := h.workflow.Run(ctx, &models.WorkflowInput{InputAsText: sub.message})
	if err != nil {
		h.logger.Error().Err(err).Str("request_id", requestID).Msg("Workflow failed")
		h.publish(ctx, newEvent(requestID, file, nil, err))
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("request_id", requestID).
		Str("intent", string(result.Intent)).
		Str("agent", result.Agent).
		Bool("blocked", result.Blocked).
		Msg("Workflow complete")

	h.publish(ctx, newEvent(requestID, file, result, nil))

	resp.WriteHeaderAndEntity(http.StatusOK, ChatResponse{
		Success:   true,
		RequestID: requestID,
		Output:    result.Output(),
		Raw:       result.Raw(),
		File:      file,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Health handler GET API /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// publish never fails the request.
func (h *Handler) publish(ctx context.Context, event models.WorkflowEvent) {
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn().Err(err).Str("request_id", event.RequestID).Msg("Failed to publish workflow event")
	}
}

func newEvent(requestID string, file *models.UploadedFileRecord, result *workflow.Result, err error) models.WorkflowEvent {
	event := models.WorkflowEvent{
		ID:        uuid.NewString(),
		RequestID: requestID,
		CreatedAt: time.Now().UTC(),
	}
	if file != nil {
		event.FileID = file.FileID
		event.IndexStatus = file.IndexStatus
	}
	if result != nil {
		event.Intent = string(result.Intent)
		event.Agent = result.Agent
		event.Blocked = result.Blocked
	}
	if err != nil {
		event.Error = err.Error()
	}
	return event
}

// readSubmission accepts multipart and urlencoded forms. A request without a
// body or Content-Type leaves every field at its default. Files larger than
// maxFileBytes are rejected before they are read.
func readSubmission(r *http.Request, maxFileBytes int64) (submission, error) {
	sub := submission{message: DefaultMessage}

	if contentType := r.Header.Get("Content-Type"); contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return sub, fmt.Errorf("%w %q: %w", errUnsupportedContentType, contentType, err)
		}
		if mediaType != mimeMultipart && mediaType != mimeURLEncoded {
			return sub, fmt.Errorf("%w %q: expected %s or %s", errUnsupportedContentType, mediaType, mimeMultipart, mimeURLEncoded)
		}
	}

	if err := r.ParseMultipartForm(formMemoryLimit); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return sub, fmt.Errorf("failed to parse form: %w", err)
	}

	if message := r.FormValue(messageField); message != "" {
		sub.message = message
	}

	if r.MultipartForm == nil {
		return sub, nil
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[fileField]
	if len(headers) == 0 {
		return sub, nil
	}
	header := headers[0]

	if maxFileBytes > 0 && header.Size > maxFileBytes {
		return sub, fmt.Errorf("%w: %s is %d bytes (max %d)", upload.ErrFileTooLarge, header.Filename, header.Size, maxFileBytes)
	}

	f, err := header.Open()
	if err != nil {
		return sub, fmt.Errorf("failed to open %s: %w", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return sub, fmt.Errorf("failed to read %s: %w", header.Filename, err)
	}

	sub.fileName = header.Filename
	sub.mimeType = header.Header.Get("Content-Type")
	sub.data = data
	return sub, nil
}
