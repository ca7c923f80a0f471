package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func HandleError(resp *restful.Response, err error, status int) {
	message := http.StatusText(status)
	if err != nil {
		message = err.Error()
	}

	if writeErr := resp.WriteHeaderAndEntity(status, ErrorResponse{
		Success: false,
		Error:   message,
	}); writeErr != nil {
		log.Error().Err(writeErr).Msg("Failed to write error response")
	}
}

// HandleServiceError renders routing failures (404, 405, 406, 415) as an
// ErrorResponse. No route was selected, so the entity is written as JSON
// directly instead of through content negotiation.
func HandleServiceError(serviceErr restful.ServiceError, req *restful.Request, resp *restful.Response) {
	for header, values := range serviceErr.Header {
		for _, value := range values {
			resp.Header().Add(header, value)
		}
	}

	if writeErr := resp.WriteHeaderAndJson(serviceErr.Code, ErrorResponse{
		Success: false,
		Error:   serviceErr.Message,
	}, restful.MIME_JSON); writeErr != nil {
		log.Error().Err(writeErr).Msg("Failed to write error response")
	}
}

// Logger logs one line per request once the chain has run.
func Logger(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()

	chain.ProcessFilter(req, resp)

	log.Info().
		Str("method", req.Request.Method).
		Str("path", req.Request.URL.Path).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("request")
}

// RecoverPanic converts a panic in a handler into a 500 error response.
func RecoverPanic(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("path", req.Request.URL.Path).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from panic")
			HandleError(resp, fmt.Errorf("internal server error"), http.StatusInternalServerError)
		}
	}()

	chain.ProcessFilter(req, resp)
}
