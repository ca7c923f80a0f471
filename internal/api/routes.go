package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/api/middleware"
)

const (
	mimeMultipart  = "multipart/form-data"
	mimeURLEncoded = "application/x-www-form-urlencoded"
	mimeAny        = "*/*"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	container.ServiceErrorHandler(middleware.HandleServiceError)

	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/chat").
			To(handler.Chat).
			Doc("Run the proposal workflow on a message and optional document").
			Metadata(restfulspec.KeyOpenAPITags, []string{"chat"}).
			// other media types reach Chat and fail there with a JSON error
			Consumes(mimeMultipart, mimeURLEncoded, mimeAny).
			Param(ws.FormParameter(messageField, "User message (default: evaluate)").DataType("string").Required(false)).
			Param(ws.FormParameter(fileField, "Document to evaluate").DataType("file").Required(false)).
			Writes(ChatResponse{}).
			Returns(200, "OK", ChatResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}
