package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/gcfisi/coursehub-backend/internal/http/response"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
	"github.com/gcfisi/coursehub-backend/internal/services"
)

type ContentHandler struct {
	log     *logger.Logger
	actors  services.ActorService
	content services.ContentService
}

func NewContentHandler(log *logger.Logger, actors services.ActorService, content services.ContentService) *ContentHandler {
	return &ContentHandler{
		log:     log.With("handler", "ContentHandler"),
		actors:  actors,
		content: content,
	}
}

// GET /api/courses/:id/content
func (h *ContentHandler) CourseContent(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	content, err := h.content.CourseContent(c.Request.Context(), courseID, nil)
	if err != nil {
		response.RespondServiceError(c, h.log, err, "load_content_failed")
		return
	}
	response.RespondOK(c, content)
}

// GET /api/courses/:id/content/reviewed
func (h *ContentHandler) ReviewedContent(c *gin.Context) {
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	content, err := h.content.ReviewedContent(c.Request.Context(), actor, courseID)
	if err != nil {
		response.RespondServiceError(c, h.log, err, "load_content_failed")
		return
	}
	response.RespondOK(c, content)
}
