package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gcfisi/coursehub-backend/internal/http/response"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
	"github.com/gcfisi/coursehub-backend/internal/services"
)

type ResourceHandler struct {
	log            *logger.Logger
	actors         services.ActorService
	resources      services.ResourceService
	reviews        services.ReviewService
	maxUploadBytes int64
}

func NewResourceHandler(
	log *logger.Logger,
	actors services.ActorService,
	resources services.ResourceService,
	reviews services.ReviewService,
	maxUploadBytes int64,
) *ResourceHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = services.DefaultMaxUploadBytes
	}
	return &ResourceHandler{
		log:            log.With("handler", "ResourceHandler"),
		actors:         actors,
		resources:      resources,
		reviews:        reviews,
		maxUploadBytes: maxUploadBytes,
	}
}

type uploadRequest struct {
	CourseID     uuid.UUID `json:"course_id"`
	StructureID  uuid.UUID `json:"structure_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ResourceType string    `json:"resource_type"`
	URL          string    `json:"url"`
	Content      string    `json:"content"`
	Tags         []string  `json:"tags"`
}

// POST /api/resources
// JSON for link/text/video-url resources, multipart/form-data with a "file"
// part for file and uploaded video resources.
func (h *ResourceHandler) Upload(c *gin.Context) {
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}

	var in services.UploadInput
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		// leave room for the non-file form fields
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+(1<<20))
		if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", err)
				return
			}
			response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
			return
		}
		courseID, err := uuid.Parse(strings.TrimSpace(c.PostForm("course_id")))
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
			return
		}
		structureID, err := uuid.Parse(strings.TrimSpace(c.PostForm("structure_id")))
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_structure_id", err)
			return
		}
		in = services.UploadInput{
			CourseID:     courseID,
			StructureID:  structureID,
			Title:        c.PostForm("title"),
			Description:  c.PostForm("description"),
			ResourceType: strings.TrimSpace(c.PostForm("resource_type")),
			URL:          c.PostForm("url"),
			Content:      c.PostForm("content"),
			Tags:         c.PostFormArray("tags"),
		}
		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				response.RespondError(c, http.StatusBadRequest, "invalid_file", err)
				return
			}
			defer f.Close()
			in.File = f
			in.FileName = fh.Filename
			in.FileSize = fh.Size
		}
	} else {
		var req uploadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		in = services.UploadInput{
			CourseID:     req.CourseID,
			StructureID:  req.StructureID,
			Title:        req.Title,
			Description:  req.Description,
			ResourceType: strings.TrimSpace(req.ResourceType),
			URL:          req.URL,
			Content:      req.Content,
			Tags:         req.Tags,
		}
	}

	res, err := h.resources.Upload(c.Request.Context(), actor, in)
	if err != nil {
		response.RespondServiceError(c, h.log, err, "upload_resource_failed")
		return
	}
	response.RespondCreated(c, gin.H{"resource": res})
}

// GET /api/resources/:id
func (h *ResourceHandler) GetResource(c *gin.Context) {
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	details, err := h.resources.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondServiceError(c, h.log, err, "load_resource_failed")
		return
	}
	response.RespondOK(c, gin.H{"resource": details})
}

// GET /api/resources/mine
func (h *ResourceHandler) ListMine(c *gin.Context) {
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}
	rows, err := h.resources.ListMine(c.Request.Context(), actor)
	if err != nil {
		response.RespondServiceError(c, h.log, err, "load_resources_failed")
		return
	}
	response.RespondOK(c, gin.H{"resources": rows})
}

// GET /api/resources/pending?course_id=<uuid>
func (h *ResourceHandler) ListPending(c *gin.Context) {
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}
	courseID, err := optionalUUIDQuery(c, "course_id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	rows, err := h.reviews.ListPending(c.Request.Context(), actor, courseID)
	if err != nil {
		response.RespondServiceError(c, h.log, err, "load_pending_failed")
		return
	}
	response.RespondOK(c, gin.H{"resources": rows})
}

// PATCH /api/resources/:id
// body: { "title": "..." }
func (h *ResourceHandler) UpdateTitle(c *gin.Context) {
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.resources.UpdateTitle(c.Request.Context(), actor, id, req.Title)
	if err != nil {
		response.RespondServiceError(c, h.log, err, "update_resource_failed")
		return
	}
	response.RespondOK(c, gin.H{"resource": res})
}

// DELETE /api/resources/:id
func (h *ResourceHandler) DeleteResource(c *gin.Context) {
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.resources.Delete(c.Request.Context(), actor, id); err != nil {
		response.RespondServiceError(c, h.log, err, "delete_resource_failed")
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// POST /api/resources/:id/approve
func (h *ResourceHandler) Approve(c *gin.Context) {
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.reviews.Approve(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondServiceError(c, h.log, err, "approve_resource_failed")
		return
	}
	response.RespondOK(c, gin.H{"resource": res})
}

// POST /api/resources/:id/reject
// body: { "reason": "..." }
func (h *ResourceHandler) Reject(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		response.RespondError(c, http.StatusBadRequest, "reason_required", errors.New("a rejection reason is required"))
		return
	}
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}
	res, err := h.reviews.Reject(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		response.RespondServiceError(c, h.log, err, "reject_resource_failed")
		return
	}
	response.RespondOK(c, gin.H{"resource": res})
}
