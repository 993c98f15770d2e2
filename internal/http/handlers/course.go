package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gcfisi/coursehub-backend/internal/http/response"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
	"github.com/gcfisi/coursehub-backend/internal/services"
)

type CourseHandler struct {
	log       *logger.Logger
	actors    services.ActorService
	courses   services.CourseService
	structure services.StructureService
}

func NewCourseHandler(log *logger.Logger, actors services.ActorService, courses services.CourseService, structure services.StructureService) *CourseHandler {
	return &CourseHandler{
		log:       log.With("handler", "CourseHandler"),
		actors:    actors,
		courses:   courses,
		structure: structure,
	}
}

type courseRequest struct {
	Code               *string    `json:"code"`
	Name               *string    `json:"name"`
	Description        *string    `json:"description"`
	CurrentSyllabusURL *string    `json:"current_syllabus_url"`
	CoordinatorID      *uuid.UUID `json:"coordinator_id"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GET /api/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, h.log, err, "load_courses_failed")
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// GET /api/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	course, err := h.courses.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, h.log, err, "load_course_failed")
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// POST /api/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	course, err := h.courses.Create(c.Request.Context(), actor, services.CourseInput{
		Code:               deref(req.Code),
		Name:               deref(req.Name),
		Description:        deref(req.Description),
		CurrentSyllabusURL: deref(req.CurrentSyllabusURL),
		CoordinatorID:      req.CoordinatorID,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err, "create_course_failed")
		return
	}
	response.RespondCreated(c, gin.H{"course": course})
}

// PUT /api/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	course, err := h.courses.Update(c.Request.Context(), actor, id, services.CourseUpdate{
		Code:               req.Code,
		Name:               req.Name,
		Description:        req.Description,
		CurrentSyllabusURL: req.CurrentSyllabusURL,
		CoordinatorID:      req.CoordinatorID,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err, "update_course_failed")
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// DELETE /api/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.courses.Delete(c.Request.Context(), actor, id); err != nil {
		response.RespondServiceError(c, h.log, err, "delete_course_failed")
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// GET /api/courses/structure-status?ids=<uuid>,<uuid>
// Without ids every course is reported.
func (h *CourseHandler) StructureStatus(c *gin.Context) {
	ids, err := uuidQueryList(c, "ids")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_ids", err)
		return
	}
	if len(ids) == 0 {
		courses, err := h.courses.List(c.Request.Context())
		if err != nil {
			response.RespondServiceError(c, h.log, err, "load_courses_failed")
			return
		}
		for _, course := range courses {
			ids = append(ids, course.ID)
		}
	}
	status, err := h.structure.StructureStatus(c.Request.Context(), ids)
	if err != nil {
		response.RespondServiceError(c, h.log, err, "structure_status_failed")
		return
	}
	out := make(map[string]bool, len(status))
	for id, has := range status {
		out[id.String()] = has
	}
	response.RespondOK(c, gin.H{"structure_status": out})
}
