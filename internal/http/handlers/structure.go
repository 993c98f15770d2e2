package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gcfisi/coursehub-backend/internal/http/response"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
	"github.com/gcfisi/coursehub-backend/internal/services"
)

type StructureHandler struct {
	log       *logger.Logger
	actors    services.ActorService
	structure services.StructureService
}

func NewStructureHandler(log *logger.Logger, actors services.ActorService, structure services.StructureService) *StructureHandler {
	return &StructureHandler{
		log:       log.With("handler", "StructureHandler"),
		actors:    actors,
		structure: structure,
	}
}

// GET /api/courses/:id/structure
func (h *StructureHandler) GetTree(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	tree, err := h.structure.GetTree(c.Request.Context(), courseID)
	if err != nil {
		response.RespondServiceError(c, h.log, err, "load_structure_failed")
		return
	}
	response.RespondOK(c, gin.H{
		"structure":  tree,
		"node_count": services.CountStructureNodes(tree),
	})
}

// POST /api/courses/:id/structure/default?force=true
func (h *StructureHandler) GenerateDefault(c *gin.Context) {
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))
	res, err := h.structure.Generate(c.Request.Context(), actor, courseID, force)
	if err != nil {
		response.RespondServiceError(c, h.log, err, "generate_structure_failed")
		return
	}
	response.RespondCreated(c, gin.H{"result": res})
}

// POST /api/courses/:id/structure/reset
func (h *StructureHandler) Reset(c *gin.Context) {
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.structure.Reset(c.Request.Context(), actor, courseID)
	if err != nil {
		if errors.Is(err, services.ErrResetNotConverged) && res != nil {
			h.log.Error("structure reset needs manual cleanup", "course_id", courseID, "attempts", res.Attempts)
		}
		response.RespondServiceError(c, h.log, err, "reset_structure_failed")
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}

type createNodeRequest struct {
	ParentID      *uuid.UUID `json:"parent_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	StructureType string     `json:"structure_type"`
	OrderIndex    *int       `json:"order_index"`
}

// POST /api/courses/:id/structure/nodes
func (h *StructureHandler) CreateNode(c *gin.Context) {
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req createNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	node, err := h.structure.CreateNode(c.Request.Context(), actor, courseID, services.CreateNodeInput{
		ParentID:      req.ParentID,
		Name:          req.Name,
		Description:   req.Description,
		StructureType: req.StructureType,
		OrderIndex:    req.OrderIndex,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err, "create_node_failed")
		return
	}
	response.RespondCreated(c, gin.H{"node": node})
}

type updateNodeRequest struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	StructureType *string    `json:"structure_type"`
	OrderIndex    *int       `json:"order_index"`
	ParentID      *uuid.UUID `json:"parent_id"`
	MakeRoot      bool       `json:"make_root"`
}

// PUT /api/structure-nodes/:id
func (h *StructureHandler) UpdateNode(c *gin.Context) {
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}
	nodeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req updateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	node, err := h.structure.UpdateNode(c.Request.Context(), actor, nodeID, services.UpdateNodeInput{
		Name:          req.Name,
		Description:   req.Description,
		StructureType: req.StructureType,
		OrderIndex:    req.OrderIndex,
		ParentID:      req.ParentID,
		MakeRoot:      req.MakeRoot,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err, "update_node_failed")
		return
	}
	response.RespondOK(c, gin.H{"node": node})
}

// DELETE /api/structure-nodes/:id
func (h *StructureHandler) DeleteNode(c *gin.Context) {
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}
	nodeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	deleted, err := h.structure.DeleteNode(c.Request.Context(), actor, nodeID)
	if err != nil {
		response.RespondServiceError(c, h.log, err, "delete_node_failed")
		return
	}
	response.RespondOK(c, gin.H{"deleted": deleted})
}
