package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/gcfisi/coursehub-backend/internal/http/response"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
	"github.com/gcfisi/coursehub-backend/internal/services"
)

type UserHandler struct {
	log    *logger.Logger
	actors services.ActorService
}

func NewUserHandler(log *logger.Logger, actors services.ActorService) *UserHandler {
	return &UserHandler{
		log:    log.With("handler", "UserHandler"),
		actors: actors,
	}
}

// GET /api/me
func (h *UserHandler) GetMe(c *gin.Context) {
	actor, ok := requireActor(c, h.log, h.actors)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{
		"me": gin.H{
			"id":                   actor.UserID,
			"role":                 actor.Role,
			"can_upload":           actor.CanUpload(),
			"can_review":           actor.CanReview(),
			"can_manage_structure": actor.CanManageStructure(),
		},
	})
}
