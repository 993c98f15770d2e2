package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gcfisi/coursehub-backend/internal/http/response"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
	"github.com/gcfisi/coursehub-backend/internal/services"
)

// requireActor resolves the caller's profile, writing the error response
// itself when that fails.
func requireActor(c *gin.Context, log *logger.Logger, actors services.ActorService) (*services.ActorContext, bool) {
	actor, err := actors.FromRequest(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, log, err, "resolve_actor_failed")
		return nil, false
	}
	return actor, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, err)
		return uuid.Nil, false
	}
	return id, true
}

// uuidQueryList reads ids from repeated or comma-separated query values.
func uuidQueryList(c *gin.Context, name string) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return nil, err
			}
			out = append(out, id)
		}
	}
	return out, nil
}

func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
