package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gcfisi/coursehub-backend/internal/data/repos"
	domainagg "github.com/gcfisi/coursehub-backend/internal/domain/aggregates"
	"github.com/gcfisi/coursehub-backend/internal/domain/coursework"
	"github.com/gcfisi/coursehub-backend/internal/platform/ctxutil"
	"github.com/gcfisi/coursehub-backend/internal/platform/dbctx"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

// ActorContext identifies who is performing an operation.
type ActorContext struct {
	UserID uuid.UUID
	Role   string
}

func (a *ActorContext) CanReview() bool { return a != nil && coursework.CanReview(a.Role) }
func (a *ActorContext) CanUpload() bool { return a != nil && coursework.CanUpload(a.Role) }
func (a *ActorContext) CanManageStructure() bool {
	return a != nil && coursework.CanManageStructure(a.Role)
}
func (a *ActorContext) IsAdmin() bool { return a != nil && a.Role == coursework.RoleAdmin }

type ActorService interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*ActorContext, error)
	FromRequest(ctx context.Context) (*ActorContext, error)
}

type actorService struct {
	db       *gorm.DB
	log      *logger.Logger
	profiles repos.ProfileRepo
}

func NewActorService(db *gorm.DB, baseLog *logger.Logger, profiles repos.ProfileRepo) ActorService {
	return &actorService{
		db:       db,
		log:      baseLog.With("service", "ActorService"),
		profiles: profiles,
	}
}

// Resolve loads the actor's profile. A user without a profile is not allowed
// to act on course data.
func (s *actorService) Resolve(ctx context.Context, userID uuid.UUID) (*ActorContext, error) {
	const op = "actor.Resolve"
	if userID == uuid.Nil {
		return nil, forbiddenErr(op, "missing user")
	}
	p, err := s.profiles.GetByID(dbctx.Background(ctx), userID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if p == nil {
		s.log.Warn("no profile for authenticated user", "user_id", userID)
		return nil, forbiddenErr(op, "profile not found")
	}
	if !coursework.IsValidRole(p.Role) {
		return nil, forbiddenErr(op, "profile has unknown role")
	}
	return &ActorContext{UserID: p.ID, Role: p.Role}, nil
}

func (s *actorService) FromRequest(ctx context.Context) (*ActorContext, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeUnauthorized, "actor.FromRequest", "unauthenticated request", nil)
	}
	return s.Resolve(ctx, rd.UserID)
}
