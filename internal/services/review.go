package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gcfisi/coursehub-backend/internal/data/repos"
	types "github.com/gcfisi/coursehub-backend/internal/domain"
	"github.com/gcfisi/coursehub-backend/internal/domain/coursework"
	"github.com/gcfisi/coursehub-backend/internal/observability"
	"github.com/gcfisi/coursehub-backend/internal/platform/dbctx"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

// ReviewService moves resources from pending to approved or rejected.
// Reviewed resources are final.
type ReviewService interface {
	Approve(ctx context.Context, actor *ActorContext, resourceID uuid.UUID) (*types.Resource, error)
	Reject(ctx context.Context, actor *ActorContext, resourceID uuid.UUID, reason string) (*types.Resource, error)
	ListPending(ctx context.Context, actor *ActorContext, courseID *uuid.UUID) ([]*types.Resource, error)
}

type reviewService struct {
	db        *gorm.DB
	log       *logger.Logger
	resources repos.ResourceRepo
	now       func() time.Time
}

func NewReviewService(db *gorm.DB, baseLog *logger.Logger, resources repos.ResourceRepo) ReviewService {
	return &reviewService{
		db:        db,
		log:       baseLog.With("service", "ReviewService"),
		resources: resources,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *reviewService) Approve(ctx context.Context, actor *ActorContext, resourceID uuid.UUID) (*types.Resource, error) {
	const op = "review.Approve"
	if !actor.CanReview() {
		return nil, forbiddenErr(op, "only coordinators can review resources")
	}
	return s.transition(ctx, op, actor, resourceID, map[string]interface{}{
		"status":           coursework.ResourceStatusApproved,
		"is_visible":       true,
		"rejection_reason": nil,
	})
}

func (s *reviewService) Reject(ctx context.Context, actor *ActorContext, resourceID uuid.UUID, reason string) (*types.Resource, error) {
	const op = "review.Reject"
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validationErr(op, "a rejection reason is required")
	}
	if !actor.CanReview() {
		return nil, forbiddenErr(op, "only coordinators can review resources")
	}
	return s.transition(ctx, op, actor, resourceID, map[string]interface{}{
		"status":           coursework.ResourceStatusRejected,
		"is_visible":       false,
		"rejection_reason": reason,
	})
}

// transition applies updates only while the resource is still pending, so two
// concurrent reviews cannot both win.
func (s *reviewService) transition(ctx context.Context, op string, actor *ActorContext, resourceID uuid.UUID, updates map[string]interface{}) (*types.Resource, error) {
	dbc := dbctx.Background(ctx)
	current, err := s.resources.GetByID(dbc, resourceID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if current == nil {
		return nil, notFoundErr(op, "resource not found")
	}
	if current.Status != coursework.ResourceStatusPending {
		return nil, fmt.Errorf("%s: status %s: %w", op, current.Status, ErrInvalidTransition)
	}

	updates["reviewed_by"] = actor.UserID
	updates["reviewed_at"] = s.now()
	ok, err := s.resources.UpdateFieldsIfStatus(dbc, resourceID, coursework.ResourceStatusPending, updates)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: reviewed concurrently: %w", op, ErrInvalidTransition)
	}

	updated, err := s.resources.GetByID(dbc, resourceID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if updated == nil {
		return nil, notFoundErr(op, "resource not found")
	}
	observability.Current().IncReviewDecision(updated.Status)
	s.log.Info("resource reviewed",
		"resource_id", resourceID,
		"status", updated.Status,
		"reviewer_id", actor.UserID,
	)
	return updated, nil
}

func (s *reviewService) ListPending(ctx context.Context, actor *ActorContext, courseID *uuid.UUID) ([]*types.Resource, error) {
	const op = "review.ListPending"
	if !actor.CanReview() {
		return nil, forbiddenErr(op, "only coordinators can review resources")
	}
	filter := repos.ResourceFilter{Statuses: []string{coursework.ResourceStatusPending}}
	if courseID != nil {
		filter.CourseIDs = []uuid.UUID{*courseID}
	}
	rows, err := s.resources.List(dbctx.Background(ctx), filter)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return rows, nil
}
