package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gcfisi/coursehub-backend/internal/data/repos"
	types "github.com/gcfisi/coursehub-backend/internal/domain"
	domainagg "github.com/gcfisi/coursehub-backend/internal/domain/aggregates"
	"github.com/gcfisi/coursehub-backend/internal/platform/dbctx"
	"github.com/gcfisi/coursehub-backend/internal/platform/gcp"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

type CourseInput struct {
	Code               string
	Name               string
	Description        string
	CurrentSyllabusURL string
	CoordinatorID      *uuid.UUID
}

type CourseUpdate struct {
	Code               *string
	Name               *string
	Description        *string
	CurrentSyllabusURL *string
	CoordinatorID      *uuid.UUID
}

type CourseService interface {
	List(ctx context.Context) ([]*types.Course, error)
	Get(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
	Create(ctx context.Context, actor *ActorContext, in CourseInput) (*types.Course, error)
	Update(ctx context.Context, actor *ActorContext, courseID uuid.UUID, in CourseUpdate) (*types.Course, error)
	Delete(ctx context.Context, actor *ActorContext, courseID uuid.UUID) error
}

type courseService struct {
	db        *gorm.DB
	log       *logger.Logger
	courses   repos.CourseRepo
	resources repos.ResourceRepo
	bucket    gcp.BucketService
}

func NewCourseService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courses repos.CourseRepo,
	resources repos.ResourceRepo,
	bucket gcp.BucketService,
) CourseService {
	return &courseService{
		db:        db,
		log:       baseLog.With("service", "CourseService"),
		courses:   courses,
		resources: resources,
		bucket:    bucket,
	}
}

func NormalizeCourseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *courseService) List(ctx context.Context) ([]*types.Course, error) {
	rows, err := s.courses.List(dbctx.Background(ctx))
	if err != nil {
		return nil, storeErr("course.List", err)
	}
	return rows, nil
}

func (s *courseService) Get(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	const op = "course.Get"
	c, err := s.courses.GetByID(dbctx.Background(ctx), courseID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if c == nil {
		return nil, notFoundErr(op, "course not found")
	}
	return c, nil
}

func (s *courseService) Create(ctx context.Context, actor *ActorContext, in CourseInput) (*types.Course, error) {
	const op = "course.Create"
	if !actor.CanManageStructure() {
		return nil, forbiddenErr(op, "only coordinators can create courses")
	}
	code := NormalizeCourseCode(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, validationErr(op, "code and name are required")
	}
	c := &types.Course{
		ID:                 uuid.New(),
		Code:               code,
		Name:               name,
		Description:        strings.TrimSpace(in.Description),
		CurrentSyllabusURL: strings.TrimSpace(in.CurrentSyllabusURL),
		CoordinatorID:      in.CoordinatorID,
	}
	if _, err := s.courses.Create(dbctx.Background(ctx), []*types.Course{c}); err != nil {
		if isUniqueViolation(err) {
			return nil, domainagg.NewError(domainagg.CodeConflict, op, code, ErrCourseCodeTaken)
		}
		return nil, storeErr(op, err)
	}
	s.log.Info("course created", "course_id", c.ID, "code", c.Code, "actor_id", actor.UserID)
	return c, nil
}

func (s *courseService) Update(ctx context.Context, actor *ActorContext, courseID uuid.UUID, in CourseUpdate) (*types.Course, error) {
	const op = "course.Update"
	if !actor.CanManageStructure() {
		return nil, forbiddenErr(op, "only coordinators can edit courses")
	}
	if _, err := s.Get(ctx, courseID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Code != nil {
		code := NormalizeCourseCode(*in.Code)
		if code == "" {
			return nil, validationErr(op, "code cannot be empty")
		}
		updates["code"] = code
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validationErr(op, "name cannot be empty")
		}
		updates["name"] = name
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.CurrentSyllabusURL != nil {
		updates["current_syllabus_url"] = strings.TrimSpace(*in.CurrentSyllabusURL)
	}
	if in.CoordinatorID != nil {
		updates["coordinator_id"] = *in.CoordinatorID
	}
	if err := s.courses.UpdateFields(dbctx.Background(ctx), courseID, updates); err != nil {
		if isUniqueViolation(err) {
			return nil, domainagg.NewError(domainagg.CodeConflict, op, "code", ErrCourseCodeTaken)
		}
		return nil, storeErr(op, err)
	}
	return s.Get(ctx, courseID)
}

// Delete removes the course; the store cascades its structure and resources.
// Stored files are removed afterwards on a best-effort basis.
func (s *courseService) Delete(ctx context.Context, actor *ActorContext, courseID uuid.UUID) error {
	const op = "course.Delete"
	if !actor.CanManageStructure() {
		return forbiddenErr(op, "only coordinators can delete courses")
	}
	if _, err := s.Get(ctx, courseID); err != nil {
		return err
	}
	dbc := dbctx.Background(ctx)
	attached, err := s.resources.List(dbc, repos.ResourceFilter{CourseIDs: []uuid.UUID{courseID}})
	if err != nil {
		return storeErr(op, err)
	}
	if err := s.courses.DeleteByIDs(dbc, []uuid.UUID{courseID}); err != nil {
		return storeErr(op, err)
	}
	if s.bucket != nil {
		for _, r := range attached {
			if r.StoragePath == "" {
				continue
			}
			if err := s.bucket.DeleteFile(dbc, r.StoragePath); err != nil {
				s.log.Warn("stored file left behind after course delete", "course_id", courseID, "key", r.StoragePath, "error", err)
			}
		}
	}
	s.log.Info("course deleted", "course_id", courseID, "resources", len(attached), "actor_id", actor.UserID)
	return nil
}
