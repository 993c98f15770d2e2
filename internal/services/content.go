package services

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/gcfisi/coursehub-backend/internal/data/repos"
	types "github.com/gcfisi/coursehub-backend/internal/domain"
	"github.com/gcfisi/coursehub-backend/internal/domain/coursework"
	"github.com/gcfisi/coursehub-backend/internal/platform/dbctx"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

// CourseContent is a course's structure annotated with its published resources.
type CourseContent struct {
	Course        *types.Course        `json:"course"`
	Structure     []*StructureTreeNode `json:"structure"`
	ResourceCount int                  `json:"resource_count"`
}

type ContentService interface {
	CourseContent(ctx context.Context, courseID uuid.UUID, reviewerID *uuid.UUID) (*CourseContent, error)
	ReviewedContent(ctx context.Context, actor *ActorContext, courseID uuid.UUID) (*CourseContent, error)
}

type contentService struct {
	db        *gorm.DB
	log       *logger.Logger
	courses   repos.CourseRepo
	nodes     repos.StructureNodeRepo
	resources repos.ResourceRepo
}

func NewContentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courses repos.CourseRepo,
	nodes repos.StructureNodeRepo,
	resources repos.ResourceRepo,
) ContentService {
	return &contentService{
		db:        db,
		log:       baseLog.With("service", "ContentService"),
		courses:   courses,
		nodes:     nodes,
		resources: resources,
	}
}

// CourseContent loads the tree and the approved, visible resources in
// parallel. reviewerID narrows resources to those one reviewer approved.
func (s *contentService) CourseContent(ctx context.Context, courseID uuid.UUID, reviewerID *uuid.UUID) (*CourseContent, error) {
	const op = "content.CourseContent"
	if courseID == uuid.Nil {
		return nil, validationErr(op, "missing course id")
	}

	var (
		course    *types.Course
		rows      []*types.StructureNode
		published []*types.Resource
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		course, err = s.courses.GetByID(dbctx.Background(gctx), courseID)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.nodes.GetByCourseIDs(dbctx.Background(gctx), []uuid.UUID{courseID})
		return err
	})
	g.Go(func() error {
		filter := repos.ResourceFilter{
			CourseIDs:   []uuid.UUID{courseID},
			Statuses:    []string{coursework.ResourceStatusApproved},
			VisibleOnly: true,
			ReviewedBy:  reviewerID,
		}
		var err error
		published, err = s.resources.List(dbctx.Background(gctx), filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeErr(op, err)
	}
	if course == nil {
		return nil, notFoundErr(op, "course not found")
	}

	tree := AttachResources(BuildStructureTree(rows), published)
	return &CourseContent{
		Course:        course,
		Structure:     tree,
		ResourceCount: len(published),
	}, nil
}

func (s *contentService) ReviewedContent(ctx context.Context, actor *ActorContext, courseID uuid.UUID) (*CourseContent, error) {
	if !actor.CanReview() {
		return nil, forbiddenErr("content.ReviewedContent", "only coordinators have a reviewed-content view")
	}
	reviewer := actor.UserID
	return s.CourseContent(ctx, courseID, &reviewer)
}
