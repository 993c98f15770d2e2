package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	dataagg "github.com/gcfisi/coursehub-backend/internal/data/aggregates"
	"github.com/gcfisi/coursehub-backend/internal/data/repos"
	types "github.com/gcfisi/coursehub-backend/internal/domain"
	domainagg "github.com/gcfisi/coursehub-backend/internal/domain/aggregates"
	"github.com/gcfisi/coursehub-backend/internal/domain/coursework"
	"github.com/gcfisi/coursehub-backend/internal/observability"
	"github.com/gcfisi/coursehub-backend/internal/platform/dbctx"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
	"github.com/gcfisi/coursehub-backend/internal/platform/redislock"
)

// ResetConfig tunes the delete-and-verify loop of a structure reset.
type ResetConfig struct {
	SettleDelay    time.Duration
	PollDelay      time.Duration
	VerifyAttempts int
	LockTTL        time.Duration
}

func DefaultResetConfig() ResetConfig {
	return ResetConfig{
		SettleDelay:    1000 * time.Millisecond,
		PollDelay:      500 * time.Millisecond,
		VerifyAttempts: 3,
		LockTTL:        2 * time.Minute,
	}
}

type GenerateResult struct {
	CourseID uuid.UUID `json:"course_id"`
	Created  int       `json:"created"`
}

type ResetResult struct {
	CourseID          uuid.UUID `json:"course_id"`
	Deleted           int64     `json:"deleted"`
	Attempts          int       `json:"verify_attempts"`
	Created           int       `json:"created"`
	OrphanedResources int64     `json:"orphaned_resources"`
}

// PurgeResult reports a purge. Remaining counts rows still read back after
// the deletes; a non-zero value means something is writing concurrently.
type PurgeResult struct {
	CourseID  uuid.UUID `json:"course_id"`
	Found     int       `json:"found"`
	Deleted   int64     `json:"deleted"`
	Remaining int       `json:"remaining"`
}

type CreateNodeInput struct {
	ParentID      *uuid.UUID
	Name          string
	Description   string
	StructureType string
	OrderIndex    *int
}

// UpdateNodeInput carries optional changes. MakeRoot detaches the node from
// its parent; it wins over ParentID.
type UpdateNodeInput struct {
	Name          *string
	Description   *string
	StructureType *string
	OrderIndex    *int
	ParentID      *uuid.UUID
	MakeRoot      bool
}

type StructureService interface {
	HasStructure(ctx context.Context, courseID uuid.UUID) bool
	StructureStatus(ctx context.Context, courseIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	GetTree(ctx context.Context, courseID uuid.UUID) ([]*StructureTreeNode, error)
	Generate(ctx context.Context, actor *ActorContext, courseID uuid.UUID, force bool) (*GenerateResult, error)
	Reset(ctx context.Context, actor *ActorContext, courseID uuid.UUID) (*ResetResult, error)
	Purge(ctx context.Context, actor *ActorContext, courseID uuid.UUID) (*PurgeResult, error)
	CreateNode(ctx context.Context, actor *ActorContext, courseID uuid.UUID, in CreateNodeInput) (*types.StructureNode, error)
	UpdateNode(ctx context.Context, actor *ActorContext, nodeID uuid.UUID, in UpdateNodeInput) (*types.StructureNode, error)
	DeleteNode(ctx context.Context, actor *ActorContext, nodeID uuid.UUID) (int64, error)
}

type structureService struct {
	db        *gorm.DB
	log       *logger.Logger
	runner    dataagg.TxRunner
	courses   repos.CourseRepo
	nodes     repos.StructureNodeRepo
	resources repos.ResourceRepo
	locker    redislock.Locker
	template  *StructureTemplate
	cfg       ResetConfig
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewStructureService(
	db *gorm.DB,
	baseLog *logger.Logger,
	runner dataagg.TxRunner,
	courses repos.CourseRepo,
	nodes repos.StructureNodeRepo,
	resources repos.ResourceRepo,
	locker redislock.Locker,
	template *StructureTemplate,
	cfg ResetConfig,
) StructureService {
	if locker == nil {
		locker = redislock.NewLocalLocker()
	}
	if template == nil {
		template = DefaultStructureTemplate()
	}
	if cfg.VerifyAttempts <= 0 {
		cfg.VerifyAttempts = 1
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultResetConfig().LockTTL
	}
	return &structureService{
		db:        db,
		log:       baseLog.With("service", "StructureService"),
		runner:    runner,
		courses:   courses,
		nodes:     nodes,
		resources: resources,
		locker:    locker,
		template:  template,
		cfg:       cfg,
		sleep:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// HasStructure reports whether the course has at least one node. A failed
// query counts as "has structure" so callers never overwrite on uncertainty.
func (s *structureService) HasStructure(ctx context.Context, courseID uuid.UUID) bool {
	ok, err := s.nodes.ExistsByCourseID(dbctx.Background(ctx), courseID)
	if err != nil {
		s.log.Error("structure existence check failed; assuming present", "course_id", courseID, "error", err)
		return true
	}
	return ok
}

func (s *structureService) StructureStatus(ctx context.Context, courseIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(courseIDs))
	for _, id := range courseIDs {
		out[id] = false
	}
	ids, err := s.nodes.CourseIDsWithStructure(dbctx.Background(ctx), courseIDs)
	if err != nil {
		return nil, storeErr("structure.StructureStatus", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (s *structureService) GetTree(ctx context.Context, courseID uuid.UUID) ([]*StructureTreeNode, error) {
	const op = "structure.GetTree"
	if _, err := s.requireCourse(ctx, op, courseID); err != nil {
		return nil, err
	}
	rows, err := s.nodes.GetByCourseIDs(dbctx.Background(ctx), []uuid.UUID{courseID})
	if err != nil {
		return nil, storeErr(op, err)
	}
	return BuildStructureTree(rows), nil
}

func (s *structureService) Generate(ctx context.Context, actor *ActorContext, courseID uuid.UUID, force bool) (out *GenerateResult, err error) {
	const op = "structure.Generate"
	ctx, span := observability.StartSpan(ctx, op, attribute.String("course_id", courseID.String()), attribute.Bool("force", force))
	start := time.Now()
	defer func() {
		observability.Current().ObserveStructureOp("generate", outcomeOf(err), time.Since(start))
		observability.EndSpan(span, err)
	}()
	if !actor.CanManageStructure() {
		return nil, forbiddenErr(op, "only coordinators can generate course structures")
	}
	if _, err := s.requireCourse(ctx, op, courseID); err != nil {
		return nil, err
	}
	if !force && s.HasStructure(ctx, courseID) {
		return nil, fmt.Errorf("%s: %w", op, ErrStructureExists)
	}
	created, err := s.generate(ctx, courseID)
	if err != nil {
		return nil, err
	}
	s.log.Info("default structure generated", "course_id", courseID, "created", created, "actor_id", actor.UserID)
	return &GenerateResult{CourseID: courseID, Created: created}, nil
}

// generate inserts the template level by level inside one transaction so a
// failure leaves no partial tree behind.
func (s *structureService) generate(ctx context.Context, courseID uuid.UUID) (int, error) {
	const op = "structure.generate"
	created := 0
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		roots := make([]*types.StructureNode, 0, len(s.template.Categories))
		for i, c := range s.template.Categories {
			roots = append(roots, &types.StructureNode{
				ID:            uuid.New(),
				CourseID:      courseID,
				Name:          c.Name,
				Description:   c.Description,
				StructureType: coursework.StructureTypeCategory,
				OrderIndex:    i + 1,
			})
		}
		if err := s.insertLevel(dbc, roots); err != nil {
			return err
		}
		created += len(roots)

		for i, c := range s.template.Categories {
			parentID := roots[i].ID
			if len(c.Children) > 0 {
				children := make([]*types.StructureNode, 0, len(c.Children))
				for j, name := range c.Children {
					children = append(children, newChildNode(courseID, parentID, name, coursework.StructureTypeSubcategory, j+1))
				}
				if err := s.insertLevel(dbc, children); err != nil {
					return err
				}
				created += len(children)
			}
			if c.Topics == nil || c.Topics.Count == 0 {
				continue
			}
			topics := make([]*types.StructureNode, 0, c.Topics.Count)
			for t := 1; t <= c.Topics.Count; t++ {
				topics = append(topics, newChildNode(courseID, parentID, c.Topics.topicName(t), coursework.StructureTypeTopic, t))
			}
			if err := s.insertLevel(dbc, topics); err != nil {
				return err
			}
			created += len(topics)

			subs := make([]*types.StructureNode, 0, len(topics)*len(c.Topics.Subcategories))
			for _, topic := range topics {
				for k, name := range c.Topics.Subcategories {
					subs = append(subs, newChildNode(courseID, topic.ID, name, coursework.StructureTypeSubcategory, k+1))
				}
			}
			if err := s.insertLevel(dbc, subs); err != nil {
				return err
			}
			created += len(subs)
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			s.log.Warn("structure generation hit an existing structure", "course_id", courseID, "error", err)
			return 0, fmt.Errorf("%s: %w", op, ErrDuplicateStructure)
		}
		if domainagg.CodeOf(err) != "" {
			return 0, err
		}
		return 0, storeErr(op, err)
	}
	return created, nil
}

func (s *structureService) insertLevel(dbc dbctx.Context, rows []*types.StructureNode) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := s.nodes.Create(dbc, rows)
	return err
}

func newChildNode(courseID, parentID uuid.UUID, name, structureType string, order int) *types.StructureNode {
	pid := parentID
	return &types.StructureNode{
		ID:            uuid.New(),
		CourseID:      courseID,
		ParentID:      &pid,
		Name:          strings.TrimSpace(name),
		StructureType: structureType,
		OrderIndex:    order,
	}
}

// Reset deletes the course's structure, waits until the store reports it
// gone, and regenerates the default template.
func (s *structureService) Reset(ctx context.Context, actor *ActorContext, courseID uuid.UUID) (res *ResetResult, err error) {
	const op = "structure.Reset"
	ctx, span := observability.StartSpan(ctx, op, attribute.String("course_id", courseID.String()))
	start := time.Now()
	defer func() {
		m := observability.Current()
		m.ObserveStructureOp("reset", outcomeOf(err), time.Since(start))
		if res != nil && res.Attempts > 0 {
			m.ObserveResetAttempts(res.Attempts)
			span.SetAttributes(attribute.Int("verify_attempts", res.Attempts), attribute.Int64("deleted", res.Deleted))
		}
		observability.EndSpan(span, err)
	}()
	if !actor.CanManageStructure() {
		return nil, forbiddenErr(op, "only coordinators can reset course structures")
	}
	if _, err := s.requireCourse(ctx, op, courseID); err != nil {
		return nil, err
	}

	release, ok, err := s.locker.Acquire(ctx, "structure:reset:"+courseID.String(), s.cfg.LockTTL)
	if err != nil {
		s.log.Warn("reset lock unavailable; continuing without it", "course_id", courseID, "error", err)
	} else if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrResetInProgress)
	}
	defer release()

	dbc := dbctx.Background(ctx)
	res = &ResetResult{CourseID: courseID}

	existing, err := s.nodes.GetByCourseIDs(dbc, []uuid.UUID{courseID})
	if err != nil {
		return nil, storeErr(op, err)
	}
	if len(existing) > 0 {
		ids := make([]uuid.UUID, 0, len(existing))
		for _, n := range existing {
			ids = append(ids, n.ID)
		}
		if n, err := s.resources.CountByStructureIDs(dbc, ids); err != nil {
			s.log.Warn("could not count resources attached to structure", "course_id", courseID, "error", err)
		} else {
			res.OrphanedResources = n
		}
	}
	s.log.Info("resetting structure",
		"course_id", courseID,
		"existing_nodes", len(existing),
		"attached_resources", res.OrphanedResources,
		"actor_id", actor.UserID,
	)

	deleted, err := s.nodes.DeleteByCourseIDs(dbc, []uuid.UUID{courseID})
	if err != nil {
		return nil, storeErr(op, err)
	}
	res.Deleted += deleted
	if err := s.sleep(ctx, s.cfg.SettleDelay); err != nil {
		return nil, err
	}

	cleared := false
	for res.Attempts < s.cfg.VerifyAttempts {
		res.Attempts++
		if !s.HasStructure(ctx, courseID) {
			cleared = true
			break
		}
		s.log.Warn("structure still present after delete", "course_id", courseID, "attempt", res.Attempts)
		if err := s.sleep(ctx, s.cfg.PollDelay); err != nil {
			return nil, err
		}
		n, err := s.nodes.DeleteByCourseIDs(dbc, []uuid.UUID{courseID})
		if err != nil {
			s.log.Warn("repeat structure delete failed", "course_id", courseID, "attempt", res.Attempts, "error", err)
			continue
		}
		res.Deleted += n
	}
	if !cleared {
		s.log.Error("structure reset did not converge", "course_id", courseID, "attempts", res.Attempts)
		return res, fmt.Errorf("%s: %w", op, ErrResetNotConverged)
	}

	// Another actor may have regenerated between our check and now.
	if s.HasStructure(ctx, courseID) {
		n, err := s.nodes.DeleteByCourseIDs(dbc, []uuid.UUID{courseID})
		if err != nil {
			return res, storeErr(op, err)
		}
		res.Deleted += n
		if err := s.sleep(ctx, s.cfg.SettleDelay); err != nil {
			return res, err
		}
		if s.HasStructure(ctx, courseID) {
			return res, fmt.Errorf("%s: %w", op, ErrStructureExists)
		}
	}
	if s.HasStructure(ctx, courseID) {
		return res, fmt.Errorf("%s: final verification: %w", op, ErrStructureExists)
	}

	created, err := s.generate(ctx, courseID)
	if err != nil {
		return res, err
	}
	res.Created = created
	s.log.Info("structure reset complete",
		"course_id", courseID,
		"deleted", res.Deleted,
		"verify_attempts", res.Attempts,
		"created", res.Created,
	)
	return res, nil
}

// Purge removes every structure row of a course without regenerating. It
// reads rows directly instead of asking HasStructure, so a failing existence
// query cannot stall it the way it stalls Reset.
func (s *structureService) Purge(ctx context.Context, actor *ActorContext, courseID uuid.UUID) (res *PurgeResult, err error) {
	const op = "structure.Purge"
	ctx, span := observability.StartSpan(ctx, op, attribute.String("course_id", courseID.String()))
	start := time.Now()
	defer func() {
		observability.Current().ObserveStructureOp("purge", outcomeOf(err), time.Since(start))
		observability.EndSpan(span, err)
	}()
	if !actor.IsAdmin() {
		return nil, forbiddenErr(op, "only admins can purge course structures")
	}

	release, ok, err := s.locker.Acquire(ctx, "structure:reset:"+courseID.String(), s.cfg.LockTTL)
	if err != nil {
		s.log.Warn("purge lock unavailable; continuing without it", "course_id", courseID, "error", err)
	} else if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrResetInProgress)
	}
	defer release()

	dbc := dbctx.Background(ctx)
	res = &PurgeResult{CourseID: courseID}
	rows, err := s.nodes.GetByCourseIDs(dbc, []uuid.UUID{courseID})
	if err != nil {
		return nil, storeErr(op, err)
	}
	res.Found = len(rows)
	if len(rows) > 0 {
		ids := make([]uuid.UUID, 0, len(rows))
		for _, n := range rows {
			ids = append(ids, n.ID)
		}
		n, err := s.nodes.DeleteByIDs(dbc, ids)
		if err != nil {
			return res, storeErr(op, err)
		}
		res.Deleted += n
	}
	// sweep rows inserted between the read and the delete
	n, err := s.nodes.DeleteByCourseIDs(dbc, []uuid.UUID{courseID})
	if err != nil {
		return res, storeErr(op, err)
	}
	res.Deleted += n

	left, err := s.nodes.GetByCourseIDs(dbc, []uuid.UUID{courseID})
	if err != nil {
		return res, storeErr(op, err)
	}
	res.Remaining = len(left)
	s.log.Info("structure purged",
		"course_id", courseID,
		"found", res.Found,
		"deleted", res.Deleted,
		"remaining", res.Remaining,
		"actor_id", actor.UserID,
	)
	return res, nil
}

func (s *structureService) CreateNode(ctx context.Context, actor *ActorContext, courseID uuid.UUID, in CreateNodeInput) (*types.StructureNode, error) {
	const op = "structure.CreateNode"
	if !actor.CanManageStructure() {
		return nil, forbiddenErr(op, "only coordinators can edit course structures")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationErr(op, "name is required")
	}
	if _, err := s.requireCourse(ctx, op, courseID); err != nil {
		return nil, err
	}
	dbc := dbctx.Background(ctx)

	structureType := strings.TrimSpace(in.StructureType)
	if in.ParentID != nil {
		parent, err := s.nodes.GetByID(dbc, *in.ParentID)
		if err != nil {
			return nil, storeErr(op, err)
		}
		if parent == nil || parent.CourseID != courseID {
			return nil, validationErr(op, "parent must be a node of the same course")
		}
		if structureType == "" {
			structureType = coursework.StructureTypeSubcategory
		}
	} else if structureType == "" {
		structureType = coursework.StructureTypeCategory
	}
	if !coursework.IsValidStructureType(structureType) {
		return nil, validationErr(op, "invalid structure_type")
	}

	order := 0
	if in.OrderIndex != nil {
		order = *in.OrderIndex
	} else {
		max, err := s.nodes.MaxOrderIndex(dbc, courseID, in.ParentID)
		if err != nil {
			return nil, storeErr(op, err)
		}
		order = max + 1
	}

	node := &types.StructureNode{
		ID:            uuid.New(),
		CourseID:      courseID,
		ParentID:      in.ParentID,
		Name:          name,
		Description:   strings.TrimSpace(in.Description),
		StructureType: structureType,
		OrderIndex:    order,
	}
	if _, err := s.nodes.Create(dbc, []*types.StructureNode{node}); err != nil {
		if isUniqueViolation(err) {
			return nil, domainagg.NewError(domainagg.CodeConflict, op, "a root category with this name already exists", err)
		}
		return nil, storeErr(op, err)
	}
	return node, nil
}

func (s *structureService) UpdateNode(ctx context.Context, actor *ActorContext, nodeID uuid.UUID, in UpdateNodeInput) (*types.StructureNode, error) {
	const op = "structure.UpdateNode"
	if !actor.CanManageStructure() {
		return nil, forbiddenErr(op, "only coordinators can edit course structures")
	}
	dbc := dbctx.Background(ctx)
	node, err := s.nodes.GetByID(dbc, nodeID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if node == nil {
		return nil, notFoundErr(op, "structure node not found")
	}

	updates := map[string]interface{}{}
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
	if in.StructureType != nil {
		if !coursework.IsValidStructureType(*in.StructureType) {
			return nil, validationErr(op, "invalid structure_type")
		}
		updates["structure_type"] = *in.StructureType
	}
	if in.OrderIndex != nil {
		updates["order_index"] = *in.OrderIndex
	}
	switch {
	case in.MakeRoot:
		updates["parent_id"] = nil
	case in.ParentID != nil:
		if err := s.checkReparent(dbc, node, *in.ParentID); err != nil {
			return nil, err
		}
		updates["parent_id"] = *in.ParentID
	}
	if len(updates) == 0 {
		return node, nil
	}

	if err := s.nodes.UpdateFields(dbc, nodeID, updates); err != nil {
		if isUniqueViolation(err) {
			return nil, domainagg.NewError(domainagg.CodeConflict, op, "a root category with this name already exists", err)
		}
		return nil, storeErr(op, err)
	}
	updated, err := s.nodes.GetByID(dbc, nodeID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if updated == nil {
		return nil, notFoundErr(op, "structure node not found")
	}
	return updated, nil
}

// checkReparent rejects parents outside the course and any move that would
// place the node under itself or one of its descendants.
func (s *structureService) checkReparent(dbc dbctx.Context, node *types.StructureNode, parentID uuid.UUID) error {
	const op = "structure.UpdateNode"
	if parentID == node.ID {
		return validationErr(op, "a node cannot be its own parent")
	}
	parent, err := s.nodes.GetByID(dbc, parentID)
	if err != nil {
		return storeErr(op, err)
	}
	if parent == nil || parent.CourseID != node.CourseID {
		return validationErr(op, "parent must be a node of the same course")
	}
	rows, err := s.nodes.GetByCourseIDs(dbc, []uuid.UUID{node.CourseID})
	if err != nil {
		return storeErr(op, err)
	}
	for _, id := range subtreeIDs(rows, node.ID) {
		if id == parentID {
			return validationErr(op, "moving the node under its own descendant would create a cycle")
		}
	}
	return nil
}

// DeleteNode removes a node and its whole subtree. It refuses while any
// resource is attached to the subtree so no resource is orphaned.
func (s *structureService) DeleteNode(ctx context.Context, actor *ActorContext, nodeID uuid.UUID) (int64, error) {
	const op = "structure.DeleteNode"
	if !actor.CanManageStructure() {
		return 0, forbiddenErr(op, "only coordinators can edit course structures")
	}
	var deleted int64
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		node, err := s.nodes.GetByID(dbc, nodeID)
		if err != nil {
			return storeErr(op, err)
		}
		if node == nil {
			return notFoundErr(op, "structure node not found")
		}
		rows, err := s.nodes.GetByCourseIDs(dbc, []uuid.UUID{node.CourseID})
		if err != nil {
			return storeErr(op, err)
		}
		ids := subtreeIDs(rows, node.ID)
		attached, err := s.resources.CountByStructureIDs(dbc, ids)
		if err != nil {
			return storeErr(op, err)
		}
		if attached > 0 {
			return fmt.Errorf("%s: %d resources: %w", op, attached, ErrResourcesAttached)
		}
		deleted, err = s.nodes.DeleteByIDs(dbc, ids)
		if err != nil {
			return storeErr(op, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("structure node deleted", "node_id", nodeID, "deleted", deleted, "actor_id", actor.UserID)
	return deleted, nil
}

func (s *structureService) requireCourse(ctx context.Context, op string, courseID uuid.UUID) (*types.Course, error) {
	if courseID == uuid.Nil {
		return nil, validationErr(op, "missing course id")
	}
	course, err := s.courses.GetByID(dbctx.Background(ctx), courseID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if course == nil {
		return nil, notFoundErr(op, "course not found")
	}
	return course, nil
}
