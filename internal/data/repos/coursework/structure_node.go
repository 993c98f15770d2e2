package coursework

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/gcfisi/coursehub-backend/internal/domain"
	"github.com/gcfisi/coursehub-backend/internal/platform/dbctx"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

type StructureNodeRepo interface {
	Create(dbc dbctx.Context, nodes []*types.StructureNode) ([]*types.StructureNode, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.StructureNode, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.StructureNode, error)
	GetByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) ([]*types.StructureNode, error)
	ExistsByCourseID(dbc dbctx.Context, courseID uuid.UUID) (bool, error)
	CourseIDsWithStructure(dbc dbctx.Context, courseIDs []uuid.UUID) ([]uuid.UUID, error)
	MaxOrderIndex(dbc dbctx.Context, courseID uuid.UUID, parentID *uuid.UUID) (int, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
	DeleteByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) (int64, error)
}

type structureNodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStructureNodeRepo(db *gorm.DB, baseLog *logger.Logger) StructureNodeRepo {
	return &structureNodeRepo{
		db:  db,
		log: baseLog.With("repo", "StructureNodeRepo"),
	}
}

// Create inserts nodes in one batch. IDs are assigned client-side when
// missing, so callers can link children before the parent insert returns.
func (r *structureNodeRepo) Create(dbc dbctx.Context, nodes []*types.StructureNode) ([]*types.StructureNode, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(nodes) == 0 {
		return []*types.StructureNode{}, nil
	}
	for _, n := range nodes {
		if n != nil && n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

func (r *structureNodeRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.StructureNode, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.StructureNode
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *structureNodeRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.StructureNode, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.StructureNode
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *structureNodeRepo) GetByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) ([]*types.StructureNode, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.StructureNode{}
	if len(courseIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("course_id IN ?", courseIDs).
		Order("course_id, order_index ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *structureNodeRepo) ExistsByCourseID(dbc dbctx.Context, courseID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.StructureNode{}).
		Where("course_id = ?", courseID).
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

func (r *structureNodeRepo) CourseIDsWithStructure(dbc dbctx.Context, courseIDs []uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []uuid.UUID{}
	if len(courseIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.StructureNode{}).
		Where("course_id IN ?", courseIDs).
		Distinct().
		Pluck("course_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MaxOrderIndex returns the highest order_index among the siblings under
// parentID (roots when nil), or 0 when there are none.
func (r *structureNodeRepo) MaxOrderIndex(dbc dbctx.Context, courseID uuid.UUID, parentID *uuid.UUID) (int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Model(&types.StructureNode{}).
		Where("course_id = ?", courseID)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	var max int
	if err := q.Select("COALESCE(MAX(order_index), 0)").Row().Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

func (r *structureNodeRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.StructureNode{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *structureNodeRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.StructureNode{})
	return res.RowsAffected, res.Error
}

func (r *structureNodeRepo) DeleteByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(courseIDs) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("course_id IN ?", courseIDs).
		Delete(&types.StructureNode{})
	return res.RowsAffected, res.Error
}
