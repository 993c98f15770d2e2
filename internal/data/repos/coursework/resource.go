package coursework

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/gcfisi/coursehub-backend/internal/domain"
	"github.com/gcfisi/coursehub-backend/internal/platform/dbctx"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

// ResourceFilter narrows List. Zero values do not filter.
type ResourceFilter struct {
	CourseIDs    []uuid.UUID
	StructureIDs []uuid.UUID
	Statuses     []string
	UploaderID   *uuid.UUID
	ReviewedBy   *uuid.UUID
	VisibleOnly  bool
	Limit        int
}

type ResourceRepo interface {
	Create(dbc dbctx.Context, resources []*types.Resource) ([]*types.Resource, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Resource, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Resource, error)
	List(dbc dbctx.Context, filter ResourceFilter) ([]*types.Resource, error)
	CountByStructureIDs(dbc dbctx.Context, structureIDs []uuid.UUID) (int64, error)
	CountByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	UpdateFieldsIfStatus(dbc dbctx.Context, id uuid.UUID, status string, updates map[string]interface{}) (bool, error)
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type resourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResourceRepo(db *gorm.DB, baseLog *logger.Logger) ResourceRepo {
	return &resourceRepo{
		db:  db,
		log: baseLog.With("repo", "ResourceRepo"),
	}
}

func (r *resourceRepo) Create(dbc dbctx.Context, resources []*types.Resource) ([]*types.Resource, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(resources) == 0 {
		return []*types.Resource{}, nil
	}
	for _, res := range resources {
		if res == nil {
			continue
		}
		if res.ID == uuid.Nil {
			res.ID = uuid.New()
		}
		if res.Tags == nil {
			res.Tags = []string{}
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *resourceRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Resource, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Resource
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resourceRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Resource, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Resource
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

// List returns matching resources, newest first.
func (r *resourceRepo) List(dbc dbctx.Context, filter ResourceFilter) ([]*types.Resource, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Resource{})
	if len(filter.CourseIDs) > 0 {
		q = q.Where("course_id IN ?", filter.CourseIDs)
	}
	if len(filter.StructureIDs) > 0 {
		q = q.Where("structure_id IN ?", filter.StructureIDs)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.UploaderID != nil {
		q = q.Where("uploader_id = ?", *filter.UploaderID)
	}
	if filter.ReviewedBy != nil {
		q = q.Where("reviewed_by = ?", *filter.ReviewedBy)
	}
	if filter.VisibleOnly {
		q = q.Where("is_visible = ?", true)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	out := []*types.Resource{}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resourceRepo) CountByStructureIDs(dbc dbctx.Context, structureIDs []uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(structureIDs) == 0 {
		return 0, nil
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Resource{}).
		Where("structure_id IN ?", structureIDs).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *resourceRepo) CountByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(courseIDs) == 0 {
		return 0, nil
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Resource{}).
		Where("course_id IN ?", courseIDs).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *resourceRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Resource{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateFieldsIfStatus applies updates only while the row still has the given
// status. ok=false means the row was missing or had already moved on.
func (r *resourceRepo) UpdateFieldsIfStatus(dbc dbctx.Context, id uuid.UUID, status string, updates map[string]interface{}) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return false, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Resource{}).
		Where("id = ? AND status = ?", id, status).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *resourceRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.Resource{}).Error
}
