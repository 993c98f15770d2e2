package coursework

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/gcfisi/coursehub-backend/internal/domain"
	"github.com/gcfisi/coursehub-backend/internal/platform/dbctx"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

type CourseRepo interface {
	Create(dbc dbctx.Context, courses []*types.Course) ([]*types.Course, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Course, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error)
	GetByCode(dbc dbctx.Context, code string) (*types.Course, error)
	List(dbc dbctx.Context) ([]*types.Course, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{
		db:  db,
		log: baseLog.With("repo", "CourseRepo"),
	}
}

func (r *courseRepo) Create(dbc dbctx.Context, courses []*types.Course) ([]*types.Course, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(courses) == 0 {
		return []*types.Course{}, nil
	}
	for _, c := range courses {
		if c != nil && c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Course, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Course
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Order("code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Course
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

func (r *courseRepo) GetByCode(dbc dbctx.Context, code string) (*types.Course, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if code == "" {
		return nil, nil
	}
	var row types.Course
	if err := transaction.WithContext(dbc.Ctx).
		Where("code = ?", code).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *courseRepo) List(dbc dbctx.Context) ([]*types.Course, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.Course{}
	if err := transaction.WithContext(dbc.Ctx).
		Order("code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Course{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *courseRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.Course{}).Error
}
