package coursework

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/gcfisi/coursehub-backend/internal/domain"
	"github.com/gcfisi/coursehub-backend/internal/platform/dbctx"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

type ProfileRepo interface {
	Upsert(dbc dbctx.Context, profile *types.Profile) error
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Profile, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{
		db:  db,
		log: baseLog.With("repo", "ProfileRepo"),
	}
}

func (r *profileRepo) Upsert(dbc dbctx.Context, profile *types.Profile) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if profile == nil {
		return nil
	}
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "avatar_url", "role", "updated_at"}),
		}).
		Create(profile).Error
}

func (r *profileRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Profile
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

func (r *profileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Profile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Profile
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
