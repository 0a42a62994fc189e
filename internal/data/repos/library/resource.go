package library

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

type LearningResourceRepo interface {
	Create(dbc dbctx.Context, res *types.LearningResource) (*types.LearningResource, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningResource, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, onlyOpen bool) ([]*types.LearningResource, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	CountCompleted(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error
}

type learningResourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningResourceRepo(db *gorm.DB, baseLog *logger.Logger) LearningResourceRepo {
	return &learningResourceRepo{db: db, log: baseLog.With("repo", "LearningResourceRepo")}
}

func (r *learningResourceRepo) Create(dbc dbctx.Context, res *types.LearningResource) (*types.LearningResource, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).Create(res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func (r *learningResourceRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningResource, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var res types.LearningResource
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).Take(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *learningResourceRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, onlyOpen bool) ([]*types.LearningResource, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Where("user_id = ?", userID)
	if onlyOpen {
		q = q.Where("is_completed = ?", false)
	}
	var out []*types.LearningResource
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningResourceRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Model(&types.LearningResource{}).Where("id = ?", id).Updates(updates).Error
}

func (r *learningResourceRepo) CountCompleted(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.LearningResource{}).
		Where("user_id = ? AND is_completed = ?", userID, true).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *learningResourceRepo) DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Where("user_id = ?", userID).Delete(&types.LearningResource{}).Error
}
