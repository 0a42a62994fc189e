package mentor

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

type AIInteractionRepo interface {
	Create(dbc dbctx.Context, i *types.AIInteraction) (*types.AIInteraction, error)
	Recent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.AIInteraction, error)
	Since(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.AIInteraction, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	TimestampsSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]time.Time, error)
	DeleteByUserSince(dbc dbctx.Context, userID uuid.UUID, since *time.Time) (int64, error)
	DeleteBefore(dbc dbctx.Context, userID uuid.UUID, before time.Time) (int64, error)
}

type aiInteractionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAIInteractionRepo(db *gorm.DB, baseLog *logger.Logger) AIInteractionRepo {
	return &aiInteractionRepo{db: db, log: baseLog.With("repo", "AIInteractionRepo")}
}

func (r *aiInteractionRepo) Create(dbc dbctx.Context, i *types.AIInteraction) (*types.AIInteraction, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).Create(i).Error; err != nil {
		return nil, err
	}
	return i, nil
}

// Recent returns the newest interactions, newest first.
func (r *aiInteractionRepo) Recent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.AIInteraction, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 10
	}
	var out []*types.AIInteraction
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Since returns interactions created at or after since, oldest first.
func (r *aiInteractionRepo) Since(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.AIInteraction, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.AIInteraction
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *aiInteractionRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).Model(&types.AIInteraction{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *aiInteractionRepo) TimestampsSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]time.Time, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []time.Time
	if err := t.WithContext(dbc.Ctx).
		Model(&types.AIInteraction{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Pluck("created_at", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *aiInteractionRepo) DeleteByUserSince(dbc dbctx.Context, userID uuid.UUID, since *time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Where("user_id = ?", userID)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	res := q.Delete(&types.AIInteraction{})
	return res.RowsAffected, res.Error
}

func (r *aiInteractionRepo) DeleteBefore(dbc dbctx.Context, userID uuid.UUID, before time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND created_at < ?", userID, before).
		Delete(&types.AIInteraction{})
	return res.RowsAffected, res.Error
}

type MemorySummaryRepo interface {
	Create(dbc dbctx.Context, s *types.AIMemorySummary) (*types.AIMemorySummary, error)
	ListActive(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.AIMemorySummary, error)
	LatestActive(dbc dbctx.Context, userID uuid.UUID, summaryType string) (*types.AIMemorySummary, error)
	DeactivateOld(dbc dbctx.Context, userID uuid.UUID, summaryType string, keep int) (int64, error)
	DeleteByUserSince(dbc dbctx.Context, userID uuid.UUID, since *time.Time) (int64, error)
}

type memorySummaryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMemorySummaryRepo(db *gorm.DB, baseLog *logger.Logger) MemorySummaryRepo {
	return &memorySummaryRepo{db: db, log: baseLog.With("repo", "MemorySummaryRepo")}
}

func (r *memorySummaryRepo) Create(dbc dbctx.Context, s *types.AIMemorySummary) (*types.AIMemorySummary, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *memorySummaryRepo) ListActive(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.AIMemorySummary, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 3
	}
	var out []*types.AIMemorySummary
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *memorySummaryRepo) LatestActive(dbc dbctx.Context, userID uuid.UUID, summaryType string) (*types.AIMemorySummary, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.AIMemorySummary
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND summary_type = ? AND is_active = ?", userID, summaryType, true).
		Order("created_at DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// DeactivateOld keeps the newest keep active summaries of a type and flags the rest inactive.
func (r *memorySummaryRepo) DeactivateOld(dbc dbctx.Context, userID uuid.UUID, summaryType string, keep int) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var ids []uuid.UUID
	if err := t.WithContext(dbc.Ctx).
		Model(&types.AIMemorySummary{}).
		Where("user_id = ? AND summary_type = ? AND is_active = ?", userID, summaryType, true).
		Order("created_at DESC").
		Offset(keep).
		Limit(1000).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.AIMemorySummary{}).
		Where("id IN ?", ids).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (r *memorySummaryRepo) DeleteByUserSince(dbc dbctx.Context, userID uuid.UUID, since *time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Where("user_id = ?", userID)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	res := q.Delete(&types.AIMemorySummary{})
	return res.RowsAffected, res.Error
}
