package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

// XPTotals splits a window of ledger rows into gains and losses.
type XPTotals struct {
	Earned int64
	Lost   int64
}

type XPEventRepo interface {
	Create(dbc dbctx.Context, ev *types.XPEvent) (*types.XPEvent, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.XPEvent, error)
	TimestampsSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]time.Time, error)
	CountByTypeSince(dbc dbctx.Context, userID uuid.UUID, eventType string, since time.Time) (int64, error)
	TotalsSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (XPTotals, error)
	DeleteByUserSince(dbc dbctx.Context, userID uuid.UUID, since *time.Time) (int64, error)
}

type xpEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewXPEventRepo(db *gorm.DB, baseLog *logger.Logger) XPEventRepo {
	return &xpEventRepo{db: db, log: baseLog.With("repo", "XPEventRepo")}
}

func (r *xpEventRepo) Create(dbc dbctx.Context, ev *types.XPEvent) (*types.XPEvent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if ev == nil {
		return nil, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(ev).Error; err != nil {
		return nil, err
	}
	return ev, nil
}

func (r *xpEventRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.XPEvent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.XPEvent
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// TimestampsSince returns raw creation times; callers bucket them into days
// in the user's own zone.
func (r *xpEventRepo) TimestampsSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]time.Time, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []time.Time
	if err := t.WithContext(dbc.Ctx).
		Model(&types.XPEvent{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Pluck("created_at", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *xpEventRepo) CountByTypeSince(dbc dbctx.Context, userID uuid.UUID, eventType string, since time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.XPEvent{}).
		Where("user_id = ? AND event_type = ? AND created_at >= ?", userID, eventType, since).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *xpEventRepo) TotalsSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (XPTotals, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row struct {
		Earned int64
		Lost   int64
	}
	err := t.WithContext(dbc.Ctx).
		Model(&types.XPEvent{}).
		Select(
			"COALESCE(SUM(CASE WHEN xp_amount > 0 THEN xp_amount ELSE 0 END), 0) AS earned, "+
				"COALESCE(SUM(CASE WHEN xp_amount < 0 THEN -xp_amount ELSE 0 END), 0) AS lost",
		).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Scan(&row).Error
	if err != nil {
		return XPTotals{}, err
	}
	return XPTotals{Earned: row.Earned, Lost: row.Lost}, nil
}

// DeleteByUserSince is the only path that removes ledger rows (history cleanup).
// A nil since wipes the user's whole ledger.
func (r *xpEventRepo) DeleteByUserSince(dbc dbctx.Context, userID uuid.UUID, since *time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Where("user_id = ?", userID)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	res := q.Delete(&types.XPEvent{})
	return res.RowsAffected, res.Error
}
