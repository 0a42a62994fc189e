package planner

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

// HabitLogCounts is completed vs. all logs for a window.
type HabitLogCounts struct {
	Completed int64
	Total     int64
}

type HabitLogRepo interface {
	Create(dbc dbctx.Context, l *types.HabitLog) error
	// Insert skips a row whose (habit, date) already exists and reports
	// whether it wrote one. Safe inside a Postgres transaction.
	Insert(dbc dbctx.Context, l *types.HabitLog) (bool, error)
	GetByHabitDate(dbc dbctx.Context, habitID uuid.UUID, date string) (*types.HabitLog, error)
	// ByHabitInRange indexes the habit's logs in [from, to] by date.
	ByHabitInRange(dbc dbctx.Context, habitID uuid.UUID, from, to string) (map[string]*types.HabitLog, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	CountCompletedByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	CountsByUserSince(dbc dbctx.Context, userID uuid.UUID, fromDate string) (HabitLogCounts, error)
	DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error
}

type habitLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHabitLogRepo(db *gorm.DB, baseLog *logger.Logger) HabitLogRepo {
	return &habitLogRepo{db: db, log: baseLog.With("repo", "HabitLogRepo")}
}

func (r *habitLogRepo) Create(dbc dbctx.Context, l *types.HabitLog) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(l).Error
}

func (r *habitLogRepo) Insert(dbc dbctx.Context, l *types.HabitLog) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "habit_id"}, {Name: "log_date"}},
			DoNothing: true,
		}).
		Create(l)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *habitLogRepo) GetByHabitDate(dbc dbctx.Context, habitID uuid.UUID, date string) (*types.HabitLog, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var l types.HabitLog
	err := t.WithContext(dbc.Ctx).Where("habit_id = ? AND log_date = ?", habitID, date).Take(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *habitLogRepo) ByHabitInRange(dbc dbctx.Context, habitID uuid.UUID, from, to string) (map[string]*types.HabitLog, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.HabitLog
	if err := t.WithContext(dbc.Ctx).
		Where("habit_id = ? AND log_date >= ? AND log_date <= ?", habitID, from, to).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]*types.HabitLog, len(rows))
	for _, l := range rows {
		out[l.LogDate] = l
	}
	return out, nil
}

func (r *habitLogRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Model(&types.HabitLog{}).Where("id = ?", id).Updates(updates).Error
}

func (r *habitLogRepo) CountCompletedByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.HabitLog{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *habitLogRepo) CountsByUserSince(dbc dbctx.Context, userID uuid.UUID, fromDate string) (HabitLogCounts, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row struct {
		Completed int64
		Total     int64
	}
	err := t.WithContext(dbc.Ctx).
		Model(&types.HabitLog{}).
		Select("COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) AS completed, COUNT(*) AS total").
		Where("user_id = ? AND log_date >= ?", userID, fromDate).
		Scan(&row).Error
	if err != nil {
		return HabitLogCounts{}, err
	}
	return HabitLogCounts{Completed: row.Completed, Total: row.Total}, nil
}

func (r *habitLogRepo) DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Where("user_id = ?", userID).Delete(&types.HabitLog{}).Error
}
