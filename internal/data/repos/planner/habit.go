package planner

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

type HabitRepo interface {
	Create(dbc dbctx.Context, h *types.Habit) (*types.Habit, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Habit, error)
	ListActive(dbc dbctx.Context, userID uuid.UUID) ([]*types.Habit, error)
	// ListDueReminders returns active habits reminding at hhmm whose mask includes weekdayBit.
	ListDueReminders(dbc dbctx.Context, userID uuid.UUID, hhmm string, weekdayBit int) ([]*types.Habit, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error
}

type habitRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHabitRepo(db *gorm.DB, baseLog *logger.Logger) HabitRepo {
	return &habitRepo{db: db, log: baseLog.With("repo", "HabitRepo")}
}

func (r *habitRepo) Create(dbc dbctx.Context, h *types.Habit) (*types.Habit, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).Create(h).Error; err != nil {
		return nil, err
	}
	return h, nil
}

func (r *habitRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Habit, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var h types.Habit
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).Take(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *habitRepo) ListActive(dbc dbctx.Context, userID uuid.UUID) ([]*types.Habit, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Habit
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *habitRepo) ListDueReminders(dbc dbctx.Context, userID uuid.UUID, hhmm string, weekdayBit int) ([]*types.Habit, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Habit
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND is_active = ? AND remind_enabled = ? AND remind_time = ?", userID, true, true, hhmm).
		Where("(schedule_mask & ?) <> 0", 1<<weekdayBit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *habitRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Model(&types.Habit{}).Where("id = ?", id).Updates(updates).Error
}

func (r *habitRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).Model(&types.Habit{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *habitRepo) DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Where("user_id = ?", userID).Delete(&types.Habit{}).Error
}
