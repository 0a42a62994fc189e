package planner

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

var activeStatuses = []string{types.TaskStatusTodo, types.TaskStatusInProgress}

type TaskRepo interface {
	Create(dbc dbctx.Context, task *types.Task) (*types.Task, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Task, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, statuses []string, limit int) ([]*types.Task, error)
	ListActive(dbc dbctx.Context, userID uuid.UUID) ([]*types.Task, error)
	ListDueReminders(dbc dbctx.Context, userID uuid.UUID, hhmm, today string) ([]*types.Task, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	// MarkDone flips a not-yet-done task to done. false means another caller
	// completed it first.
	MarkDone(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error

	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	CountByStatus(dbc dbctx.Context, userID uuid.UUID, statuses ...string) (int64, error)
	CountCreatedSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (int64, error)
	CountCompletedSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (int64, error)
	CountOverdue(dbc dbctx.Context, userID uuid.UUID, today string) (int64, error)
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return &taskRepo{db: db, log: baseLog.With("repo", "TaskRepo")}
}

func (r *taskRepo) Create(dbc dbctx.Context, task *types.Task) (*types.Task, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).Create(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Task, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var task types.Task
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).Take(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, statuses []string, limit int) ([]*types.Task, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Where("user_id = ?", userID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.Task
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) ListActive(dbc dbctx.Context, userID uuid.UUID) ([]*types.Task, error) {
	return r.ListByUser(dbc, userID, activeStatuses, 0)
}

// ListDueReminders returns active tasks reminding at hhmm that are undated or due today.
func (r *taskRepo) ListDueReminders(dbc dbctx.Context, userID uuid.UUID, hhmm, today string) ([]*types.Task, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Task
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND remind_enabled = ? AND remind_time = ?", userID, true, hhmm).
		Where("status IN ?", activeStatuses).
		Where("(deadline IS NULL OR deadline = '' OR deadline = ?)", today).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Model(&types.Task{}).Where("id = ?", id).Updates(updates).Error
}

func (r *taskRepo) MarkDone(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Task{}).
		Where("id = ? AND status <> ?", id, types.TaskStatusDone).
		Updates(map[string]any{"status": types.TaskStatusDone, "completed_at": at.UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *taskRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).Where("task_id = ?", id).Delete(&types.TaskLog{}).Error; err != nil {
		return err
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Task{}).Error
}

func (r *taskRepo) DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	sub := t.WithContext(dbc.Ctx).Model(&types.Task{}).Select("id").Where("user_id = ?", userID)
	if err := t.WithContext(dbc.Ctx).Where("task_id IN (?)", sub).Delete(&types.TaskLog{}).Error; err != nil {
		return err
	}
	return t.WithContext(dbc.Ctx).Where("user_id = ?", userID).Delete(&types.Task{}).Error
}

func (r *taskRepo) count(dbc dbctx.Context, scope func(*gorm.DB) *gorm.DB) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := scope(t.WithContext(dbc.Ctx).Model(&types.Task{})).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *taskRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	return r.count(dbc, func(q *gorm.DB) *gorm.DB { return q.Where("user_id = ?", userID) })
}

func (r *taskRepo) CountByStatus(dbc dbctx.Context, userID uuid.UUID, statuses ...string) (int64, error) {
	return r.count(dbc, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ? AND status IN ?", userID, statuses)
	})
}

func (r *taskRepo) CountCreatedSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (int64, error) {
	return r.count(dbc, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ? AND created_at >= ?", userID, since)
	})
}

func (r *taskRepo) CountCompletedSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (int64, error) {
	return r.count(dbc, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ? AND status = ? AND completed_at >= ?", userID, types.TaskStatusDone, since)
	})
}

// CountOverdue counts active tasks whose deadline is strictly before today.
func (r *taskRepo) CountOverdue(dbc dbctx.Context, userID uuid.UUID, today string) (int64, error) {
	return r.count(dbc, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ? AND status IN ? AND deadline IS NOT NULL AND deadline <> '' AND deadline < ?",
			userID, activeStatuses, today)
	})
}

type TaskLogRepo interface {
	Create(dbc dbctx.Context, l *types.TaskLog) error
	ListByTask(dbc dbctx.Context, taskID uuid.UUID) ([]*types.TaskLog, error)
}

type taskLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskLogRepo(db *gorm.DB, baseLog *logger.Logger) TaskLogRepo {
	return &taskLogRepo{db: db, log: baseLog.With("repo", "TaskLogRepo")}
}

func (r *taskLogRepo) Create(dbc dbctx.Context, l *types.TaskLog) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(l).Error
}

func (r *taskLogRepo) ListByTask(dbc dbctx.Context, taskID uuid.UUID) ([]*types.TaskLog, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.TaskLog
	if err := t.WithContext(dbc.Ctx).Where("task_id = ?", taskID).Order("changed_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
