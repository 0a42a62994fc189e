package journal

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

type EntryFilter struct {
	Tag   string
	Query string
	Limit int
}

type EntryRepo interface {
	Create(dbc dbctx.Context, e *types.JournalEntry) (*types.JournalEntry, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.JournalEntry, error)
	List(dbc dbctx.Context, userID uuid.UUID, f EntryFilter) ([]*types.JournalEntry, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	CountSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (int64, error)
	DeleteByUserSince(dbc dbctx.Context, userID uuid.UUID, since *time.Time) (int64, error)
}

type entryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntryRepo(db *gorm.DB, baseLog *logger.Logger) EntryRepo {
	return &entryRepo{db: db, log: baseLog.With("repo", "JournalEntryRepo")}
}

func (r *entryRepo) Create(dbc dbctx.Context, e *types.JournalEntry) (*types.JournalEntry, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

func (r *entryRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.JournalEntry, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var e types.JournalEntry
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List orders newest first. Tag matching runs in Go so it behaves the same
// on jsonb and on SQLite text columns.
func (r *entryRepo) List(dbc dbctx.Context, userID uuid.UUID, f EntryFilter) ([]*types.JournalEntry, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Where("user_id = ?", userID)
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(content) LIKE ?)", like, like)
	}
	tag := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f.Tag), "#"))
	if tag == "" && f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []*types.JournalEntry
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	if tag == "" {
		return rows, nil
	}
	out := make([]*types.JournalEntry, 0, len(rows))
	for _, e := range rows {
		for _, et := range e.TagList() {
			if et == tag {
				out = append(out, e)
				break
			}
		}
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func (r *entryRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.JournalEntry{}).Error
}

func (r *entryRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).Model(&types.JournalEntry{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *entryRepo) CountSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.JournalEntry{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *entryRepo) DeleteByUserSince(dbc dbctx.Context, userID uuid.UUID, since *time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Where("user_id = ?", userID)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	res := q.Delete(&types.JournalEntry{})
	return res.RowsAffected, res.Error
}
