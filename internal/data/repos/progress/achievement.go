package progress

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbpkg "github.com/yungbote/mentor-backend/internal/data/db"
	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

type AchievementRepo interface {
	// Seed inserts catalog rows whose code is not yet present and reports how many were new.
	Seed(dbc dbctx.Context, rows []*types.Achievement) (int64, error)
	ListAll(dbc dbctx.Context) ([]*types.Achievement, error)
	GetByCode(dbc dbctx.Context, code string) (*types.Achievement, error)
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return &achievementRepo{db: db, log: baseLog.With("repo", "AchievementRepo")}
}

func (r *achievementRepo) Seed(dbc dbctx.Context, rows []*types.Achievement) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&rows)
	return res.RowsAffected, res.Error
}

func (r *achievementRepo) ListAll(dbc dbctx.Context) ([]*types.Achievement, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Achievement
	if err := t.WithContext(dbc.Ctx).Order("category ASC, condition_value ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *achievementRepo) GetByCode(dbc dbctx.Context, code string) (*types.Achievement, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var a types.Achievement
	err := t.WithContext(dbc.Ctx).Where("code = ?", code).Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

type UserAchievementRepo interface {
	// Unlock inserts the (user, achievement) pair. It returns false when the pair already exists.
	Unlock(dbc dbctx.Context, userID, achievementID uuid.UUID, at time.Time) (bool, error)
	UnlockedIDs(dbc dbctx.Context, userID uuid.UUID) (map[uuid.UUID]bool, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAchievement, error)
	DeleteByUserSince(dbc dbctx.Context, userID uuid.UUID, since *time.Time) (int64, error)
}

type userAchievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
	return &userAchievementRepo{db: db, log: baseLog.With("repo", "UserAchievementRepo")}
}

func (r *userAchievementRepo) Unlock(dbc dbctx.Context, userID, achievementID uuid.UUID, at time.Time) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	row := &types.UserAchievement{UserID: userID, AchievementID: achievementID, UnlockedAt: at.UTC()}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		if dbpkg.IsUniqueViolation(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userAchievementRepo) UnlockedIDs(dbc dbctx.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var ids []uuid.UUID
	if err := t.WithContext(dbc.Ctx).
		Model(&types.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *userAchievementRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAchievement, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.UserAchievement
	if err := t.WithContext(dbc.Ctx).
		Preload("Achievement").
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userAchievementRepo) DeleteByUserSince(dbc dbctx.Context, userID uuid.UUID, since *time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Where("user_id = ?", userID)
	if since != nil {
		q = q.Where("unlocked_at >= ?", *since)
	}
	res := q.Delete(&types.UserAchievement{})
	return res.RowsAffected, res.Error
}
