package progress

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

type WeeklyReportRepo interface {
	Create(dbc dbctx.Context, rep *types.WeeklyReport) (*types.WeeklyReport, error)
	LatestByUser(dbc dbctx.Context, userID uuid.UUID) (*types.WeeklyReport, error)
	DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error
}

type weeklyReportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWeeklyReportRepo(db *gorm.DB, baseLog *logger.Logger) WeeklyReportRepo {
	return &weeklyReportRepo{db: db, log: baseLog.With("repo", "WeeklyReportRepo")}
}

func (r *weeklyReportRepo) Create(dbc dbctx.Context, rep *types.WeeklyReport) (*types.WeeklyReport, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).Create(rep).Error; err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *weeklyReportRepo) LatestByUser(dbc dbctx.Context, userID uuid.UUID) (*types.WeeklyReport, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rep types.WeeklyReport
	err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Take(&rep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *weeklyReportRepo) DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Where("user_id = ?", userID).Delete(&types.WeeklyReport{}).Error
}
