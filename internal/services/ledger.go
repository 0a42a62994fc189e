package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/data/db"
	"github.com/yungbote/mentor-backend/internal/data/repos"
	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/gamification"
	"github.com/yungbote/mentor-backend/internal/observability"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/mentor-backend/internal/pkg/errors"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

type AwardInput struct {
	UserID    uuid.UUID
	EventType string
	// Amount overrides the catalog value for EventType when set.
	Amount      *int
	SourceType  string
	SourceID    *uuid.UUID
	Description string
}

type AwardResult struct {
	Amount    int  `json:"amount"`
	XP        int  `json:"xp"`
	TotalXP   int  `json:"total_xp"`
	Level     int  `json:"level"`
	LeveledUp bool `json:"leveled_up"`
}

// LedgerService appends XP events and keeps the cached progress fields on the
// user row in step with them.
type LedgerService interface {
	Award(dbc dbctx.Context, in AwardInput) (*AwardResult, error)
	Penalize(dbc dbctx.Context, userID uuid.UUID, penaltyType, description string) (*AwardResult, error)
}

type ledgerService struct {
	db     *gorm.DB
	log    *logger.Logger
	tx     db.TxRunner
	users  repos.UserRepo
	events repos.XPEventRepo
}

func NewLedgerService(gdb *gorm.DB, log *logger.Logger, users repos.UserRepo, events repos.XPEventRepo) LedgerService {
	return &ledgerService{
		db:     gdb,
		log:    log.With("service", "LedgerService"),
		tx:     db.NewTxRunner(gdb),
		users:  users,
		events: events,
	}
}

func (ls *ledgerService) Award(dbc dbctx.Context, in AwardInput) (*AwardResult, error) {
	amount := gamification.AwardFor(in.EventType)
	if in.Amount != nil {
		amount = *in.Amount
	}
	return ls.apply(dbc, in, amount)
}

func (ls *ledgerService) Penalize(dbc dbctx.Context, userID uuid.UUID, penaltyType, description string) (*AwardResult, error) {
	in := AwardInput{UserID: userID, EventType: penaltyType, Description: description}
	return ls.apply(dbc, in, gamification.PenaltyFor(penaltyType))
}

func (ls *ledgerService) apply(dbc dbctx.Context, in AwardInput, amount int) (*AwardResult, error) {
	var out *AwardResult
	err := ls.tx.InTx(dbc, func(dbc dbctx.Context) error {
		u, err := ls.users.GetByID(dbc, in.UserID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if u == nil {
			return pkgerrors.NotFoundf("user %s", in.UserID)
		}
		res := &AwardResult{XP: u.XP, TotalXP: u.TotalXPEarned, Level: u.Level}
		if amount == 0 {
			out = res
			return nil
		}

		if _, err := ls.events.Create(dbc, &types.XPEvent{
			UserID:            in.UserID,
			EventType:         in.EventType,
			XPAmount:          amount,
			CountsTowardTotal: amount > 0,
			SourceType:        in.SourceType,
			SourceID:          in.SourceID,
			Description:       truncateRunes(in.Description, 500),
		}); err != nil {
			return fmt.Errorf("append xp event: %w", err)
		}

		res.Amount = amount
		res.XP = max(0, u.XP+amount)
		if amount > 0 {
			res.TotalXP = u.TotalXPEarned + amount
		}
		// Level never drops, even if a stored level is ahead of the curve.
		res.Level = max(u.Level, gamification.LevelFromTotal(res.TotalXP))
		res.LeveledUp = res.Level > u.Level

		if err := ls.users.UpdateFields(dbc, in.UserID, map[string]any{
			"xp":              res.XP,
			"total_xp_earned": res.TotalXP,
			"level":           res.Level,
		}); err != nil {
			return fmt.Errorf("update progress: %w", err)
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Amount != 0 {
		observability.Current().ObserveXP(in.EventType, out.Amount, out.LeveledUp)
		if out.LeveledUp {
			ls.log.Info("level up", "user_id", in.UserID, "level", out.Level)
		}
	}
	return out, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
