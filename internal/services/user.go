package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/data/db"
	"github.com/yungbote/mentor-backend/internal/data/repos"
	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/domain/user"
	"github.com/yungbote/mentor-backend/internal/gamification"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/mentor-backend/internal/pkg/errors"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

type ProfileInput struct {
	DisplayName    *string  `json:"display_name"`
	TechStack      []string `json:"tech_stack"`
	Goals          []string `json:"goals"`
	KnowledgeLevel *string  `json:"knowledge_level"`
	Timezone       *string  `json:"timezone"`
	MentorName     *string  `json:"mentor_name"`
	MentorPersona  *string  `json:"mentor_persona"`
}

type ProfileResult struct {
	User         *types.User           `json:"user"`
	XPEarned     int                   `json:"xp_earned,omitempty"`
	Achievements []UnlockedAchievement `json:"achievements,omitempty"`
}

type ProgressView struct {
	Level      int     `json:"level"`
	XP         int     `json:"xp"`
	TotalXP    int     `json:"total_xp"`
	ToNext     int     `json:"xp_to_next"`
	Fraction   float64 `json:"fraction"`
	Discipline float64 `json:"discipline_score"`
	Growth     float64 `json:"growth_score"`
	Text       string  `json:"text"`
}

type UserService interface {
	// Bootstrap returns the user bound to chatID, creating it on first contact.
	Bootstrap(dbc dbctx.Context, chatID int64, username, firstName string) (*types.User, bool, error)
	GetUser(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
	UpdateProfile(dbc dbctx.Context, userID uuid.UUID, in ProfileInput) (*ProfileResult, error)
	GetSettings(dbc dbctx.Context, userID uuid.UUID) (user.Settings, error)
	PatchSettings(dbc dbctx.Context, userID uuid.UUID, patch []byte) (user.Settings, error)
	Progress(dbc dbctx.Context, userID uuid.UUID) (*ProgressView, error)
}

type userService struct {
	db           *gorm.DB
	log          *logger.Logger
	clock        clock.Clock
	tx           db.TxRunner
	users        repos.UserRepo
	events       repos.XPEventRepo
	ledger       LedgerService
	achievements AchievementService
}

func NewUserService(
	gdb *gorm.DB,
	log *logger.Logger,
	clk clock.Clock,
	users repos.UserRepo,
	events repos.XPEventRepo,
	ledger LedgerService,
	achievements AchievementService,
) UserService {
	return &userService{
		db:           gdb,
		log:          log.With("service", "UserService"),
		clock:        clk,
		tx:           db.NewTxRunner(gdb),
		users:        users,
		events:       events,
		ledger:       ledger,
		achievements: achievements,
	}
}

func (us *userService) Bootstrap(dbc dbctx.Context, chatID int64, username, firstName string) (*types.User, bool, error) {
	if chatID == 0 {
		return nil, false, pkgerrors.Invalidf("chat id")
	}
	var (
		out     *types.User
		created bool
	)
	err := us.tx.InTx(dbc, func(dbc dbctx.Context) error {
		u, err := us.users.GetByChatID(dbc, chatID)
		if err != nil {
			return fmt.Errorf("lookup chat: %w", err)
		}
		if u != nil {
			updates := map[string]any{}
			if username != "" && username != u.Username {
				updates["username"] = username
				u.Username = username
			}
			if firstName != "" && firstName != u.FirstName {
				updates["first_name"] = firstName
				u.FirstName = firstName
			}
			if len(updates) > 0 {
				if err := us.users.UpdateFields(dbc, u.ID, updates); err != nil {
					return fmt.Errorf("refresh user: %w", err)
				}
			}
			out = u
			return nil
		}
		settings, err := user.DefaultSettings().Encode()
		if err != nil {
			return err
		}
		u, err = us.users.Create(dbc, &types.User{
			ChatID:    chatID,
			Username:  strings.TrimSpace(username),
			FirstName: strings.TrimSpace(firstName),
			Timezone:  clock.DefaultZone,
			Level:     1,
			Settings:  settings,
			IsActive:  true,
			TechStack: user.EncodeList(nil),
			Goals:     user.EncodeList(nil),
		})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		out, created = u, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		us.log.Info("user bootstrapped", "user_id", out.ID, "chat_id", chatID)
	}
	return out, created, nil
}

func (us *userService) GetUser(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	return requireUser(dbc, us.users, userID)
}

func (us *userService) UpdateProfile(dbc dbctx.Context, userID uuid.UUID, in ProfileInput) (*ProfileResult, error) {
	out := &ProfileResult{}
	err := us.tx.InTx(dbc, func(dbc dbctx.Context) error {
		u, err := requireUser(dbc, us.users, userID)
		if err != nil {
			return err
		}
		wasFilled := u.ProfileFilled()
		updates := map[string]any{}
		if in.DisplayName != nil {
			u.DisplayName = truncateRunes(strings.TrimSpace(*in.DisplayName), 100)
			updates["display_name"] = u.DisplayName
		}
		if in.TechStack != nil {
			u.TechStack = user.EncodeList(in.TechStack)
			updates["tech_stack"] = u.TechStack
		}
		if in.Goals != nil {
			u.Goals = user.EncodeList(in.Goals)
			updates["goals"] = u.Goals
		}
		if in.KnowledgeLevel != nil {
			u.KnowledgeLevel = strings.TrimSpace(*in.KnowledgeLevel)
			updates["knowledge_level"] = u.KnowledgeLevel
		}
		if in.Timezone != nil {
			tz := strings.TrimSpace(*in.Timezone)
			if _, err := time.LoadLocation(tz); err != nil || tz == "" {
				return pkgerrors.Invalidf("timezone %q", tz)
			}
			u.Timezone = tz
			updates["timezone"] = tz
		}
		if in.MentorName != nil || in.MentorPersona != nil {
			s := u.ParsedSettings()
			if in.MentorName != nil {
				s.MentorName = strings.TrimSpace(*in.MentorName)
			}
			if in.MentorPersona != nil {
				s.MentorPersona = strings.ToLower(strings.TrimSpace(*in.MentorPersona))
			}
			if err := s.Validate(); err != nil {
				return pkgerrors.Invalidf("%v", err)
			}
			raw, err := s.Encode()
			if err != nil {
				return err
			}
			u.Settings = raw
			updates["settings"] = raw
		}
		if len(updates) > 0 {
			if err := us.users.UpdateFields(dbc, userID, updates); err != nil {
				return fmt.Errorf("update profile: %w", err)
			}
		}
		out.User = u

		if wasFilled || !u.ProfileFilled() {
			return nil
		}
		paid, err := us.events.CountByTypeSince(dbc, userID, gamification.EventProfileSetup, time.Time{})
		if err != nil {
			return fmt.Errorf("profile reward lookup: %w", err)
		}
		if paid > 0 {
			return nil
		}
		award, err := us.ledger.Award(dbc, AwardInput{
			UserID:      userID,
			EventType:   gamification.EventProfileSetup,
			Description: "Profile completed",
		})
		if err != nil {
			return err
		}
		out.XPEarned = award.Amount
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.XPEarned > 0 {
		out.Achievements = evaluateAfter(us.achievements, us.log, dbc, userID)
	}
	return out, nil
}

func (us *userService) GetSettings(dbc dbctx.Context, userID uuid.UUID) (user.Settings, error) {
	u, err := requireUser(dbc, us.users, userID)
	if err != nil {
		return user.Settings{}, err
	}
	return u.ParsedSettings(), nil
}

func (us *userService) PatchSettings(dbc dbctx.Context, userID uuid.UUID, patch []byte) (user.Settings, error) {
	var out user.Settings
	err := us.tx.InTx(dbc, func(dbc dbctx.Context) error {
		u, err := requireUser(dbc, us.users, userID)
		if err != nil {
			return err
		}
		next, err := u.ParsedSettings().Patch(patch)
		if err != nil {
			return pkgerrors.Invalidf("%v", err)
		}
		raw, err := next.Encode()
		if err != nil {
			return err
		}
		if err := us.users.UpdateFields(dbc, userID, map[string]any{"settings": raw}); err != nil {
			return fmt.Errorf("store settings: %w", err)
		}
		out = next
		return nil
	})
	return out, err
}

func (us *userService) Progress(dbc dbctx.Context, userID uuid.UUID) (*ProgressView, error) {
	u, err := requireUser(dbc, us.users, userID)
	if err != nil {
		return nil, err
	}
	return progressView(u), nil
}

func progressView(u *types.User) *ProgressView {
	p := gamification.ProgressFor(u.TotalXPEarned)
	return &ProgressView{
		Level:      max(p.Level, u.Level),
		XP:         u.XP,
		TotalXP:    u.TotalXPEarned,
		ToNext:     p.ToNext,
		Fraction:   p.Fraction,
		Discipline: u.DisciplineScore,
		Growth:     u.GrowthScore,
		Text:       gamification.FormatLevelProgress(u.TotalXPEarned),
	}
}
