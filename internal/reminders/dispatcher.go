package reminders

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/mentor-backend/internal/data/repos"
	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/domain/user"
	"github.com/yungbote/mentor-backend/internal/gamification"
	"github.com/yungbote/mentor-backend/internal/observability"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

const (
	KindTask    = "task"
	KindHabit   = "habit"
	KindMorning = "morning"
	KindEvening = "evening"
)

const (
	morningText = "🌅 Good morning! Check your tasks and start with the most important one."
	eveningText = "🌙 Evening check-in: close at least 1 task and mark your habits."
)

// Sender delivers text to a messenger chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

type TickStats struct {
	Users   int `json:"users"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Deduped int `json:"deduped"`
}

// Dispatcher sends task, habit and daily prompts that are due in each
// user's local minute. One Tick covers one minute.
type Dispatcher struct {
	log    *logger.Logger
	clock  clock.Clock
	users  repos.UserRepo
	tasks  repos.TaskRepo
	habits repos.HabitRepo
	sender Sender
	dedup  DedupStore
}

func NewDispatcher(log *logger.Logger, clk clock.Clock, rs repos.Set, sender Sender, dedup DedupStore) *Dispatcher {
	return &Dispatcher{
		log:    log.With("component", "ReminderDispatcher"),
		clock:  clk,
		users:  rs.Users,
		tasks:  rs.Tasks,
		habits: rs.Habits,
		sender: sender,
		dedup:  dedup,
	}
}

func (d *Dispatcher) Tick(dbc dbctx.Context) (TickStats, error) {
	var stats TickStats
	start := time.Now()
	ctx, span := observability.StartSpan(dbc.Ctx, "reminders.tick")
	defer span.End()
	dbc.Ctx = ctx

	users, err := d.users.ListActive(dbc)
	if err != nil {
		d.log.Warn("reminder tick skipped", "error", err)
		return stats, fmt.Errorf("list active users: %w", err)
	}
	now := d.clock.Now()
	for _, u := range users {
		if u.ChatID == 0 {
			continue
		}
		stats.Users++
		if err := d.dispatchUser(dbc, u, now, &stats); err != nil {
			// One user's lookup failure never aborts the tick.
			d.log.Warn("reminder user skipped", "user_id", u.ID, "error", err)
		}
	}

	span.SetAttributes(
		attribute.Int("reminders.users", stats.Users),
		attribute.Int("reminders.sent", stats.Sent),
		attribute.Int("reminders.failed", stats.Failed),
	)
	observability.Current().ObserveTick(time.Since(start))
	if stats.Sent > 0 || stats.Failed > 0 {
		d.log.Info("reminder tick", "users", stats.Users, "sent", stats.Sent, "failed", stats.Failed, "deduped", stats.Deduped)
	}
	return stats, nil
}

func (d *Dispatcher) dispatchUser(dbc dbctx.Context, u *types.User, now time.Time, stats *TickStats) error {
	local := now.In(clock.Location(u.Timezone))
	hhmm := local.Format("15:04")
	today := local.Format(clock.DateLayout)
	notif := u.ParsedSettings().Notifications

	if notif.TaskRemindDefault {
		tasks, err := d.tasks.ListDueReminders(dbc, u.ID, hhmm, today)
		if err != nil {
			return fmt.Errorf("due tasks: %w", err)
		}
		for _, t := range tasks {
			text := t.RemindText
			if text == "" {
				text = notif.RenderTemplate(t.Title)
			}
			key := fmt.Sprintf("task:%s:%s:%s:%s", u.ID, t.ID, today, hhmm)
			d.deliver(dbc.Ctx, u, KindTask, key, text, stats)
		}
	}

	if notif.HabitRemindDefault {
		habits, err := d.habits.ListDueReminders(dbc, u.ID, hhmm, gamification.WeekdayBit(local))
		if err != nil {
			return fmt.Errorf("due habits: %w", err)
		}
		for _, h := range habits {
			text := h.RemindText
			if text == "" {
				text = fmt.Sprintf("🔄 Time for your habit: %s %s", h.Emoji, h.Name)
			}
			key := fmt.Sprintf("habit:%s:%s:%s:%s", u.ID, h.ID, today, hhmm)
			d.deliver(dbc.Ctx, u, KindHabit, key, text, stats)
		}
	}

	d.daily(dbc.Ctx, u, notif, KindMorning, hhmm, today, stats)
	d.daily(dbc.Ctx, u, notif, KindEvening, hhmm, today, stats)
	return nil
}

func (d *Dispatcher) daily(ctx context.Context, u *types.User, n user.NotificationSettings, kind, hhmm, today string, stats *TickStats) {
	enabled, at, text := n.Morning, n.MorningTime, morningText
	if kind == KindEvening {
		enabled, at, text = n.Evening, n.EveningTime, eveningText
	}
	if !enabled || at != hhmm {
		return
	}
	d.deliver(ctx, u, kind, fmt.Sprintf("%s:%s:%s:%s", kind, u.ID, today, hhmm), text, stats)
}

// deliver marks key before sending, so a failed send is not retried within the minute.
func (d *Dispatcher) deliver(ctx context.Context, u *types.User, kind, key, text string, stats *TickStats) {
	seen, err := d.dedup.Seen(ctx, key)
	if err != nil {
		d.log.Warn("reminder dedup failed", "user_id", u.ID, "kind", kind, "error", err)
		stats.Failed++
		observability.Current().IncReminder(kind, "dedup_error")
		return
	}
	if seen {
		stats.Deduped++
		observability.Current().IncReminder(kind, "deduped")
		return
	}
	if err := d.sender.Send(ctx, u.ChatID, text); err != nil {
		d.log.Debug("reminder delivery failed", "user_id", u.ID, "chat_id", u.ChatID, "kind", kind, "error", err)
		stats.Failed++
		observability.Current().IncReminder(kind, "failed")
		return
	}
	stats.Sent++
	observability.Current().IncReminder(kind, "sent")
}
