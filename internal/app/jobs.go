package app

import (
	"fmt"

	"github.com/yungbote/mentor-backend/internal/data/repos"
	"github.com/yungbote/mentor-backend/internal/jobs/pipeline/achievement_sweep"
	"github.com/yungbote/mentor-backend/internal/jobs/pipeline/missed_habits"
	"github.com/yungbote/mentor-backend/internal/jobs/pipeline/reminder_tick"
	"github.com/yungbote/mentor-backend/internal/jobs/pipeline/weekly_scores"
	jobruntime "github.com/yungbote/mentor-backend/internal/jobs/runtime"
	"github.com/yungbote/mentor-backend/internal/jobs/scheduler"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/reminders"
)

type Jobs struct {
	Registry   *jobruntime.Registry
	Scheduler  *scheduler.Scheduler
	Dispatcher *reminders.Dispatcher
}

// wireJobs registers every pipeline. The reminder tick always runs in-process;
// the maintenance jobs are scheduled here only when Temporal is not driving them.
func wireJobs(log *logger.Logger, clk clock.Clock, cfg Config, rs repos.Set, services Services, clients Clients) (Jobs, error) {
	log.Info("Wiring jobs...")

	dispatcher := reminders.NewDispatcher(log, clk, rs, clients.Sender, clients.dedupStore(cfg))

	registry := jobruntime.NewRegistry()
	for _, h := range []jobruntime.Handler{
		reminder_tick.New(log, dispatcher),
		missed_habits.New(log, clk, rs.Users, services.Habit, cfg.MaintenanceHour),
		achievement_sweep.New(log, rs.Users, services.Achievements),
		weekly_scores.New(log, clk, rs, services.Report, services.Mentor, clients.Sender, cfg.MaintenanceHour),
	} {
		if err := registry.Register(h); err != nil {
			return Jobs{}, err
		}
	}

	sched := scheduler.New(log, registry)
	if err := sched.Every(reminder_tick.JobType, cfg.ReminderTick); err != nil {
		return Jobs{}, fmt.Errorf("schedule reminders: %w", err)
	}
	if !cfg.Temporal.Enabled() {
		for _, jobType := range []string{missed_habits.JobType, achievement_sweep.JobType, weekly_scores.JobType} {
			if err := sched.Every(jobType, cfg.MaintenanceTick); err != nil {
				return Jobs{}, fmt.Errorf("schedule %s: %w", jobType, err)
			}
		}
	}

	return Jobs{Registry: registry, Scheduler: sched, Dispatcher: dispatcher}, nil
}
