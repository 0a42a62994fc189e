package missed_habits

import (
	"github.com/yungbote/mentor-backend/internal/data/repos"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/services"
)

const JobType = "missed_habits"

// Pipeline resets streaks for habits missed yesterday, once per user per
// local day, after the user's clock passes the maintenance hour.
type Pipeline struct {
	log    *logger.Logger
	clock  clock.Clock
	users  repos.UserRepo
	habits services.HabitService
	hour   int
}

func New(baseLog *logger.Logger, clk clock.Clock, users repos.UserRepo, habits services.HabitService, hour int) *Pipeline {
	if hour < 0 || hour > 23 {
		hour = 3
	}
	return &Pipeline{
		log:    baseLog.With("job", JobType),
		clock:  clk,
		users:  users,
		habits: habits,
		hour:   hour,
	}
}

func (p *Pipeline) Type() string { return JobType }
