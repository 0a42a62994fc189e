package reminder_tick

import (
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/reminders"
)

const JobType = "reminder_tick"

type Pipeline struct {
	log        *logger.Logger
	dispatcher *reminders.Dispatcher
}

func New(baseLog *logger.Logger, dispatcher *reminders.Dispatcher) *Pipeline {
	return &Pipeline{
		log:        baseLog.With("job", JobType),
		dispatcher: dispatcher,
	}
}

func (p *Pipeline) Type() string { return JobType }
