package weekly_scores

import (
	"time"

	"github.com/yungbote/mentor-backend/internal/data/repos"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/reminders"
	"github.com/yungbote/mentor-backend/internal/services"
)

const JobType = "weekly_scores"

// ReportDay is the local weekday on which weekly reports are produced.
const ReportDay = time.Sunday

type Pipeline struct {
	log     *logger.Logger
	clock   clock.Clock
	repos   repos.Set
	reports services.ReportService
	mentor  services.MentorService
	sender  reminders.Sender
	hour    int
}

func New(
	baseLog *logger.Logger,
	clk clock.Clock,
	rs repos.Set,
	reports services.ReportService,
	mentor services.MentorService,
	sender reminders.Sender,
	hour int,
) *Pipeline {
	if hour < 0 || hour > 23 {
		hour = 3
	}
	return &Pipeline{
		log:     baseLog.With("job", JobType),
		clock:   clk,
		repos:   rs,
		reports: reports,
		mentor:  mentor,
		sender:  sender,
		hour:    hour,
	}
}

func (p *Pipeline) Type() string { return JobType }
