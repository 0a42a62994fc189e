package achievement_sweep

import (
	"github.com/yungbote/mentor-backend/internal/data/repos"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/services"
)

const JobType = "achievement_sweep"

type Pipeline struct {
	log          *logger.Logger
	users        repos.UserRepo
	achievements services.AchievementService
}

func New(baseLog *logger.Logger, users repos.UserRepo, achievements services.AchievementService) *Pipeline {
	return &Pipeline{
		log:          baseLog.With("job", JobType),
		users:        users,
		achievements: achievements,
	}
}

func (p *Pipeline) Type() string { return JobType }
