package maintenance

import (
	"github.com/yungbote/mentor-backend/internal/jobs/pipeline/achievement_sweep"
	"github.com/yungbote/mentor-backend/internal/jobs/pipeline/missed_habits"
	"github.com/yungbote/mentor-backend/internal/jobs/pipeline/weekly_scores"
)

const (
	WorkflowName   = "mentor_maintenance"
	WorkflowID     = "mentor-maintenance-cron"
	ActivityRunJob = "mentor_maintenance_run_job"
)

// DefaultJobs run in this order: streak resets land before the sweep and the
// weekly report reads the settled state.
var DefaultJobs = []string{
	missed_habits.JobType,
	achievement_sweep.JobType,
	weekly_scores.JobType,
}

type Input struct {
	Jobs []string `json:"jobs,omitempty"`
}

type JobResult struct {
	Job      string         `json:"job"`
	Skipped  bool           `json:"skipped,omitempty"`
	Counters map[string]int `json:"counters,omitempty"`
}

type Result struct {
	Jobs   []JobResult `json:"jobs"`
	Failed []string    `json:"failed,omitempty"`
}
