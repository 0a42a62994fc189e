package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.temporal.io/sdk/activity"
	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/jobs/scheduler"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

// JobRunner is satisfied by *scheduler.Scheduler.
type JobRunner interface {
	RunOnce(ctx context.Context, jobType string, tx *gorm.DB) (map[string]int, error)
}

type Activities struct {
	Log    *logger.Logger
	Runner JobRunner
}

// RunJob executes one registered job. A job already running in this process
// is reported as skipped rather than retried.
func (a *Activities) RunJob(ctx context.Context, jobType string) (JobResult, error) {
	res := JobResult{Job: strings.TrimSpace(jobType)}
	if a == nil || a.Runner == nil {
		return res, fmt.Errorf("maintenance: activity not configured")
	}
	if res.Job == "" {
		return res, fmt.Errorf("maintenance: empty job type")
	}
	counters, err := a.Runner.RunOnce(ctx, res.Job, nil)
	if errors.Is(err, scheduler.ErrBusy) {
		res.Skipped = true
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.Counters = counters
	if a.Log != nil {
		info := activity.GetInfo(ctx)
		a.Log.Info("Maintenance job finished", "job", res.Job, "workflow_id", info.WorkflowExecution.ID, "attempt", info.Attempt)
	}
	return res, nil
}
