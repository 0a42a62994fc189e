package maintenance

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// Workflow runs each maintenance job as its own activity. A failing job does
// not stop the ones after it; the run fails at the end so the cron history shows it.
func Workflow(ctx workflow.Context, in Input) (Result, error) {
	jobs := in.Jobs
	if len(jobs) == 0 {
		jobs = DefaultJobs
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    10 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    2 * time.Minute,
			MaximumAttempts:    3,
		},
	})
	logger := workflow.GetLogger(ctx)

	res := Result{Jobs: make([]JobResult, 0, len(jobs))}
	for _, job := range jobs {
		var out JobResult
		if err := workflow.ExecuteActivity(ctx, ActivityRunJob, job).Get(ctx, &out); err != nil {
			logger.Warn("Maintenance job failed", "job", job, "error", err)
			res.Failed = append(res.Failed, job)
			continue
		}
		res.Jobs = append(res.Jobs, out)
	}
	if len(res.Failed) > 0 {
		return res, fmt.Errorf("maintenance jobs failed: %s", strings.Join(res.Failed, ", "))
	}
	return res, nil
}
