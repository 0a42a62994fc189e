package weekly_scores

import (
	"fmt"
	"time"

	types "github.com/yungbote/mentor-backend/internal/domain"
	jobrt "github.com/yungbote/mentor-backend/internal/jobs/runtime"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
)

// Run produces the weekly report for every user whose local day is the report
// day. Generating the report recalculates discipline and growth. A stored
// report ending today marks the user as done.
func (p *Pipeline) Run(jc *jobrt.Context) error {
	dbc := jc.DBC()
	users, err := p.repos.Users.ListActive(dbc)
	if err != nil {
		return fmt.Errorf("list active users: %w", err)
	}
	now := p.clock.Now()
	for _, u := range users {
		if jc.Ctx.Err() != nil {
			return jc.Ctx.Err()
		}
		due, err := p.due(jc, u, now.In(clock.Location(u.Timezone)))
		if err != nil {
			return err
		}
		if !due {
			jc.Add("skipped", 1)
			continue
		}
		p.runUser(jc, u)
	}
	return nil
}

func (p *Pipeline) due(jc *jobrt.Context, u *types.User, local time.Time) (bool, error) {
	if local.Weekday() != ReportDay || local.Hour() < p.hour {
		return false, nil
	}
	latest, err := p.repos.WeeklyReports.LatestByUser(jc.DBC(), u.ID)
	if err != nil {
		return false, fmt.Errorf("latest weekly report: %w", err)
	}
	return latest == nil || latest.WeekEnd != local.Format(clock.DateLayout), nil
}

// runUser never aborts the sweep; failures are logged and counted.
func (p *Pipeline) runUser(jc *jobrt.Context, u *types.User) {
	dbc := jc.DBC()
	view, err := p.reports.GenerateWeeklyReport(dbc, u.ID)
	if err != nil {
		p.log.Warn("weekly report failed", "user_id", u.ID, "error", err)
		jc.Add("failed", 1)
		return
	}
	jc.Add("reports", 1)

	if compressed, err := p.mentor.CompressMemory(dbc, u.ID); err != nil {
		p.log.Warn("memory compression failed", "user_id", u.ID, "error", err)
	} else if compressed {
		jc.Add("compressed", 1)
	}

	if p.sender == nil || u.ChatID == 0 {
		return
	}
	if err := p.sender.Send(jc.Ctx, u.ChatID, view.Text); err != nil {
		p.log.Debug("weekly report delivery failed", "chat_id", u.ChatID, "error", err)
		jc.Add("undelivered", 1)
		return
	}
	jc.Add("delivered", 1)
}
