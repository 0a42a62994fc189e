package missed_habits

import (
	"fmt"

	jobrt "github.com/yungbote/mentor-backend/internal/jobs/runtime"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	dbc := jc.DBC()
	users, err := p.users.ListActive(dbc)
	if err != nil {
		return fmt.Errorf("list active users: %w", err)
	}
	now := p.clock.Now()
	for _, u := range users {
		if jc.Ctx.Err() != nil {
			return jc.Ctx.Err()
		}
		local := now.In(clock.Location(u.Timezone))
		today := local.Format(clock.DateLayout)
		if local.Hour() < p.hour || u.MissedCheckedOn == today {
			jc.Add("skipped", 1)
			continue
		}

		res, err := p.habits.CheckMissedHabits(dbc, u.ID)
		if err != nil {
			p.log.Warn("missed habits check failed", "user_id", u.ID, "error", err)
			jc.Add("failed", 1)
			continue
		}
		if err := p.users.UpdateFields(dbc, u.ID, map[string]any{"missed_checked_on": today}); err != nil {
			return fmt.Errorf("mark user checked: %w", err)
		}
		jc.Add("checked", 1)
		jc.Add("missed", len(res.Missed))
	}
	return nil
}
