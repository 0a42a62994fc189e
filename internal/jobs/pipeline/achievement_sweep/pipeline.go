package achievement_sweep

import (
	"fmt"

	jobrt "github.com/yungbote/mentor-backend/internal/jobs/runtime"
)

// Run re-evaluates every active user. Evaluate is idempotent, so a sweep
// only picks up unlocks that a request path missed.
func (p *Pipeline) Run(jc *jobrt.Context) error {
	dbc := jc.DBC()
	if _, err := p.achievements.SeedCatalog(dbc); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	users, err := p.users.ListActive(dbc)
	if err != nil {
		return fmt.Errorf("list active users: %w", err)
	}
	for _, u := range users {
		if jc.Ctx.Err() != nil {
			return jc.Ctx.Err()
		}
		unlocked, err := p.achievements.Evaluate(dbc, u.ID)
		if err != nil {
			p.log.Warn("achievement evaluate failed", "user_id", u.ID, "error", err)
			jc.Add("failed", 1)
			continue
		}
		jc.Add("users", 1)
		jc.Add("unlocked", len(unlocked))
	}
	return nil
}
