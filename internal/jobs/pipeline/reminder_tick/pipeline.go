package reminder_tick

import (
	jobrt "github.com/yungbote/mentor-backend/internal/jobs/runtime"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	stats, err := p.dispatcher.Tick(jc.DBC())
	if err != nil {
		return err
	}
	jc.Add("users", stats.Users)
	jc.Add("sent", stats.Sent)
	jc.Add("failed", stats.Failed)
	jc.Add("deduped", stats.Deduped)
	return nil
}
