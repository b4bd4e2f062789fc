package inventory_alert_check

import (
	jobrt "github.com/yungbote/medsupply-backend/internal/jobs/runtime"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	jc.Progress("check", 5)
	rep, err := p.alerts.Check(jc.Ctx)
	if err != nil {
		jc.Fail("check", err)
		return nil
	}
	jc.Succeed("done", map[string]any{
		"low_stock": rep.LowStock,
		"expiring":  rep.Expiring,
		"capacity":  rep.Capacity,
		"existing":  rep.Existing,
	})
	return nil
}
