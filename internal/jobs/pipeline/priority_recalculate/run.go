package priority_recalculate

import (
	"fmt"

	jobrt "github.com/yungbote/medsupply-backend/internal/jobs/runtime"
	"github.com/yungbote/medsupply-backend/internal/priority"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	code := jc.PayloadString("supply_code")
	if code == "" {
		code = jc.Job.EntityKey
	}
	if code == "" {
		jc.Fail("validate", fmt.Errorf("missing supply_code"))
		return nil
	}

	jc.Progress("recalculate", 10)
	rep := p.prio.Recalculate(jc.Ctx, code)
	if rep.Outcome == priority.OutcomeFailed {
		err := rep.Err
		if err == nil {
			err = fmt.Errorf("%s", rep.Error)
		}
		jc.Fail("recalculate", err)
		return nil
	}

	jc.Succeed("done", map[string]any{
		"supply_code":      code,
		"outcome":          string(rep.Outcome),
		"candidates":       rep.Candidates,
		"items_updated":    rep.ItemsUpdated,
		"requests_updated": rep.RequestsUpdated,
	})
	return nil
}
