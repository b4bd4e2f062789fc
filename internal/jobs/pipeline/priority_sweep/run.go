package priority_sweep

import (
	jobrt "github.com/yungbote/medsupply-backend/internal/jobs/runtime"
)

// Run fails the job only when outstanding supplies could not be listed.
// Per-supply failures are reported in the result.
func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	jc.Progress("sweep", 5)
	rep := p.sweep.RecalculateAllOutstanding(jc.Ctx)
	if rep.Err != nil {
		jc.Fail("sweep", rep.Err)
		return nil
	}
	if rep.Failed > 0 {
		p.log.Warn("priority sweep finished with failures", "job_id", jc.Job.ID, "failed", rep.Failed, "supplies", rep.Supplies)
	}
	jc.Succeed("done", map[string]any{
		"supplies":    rep.Supplies,
		"succeeded":   rep.Succeeded,
		"failed":      rep.Failed,
		"duration_ms": rep.Duration.Milliseconds(),
	})
	return nil
}
