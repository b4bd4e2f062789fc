package sweep

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/medsupply-backend/internal/priority"
)

// Workflow recalculates every supply with open items, one activity per
// supply, in waves of at most Input.Concurrency.
func Workflow(ctx workflow.Context, in Input) (Result, error) {
	var out Result
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	})

	var codes []string
	if err := workflow.ExecuteActivity(ctx, ActivityListOutstanding).Get(ctx, &codes); err != nil {
		return out, err
	}
	out.Supplies = len(codes)

	conc := in.Concurrency
	if conc <= 0 {
		conc = DefaultWorkflowConcurrency
	}
	if conc > maxWorkflowConcurrency {
		conc = maxWorkflowConcurrency
	}

	for start := 0; start < len(codes); start += conc {
		end := start + conc
		if end > len(codes) {
			end = len(codes)
		}
		futures := make([]workflow.Future, 0, end-start)
		for _, code := range codes[start:end] {
			futures = append(futures, workflow.ExecuteActivity(ctx, ActivityRecalculateSupply, code))
		}
		for i, f := range futures {
			var res SupplyResult
			if err := f.Get(ctx, &res); err != nil {
				res = SupplyResult{SupplyCode: codes[start+i], Outcome: string(priority.OutcomeFailed), Error: err.Error()}
			}
			if res.Outcome == string(priority.OutcomeFailed) {
				out.Failed++
			} else {
				out.Succeeded++
			}
			out.Results = append(out.Results, res)
		}
	}
	workflow.GetLogger(ctx).Info("priority sweep workflow finished", "supplies", out.Supplies, "failed", out.Failed)
	return out, nil
}
