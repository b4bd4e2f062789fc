package sweep

import (
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

func Register(w worker.Worker, acts *Activities) {
	w.RegisterWorkflowWithOptions(Workflow, workflow.RegisterOptions{Name: WorkflowName})
	w.RegisterActivityWithOptions(acts.ListOutstandingSupplies, activity.RegisterOptions{Name: ActivityListOutstanding})
	w.RegisterActivityWithOptions(acts.RecalculateSupply, activity.RegisterOptions{Name: ActivityRecalculateSupply})
}
