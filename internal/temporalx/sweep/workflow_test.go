package sweep

import (
	"context"
	"errors"
	"testing"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/yungbote/medsupply-backend/internal/platform/logger"
	"github.com/yungbote/medsupply-backend/internal/priority"
)

type stubPriority struct {
	codes   []string
	listErr error
	failing map[string]bool
}

func (s stubPriority) OutstandingSupplies(ctx context.Context) ([]string, error) {
	return s.codes, s.listErr
}

func (s stubPriority) Recalculate(ctx context.Context, supplyCode string) priority.Report {
	if s.failing[supplyCode] {
		return priority.Report{SupplyCode: supplyCode, Outcome: priority.OutcomeFailed, Error: "store down"}
	}
	return priority.Report{SupplyCode: supplyCode, Outcome: priority.OutcomeScored, ItemsUpdated: 2, RequestsUpdated: 1}
}

func newEnv(t *testing.T, prio PriorityService) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	acts := &Activities{Log: logger.Nop(), Prio: prio}
	env.RegisterActivityWithOptions(acts.ListOutstandingSupplies, activity.RegisterOptions{Name: ActivityListOutstanding})
	env.RegisterActivityWithOptions(acts.RecalculateSupply, activity.RegisterOptions{Name: ActivityRecalculateSupply})
	return env
}

func TestWorkflowContinuesPastFailures(t *testing.T) {
	for _, conc := range []int{0, 2, 50} {
		env := newEnv(t, stubPriority{
			codes:   []string{"A", "B", "C"},
			failing: map[string]bool{"B": true},
		})
		env.ExecuteWorkflow(Workflow, Input{Concurrency: conc})
		if !env.IsWorkflowCompleted() {
			t.Fatalf("concurrency %d: workflow did not complete", conc)
		}
		if err := env.GetWorkflowError(); err != nil {
			t.Fatalf("concurrency %d: workflow error: %v", conc, err)
		}
		var res Result
		if err := env.GetWorkflowResult(&res); err != nil {
			t.Fatalf("result: %v", err)
		}
		if res.Supplies != 3 || res.Succeeded != 2 || res.Failed != 1 || len(res.Results) != 3 {
			t.Fatalf("concurrency %d: unexpected result %+v", conc, res)
		}
		for i, want := range []string{"A", "B", "C"} {
			if res.Results[i].SupplyCode != want {
				t.Fatalf("results out of order: %+v", res.Results)
			}
		}
	}
}

func TestWorkflowEmpty(t *testing.T) {
	env := newEnv(t, stubPriority{})
	env.ExecuteWorkflow(Workflow, Input{})
	var res Result
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatalf("result: %v", err)
	}
	if res.Supplies != 0 || len(res.Results) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestWorkflowListFailure(t *testing.T) {
	env := newEnv(t, stubPriority{listErr: errors.New("db down")})
	env.ExecuteWorkflow(Workflow, Input{})
	if !env.IsWorkflowCompleted() {
		t.Fatalf("workflow did not complete")
	}
	if env.GetWorkflowError() == nil {
		t.Fatalf("expected the workflow to fail when supplies cannot be listed")
	}
}
