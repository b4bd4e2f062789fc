package priority_recalculate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/medsupply-backend/internal/domain"
	jobrt "github.com/yungbote/medsupply-backend/internal/jobs/runtime"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
	"github.com/yungbote/medsupply-backend/internal/priority"
)

type stubRecalculator struct {
	calls []string
	fail  bool
}

func (s *stubRecalculator) Recalculate(ctx context.Context, supplyCode string) priority.Report {
	s.calls = append(s.calls, supplyCode)
	if s.fail {
		return priority.Report{SupplyCode: supplyCode, Outcome: priority.OutcomeFailed, Err: errors.New("db down")}
	}
	return priority.Report{SupplyCode: supplyCode, Outcome: priority.OutcomeScored, Candidates: 3, ItemsUpdated: 3, RequestsUpdated: 2}
}

func TestRun(t *testing.T) {
	cases := []struct {
		name       string
		payload    string
		entityKey  string
		fail       bool
		wantStatus string
		wantStage  string
		wantCalls  int
	}{
		{"payload_code", `{"supply_code":"42131600"}`, "", false, "succeeded", "done", 1},
		{"entity_key_fallback", `{}`, "42131600", false, "succeeded", "done", 1},
		{"missing_code", `{}`, "", false, "failed", "validate", 0},
		{"recalculation_failed", `{"supply_code":"42131600"}`, "", true, "failed", "recalculate", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubRecalculator{fail: tc.fail}
			p := New(logger.Nop(), stub)
			job := &types.JobRun{ID: uuid.New(), JobType: p.Type(), EntityKey: tc.entityKey, Payload: []byte(tc.payload)}
			if err := p.Run(jobrt.NewContext(context.Background(), job, nil, nil)); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if job.Status != tc.wantStatus || job.Stage != tc.wantStage {
				t.Fatalf("status=%s stage=%s, want %s/%s", job.Status, job.Stage, tc.wantStatus, tc.wantStage)
			}
			if len(stub.calls) != tc.wantCalls {
				t.Fatalf("calls=%v", stub.calls)
			}
			if tc.wantStatus == "succeeded" {
				var res map[string]any
				if err := json.Unmarshal(job.Result, &res); err != nil {
					t.Fatalf("result: %v", err)
				}
				if res["outcome"] != "scored" || res["items_updated"] != float64(3) {
					t.Fatalf("unexpected result %v", res)
				}
			}
		})
	}
}
