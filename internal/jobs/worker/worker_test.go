package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/medsupply-backend/internal/data/repos"
	"github.com/yungbote/medsupply-backend/internal/data/repos/testutil"
	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/jobs/runtime"
	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
)

type funcHandler struct {
	jobType string
	run     func(jc *runtime.Context) error
}

func (h funcHandler) Type() string { return h.jobType }
func (h funcHandler) Run(jc *runtime.Context) error { return h.run(jc) }

type countingObserver struct {
	statuses map[string]string
}

func (o *countingObserver) ObserveJob(jobType, status string, dur time.Duration) {
	o.statuses[jobType] = status
}

func TestRunOnce(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := repos.NewJobRunRepo(db, log)
	dbc := dbctx.Context{Ctx: context.Background()}

	var seenCode string
	reg := runtime.NewRegistry()
	handlers := []runtime.Handler{
		funcHandler{"ok_implicit", func(jc *runtime.Context) error {
			seenCode = jc.PayloadString("supply_code")
			return nil
		}},
		funcHandler{"ok_explicit", func(jc *runtime.Context) error {
			jc.Progress("work", 50)
			jc.Succeed("finished", map[string]any{"n": 1})
			return nil
		}},
		funcHandler{"returns_error", func(jc *runtime.Context) error { return errors.New("boom") }},
		funcHandler{"panics", func(jc *runtime.Context) error { panic("kaboom") }},
	}
	if err := reg.RegisterAll(handlers...); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if err := reg.Register(handlers[0]); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := reg.Register(funcHandler{" ", nil}); err == nil {
		t.Fatalf("expected empty job_type error")
	}

	obs := &countingObserver{statuses: map[string]string{}}
	w := NewWorker(log, repo, reg, nil, obs, Config{})

	cases := []struct {
		jobType   string
		payload   string
		wantState string
		wantStage string
	}{
		{"ok_implicit", `{"supply_code":"42131600"}`, "succeeded", "done"},
		{"ok_explicit", `{}`, "succeeded", "finished"},
		{"returns_error", `{}`, "failed", "run"},
		{"panics", `{}`, "failed", "panic"},
		{"unknown_type", `{}`, "failed", "dispatch"},
	}
	for i, tc := range cases {
		t.Run(tc.jobType, func(t *testing.T) {
			job := &types.JobRun{
				JobType:   tc.jobType,
				Payload:   []byte(tc.payload),
				CreatedAt: time.Now().UTC().Add(time.Duration(i-len(cases)) * time.Minute),
			}
			if _, err := repo.Create(dbc, []*types.JobRun{job}); err != nil {
				t.Fatalf("Create: %v", err)
			}
			if !w.RunOnce(context.Background(), 1) {
				t.Fatalf("RunOnce claimed nothing")
			}
			rows, err := repo.GetByIDs(dbc, []uuid.UUID{job.ID})
			if err != nil || len(rows) != 1 {
				t.Fatalf("GetByIDs: %v %d", err, len(rows))
			}
			got := rows[0]
			if got.Status != tc.wantState || got.Stage != tc.wantStage {
				t.Fatalf("status=%s stage=%s, want %s/%s", got.Status, got.Stage, tc.wantState, tc.wantStage)
			}
			if obs.statuses[tc.jobType] != tc.wantState {
				t.Fatalf("observer saw %q, want %q", obs.statuses[tc.jobType], tc.wantState)
			}
		})
	}
	if seenCode != "42131600" {
		t.Fatalf("handler saw supply_code %q", seenCode)
	}
}

func TestRunOnceEmptyQueue(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	w := NewWorker(log, repos.NewJobRunRepo(db, log), runtime.NewRegistry(), nil, nil, Config{})
	if w.RunOnce(context.Background(), 1) {
		t.Fatalf("RunOnce on empty queue reported a claim")
	}
}
