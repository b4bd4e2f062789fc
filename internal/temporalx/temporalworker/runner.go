package temporalworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	enumspb "go.temporal.io/api/enums/v1"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"

	"github.com/yungbote/medsupply-backend/internal/platform/logger"
	"github.com/yungbote/medsupply-backend/internal/temporalx"
	"github.com/yungbote/medsupply-backend/internal/temporalx/sweep"
)

const ScheduleID = "priority-sweep"

type Runner struct {
	log         *logger.Logger
	tc          temporalsdkclient.Client
	cfg         temporalx.Config
	acts        *sweep.Activities
	concurrency int
}

// NewRunner hosts the sweep workflow. concurrency is passed to scheduled runs
// and bounds the worker's activity slots.
func NewRunner(baseLog *logger.Logger, tc temporalsdkclient.Client, cfg temporalx.Config, prio sweep.PriorityService, concurrency int) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if prio == nil {
		return nil, fmt.Errorf("temporal worker missing priority service")
	}
	if concurrency < 1 {
		concurrency = 1
	}
	log := baseLog.With("component", "TemporalWorker")
	return &Runner{
		log:         log,
		tc:          tc,
		cfg:         cfg,
		acts:        &sweep.Activities{Log: log, Prio: prio},
		concurrency: concurrency,
	}, nil
}

// Start begins polling and, when a sweep interval is set, makes sure the
// schedule exists. The worker stops when ctx is done.
func (r *Runner) Start(ctx context.Context) error {
	taskQueue := r.taskQueue()
	r.log.Info("starting temporal worker", "address", r.cfg.Address, "namespace", r.cfg.Namespace, "task_queue", taskQueue)

	deadline := time.Now().Add(time.Minute)
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		w := worker.New(r.tc, taskQueue, worker.Options{
			MaxConcurrentActivityExecutionSize:     r.concurrency,
			MaxConcurrentWorkflowTaskExecutionSize: r.concurrency,
		})
		sweep.Register(w, r.acts)
		startErr := w.Start()
		if startErr == nil {
			go func() {
				<-ctx.Done()
				w.Stop()
			}()
			r.log.Info("temporal worker started", "task_queue", taskQueue, "attempts", attempt)
			break
		}
		w.Stop()
		if time.Now().After(deadline) {
			return fmt.Errorf("temporal worker start: %w", startErr)
		}
		r.log.Warn("temporal worker failed to start; retrying", "attempt", attempt, "error", startErr)
		time.Sleep(temporalx.Backoff(250*time.Millisecond, 5*time.Second, attempt))
	}

	if r.cfg.SweepInterval > 0 {
		if err := r.EnsureSchedule(ctx); err != nil {
			r.log.Warn("priority sweep schedule not created", "error", err)
		}
	}
	return nil
}

func (r *Runner) taskQueue() string {
	if r.cfg.TaskQueue == "" {
		return "medsupply"
	}
	return r.cfg.TaskQueue
}

func (r *Runner) EnsureSchedule(ctx context.Context) error {
	_, err := r.tc.ScheduleClient().Create(ctx, temporalsdkclient.ScheduleOptions{
		ID: ScheduleID,
		Spec: temporalsdkclient.ScheduleSpec{
			Intervals: []temporalsdkclient.ScheduleIntervalSpec{{Every: r.cfg.SweepInterval}},
		},
		Action: &temporalsdkclient.ScheduleWorkflowAction{
			ID:        ScheduleID,
			Workflow:  sweep.WorkflowName,
			Args:      []interface{}{sweep.Input{Concurrency: r.concurrency}},
			TaskQueue: r.taskQueue(),
		},
		Overlap: enumspb.SCHEDULE_OVERLAP_POLICY_SKIP,
	})
	if errors.Is(err, temporal.ErrScheduleAlreadyRunning) {
		r.log.Debug("priority sweep schedule already exists", "schedule_id", ScheduleID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("create schedule %s: %w", ScheduleID, err)
	}
	r.log.Info("priority sweep scheduled", "schedule_id", ScheduleID, "every", r.cfg.SweepInterval)
	return nil
}

// RunSweep starts one sweep workflow and waits for its result.
func (r *Runner) RunSweep(ctx context.Context) (sweep.Result, error) {
	var out sweep.Result
	run, err := r.tc.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:        fmt.Sprintf("%s-manual-%d", ScheduleID, time.Now().UnixNano()),
		TaskQueue: r.taskQueue(),
	}, sweep.WorkflowName, sweep.Input{Concurrency: r.concurrency})
	if err != nil {
		return out, fmt.Errorf("start sweep workflow: %w", err)
	}
	if err := run.Get(ctx, &out); err != nil {
		return out, fmt.Errorf("sweep workflow %s: %w", run.GetID(), err)
	}
	return out, nil
}
