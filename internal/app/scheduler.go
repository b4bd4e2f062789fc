package app

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
	"github.com/yungbote/medsupply-backend/internal/services"
)

type periodicTask struct {
	name  string
	every time.Duration
	run   func(ctx context.Context)
}

// scheduler fires each task on its own ticker until ctx is done. Runs of the
// same task never overlap.
type scheduler struct {
	log   *logger.Logger
	tasks []periodicTask
	wg    sync.WaitGroup
}

func newScheduler(baseLog *logger.Logger) *scheduler {
	return &scheduler{log: baseLog.With("component", "Scheduler")}
}

func (s *scheduler) add(name string, every time.Duration, run func(ctx context.Context)) {
	if every <= 0 || run == nil {
		return
	}
	s.tasks = append(s.tasks, periodicTask{name: name, every: every, run: run})
}

func (s *scheduler) start(ctx context.Context) {
	for _, t := range s.tasks {
		s.log.Info("periodic task scheduled", "task", t.name, "every", t.every)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			ticker := time.NewTicker(t.every)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					t.run(ctx)
				}
			}
		}()
	}
}

func (s *scheduler) wait() { s.wg.Wait() }

// periodicTasks picks how the sweep and the alert check run: Temporal owns the
// sweep when it is configured, the job worker runs both when enabled, and
// otherwise they run in-process.
func periodicTasks(log *logger.Logger, cfg Config, s Services) *scheduler {
	sch := newScheduler(log)
	enqueue := func(jobType string) func(ctx context.Context) {
		return func(ctx context.Context) {
			_, created, err := s.Jobs.EnqueueUnlessQueued(dbctx.Context{Ctx: ctx}, jobType, services.EntityTypeSystem, jobType, nil)
			if err != nil {
				log.Warn("periodic enqueue failed", "job_type", jobType, "error", err)
				return
			}
			if !created {
				log.Debug("periodic job already queued", "job_type", jobType)
			}
		}
	}

	if s.TemporalRunner == nil {
		if s.JobWorker != nil {
			sch.add(services.JobTypePrioritySweep, cfg.Priority.SweepInterval, enqueue(services.JobTypePrioritySweep))
		} else {
			sch.add(services.JobTypePrioritySweep, cfg.Priority.SweepInterval, func(ctx context.Context) {
				s.Priority.RecalculateAllOutstanding(ctx)
			})
		}
	}

	if s.JobWorker != nil {
		sch.add(services.JobTypeInventoryAlertCheck, cfg.Alerts.CheckInterval, enqueue(services.JobTypeInventoryAlertCheck))
	} else {
		sch.add(services.JobTypeInventoryAlertCheck, cfg.Alerts.CheckInterval, func(ctx context.Context) {
			if _, err := s.Alerts.Check(ctx); err != nil {
				log.Warn("inventory alert check failed", "error", err)
			}
		})
	}
	return sch
}
