package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
	"github.com/yungbote/medsupply-backend/internal/priority"
)

type TriggerMode string

const (
	// TriggerJob queues a priority_recalculate job_run per supply.
	TriggerJob TriggerMode = "job"
	// TriggerInline runs the recalculation in a background goroutine.
	TriggerInline TriggerMode = "inline"
)

func ParseTriggerMode(raw string) (TriggerMode, error) {
	switch TriggerMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", TriggerJob:
		return TriggerJob, nil
	case TriggerInline:
		return TriggerInline, nil
	default:
		return "", fmt.Errorf("unknown priority trigger mode %q", raw)
	}
}

type PriorityRecalculator interface {
	Recalculate(ctx context.Context, supplyCode string) priority.Report
}

// PriorityTrigger schedules recalculations after writes that change a supply's
// candidate set. It never reports failures to the caller.
type PriorityTrigger struct {
	log     *logger.Logger
	mode    TriggerMode
	jobs    JobService
	prio    PriorityRecalculator
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewPriorityTrigger falls back to inline mode when no job service is given.
func NewPriorityTrigger(baseLog *logger.Logger, mode TriggerMode, jobs JobService, prio PriorityRecalculator) *PriorityTrigger {
	if jobs == nil {
		mode = TriggerInline
	}
	return &PriorityTrigger{
		log:     baseLog.With("component", "PriorityTrigger"),
		mode:    mode,
		jobs:    jobs,
		prio:    prio,
		timeout: 2 * time.Minute,
	}
}

func (t *PriorityTrigger) Mode() TriggerMode {
	if t == nil {
		return ""
	}
	return t.mode
}

func (t *PriorityTrigger) Fire(ctx context.Context, supplyCodes ...string) {
	if t == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	// The caller's request may finish before the work does.
	bg := context.WithoutCancel(ctx)
	seen := make(map[string]struct{}, len(supplyCodes))
	for _, code := range supplyCodes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		if t.mode == TriggerJob && t.enqueue(bg, code) {
			continue
		}
		t.runInline(bg, code)
	}
}

func (t *PriorityTrigger) enqueue(ctx context.Context, code string) bool {
	job, created, err := t.jobs.EnqueueUnlessQueued(dbctx.Context{Ctx: ctx}, JobTypePriorityRecalculate, EntityTypeSupply, code, map[string]any{
		"supply_code": code,
	})
	if err != nil {
		t.log.Warn("enqueue priority recalculation failed; running inline", "supply_code", code, "error", err)
		return false
	}
	if created {
		t.log.Debug("priority recalculation queued", "supply_code", code, "job_id", job.ID)
	} else {
		t.log.Debug("priority recalculation already queued", "supply_code", code)
	}
	return true
}

func (t *PriorityTrigger) runInline(ctx context.Context, code string) {
	if t.prio == nil {
		t.log.Warn("no priority service; recalculation skipped", "supply_code", code)
		return
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		runCtx, cancel := context.WithTimeout(ctx, t.timeout)
		defer cancel()
		// Recalculate logs and swallows its own failures.
		_ = t.prio.Recalculate(runCtx, code)
	}()
}

// Wait blocks until inline recalculations started so far have finished.
func (t *PriorityTrigger) Wait() {
	if t == nil {
		return
	}
	t.wg.Wait()
}
