package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

func TestSchedulerRunsUntilCancelled(t *testing.T) {
	sch := newScheduler(logger.Nop())
	var fast, disabled atomic.Int32
	sch.add("fast", 5*time.Millisecond, func(context.Context) { fast.Add(1) })
	sch.add("disabled", 0, func(context.Context) { disabled.Add(1) })
	if len(sch.tasks) != 1 {
		t.Fatalf("expected only the positive interval task, got %d", len(sch.tasks))
	}

	ctx, cancel := context.WithCancel(context.Background())
	sch.start(ctx)
	deadline := time.Now().Add(2 * time.Second)
	for fast.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	sch.wait()

	if fast.Load() < 2 {
		t.Fatalf("expected at least two runs, got %d", fast.Load())
	}
	after := fast.Load()
	time.Sleep(20 * time.Millisecond)
	if fast.Load() != after {
		t.Fatalf("task kept running after cancel")
	}
	if disabled.Load() != 0 {
		t.Fatalf("zero interval task ran")
	}
}
