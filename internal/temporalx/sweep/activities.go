package sweep

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/medsupply-backend/internal/platform/logger"
	"github.com/yungbote/medsupply-backend/internal/priority"
)

type PriorityService interface {
	OutstandingSupplies(ctx context.Context) ([]string, error)
	Recalculate(ctx context.Context, supplyCode string) priority.Report
}

type Activities struct {
	Log  *logger.Logger
	Prio PriorityService
}

func (a *Activities) ListOutstandingSupplies(ctx context.Context) ([]string, error) {
	if a == nil || a.Prio == nil {
		return nil, fmt.Errorf("sweep: activity not configured")
	}
	return a.Prio.OutstandingSupplies(ctx)
}

// RecalculateSupply never returns an error for a failed run; the failure is
// carried in the result so one supply cannot stall the workflow in retries.
func (a *Activities) RecalculateSupply(ctx context.Context, supplyCode string) (SupplyResult, error) {
	supplyCode = strings.TrimSpace(supplyCode)
	if a == nil || a.Prio == nil {
		return SupplyResult{SupplyCode: supplyCode}, fmt.Errorf("sweep: activity not configured")
	}
	rep := a.Prio.Recalculate(ctx, supplyCode)
	if rep.Outcome == priority.OutcomeFailed && a.Log != nil {
		a.Log.Warn("sweep supply failed", "supply_code", supplyCode, "error", rep.Error)
	}
	return SupplyResult{
		SupplyCode:      supplyCode,
		Outcome:         string(rep.Outcome),
		ItemsUpdated:    rep.ItemsUpdated,
		RequestsUpdated: rep.RequestsUpdated,
		Error:           rep.Error,
	}, nil
}
