package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/medsupply-backend/internal/http/response"
	"github.com/yungbote/medsupply-backend/internal/platform/errs"
	"github.com/yungbote/medsupply-backend/internal/priority"
)

type PriorityService interface {
	Recalculate(ctx context.Context, supplyCode string) priority.Report
	RecalculateAllOutstanding(ctx context.Context) priority.SweepReport
	Preview(ctx context.Context, supplyCode string) (*priority.Ranking, error)
}

type PriorityHandler struct {
	prio PriorityService
}

func NewPriorityHandler(prio PriorityService) *PriorityHandler {
	return &PriorityHandler{prio: prio}
}

// POST /api/supplies/:code/recalculate-priorities
//
// Runs synchronously. A failed run still answers 200 with the report so
// operators can read the outcome and error side by side.
func (h *PriorityHandler) Recalculate(c *gin.Context) {
	code := c.Param("code")
	rep := h.prio.Recalculate(c.Request.Context(), code)
	if errors.Is(rep.Err, priority.ErrEmptySupplyCode) {
		response.RespondAPIError(c, fmt.Errorf("%w: %w", errs.ErrInvalidArgument, rep.Err), "invalid_supply_code")
		return
	}
	response.RespondOK(c, gin.H{"report": rep})
}

// POST /api/priorities/recalculate-all
func (h *PriorityHandler) RecalculateAll(c *gin.Context) {
	rep := h.prio.RecalculateAllOutstanding(c.Request.Context())
	response.RespondOK(c, gin.H{"report": rep})
}

// GET /api/supplies/:code/priority-preview
func (h *PriorityHandler) Preview(c *gin.Context) {
	ranking, err := h.prio.Preview(c.Request.Context(), c.Param("code"))
	if errors.Is(err, priority.ErrEmptySupplyCode) {
		err = fmt.Errorf("%w: %w", errs.ErrInvalidArgument, err)
	}
	if err != nil {
		response.RespondAPIError(c, err, "priority_preview_failed")
		return
	}
	response.RespondOK(c, gin.H{"ranking": ranking})
}
