package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/medsupply-backend/internal/data/repos"
	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/domain/inventory"
	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
	"github.com/yungbote/medsupply-backend/internal/platform/errs"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

type AllocationService interface {
	// AllocateItem sets the allocated quantity of one item and schedules a
	// recalculation for the item's supply.
	AllocateItem(dbc dbctx.Context, requestID uuid.UUID, itemID uuid.UUID, allocated int) (*types.RequestItem, error)
	Queue(dbc dbctx.Context, supplyCode string) ([]repos.AllocationQueueRow, error)
}

type allocationService struct {
	db       *gorm.DB
	log      *logger.Logger
	requests repos.SupplyRequestRepo
	items    repos.RequestItemRepo
	trigger  *PriorityTrigger
}

func NewAllocationService(db *gorm.DB, baseLog *logger.Logger, requests repos.SupplyRequestRepo, items repos.RequestItemRepo, trigger *PriorityTrigger) AllocationService {
	return &allocationService{
		db:       db,
		log:      baseLog.With("service", "AllocationService"),
		requests: requests,
		items:    items,
		trigger:  trigger,
	}
}

func (s *allocationService) AllocateItem(dbc dbctx.Context, requestID uuid.UUID, itemID uuid.UUID, allocated int) (*types.RequestItem, error) {
	if requestID == uuid.Nil || itemID == uuid.Nil {
		return nil, fmt.Errorf("request id and item id are required: %w", errs.ErrInvalidArgument)
	}
	var item *types.RequestItem
	err := dbc.Resolve(s.db).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		req, err := s.requests.GetByID(inner, requestID, false)
		if err != nil {
			return repos.MapError(err)
		}
		it, err := s.items.GetByID(inner, itemID)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && it.RequestID != req.ID) {
			return fmt.Errorf("item %s in request %s: %w", itemID, requestID, errs.ErrNotFound)
		}
		if err != nil {
			return repos.MapError(err)
		}
		if !inventory.Allocatable(req.Status) {
			return fmt.Errorf("only submitted or approved requests can be allocated (status %s): %w", req.Status, errs.ErrInvalidArgument)
		}
		if allocated < 0 {
			return fmt.Errorf("allocated quantity cannot be negative: %w", errs.ErrInvalidArgument)
		}
		if allocated > it.Quantity {
			return fmt.Errorf("allocated quantity (%d) exceeds requested quantity (%d): %w", allocated, it.Quantity, errs.ErrInvalidArgument)
		}
		if err := s.items.SetAllocated(inner, it.ID, allocated); err != nil {
			return repos.MapError(err)
		}
		it.Allocated = allocated
		item = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithTrace(dbc.Ctx).Info("item allocated",
		"request_id", requestID,
		"item_id", itemID,
		"supply_code", item.SupplyCode,
		"allocated", allocated,
		"quantity", item.Quantity,
	)
	s.trigger.Fire(dbc.Ctx, item.SupplyCode)
	return item, nil
}

func (s *allocationService) Queue(dbc dbctx.Context, supplyCode string) ([]repos.AllocationQueueRow, error) {
	supplyCode = strings.TrimSpace(supplyCode)
	if supplyCode == "" {
		return []repos.AllocationQueueRow{}, nil
	}
	rows, err := s.items.ListAllocationQueue(dbc, supplyCode)
	if err != nil {
		return nil, repos.MapError(err)
	}
	if rows == nil {
		rows = []repos.AllocationQueueRow{}
	}
	return rows, nil
}
