package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/medsupply-backend/internal/data/repos"
	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/domain/inventory"
	"github.com/yungbote/medsupply-backend/internal/platform/ctxutil"
	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
	"github.com/yungbote/medsupply-backend/internal/platform/errs"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

type CreateRequestItemInput struct {
	SupplyCode string `json:"supply_code"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes"`
}

type CreateRequestInput struct {
	HospitalID uuid.UUID                `json:"hospital_id"`
	RequiredBy time.Time                `json:"required_by"`
	Comments   string                   `json:"comments"`
	Emergency  bool                     `json:"emergency"`
	Submit     bool                     `json:"submit"`
	Items      []CreateRequestItemInput `json:"items"`
}

type SupplyRequestService interface {
	Create(dbc dbctx.Context, in CreateRequestInput) (*types.SupplyRequest, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.SupplyRequest, error)
	List(dbc dbctx.Context, f repos.RequestFilter) ([]*types.SupplyRequest, error)
	Submit(dbc dbctx.Context, id uuid.UUID) (*types.SupplyRequest, error)
	Approve(dbc dbctx.Context, id uuid.UUID) (*types.SupplyRequest, error)
	Reject(dbc dbctx.Context, id uuid.UUID) (*types.SupplyRequest, error)
	Cancel(dbc dbctx.Context, id uuid.UUID) (*types.SupplyRequest, error)
}

type supplyRequestService struct {
	db        *gorm.DB
	log       *logger.Logger
	requests  repos.SupplyRequestRepo
	items     repos.RequestItemRepo
	hospitals repos.HospitalRepo
	supplies  repos.SupplyRepo
	trigger   *PriorityTrigger
}

func NewSupplyRequestService(
	db *gorm.DB,
	baseLog *logger.Logger,
	requests repos.SupplyRequestRepo,
	items repos.RequestItemRepo,
	hospitals repos.HospitalRepo,
	supplies repos.SupplyRepo,
	trigger *PriorityTrigger,
) SupplyRequestService {
	return &supplyRequestService{
		db:        db,
		log:       baseLog.With("service", "SupplyRequestService"),
		requests:  requests,
		items:     items,
		hospitals: hospitals,
		supplies:  supplies,
		trigger:   trigger,
	}
}

func (s *supplyRequestService) Create(dbc dbctx.Context, in CreateRequestInput) (*types.SupplyRequest, error) {
	requester := ctxutil.UserID(dbc.Ctx)
	if requester == uuid.Nil {
		return nil, fmt.Errorf("requester unknown: %w", errs.ErrUnauthorized)
	}
	if in.HospitalID == uuid.Nil {
		return nil, fmt.Errorf("hospital_id is required: %w", errs.ErrInvalidArgument)
	}
	if in.RequiredBy.IsZero() {
		return nil, fmt.Errorf("required_by is required: %w", errs.ErrInvalidArgument)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("a request needs at least one item: %w", errs.ErrInvalidArgument)
	}

	status := inventory.StatusDraft
	if in.Submit {
		status = inventory.StatusSubmitted
	}
	req := &types.SupplyRequest{
		HospitalID:  in.HospitalID,
		RequestTime: time.Now().UTC(),
		RequiredBy:  in.RequiredBy.UTC(),
		Status:      status,
		RequesterID: requester,
		Comments:    strings.TrimSpace(in.Comments),
		Emergency:   in.Emergency,
	}
	codes := make([]string, 0, len(in.Items))
	for i, it := range in.Items {
		code := strings.TrimSpace(it.SupplyCode)
		if code == "" {
			return nil, fmt.Errorf("items[%d].supply_code is required: %w", i, errs.ErrInvalidArgument)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("items[%d].quantity must be positive: %w", i, errs.ErrInvalidArgument)
		}
		req.Items = append(req.Items, types.RequestItem{
			SupplyCode: code,
			Quantity:   it.Quantity,
			Notes:      strings.TrimSpace(it.Notes),
		})
		codes = append(codes, code)
	}

	err := dbc.Resolve(s.db).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if _, err := s.hospitals.GetByID(inner, in.HospitalID); err != nil {
			return lookupError("hospital", in.HospitalID.String(), err)
		}
		for _, code := range codes {
			if _, err := s.supplies.GetByCode(inner, code); err != nil {
				return lookupError("supply", code, err)
			}
		}
		return repos.MapError(s.requests.Create(inner, req))
	})
	if err != nil {
		return nil, err
	}
	s.log.WithTrace(dbc.Ctx).Info("supply request created", "request_id", req.ID, "hospital_id", req.HospitalID, "status", req.Status, "items", len(req.Items))
	if req.Status == inventory.StatusSubmitted {
		s.trigger.Fire(dbc.Ctx, codes...)
	}
	return req, nil
}

// lookupError turns a missing referenced row into an invalid-argument error.
func lookupError(kind, key string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("unknown %s %s: %w", kind, key, errs.ErrInvalidArgument)
	}
	return repos.MapError(err)
}

func (s *supplyRequestService) Get(dbc dbctx.Context, id uuid.UUID) (*types.SupplyRequest, error) {
	req, err := s.requests.GetByID(dbc, id, true)
	if err != nil {
		return nil, repos.MapError(err)
	}
	return req, nil
}

func (s *supplyRequestService) List(dbc dbctx.Context, f repos.RequestFilter) ([]*types.SupplyRequest, error) {
	if f.Status != "" && !inventory.ValidRequestStatus(f.Status) {
		return nil, fmt.Errorf("unknown status %q: %w", f.Status, errs.ErrInvalidArgument)
	}
	out, err := s.requests.List(dbc, f)
	if err != nil {
		return nil, repos.MapError(err)
	}
	return out, nil
}

func (s *supplyRequestService) Submit(dbc dbctx.Context, id uuid.UUID) (*types.SupplyRequest, error) {
	return s.transition(dbc, id, "submit", []string{inventory.StatusDraft}, map[string]interface{}{
		"status": inventory.StatusSubmitted,
	}, true)
}

func (s *supplyRequestService) Approve(dbc dbctx.Context, id uuid.UUID) (*types.SupplyRequest, error) {
	return s.transition(dbc, id, "approve", []string{inventory.StatusSubmitted}, s.decision(dbc, inventory.StatusApproved), false)
}

func (s *supplyRequestService) Reject(dbc dbctx.Context, id uuid.UUID) (*types.SupplyRequest, error) {
	return s.transition(dbc, id, "reject", []string{inventory.StatusSubmitted}, s.decision(dbc, inventory.StatusRejected), true)
}

func (s *supplyRequestService) Cancel(dbc dbctx.Context, id uuid.UUID) (*types.SupplyRequest, error) {
	from := []string{inventory.StatusDraft, inventory.StatusSubmitted, inventory.StatusApproved}
	return s.transition(dbc, id, "cancel", from, map[string]interface{}{
		"status": inventory.StatusCancelled,
	}, true)
}

func (s *supplyRequestService) decision(dbc dbctx.Context, status string) map[string]interface{} {
	updates := map[string]interface{}{
		"status":        status,
		"approval_time": time.Now().UTC(),
	}
	if uid := ctxutil.UserID(dbc.Ctx); uid != uuid.Nil {
		updates["approver_id"] = uid
	}
	return updates
}

// transition moves a request between statuses. When the candidate set of its
// supplies changes, recalculation is scheduled for each of them.
func (s *supplyRequestService) transition(dbc dbctx.Context, id uuid.UUID, action string, from []string, updates map[string]interface{}, recalc bool) (*types.SupplyRequest, error) {
	ok, err := s.requests.TransitionStatus(dbc, id, from, updates)
	if err != nil {
		return nil, repos.MapError(err)
	}
	req, err := s.requests.GetByID(dbc, id, true)
	if err != nil {
		return nil, repos.MapError(err)
	}
	if !ok {
		return nil, fmt.Errorf("cannot %s a request in status %s: %w", action, req.Status, errs.ErrConflict)
	}
	s.log.WithTrace(dbc.Ctx).Info("supply request transitioned", "request_id", id, "action", action, "status", req.Status)
	if recalc {
		codes := make([]string, 0, len(req.Items))
		for _, it := range req.Items {
			codes = append(codes, it.SupplyCode)
		}
		s.trigger.Fire(dbc.Ctx, codes...)
	}
	return req, nil
}
