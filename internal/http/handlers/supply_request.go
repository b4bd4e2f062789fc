package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/medsupply-backend/internal/data/repos"
	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/http/response"
	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
	"github.com/yungbote/medsupply-backend/internal/services"
)

type SupplyRequestHandler struct {
	requests   services.SupplyRequestService
	allocation services.AllocationService
	dashboard  services.DashboardService
}

func NewSupplyRequestHandler(requests services.SupplyRequestService, allocation services.AllocationService, dashboard services.DashboardService) *SupplyRequestHandler {
	return &SupplyRequestHandler{requests: requests, allocation: allocation, dashboard: dashboard}
}

func (h *SupplyRequestHandler) invalidate() {
	if h.dashboard != nil {
		h.dashboard.Invalidate()
	}
}

// GET /api/supply-requests
func (h *SupplyRequestHandler) List(c *gin.Context) {
	hospitalID, err := optionalUUIDQuery(c, "hospital_id")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_filter")
		return
	}
	emergency, err := optionalBoolQuery(c, "emergency")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_filter")
		return
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_filter")
		return
	}
	list, err := h.requests.List(requestDBC(c), repos.RequestFilter{
		Status:     strings.TrimSpace(c.Query("status")),
		HospitalID: hospitalID,
		Emergency:  emergency,
		Limit:      limit,
	})
	if err != nil {
		response.RespondAPIError(c, err, "list_requests_failed")
		return
	}
	response.RespondOK(c, gin.H{"requests": list})
}

// GET /api/supply-requests/:id
func (h *SupplyRequestHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_request_id")
		return
	}
	req, err := h.requests.Get(requestDBC(c), id)
	if err != nil {
		response.RespondAPIError(c, err, "request_not_found")
		return
	}
	response.RespondOK(c, gin.H{"request": req})
}

// POST /api/supply-requests
func (h *SupplyRequestHandler) Create(c *gin.Context) {
	var in services.CreateRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondAPIError(c, bindError(err), "invalid_request")
		return
	}
	req, err := h.requests.Create(requestDBC(c), in)
	if err != nil {
		response.RespondAPIError(c, err, "create_request_failed")
		return
	}
	h.invalidate()
	response.RespondCreated(c, gin.H{"request": req})
}

func (h *SupplyRequestHandler) action(c *gin.Context, code string, fn func(dbctx.Context, uuid.UUID) (*types.SupplyRequest, error)) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_request_id")
		return
	}
	req, err := fn(requestDBC(c), id)
	if err != nil {
		response.RespondAPIError(c, err, code)
		return
	}
	h.invalidate()
	response.RespondOK(c, gin.H{"request": req})
}

// POST /api/supply-requests/:id/submit
func (h *SupplyRequestHandler) Submit(c *gin.Context) {
	h.action(c, "submit_request_failed", h.requests.Submit)
}

// POST /api/supply-requests/:id/approve
func (h *SupplyRequestHandler) Approve(c *gin.Context) {
	h.action(c, "approve_request_failed", h.requests.Approve)
}

// POST /api/supply-requests/:id/reject
func (h *SupplyRequestHandler) Reject(c *gin.Context) {
	h.action(c, "reject_request_failed", h.requests.Reject)
}

// POST /api/supply-requests/:id/cancel
func (h *SupplyRequestHandler) Cancel(c *gin.Context) {
	h.action(c, "cancel_request_failed", h.requests.Cancel)
}

type allocateItemRequest struct {
	ItemID            uuid.UUID `json:"item_id"`
	AllocatedQuantity *int      `json:"allocated_quantity"`
}

// POST /api/supply-requests/:id/allocate-item
func (h *SupplyRequestHandler) AllocateItem(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_request_id")
		return
	}
	var body allocateItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondAPIError(c, bindError(err), "invalid_request")
		return
	}
	allocated := -1
	if body.AllocatedQuantity != nil {
		allocated = *body.AllocatedQuantity
	}
	item, err := h.allocation.AllocateItem(requestDBC(c), id, body.ItemID, allocated)
	if err != nil {
		response.RespondAPIError(c, err, "allocate_item_failed")
		return
	}
	response.RespondOK(c, gin.H{"item": item})
}

// GET /api/allocation-items?supply_code=
func (h *SupplyRequestHandler) AllocationQueue(c *gin.Context) {
	rows, err := h.allocation.Queue(requestDBC(c), c.Query("supply_code"))
	if err != nil {
		response.RespondAPIError(c, err, "allocation_queue_failed")
		return
	}
	response.RespondOK(c, gin.H{"items": rows})
}
