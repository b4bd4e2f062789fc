package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/yungbote/medsupply-backend/internal/data/repos"
	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/http/response"
	"github.com/yungbote/medsupply-backend/internal/platform/errs"
	"github.com/yungbote/medsupply-backend/internal/services"
)

type InventoryHandler struct {
	inventory services.InventoryService
	dashboard services.DashboardService
}

// NewInventoryHandler serves hospitals, supplies and batches. dashboard may be nil.
func NewInventoryHandler(inventory services.InventoryService, dashboard services.DashboardService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, dashboard: dashboard}
}

func (h *InventoryHandler) invalidate() {
	if h.dashboard != nil {
		h.dashboard.Invalidate()
	}
}

type createHospitalRequest struct {
	OrgCode          string          `json:"org_code"`
	Name             string          `json:"name"`
	Level            int             `json:"level"`
	Address          string          `json:"address"`
	Latitude         *float64        `json:"latitude"`
	Longitude        *float64        `json:"longitude"`
	ContactInfo      datatypes.JSON  `json:"contact_info"`
	StorageVolume    decimal.Decimal `json:"storage_volume"`
	CurrentCapacity  decimal.Decimal `json:"current_capacity"`
	Region           string          `json:"region"`
	IsActive         *bool           `json:"is_active"`
	WarningThreshold *float64        `json:"warning_threshold"`
}

// GET /api/hospitals
func (h *InventoryHandler) ListHospitals(c *gin.Context) {
	level, err := intQuery(c, "level")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_filter")
		return
	}
	active, err := optionalBoolQuery(c, "active")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_filter")
		return
	}
	hospitals, err := h.inventory.ListHospitals(requestDBC(c), repos.HospitalFilter{
		Region:     strings.TrimSpace(c.Query("region")),
		Level:      level,
		ActiveOnly: active != nil && *active,
		Search:     strings.TrimSpace(c.Query("q")),
	})
	if err != nil {
		response.RespondAPIError(c, err, "list_hospitals_failed")
		return
	}
	response.RespondOK(c, gin.H{"hospitals": hospitals})
}

// GET /api/hospitals/:id
func (h *InventoryHandler) GetHospital(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_hospital_id")
		return
	}
	hospital, err := h.inventory.GetHospital(requestDBC(c), id)
	if err != nil {
		response.RespondAPIError(c, err, "hospital_not_found")
		return
	}
	response.RespondOK(c, gin.H{"hospital": hospital})
}

// POST /api/hospitals
func (h *InventoryHandler) CreateHospital(c *gin.Context) {
	var req createHospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, bindError(err), "invalid_request")
		return
	}
	hospital := &types.Hospital{
		OrgCode:          req.OrgCode,
		Name:             req.Name,
		Level:            req.Level,
		Address:          req.Address,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		ContactInfo:      req.ContactInfo,
		StorageVolume:    req.StorageVolume,
		CurrentCapacity:  req.CurrentCapacity,
		Region:           req.Region,
		IsActive:         req.IsActive == nil || *req.IsActive,
		WarningThreshold: decimal.NewFromInt(20),
	}
	if req.WarningThreshold != nil {
		hospital.WarningThreshold = decimal.NewFromFloat(*req.WarningThreshold)
	}
	created, err := h.inventory.CreateHospital(requestDBC(c), hospital)
	if err != nil {
		response.RespondAPIError(c, err, "create_hospital_failed")
		return
	}
	h.invalidate()
	response.RespondCreated(c, gin.H{"hospital": created})
}

// GET /api/supplies
func (h *InventoryHandler) ListSupplies(c *gin.Context) {
	controlled, err := optionalBoolQuery(c, "is_controlled")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_filter")
		return
	}
	supplies, err := h.inventory.ListSupplies(requestDBC(c), repos.SupplyFilter{
		Category:     strings.TrimSpace(c.Query("category")),
		Search:       strings.TrimSpace(c.Query("q")),
		IsControlled: controlled,
	})
	if err != nil {
		response.RespondAPIError(c, err, "list_supplies_failed")
		return
	}
	response.RespondOK(c, gin.H{"supplies": supplies})
}

// GET /api/supplies/:code
func (h *InventoryHandler) GetSupply(c *gin.Context) {
	supply, err := h.inventory.GetSupply(requestDBC(c), c.Param("code"))
	if err != nil {
		response.RespondAPIError(c, err, "supply_not_found")
		return
	}
	response.RespondOK(c, gin.H{"supply": supply})
}

// POST /api/supplies
func (h *InventoryHandler) CreateSupply(c *gin.Context) {
	var supply types.Supply
	if err := c.ShouldBindJSON(&supply); err != nil {
		response.RespondAPIError(c, bindError(err), "invalid_request")
		return
	}
	supply.CreatedAt, supply.UpdatedAt = time.Time{}, time.Time{}
	created, err := h.inventory.CreateSupply(requestDBC(c), &supply)
	if err != nil {
		response.RespondAPIError(c, err, "create_supply_failed")
		return
	}
	h.invalidate()
	response.RespondCreated(c, gin.H{"supply": created})
}

type createBatchRequest struct {
	BatchNumber        string              `json:"batch_number"`
	HospitalID         uuid.UUID           `json:"hospital_id"`
	SupplyCode         string              `json:"supply_code"`
	Quantity           int                 `json:"quantity"`
	ProductionDate     string              `json:"production_date"`
	ExpirationDate     string              `json:"expiration_date"`
	StorageCondition   datatypes.JSON      `json:"storage_condition"`
	UnitPrice          decimal.NullDecimal `json:"unit_price"`
	SupplierID         *uuid.UUID          `json:"supplier_id"`
	QualityCheckPassed bool                `json:"quality_check_passed"`
	Notes              string              `json:"notes"`
}

func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD: %w", field, errs.ErrInvalidArgument)
	}
	return t, nil
}

// GET /api/inventory-batches
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	hospitalID, err := optionalUUIDQuery(c, "hospital_id")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_filter")
		return
	}
	inStock, err := optionalBoolQuery(c, "in_stock")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_filter")
		return
	}
	batches, err := h.inventory.ListBatches(requestDBC(c), repos.BatchFilter{
		HospitalID:  hospitalID,
		SupplyCode:  strings.TrimSpace(c.Query("supply_code")),
		InStockOnly: inStock != nil && *inStock,
	})
	if err != nil {
		response.RespondAPIError(c, err, "list_batches_failed")
		return
	}
	response.RespondOK(c, gin.H{"batches": batches})
}

// POST /api/inventory-batches
func (h *InventoryHandler) CreateBatch(c *gin.Context) {
	var req createBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, bindError(err), "invalid_request")
		return
	}
	produced, err := parseDate("production_date", req.ProductionDate)
	if err != nil {
		response.RespondAPIError(c, err, "invalid_request")
		return
	}
	expires, err := parseDate("expiration_date", req.ExpirationDate)
	if err != nil {
		response.RespondAPIError(c, err, "invalid_request")
		return
	}
	batch, err := h.inventory.CreateBatch(requestDBC(c), &types.Batch{
		BatchNumber:        req.BatchNumber,
		HospitalID:         req.HospitalID,
		SupplyCode:         req.SupplyCode,
		Quantity:           req.Quantity,
		ProductionDate:     produced,
		ExpirationDate:     expires,
		StorageCondition:   req.StorageCondition,
		UnitPrice:          req.UnitPrice,
		SupplierID:         req.SupplierID,
		QualityCheckPassed: req.QualityCheckPassed,
		Notes:              req.Notes,
	})
	if err != nil {
		response.RespondAPIError(c, err, "create_batch_failed")
		return
	}
	h.invalidate()
	response.RespondCreated(c, gin.H{"batch": batch})
}
