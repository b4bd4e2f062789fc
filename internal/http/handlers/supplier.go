package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/http/response"
	"github.com/yungbote/medsupply-backend/internal/services"
)

type SupplierHandler struct {
	suppliers services.SupplierService
}

func NewSupplierHandler(suppliers services.SupplierService) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers}
}

type createSupplierRequest struct {
	Name          string         `json:"name"`
	ContactPerson string         `json:"contact_person"`
	ContactInfo   datatypes.JSON `json:"contact_info"`
	Address       string         `json:"address"`
	CreditRating  int            `json:"credit_rating"`
}

// GET /api/suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	list, err := h.suppliers.List(requestDBC(c))
	if err != nil {
		response.RespondAPIError(c, err, "list_suppliers_failed")
		return
	}
	response.RespondOK(c, gin.H{"suppliers": list})
}

// GET /api/suppliers/:id
func (h *SupplierHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_supplier_id")
		return
	}
	sp, err := h.suppliers.Get(requestDBC(c), id)
	if err != nil {
		response.RespondAPIError(c, err, "supplier_not_found")
		return
	}
	response.RespondOK(c, gin.H{"supplier": sp})
}

// POST /api/suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	var req createSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, bindError(err), "invalid_request")
		return
	}
	sp, err := h.suppliers.Create(requestDBC(c), &types.Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		ContactInfo:   req.ContactInfo,
		Address:       req.Address,
		CreditRating:  req.CreditRating,
	})
	if err != nil {
		response.RespondAPIError(c, err, "create_supplier_failed")
		return
	}
	response.RespondCreated(c, gin.H{"supplier": sp})
}
