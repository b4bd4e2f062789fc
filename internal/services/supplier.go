package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/medsupply-backend/internal/data/repos"
	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

type SupplierService interface {
	Create(dbc dbctx.Context, s *types.Supplier) (*types.Supplier, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Supplier, error)
	List(dbc dbctx.Context) ([]*types.Supplier, error)
}

type supplierService struct {
	log       *logger.Logger
	suppliers repos.SupplierRepo
}

func NewSupplierService(baseLog *logger.Logger, suppliers repos.SupplierRepo) SupplierService {
	return &supplierService{
		log:       baseLog.With("service", "SupplierService"),
		suppliers: suppliers,
	}
}

// Credit ratings are graded 1 (worst) to 5.
func (s *supplierService) Create(dbc dbctx.Context, sp *types.Supplier) (*types.Supplier, error) {
	if sp == nil {
		return nil, invalid("supplier is required")
	}
	sp.Name = strings.TrimSpace(sp.Name)
	sp.ContactPerson = strings.TrimSpace(sp.ContactPerson)
	switch {
	case sp.Name == "":
		return nil, invalid("name is required")
	case sp.CreditRating < 1 || sp.CreditRating > 5:
		return nil, invalid("credit_rating must be within 1..5, got %d", sp.CreditRating)
	}
	if err := s.suppliers.Create(dbc, sp); err != nil {
		return nil, repos.MapError(err)
	}
	s.log.Info("supplier created", "supplier_id", sp.ID, "credit_rating", sp.CreditRating)
	return sp, nil
}

func (s *supplierService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Supplier, error) {
	sp, err := s.suppliers.GetByID(dbc, id)
	if err != nil {
		return nil, repos.MapError(err)
	}
	return sp, nil
}

func (s *supplierService) List(dbc dbctx.Context) ([]*types.Supplier, error) {
	out, err := s.suppliers.List(dbc)
	if err != nil {
		return nil, repos.MapError(err)
	}
	return out, nil
}
