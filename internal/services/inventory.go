package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/medsupply-backend/internal/data/repos"
	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/domain/inventory"
	"github.com/yungbote/medsupply-backend/internal/platform/ctxutil"
	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
	"github.com/yungbote/medsupply-backend/internal/platform/errs"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

type InventoryService interface {
	CreateHospital(dbc dbctx.Context, h *types.Hospital) (*types.Hospital, error)
	GetHospital(dbc dbctx.Context, id uuid.UUID) (*types.Hospital, error)
	ListHospitals(dbc dbctx.Context, f repos.HospitalFilter) ([]*types.Hospital, error)

	CreateSupply(dbc dbctx.Context, s *types.Supply) (*types.Supply, error)
	GetSupply(dbc dbctx.Context, code string) (*types.Supply, error)
	ListSupplies(dbc dbctx.Context, f repos.SupplyFilter) ([]*types.Supply, error)

	// CreateBatch records received stock and schedules a recalculation for the
	// supply, since stock feeds the shortage criteria.
	CreateBatch(dbc dbctx.Context, b *types.Batch) (*types.Batch, error)
	ListBatches(dbc dbctx.Context, f repos.BatchFilter) ([]*types.Batch, error)
}

type inventoryService struct {
	db        *gorm.DB
	log       *logger.Logger
	hospitals repos.HospitalRepo
	supplies  repos.SupplyRepo
	batches   repos.BatchRepo
	trigger   *PriorityTrigger
}

func NewInventoryService(db *gorm.DB, baseLog *logger.Logger, hospitals repos.HospitalRepo, supplies repos.SupplyRepo, batches repos.BatchRepo, trigger *PriorityTrigger) InventoryService {
	return &inventoryService{
		db:        db,
		log:       baseLog.With("service", "InventoryService"),
		hospitals: hospitals,
		supplies:  supplies,
		batches:   batches,
		trigger:   trigger,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, errs.ErrInvalidArgument)...)
}

func (s *inventoryService) CreateHospital(dbc dbctx.Context, h *types.Hospital) (*types.Hospital, error) {
	if h == nil {
		return nil, invalid("hospital is required")
	}
	h.Name = strings.TrimSpace(h.Name)
	h.OrgCode = strings.TrimSpace(h.OrgCode)
	switch {
	case h.Name == "":
		return nil, invalid("name is required")
	case h.OrgCode == "":
		return nil, invalid("org_code is required")
	case !inventory.ValidHospitalLevel(h.Level):
		return nil, invalid("unknown hospital level %d", h.Level)
	case h.StorageVolume.IsNegative() || h.CurrentCapacity.IsNegative():
		return nil, invalid("storage figures cannot be negative")
	case h.WarningThreshold.IsNegative() || h.WarningThreshold.GreaterThan(decimal.NewFromInt(100)):
		return nil, invalid("warning_threshold must be within 0..100")
	}
	if err := s.hospitals.Create(dbc, h); err != nil {
		return nil, repos.MapError(err)
	}
	s.log.Info("hospital created", "hospital_id", h.ID, "level", h.Level)
	return h, nil
}

func (s *inventoryService) GetHospital(dbc dbctx.Context, id uuid.UUID) (*types.Hospital, error) {
	h, err := s.hospitals.GetByID(dbc, id)
	if err != nil {
		return nil, repos.MapError(err)
	}
	return h, nil
}

func (s *inventoryService) ListHospitals(dbc dbctx.Context, f repos.HospitalFilter) ([]*types.Hospital, error) {
	out, err := s.hospitals.List(dbc, f)
	if err != nil {
		return nil, repos.MapError(err)
	}
	return out, nil
}

func (s *inventoryService) CreateSupply(dbc dbctx.Context, sp *types.Supply) (*types.Supply, error) {
	if sp == nil {
		return nil, invalid("supply is required")
	}
	sp.Code = strings.TrimSpace(sp.Code)
	sp.Name = strings.TrimSpace(sp.Name)
	switch {
	case sp.Code == "":
		return nil, invalid("unspsc_code is required")
	case sp.Name == "":
		return nil, invalid("name is required")
	case !inventory.ValidCategory(sp.Category):
		return nil, invalid("unknown category %q", sp.Category)
	case strings.TrimSpace(sp.Unit) == "":
		return nil, invalid("unit is required")
	case sp.MinStockLevel < 0 || sp.ShelfLife < 0:
		return nil, invalid("min_stock_level and shelf_life cannot be negative")
	}
	if err := s.supplies.Create(dbc, sp); err != nil {
		return nil, repos.MapError(err)
	}
	s.log.Info("supply created", "supply_code", sp.Code, "category", sp.Category)
	return sp, nil
}

func (s *inventoryService) GetSupply(dbc dbctx.Context, code string) (*types.Supply, error) {
	sp, err := s.supplies.GetByCode(dbc, strings.TrimSpace(code))
	if err != nil {
		return nil, repos.MapError(err)
	}
	return sp, nil
}

func (s *inventoryService) ListSupplies(dbc dbctx.Context, f repos.SupplyFilter) ([]*types.Supply, error) {
	if f.Category != "" && !inventory.ValidCategory(f.Category) {
		return nil, invalid("unknown category %q", f.Category)
	}
	out, err := s.supplies.List(dbc, f)
	if err != nil {
		return nil, repos.MapError(err)
	}
	return out, nil
}

func (s *inventoryService) CreateBatch(dbc dbctx.Context, b *types.Batch) (*types.Batch, error) {
	if b == nil {
		return nil, invalid("batch is required")
	}
	b.BatchNumber = strings.TrimSpace(b.BatchNumber)
	b.SupplyCode = strings.TrimSpace(b.SupplyCode)
	switch {
	case b.BatchNumber == "":
		return nil, invalid("batch_number is required")
	case b.HospitalID == uuid.Nil:
		return nil, invalid("hospital_id is required")
	case b.SupplyCode == "":
		return nil, invalid("supply_code is required")
	case b.Quantity < 0:
		return nil, invalid("quantity cannot be negative")
	case b.ProductionDate.IsZero() || b.ExpirationDate.IsZero():
		return nil, invalid("production_date and expiration_date are required")
	case !b.ExpirationDate.After(b.ProductionDate):
		return nil, invalid("expiration_date must be after production_date")
	}
	if b.ReceivedBy == nil {
		if uid := ctxutil.UserID(dbc.Ctx); uid != uuid.Nil {
			b.ReceivedBy = &uid
		}
	}
	if b.ReceivedDate.IsZero() {
		b.ReceivedDate = time.Now().UTC()
	}
	err := dbc.Resolve(s.db).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if _, err := s.hospitals.GetByID(inner, b.HospitalID); err != nil {
			return lookupError("hospital", b.HospitalID.String(), err)
		}
		if _, err := s.supplies.GetByCode(inner, b.SupplyCode); err != nil {
			return lookupError("supply", b.SupplyCode, err)
		}
		return repos.MapError(s.batches.Create(inner, b))
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("batch received", "batch_id", b.ID, "hospital_id", b.HospitalID, "supply_code", b.SupplyCode, "quantity", b.Quantity)
	s.trigger.Fire(dbc.Ctx, b.SupplyCode)
	return b, nil
}

func (s *inventoryService) ListBatches(dbc dbctx.Context, f repos.BatchFilter) ([]*types.Batch, error) {
	out, err := s.batches.List(dbc, f)
	if err != nil {
		return nil, repos.MapError(err)
	}
	return out, nil
}
