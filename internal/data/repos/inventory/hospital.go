package inventory

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

type HospitalFilter struct {
	Region     string
	Level      int
	ActiveOnly bool
	Search     string
}

type HospitalRepo interface {
	Create(dbc dbctx.Context, h *types.Hospital) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Hospital, error)
	List(dbc dbctx.Context, f HospitalFilter) ([]*types.Hospital, error)
}

type hospitalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHospitalRepo(db *gorm.DB, baseLog *logger.Logger) HospitalRepo {
	return &hospitalRepo{db: db, log: baseLog.With("repo", "HospitalRepo")}
}

func (r *hospitalRepo) Create(dbc dbctx.Context, h *types.Hospital) error {
	return dbc.Resolve(r.db).Create(h).Error
}

func (r *hospitalRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Hospital, error) {
	var h types.Hospital
	if err := dbc.Resolve(r.db).Where("hospital_id = ?", id).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *hospitalRepo) List(dbc dbctx.Context, f HospitalFilter) ([]*types.Hospital, error) {
	q := dbc.Resolve(r.db).Order("level DESC, name ASC")
	if f.Region != "" {
		q = q.Where("region = ?", f.Region)
	}
	if f.Level > 0 {
		q = q.Where("level = ?", f.Level)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(org_code) LIKE ?", like, like)
	}
	var out []*types.Hospital
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type SupplierRepo interface {
	Create(dbc dbctx.Context, s *types.Supplier) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Supplier, error)
	List(dbc dbctx.Context) ([]*types.Supplier, error)
}

type supplierRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSupplierRepo(db *gorm.DB, baseLog *logger.Logger) SupplierRepo {
	return &supplierRepo{db: db, log: baseLog.With("repo", "SupplierRepo")}
}

func (r *supplierRepo) Create(dbc dbctx.Context, s *types.Supplier) error {
	return dbc.Resolve(r.db).Create(s).Error
}

func (r *supplierRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Supplier, error) {
	var s types.Supplier
	if err := dbc.Resolve(r.db).Where("supplier_id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *supplierRepo) List(dbc dbctx.Context) ([]*types.Supplier, error) {
	var out []*types.Supplier
	if err := dbc.Resolve(r.db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
