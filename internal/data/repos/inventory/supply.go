package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

type SupplyFilter struct {
	Category     string
	Search       string
	IsControlled *bool
}

type SupplyRepo interface {
	Create(dbc dbctx.Context, s *types.Supply) error
	GetByCode(dbc dbctx.Context, code string) (*types.Supply, error)
	List(dbc dbctx.Context, f SupplyFilter) ([]*types.Supply, error)
}

type supplyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSupplyRepo(db *gorm.DB, baseLog *logger.Logger) SupplyRepo {
	return &supplyRepo{db: db, log: baseLog.With("repo", "SupplyRepo")}
}

func (r *supplyRepo) Create(dbc dbctx.Context, s *types.Supply) error {
	return dbc.Resolve(r.db).Create(s).Error
}

func (r *supplyRepo) GetByCode(dbc dbctx.Context, code string) (*types.Supply, error) {
	var s types.Supply
	if err := dbc.Resolve(r.db).Where("unspsc_code = ?", code).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *supplyRepo) List(dbc dbctx.Context, f SupplyFilter) ([]*types.Supply, error) {
	q := dbc.Resolve(r.db).Order("category ASC, name ASC")
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.IsControlled != nil {
		q = q.Where("is_controlled = ?", *f.IsControlled)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR unspsc_code LIKE ?", like, like)
	}
	var out []*types.Supply
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// BatchFilter narrows batch listings. InStockOnly drops empty batches; a
// non-nil ValidOn drops batches that expired before that date.
type BatchFilter struct {
	HospitalID  uuid.UUID
	SupplyCode  string
	InStockOnly bool
	ValidOn     *time.Time
	Preload     bool
}

type BatchRepo interface {
	Create(dbc dbctx.Context, b *types.Batch) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Batch, error)
	List(dbc dbctx.Context, f BatchFilter) ([]*types.Batch, error)
}

type batchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBatchRepo(db *gorm.DB, baseLog *logger.Logger) BatchRepo {
	return &batchRepo{db: db, log: baseLog.With("repo", "BatchRepo")}
}

func (r *batchRepo) Create(dbc dbctx.Context, b *types.Batch) error {
	return dbc.Resolve(r.db).Create(b).Error
}

func (r *batchRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Batch, error) {
	var b types.Batch
	if err := dbc.Resolve(r.db).Where("batch_id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// List orders by expiration so the batches to use first come first. Expiry is
// compared by calendar date in Go to stay independent of the driver's date encoding.
func (r *batchRepo) List(dbc dbctx.Context, f BatchFilter) ([]*types.Batch, error) {
	q := dbc.Resolve(r.db).Order("expiration_date ASC, batch_number ASC")
	if f.HospitalID != uuid.Nil {
		q = q.Where("hospital_id = ?", f.HospitalID)
	}
	if f.SupplyCode != "" {
		q = q.Where("supply_code = ?", f.SupplyCode)
	}
	if f.InStockOnly {
		q = q.Where("quantity > 0")
	}
	if f.Preload {
		q = q.Preload("Supply")
	}
	var rows []*types.Batch
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	if f.Preload {
		if err := r.attachHospitals(dbc, rows); err != nil {
			return nil, err
		}
	}
	if f.ValidOn == nil {
		return rows, nil
	}
	out := rows[:0]
	for _, b := range rows {
		if !dateBefore(b.ExpirationDate, *f.ValidOn) {
			out = append(out, b)
		}
	}
	return out, nil
}

// attachHospitals loads hospitals with an explicit IN query. Preload binds the
// uuid foreign key as raw bytes on sqlite and silently matches nothing.
func (r *batchRepo) attachHospitals(dbc dbctx.Context, rows []*types.Batch) error {
	if len(rows) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]bool, len(rows))
	ids := make([]any, 0, len(rows))
	for _, b := range rows {
		if b.HospitalID != uuid.Nil && !seen[b.HospitalID] {
			seen[b.HospitalID] = true
			ids = append(ids, b.HospitalID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	var hospitals []*types.Hospital
	if err := dbc.Resolve(r.db).Where("hospital_id IN ?", ids).Find(&hospitals).Error; err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*types.Hospital, len(hospitals))
	for _, h := range hospitals {
		byID[h.ID] = h
	}
	for _, b := range rows {
		b.Hospital = byID[b.HospitalID]
	}
	return nil
}

func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
