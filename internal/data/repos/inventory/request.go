package inventory

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/domain/inventory"
	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

type RequestFilter struct {
	Status     string
	HospitalID uuid.UUID
	Emergency  *bool
	Limit      int
}

type SupplyRequestRepo interface {
	Create(dbc dbctx.Context, req *types.SupplyRequest) error
	GetByID(dbc dbctx.Context, id uuid.UUID, withItems bool) (*types.SupplyRequest, error)
	List(dbc dbctx.Context, f RequestFilter) ([]*types.SupplyRequest, error)
	// TransitionStatus applies updates only while the request is in one of the
	// given statuses and reports whether a row changed.
	TransitionStatus(dbc dbctx.Context, id uuid.UUID, from []string, updates map[string]interface{}) (bool, error)
	CountByStatus(dbc dbctx.Context) (map[string]int64, error)
	CountEmergency(dbc dbctx.Context) (int64, error)
}

type supplyRequestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSupplyRequestRepo(db *gorm.DB, baseLog *logger.Logger) SupplyRequestRepo {
	return &supplyRequestRepo{db: db, log: baseLog.With("repo", "SupplyRequestRepo")}
}

func (r *supplyRequestRepo) Create(dbc dbctx.Context, req *types.SupplyRequest) error {
	return dbc.Resolve(r.db).Create(req).Error
}

func (r *supplyRequestRepo) GetByID(dbc dbctx.Context, id uuid.UUID, withItems bool) (*types.SupplyRequest, error) {
	q := dbc.Resolve(r.db).Where("request_id = ?", id)
	if withItems {
		q = q.Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("priority DESC, created_at ASC")
		})
	}
	var req types.SupplyRequest
	if err := q.First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *supplyRequestRepo) List(dbc dbctx.Context, f RequestFilter) ([]*types.SupplyRequest, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := dbc.Resolve(r.db).Order("priority DESC, required_by ASC").Limit(limit)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.HospitalID != uuid.Nil {
		q = q.Where("hospital_id = ?", f.HospitalID)
	}
	if f.Emergency != nil {
		q = q.Where("emergency = ?", *f.Emergency)
	}
	var out []*types.SupplyRequest
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *supplyRequestRepo) TransitionStatus(dbc dbctx.Context, id uuid.UUID, from []string, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	q := dbc.Resolve(r.db).Model(&types.SupplyRequest{}).Where("request_id = ?", id)
	if len(from) > 0 {
		q = q.Where("status IN ?", from)
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *supplyRequestRepo) CountByStatus(dbc dbctx.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if err := dbc.Resolve(r.db).Model(&types.SupplyRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, s := range inventory.RequestStatuses() {
		out[s] = 0
	}
	for _, rw := range rows {
		out[rw.Status] = rw.Count
	}
	return out, nil
}

func (r *supplyRequestRepo) CountEmergency(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.Resolve(r.db).Model(&types.SupplyRequest{}).Where("emergency = ?", true).Count(&n).Error
	return n, err
}

// AllocationQueueRow is one open item in the allocation queue.
type AllocationQueueRow struct {
	ItemID          uuid.UUID `json:"item_id"`
	RequestID       uuid.UUID `json:"request_id"`
	SupplyCode      string    `json:"supply_code"`
	SupplyName      string    `json:"supply_name"`
	HospitalID      uuid.UUID `json:"hospital_id"`
	HospitalName    string    `json:"hospital_name"`
	Quantity        int       `json:"quantity"`
	Allocated       int       `json:"allocated"`
	ItemPriority    float64   `json:"item_priority"`
	RequestPriority float64   `json:"request_priority"`
	RequestStatus   string    `json:"request_status"`
	RequiredBy      time.Time `json:"required_by"`
	Emergency       bool      `json:"emergency"`
}

type RequestItemRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.RequestItem, error)
	ListByRequest(dbc dbctx.Context, requestID uuid.UUID) ([]*types.RequestItem, error)
	SetAllocated(dbc dbctx.Context, id uuid.UUID, allocated int) error
	ListAllocationQueue(dbc dbctx.Context, supplyCode string) ([]AllocationQueueRow, error)
}

type requestItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRequestItemRepo(db *gorm.DB, baseLog *logger.Logger) RequestItemRepo {
	return &requestItemRepo{db: db, log: baseLog.With("repo", "RequestItemRepo")}
}

func (r *requestItemRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.RequestItem, error) {
	var it types.RequestItem
	if err := dbc.Resolve(r.db).Where("item_id = ?", id).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *requestItemRepo) ListByRequest(dbc dbctx.Context, requestID uuid.UUID) ([]*types.RequestItem, error) {
	var out []*types.RequestItem
	if err := dbc.Resolve(r.db).
		Where("request_id = ?", requestID).
		Order("priority DESC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *requestItemRepo) SetAllocated(dbc dbctx.Context, id uuid.UUID, allocated int) error {
	res := dbc.Resolve(r.db).Model(&types.RequestItem{}).
		Where("item_id = ?", id).
		Updates(map[string]interface{}{
			"allocated":  allocated,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListAllocationQueue returns open items of submitted or approved requests,
// most urgent request first.
func (r *requestItemRepo) ListAllocationQueue(dbc dbctx.Context, supplyCode string) ([]AllocationQueueRow, error) {
	q := dbc.Resolve(r.db).Table("request_item AS ri").
		Select(`ri.item_id AS item_id, ri.request_id AS request_id, ri.supply_code AS supply_code,
			s.name AS supply_name, h.hospital_id AS hospital_id, h.name AS hospital_name,
			ri.quantity AS quantity, ri.allocated AS allocated, ri.priority AS item_priority,
			sr.priority AS request_priority, sr.status AS request_status,
			sr.required_by AS required_by, sr.emergency AS emergency`).
		Joins("JOIN supply_request sr ON sr.request_id = ri.request_id AND sr.deleted_at IS NULL").
		Joins("JOIN hospital h ON h.hospital_id = sr.hospital_id").
		Joins("LEFT JOIN medical_supply s ON s.unspsc_code = ri.supply_code").
		Where("ri.deleted_at IS NULL AND ri.quantity > ri.allocated AND sr.status IN ?", openStatuses()).
		Order("sr.priority DESC, sr.required_by ASC, ri.priority DESC")
	if supplyCode != "" {
		q = q.Where("ri.supply_code = ?", supplyCode)
	}
	var out []AllocationQueueRow
	if err := q.Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func openStatuses() []string {
	return []string{inventory.StatusSubmitted, inventory.StatusApproved}
}
