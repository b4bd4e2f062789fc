package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
	"github.com/yungbote/medsupply-backend/internal/priority"
)

// PriorityStore backs the priority service with the relational schema.
type PriorityStore struct {
	db  *gorm.DB
	log *logger.Logger
}

var _ priority.Store = (*PriorityStore)(nil)

func NewPriorityStore(db *gorm.DB, baseLog *logger.Logger) *PriorityStore {
	return &PriorityStore{db: db, log: baseLog.With("repo", "PriorityStore")}
}

func (s *PriorityStore) openItems(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table("request_item AS ri").
		Joins("JOIN supply_request sr ON sr.request_id = ri.request_id AND sr.deleted_at IS NULL").
		Where("ri.deleted_at IS NULL AND ri.quantity > ri.allocated AND sr.status IN ?", openStatuses())
}

func (s *PriorityStore) ListOutstandingSupplyCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := s.openItems(ctx).
		Distinct("ri.supply_code").
		Order("ri.supply_code ASC").
		Pluck("ri.supply_code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

type candidateRow struct {
	ItemID        uuid.UUID
	RequestID     uuid.UUID
	HospitalID    uuid.UUID
	HospitalName  string
	HospitalLevel int
	Quantity      int
	Allocated     int
	MinStockLevel int
}

func (s *PriorityStore) ListCandidates(ctx context.Context, supplyCode string) ([]priority.Candidate, error) {
	var rows []candidateRow
	err := s.openItems(ctx).
		Select(`ri.item_id AS item_id, ri.request_id AS request_id,
			h.hospital_id AS hospital_id, h.name AS hospital_name, h.level AS hospital_level,
			ri.quantity AS quantity, ri.allocated AS allocated,
			COALESCE(ms.min_stock_level, 0) AS min_stock_level`).
		Joins("JOIN hospital h ON h.hospital_id = sr.hospital_id").
		Joins("LEFT JOIN medical_supply ms ON ms.unspsc_code = ri.supply_code").
		Where("ri.supply_code = ?", supplyCode).
		Order("ri.created_at ASC, ri.item_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]priority.Candidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, priority.Candidate{
			ItemID:        r.ItemID,
			RequestID:     r.RequestID,
			HospitalID:    r.HospitalID,
			HospitalName:  r.HospitalName,
			HospitalLevel: r.HospitalLevel,
			Requested:     r.Quantity,
			Allocated:     r.Allocated,
			MinStockLevel: r.MinStockLevel,
		})
	}
	return out, nil
}

func (s *PriorityStore) ListStockBatches(ctx context.Context, supplyCode string, hospitalIDs []uuid.UUID, notBefore time.Time) ([]priority.BatchStock, error) {
	if len(hospitalIDs) == 0 {
		return nil, nil
	}
	var batches []types.Batch
	err := s.db.WithContext(ctx).
		Select("hospital_id", "quantity", "expiration_date").
		Where("supply_code = ? AND hospital_id IN ? AND quantity > 0", supplyCode, hospitalIDs).
		Where("expiration_date >= ?", notBefore).
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	out := make([]priority.BatchStock, 0, len(batches))
	for _, b := range batches {
		out = append(out, priority.BatchStock{
			HospitalID:     b.HospitalID,
			Quantity:       b.Quantity,
			ExpirationDate: b.ExpirationDate,
		})
	}
	return out, nil
}

func (s *PriorityStore) MaxOtherItemPriority(ctx context.Context, supplyCode string, requestIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	out := make(map[uuid.UUID]float64, len(requestIDs))
	if len(requestIDs) == 0 {
		return out, nil
	}
	type row struct {
		RequestID uuid.UUID
		Priority  float64
	}
	var rows []row
	err := s.openItems(ctx).
		Select("ri.request_id AS request_id, MAX(ri.priority) AS priority").
		Where("ri.request_id IN ? AND ri.supply_code <> ?", requestIDs, supplyCode).
		Group("ri.request_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.RequestID] = r.Priority
	}
	return out, nil
}

// ApplyScores writes item and request priorities in one transaction. Only the
// priority column changes.
func (s *PriorityStore) ApplyScores(ctx context.Context, items []priority.ItemScore, requests []priority.RequestScore) error {
	started := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range items {
			if err := tx.Model(&types.RequestItem{}).
				Where("item_id = ?", it.ItemID).
				UpdateColumn("priority", it.Score).Error; err != nil {
				return fmt.Errorf("item %s: %w", it.ItemID, err)
			}
		}
		for _, rq := range requests {
			if err := tx.Model(&types.SupplyRequest{}).
				Where("request_id = ?", rq.RequestID).
				UpdateColumn("priority", rq.Score).Error; err != nil {
				return fmt.Errorf("request %s: %w", rq.RequestID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Debug("priority scores written",
		"items", len(items),
		"requests", len(requests),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}
