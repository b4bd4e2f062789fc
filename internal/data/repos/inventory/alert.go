package inventory

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

type AlertFilter struct {
	AlertType  string
	HospitalID uuid.UUID
	IsResolved *bool
	Limit      int
}

type AlertRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Alert, error)
	List(dbc dbctx.Context, f AlertFilter) ([]*types.Alert, error)
	// GetOrCreateUnresolved returns the open alert matching the key fields of a,
	// creating a from scratch when none exists.
	GetOrCreateUnresolved(dbc dbctx.Context, a *types.Alert) (*types.Alert, bool, error)
	Resolve(dbc dbctx.Context, id uuid.UUID, by *uuid.UUID, at time.Time) (bool, error)
	Counts(dbc dbctx.Context) ([]AlertCount, error)
}

type AlertCount struct {
	AlertType  string
	IsResolved bool
	Count      int64
}

type alertRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAlertRepo(db *gorm.DB, baseLog *logger.Logger) AlertRepo {
	return &alertRepo{db: db, log: baseLog.With("repo", "AlertRepo")}
}

func (r *alertRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Alert, error) {
	var a types.Alert
	if err := dbc.Resolve(r.db).Where("alert_id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *alertRepo) List(dbc dbctx.Context, f AlertFilter) ([]*types.Alert, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	q := dbc.Resolve(r.db).Order("created_at DESC").Limit(limit)
	if f.AlertType != "" {
		q = q.Where("alert_type = ?", f.AlertType)
	}
	if f.HospitalID != uuid.Nil {
		q = q.Where("hospital_id = ?", f.HospitalID)
	}
	if f.IsResolved != nil {
		q = q.Where("is_resolved = ?", *f.IsResolved)
	}
	var out []*types.Alert
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *alertRepo) GetOrCreateUnresolved(dbc dbctx.Context, a *types.Alert) (*types.Alert, bool, error) {
	var created bool
	var out types.Alert
	err := dbc.Resolve(r.db).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("hospital_id = ? AND alert_type = ? AND is_resolved = ?", a.HospitalID, a.AlertType, false)
		if a.SupplyCode != nil {
			q = q.Where("supply_code = ?", *a.SupplyCode)
		} else {
			q = q.Where("supply_code IS NULL")
		}
		if a.BatchID != nil {
			q = q.Where("batch_id = ?", *a.BatchID)
		} else {
			q = q.Where("batch_id IS NULL")
		}
		err := q.First(&out).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		out = *a
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &out, created, nil
}

func (r *alertRepo) Resolve(dbc dbctx.Context, id uuid.UUID, by *uuid.UUID, at time.Time) (bool, error) {
	res := dbc.Resolve(r.db).Model(&types.Alert{}).
		Where("alert_id = ? AND is_resolved = ?", id, false).
		Updates(map[string]interface{}{
			"is_resolved":   true,
			"resolved_by":   by,
			"resolved_time": at,
			"updated_at":    at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *alertRepo) Counts(dbc dbctx.Context) ([]AlertCount, error) {
	var out []AlertCount
	err := dbc.Resolve(r.db).Model(&types.Alert{}).
		Select("alert_type, is_resolved, COUNT(*) AS count").
		Group("alert_type, is_resolved").
		Order("alert_type").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
