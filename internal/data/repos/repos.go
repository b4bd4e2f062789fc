package repos

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/medsupply-backend/internal/data/repos/inventory"
	"github.com/yungbote/medsupply-backend/internal/data/repos/jobs"
	"github.com/yungbote/medsupply-backend/internal/platform/errs"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

type HospitalRepo = inventory.HospitalRepo
type SupplierRepo = inventory.SupplierRepo
type SupplyRepo = inventory.SupplyRepo
type BatchRepo = inventory.BatchRepo
type SupplyRequestRepo = inventory.SupplyRequestRepo
type RequestItemRepo = inventory.RequestItemRepo
type AlertRepo = inventory.AlertRepo
type PriorityStore = inventory.PriorityStore

type HospitalFilter = inventory.HospitalFilter
type SupplyFilter = inventory.SupplyFilter
type BatchFilter = inventory.BatchFilter
type RequestFilter = inventory.RequestFilter
type AlertFilter = inventory.AlertFilter
type AlertCount = inventory.AlertCount
type AllocationQueueRow = inventory.AllocationQueueRow

type JobRunRepo = jobs.JobRunRepo

func NewHospitalRepo(db *gorm.DB, baseLog *logger.Logger) HospitalRepo {
	return inventory.NewHospitalRepo(db, baseLog)
}
func NewSupplierRepo(db *gorm.DB, baseLog *logger.Logger) SupplierRepo {
	return inventory.NewSupplierRepo(db, baseLog)
}
func NewSupplyRepo(db *gorm.DB, baseLog *logger.Logger) SupplyRepo {
	return inventory.NewSupplyRepo(db, baseLog)
}
func NewBatchRepo(db *gorm.DB, baseLog *logger.Logger) BatchRepo {
	return inventory.NewBatchRepo(db, baseLog)
}
func NewSupplyRequestRepo(db *gorm.DB, baseLog *logger.Logger) SupplyRequestRepo {
	return inventory.NewSupplyRequestRepo(db, baseLog)
}
func NewRequestItemRepo(db *gorm.DB, baseLog *logger.Logger) RequestItemRepo {
	return inventory.NewRequestItemRepo(db, baseLog)
}
func NewAlertRepo(db *gorm.DB, baseLog *logger.Logger) AlertRepo {
	return inventory.NewAlertRepo(db, baseLog)
}
func NewPriorityStore(db *gorm.DB, baseLog *logger.Logger) *PriorityStore {
	return inventory.NewPriorityStore(db, baseLog)
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return jobs.NewJobRunRepo(db, baseLog)
}

// MapError translates driver errors into platform sentinels, wrapping the original.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Join(errs.ErrNotFound, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Join(errs.ErrConflict, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return errors.Join(errs.ErrConflict, err)
		case "23503", "23514", "22P02":
			return errors.Join(errs.ErrInvalidArgument, err)
		}
	}
	return err
}
