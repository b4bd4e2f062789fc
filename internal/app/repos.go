package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/medsupply-backend/internal/data/repos"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

type Repos struct {
	Hospital      repos.HospitalRepo
	Supplier      repos.SupplierRepo
	Supply        repos.SupplyRepo
	Batch         repos.BatchRepo
	SupplyRequest repos.SupplyRequestRepo
	RequestItem   repos.RequestItemRepo
	Alert         repos.AlertRepo
	JobRun        repos.JobRunRepo
	PriorityStore *repos.PriorityStore
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Hospital:      repos.NewHospitalRepo(db, log),
		Supplier:      repos.NewSupplierRepo(db, log),
		Supply:        repos.NewSupplyRepo(db, log),
		Batch:         repos.NewBatchRepo(db, log),
		SupplyRequest: repos.NewSupplyRequestRepo(db, log),
		RequestItem:   repos.NewRequestItemRepo(db, log),
		Alert:         repos.NewAlertRepo(db, log),
		JobRun:        repos.NewJobRunRepo(db, log),
		PriorityStore: repos.NewPriorityStore(db, log),
	}
}
