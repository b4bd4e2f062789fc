package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/medsupply-backend/internal/clients/natsbus"
	"github.com/yungbote/medsupply-backend/internal/jobs/pipeline/inventory_alert_check"
	"github.com/yungbote/medsupply-backend/internal/jobs/pipeline/priority_recalculate"
	"github.com/yungbote/medsupply-backend/internal/jobs/pipeline/priority_sweep"
	jobrt "github.com/yungbote/medsupply-backend/internal/jobs/runtime"
	"github.com/yungbote/medsupply-backend/internal/jobs/worker"
	"github.com/yungbote/medsupply-backend/internal/observability"
	"github.com/yungbote/medsupply-backend/internal/platform/keylock"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
	"github.com/yungbote/medsupply-backend/internal/priority"
	"github.com/yungbote/medsupply-backend/internal/services"
	"github.com/yungbote/medsupply-backend/internal/temporalx/temporalworker"
)

type Services struct {
	Auth          services.AuthService
	Inventory     services.InventoryService
	Supplier      services.SupplierService
	SupplyRequest services.SupplyRequestService
	Allocation    services.AllocationService
	Alerts        services.AlertService
	Dashboard     services.DashboardService
	Export        services.ExportService
	Jobs          services.JobService
	JobNotifier   services.JobNotifier

	Priority *priority.Service
	Trigger  *services.PriorityTrigger

	// Optional runners; nil when disabled.
	JobWorker      *worker.Worker
	TemporalRunner *temporalworker.Runner
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")
	pub := c.Publisher()

	aggregation, err := priority.ParseAggregation(cfg.Priority.RequestAggregation)
	if err != nil {
		return Services{}, err
	}
	triggerMode, err := services.ParseTriggerMode(cfg.Priority.TriggerMode)
	if err != nil {
		return Services{}, err
	}
	if !cfg.Worker.Enabled && triggerMode == services.TriggerJob {
		log.Warn("job worker disabled; priority recalculation runs inline")
		triggerMode = services.TriggerInline
	}

	var locker priority.Locker = keylock.NewLocal()
	if c.Redis != nil {
		locker = keylock.Chain{
			keylock.NewLocal(),
			keylock.NewRedis(c.Redis, log, "medsupply:lock:", cfg.Priority.LockTTL),
		}
	}

	prio := priority.NewService(r.PriorityStore, log, priority.Options{
		Location:         cfg.Location(),
		Aggregation:      aggregation,
		SweepConcurrency: cfg.Priority.SweepConcurrency,
		Locker:           locker,
		Notifier:         natsbus.NewPriorityNotifier(pub, log),
		Recorder:         metrics,
	})

	jobNotifier := services.NewJobNotifier(pub, log)
	jobs := services.NewJobService(db, log, r.JobRun, jobNotifier)
	trigger := services.NewPriorityTrigger(log, triggerMode, jobs, prio)

	alerts := services.NewAlertService(log, r.Alert, r.Hospital, r.Batch, services.AlertOptions{
		ExpiringWithinDays: cfg.Alerts.ExpiringWithinDays,
		Location:           cfg.Location(),
		Notifier:           natsbus.NewAlertNotifier(pub, log),
		Recorder:           metrics,
	})

	out := Services{
		Auth:          services.NewAuthService(log, cfg.Auth.JWTSecret),
		Inventory:     services.NewInventoryService(db, log, r.Hospital, r.Supply, r.Batch, trigger),
		Supplier:      services.NewSupplierService(log, r.Supplier),
		SupplyRequest: services.NewSupplyRequestService(db, log, r.SupplyRequest, r.RequestItem, r.Hospital, r.Supply, trigger),
		Allocation:    services.NewAllocationService(db, log, r.SupplyRequest, r.RequestItem, trigger),
		Alerts:        alerts,
		Dashboard:     services.NewDashboardService(log, cfg.Dashboard.CacheTTL, r.SupplyRequest, r.Supply, r.Batch, r.Hospital, r.Alert),
		Export:        services.NewExportService(log, r.Batch, nil),
		Jobs:          jobs,
		JobNotifier:   jobNotifier,
		Priority:      prio,
		Trigger:       trigger,
	}

	if cfg.Worker.Enabled {
		registry := jobrt.NewRegistry()
		if err := registry.RegisterAll(
			priority_recalculate.New(log, prio),
			priority_sweep.New(log, prio),
			inventory_alert_check.New(log, alerts),
		); err != nil {
			return Services{}, fmt.Errorf("register job handlers: %w", err)
		}
		out.JobWorker = worker.NewWorker(log, r.JobRun, registry, jobNotifier, metrics, cfg.Worker)
	}

	if c.Temporal != nil {
		runner, err := temporalworker.NewRunner(log, c.Temporal, cfg.Temporal, prio, cfg.Priority.SweepConcurrency)
		if err != nil {
			return Services{}, fmt.Errorf("init temporal runner: %w", err)
		}
		out.TemporalRunner = runner
	}

	return out, nil
}
