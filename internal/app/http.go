package app

import (
	"context"

	"gorm.io/gorm"

	httpapi "github.com/yungbote/medsupply-backend/internal/http"
	httpH "github.com/yungbote/medsupply-backend/internal/http/handlers"
	httpMW "github.com/yungbote/medsupply-backend/internal/http/middleware"
	"github.com/yungbote/medsupply-backend/internal/observability"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

func wireHTTP(db *gorm.DB, log *logger.Logger, cfg Config, s Services, metrics *observability.Metrics) *httpapi.Server {
	log.Info("Wiring handlers and router...")
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	ping := func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	return httpapi.NewServer(httpapi.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		ServiceName:    serviceName,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, s.Auth),

		InventoryHandler:     httpH.NewInventoryHandler(s.Inventory, s.Dashboard),
		SupplierHandler:      httpH.NewSupplierHandler(s.Supplier),
		SupplyRequestHandler: httpH.NewSupplyRequestHandler(s.SupplyRequest, s.Allocation, s.Dashboard),
		AlertHandler:         httpH.NewAlertHandler(s.Alerts, s.Dashboard),
		PriorityHandler:      httpH.NewPriorityHandler(s.Priority),
		DashboardHandler:     httpH.NewDashboardHandler(s.Dashboard),
		ExportHandler:        httpH.NewExportHandler(s.Export),
		JobHandler:           httpH.NewJobHandler(s.Jobs),

		HealthHandler: httpH.NewHealthHandler(ping),
	})
}
