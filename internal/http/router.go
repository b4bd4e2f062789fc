package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/medsupply-backend/internal/http/handlers"
	httpMW "github.com/yungbote/medsupply-backend/internal/http/middleware"
	"github.com/yungbote/medsupply-backend/internal/observability"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	CORSOrigins    []string
	ServiceName    string
	AuthMiddleware *httpMW.AuthMiddleware

	InventoryHandler     *httpH.InventoryHandler
	SupplierHandler      *httpH.SupplierHandler
	SupplyRequestHandler *httpH.SupplyRequestHandler
	AlertHandler         *httpH.AlertHandler
	PriorityHandler      *httpH.PriorityHandler
	DashboardHandler     *httpH.DashboardHandler
	ExportHandler        *httpH.ExportHandler
	JobHandler           *httpH.JobHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	protected := r.Group("/api")
	admin := protected.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
		admin = protected.Group("/", cfg.AuthMiddleware.RequireAdmin())
	}

	// Hospitals, supplies, batches
	if h := cfg.InventoryHandler; h != nil {
		protected.GET("/hospitals", h.ListHospitals)
		protected.GET("/hospitals/:id", h.GetHospital)
		admin.POST("/hospitals", h.CreateHospital)

		protected.GET("/supplies", h.ListSupplies)
		protected.GET("/supplies/:code", h.GetSupply)
		admin.POST("/supplies", h.CreateSupply)

		protected.GET("/inventory-batches", h.ListBatches)
		protected.POST("/inventory-batches", h.CreateBatch)
	}

	if h := cfg.SupplierHandler; h != nil {
		protected.GET("/suppliers", h.List)
		protected.GET("/suppliers/:id", h.Get)
		admin.POST("/suppliers", h.Create)
	}

	// Supply requests
	if h := cfg.SupplyRequestHandler; h != nil {
		protected.GET("/supply-requests", h.List)
		protected.GET("/supply-requests/:id", h.Get)
		protected.POST("/supply-requests", h.Create)
		protected.POST("/supply-requests/:id/submit", h.Submit)
		protected.POST("/supply-requests/:id/cancel", h.Cancel)
		admin.POST("/supply-requests/:id/approve", h.Approve)
		admin.POST("/supply-requests/:id/reject", h.Reject)
		admin.POST("/supply-requests/:id/allocate-item", h.AllocateItem)
		protected.GET("/allocation-items", h.AllocationQueue)
	}

	// Alerts
	if h := cfg.AlertHandler; h != nil {
		protected.GET("/inventory-alerts", h.List)
		protected.POST("/inventory-alerts/:id/resolve", h.Resolve)
		admin.POST("/inventory-alerts/check", h.Check)
	}

	// Priorities
	if h := cfg.PriorityHandler; h != nil {
		protected.GET("/supplies/:code/priority-preview", h.Preview)
		admin.POST("/supplies/:code/recalculate-priorities", h.Recalculate)
		admin.POST("/priorities/recalculate-all", h.RecalculateAll)
	}

	// Dashboard
	if h := cfg.DashboardHandler; h != nil {
		protected.GET("/dashboard/request-status", h.RequestStatus)
		protected.GET("/dashboard/supplies-overview", h.SuppliesOverview)
		protected.GET("/dashboard/hospitals-overview", h.HospitalsOverview)
		protected.GET("/dashboard/inventory-alerts", h.AlertsOverview)
	}

	if h := cfg.ExportHandler; h != nil {
		protected.GET("/export/inventory.csv", h.InventoryCSV)
	}

	// Job
	if h := cfg.JobHandler; h != nil {
		protected.GET("/jobs", h.ListJobs)
		protected.GET("/jobs/:id", h.GetJob)
	}

	return r
}
