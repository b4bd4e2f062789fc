package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	types "github.com/yungbote/medsupply-backend/internal/domain"
	domainjobs "github.com/yungbote/medsupply-backend/internal/domain/jobs"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

type MetricsConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Addr           string        `yaml:"addr"`
	ScrapeInterval time.Duration `yaml:"scrape_interval"`
}

type Metrics struct {
	apiRequests     *CounterVec
	apiLatency      *HistogramVec
	apiInflight     *Gauge
	priorityRuns    *CounterVec
	priorityLatency *HistogramVec
	jobRuns         *CounterVec
	jobLatency      *HistogramVec
	alertsRaised    *CounterVec
	pgStats         *GaugeVec
	redisUp         *Gauge
	redisPing       *Gauge
	queueDepth      *GaugeVec
	scrapeInterval  time.Duration
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init returns the process-wide registry, or nil when metrics are disabled.
// Every method on *Metrics is safe on a nil receiver.
func Init(cfg MetricsConfig, log *logger.Logger) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics(cfg.ScrapeInterval)
		if log != nil {
			log.Info("metrics enabled", "addr", cfg.Addr)
		}
	})
	return instance
}

func Current() *Metrics {
	return instance
}

func NewMetrics(scrapeInterval time.Duration) *Metrics {
	if scrapeInterval <= 0 {
		scrapeInterval = 10 * time.Second
	}
	return &Metrics{
		apiRequests: NewCounterVec("medsupply_api_requests_total", "API requests by method, route and status.",
			[]string{"method", "route", "status"}),
		apiLatency: NewHistogramVec("medsupply_api_request_duration_seconds", "API request latency.",
			[]string{"method", "route", "status"}, nil),
		apiInflight: NewGauge("medsupply_api_inflight_requests", "API requests currently in flight."),
		priorityRuns: NewCounterVec("medsupply_priority_runs_total", "Priority recalculations by outcome.",
			[]string{"outcome"}),
		priorityLatency: NewHistogramVec("medsupply_priority_run_duration_seconds", "Priority recalculation latency.",
			[]string{"outcome"}, nil),
		jobRuns: NewCounterVec("medsupply_job_runs_total", "Background job executions by type and status.",
			[]string{"job_type", "status"}),
		jobLatency: NewHistogramVec("medsupply_job_run_duration_seconds", "Background job execution latency.",
			[]string{"job_type", "status"}, []float64{0.1, 0.5, 1, 5, 15, 60, 300}),
		alertsRaised: NewCounterVec("medsupply_inventory_alerts_raised_total", "Inventory alerts created by type.",
			[]string{"alert_type"}),
		pgStats: NewGaugeVec("medsupply_postgres_pool", "database/sql connection pool stats.",
			[]string{"stat"}),
		redisUp:    NewGauge("medsupply_redis_up", "1 when the last redis ping succeeded."),
		redisPing:  NewGauge("medsupply_redis_ping_seconds", "Latency of the last redis ping."),
		queueDepth: NewGaugeVec("medsupply_job_queue_depth", "job_run rows by status.", []string{"status"}),

		scrapeInterval: scrapeInterval,
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	all := []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.priorityRuns, m.priorityLatency,
		m.jobRuns, m.jobLatency, m.alertsRaised,
		m.pgStats, m.redisUp, m.redisPing, m.queueDepth,
	}
	for _, pw := range all {
		if err := pw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObservePriorityRun satisfies priority.Recorder.
func (m *Metrics) ObservePriorityRun(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.priorityRuns.Inc(outcome)
	m.priorityLatency.Observe(seconds, outcome)
}

func (m *Metrics) ObserveJob(jobType, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.jobRuns.Inc(jobType, status)
	m.jobLatency.Observe(dur.Seconds(), jobType, status)
}

func (m *Metrics) IncAlertRaised(alertType string) {
	if m == nil {
		return
	}
	m.alertsRaised.Inc(alertType)
}

func (m *Metrics) every(ctx context.Context, fn func()) {
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	m.every(ctx, func() {
		sqlDB, err := db.DB()
		if err != nil {
			if log != nil {
				log.Warn("metrics: postgres stats unavailable", "error", err)
			}
			return
		}
		stats := sqlDB.Stats()
		m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
		m.pgStats.Set(float64(stats.InUse), "in_use")
		m.pgStats.Set(float64(stats.Idle), "idle")
		m.pgStats.Set(float64(stats.WaitCount), "wait_count")
		m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
		m.pgStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
	})
}

// StartRedisCollector pings the shared client; the caller owns its lifecycle.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	m.every(ctx, func() {
		start := time.Now()
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			m.redisUp.Set(0)
			if log != nil {
				log.Warn("metrics: redis ping failed", "error", err)
			}
			return
		}
		m.redisUp.Set(1)
		m.redisPing.Set(time.Since(start).Seconds())
	})
}

func (m *Metrics) StartJobQueueCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	statuses := []string{domainjobs.StatusQueued, domainjobs.StatusRunning, domainjobs.StatusSucceeded, domainjobs.StatusFailed}
	m.every(ctx, func() {
		var rows []struct {
			Status string
			Count  int64
		}
		if err := db.WithContext(ctx).
			Model(&types.JobRun{}).
			Select("status, count(*) as count").
			Group("status").
			Scan(&rows).Error; err != nil {
			if log != nil {
				log.Warn("metrics: job queue depth query failed", "error", err)
			}
			return
		}
		for _, s := range statuses {
			m.queueDepth.Set(0, s)
		}
		for _, row := range rows {
			m.queueDepth.Set(float64(row.Count), row.Status)
		}
	})
}
