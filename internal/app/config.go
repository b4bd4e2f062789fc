package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/medsupply-backend/internal/clients/natsbus"
	redisclient "github.com/yungbote/medsupply-backend/internal/clients/redis"
	"github.com/yungbote/medsupply-backend/internal/data/db"
	"github.com/yungbote/medsupply-backend/internal/jobs/worker"
	"github.com/yungbote/medsupply-backend/internal/observability"
	"github.com/yungbote/medsupply-backend/internal/platform/envutil"
	"github.com/yungbote/medsupply-backend/internal/priority"
	"github.com/yungbote/medsupply-backend/internal/services"
	"github.com/yungbote/medsupply-backend/internal/temporalx"
)

const defaultConfigPath = "config/config.yaml"

type HTTPConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type PriorityConfig struct {
	Timezone           string        `yaml:"timezone"`
	SweepConcurrency   int           `yaml:"sweep_concurrency"`
	RequestAggregation string        `yaml:"request_aggregation"`
	LockTTL            time.Duration `yaml:"lock_ttl"`
	SweepInterval      time.Duration `yaml:"sweep_interval"`
	TriggerMode        string        `yaml:"trigger_mode"`
}

type AlertsConfig struct {
	ExpiringWithinDays int           `yaml:"expiring_within_days"`
	CheckInterval      time.Duration `yaml:"check_interval"`
}

type DashboardConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type Config struct {
	LogMode   string                      `yaml:"log_mode"`
	HTTP      HTTPConfig                  `yaml:"http"`
	Postgres  db.PostgresConfig           `yaml:"postgres"`
	Redis     redisclient.Config          `yaml:"redis"`
	NATS      natsbus.Config              `yaml:"nats"`
	Auth      AuthConfig                  `yaml:"auth"`
	Priority  PriorityConfig              `yaml:"priority"`
	Worker    worker.Config               `yaml:"worker"`
	Alerts    AlertsConfig                `yaml:"alerts"`
	Dashboard DashboardConfig             `yaml:"dashboard"`
	Temporal  temporalx.Config            `yaml:"temporal"`
	Metrics   observability.MetricsConfig `yaml:"metrics"`
	Otel      observability.OtelConfig    `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		LogMode: "development",
		HTTP:    HTTPConfig{Addr: ":8080"},
		Postgres: db.PostgresConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "medsupply",
			SSLMode: "disable",
		},
		NATS: natsbus.Config{SubjectPrefix: "medsupply"},
		Priority: PriorityConfig{
			Timezone:           "UTC",
			SweepConcurrency:   1,
			RequestAggregation: string(priority.AggregateTouched),
			LockTTL:            2 * time.Minute,
			TriggerMode:        string(services.TriggerJob),
		},
		Worker: worker.Config{Enabled: true, Concurrency: 2},
		Alerts: AlertsConfig{
			ExpiringWithinDays: services.DefaultExpiringWithinDays,
		},
		Dashboard: DashboardConfig{CacheTTL: services.DefaultDashboardTTL},
		Metrics:   observability.MetricsConfig{Addr: ":9090", ScrapeInterval: 15 * time.Second},
		Otel:      observability.OtelConfig{ServiceName: "medsupply-backend", SampleRatio: 1},
	}
}

// LoadConfig layers defaults, the optional YAML file and environment overrides,
// then validates the result.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()
	path := envutil.String("MEDSUPPLY_CONFIG_PATH", defaultConfigPath)
	if err := loadYAML(path, &cfg); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func applyEnv(cfg *Config) {
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)

	if port := envutil.String("PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + port
	}
	cfg.HTTP.Addr = envutil.String("HTTP_ADDR", cfg.HTTP.Addr)
	if origins := splitList(envutil.String("CORS_ORIGINS", "")); len(origins) > 0 {
		cfg.HTTP.CORSOrigins = origins
	}

	cfg.Postgres.DSN = envutil.String("POSTGRES_DSN", cfg.Postgres.DSN)
	cfg.Postgres.Host = envutil.String("POSTGRES_HOST", cfg.Postgres.Host)
	cfg.Postgres.Port = envutil.String("POSTGRES_PORT", cfg.Postgres.Port)
	cfg.Postgres.User = envutil.String("POSTGRES_USER", cfg.Postgres.User)
	cfg.Postgres.Password = envutil.String("POSTGRES_PASSWORD", cfg.Postgres.Password)
	cfg.Postgres.Name = envutil.String("POSTGRES_NAME", cfg.Postgres.Name)
	cfg.Postgres.SSLMode = envutil.String("POSTGRES_SSLMODE", cfg.Postgres.SSLMode)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)

	cfg.NATS.URL = envutil.String("NATS_URL", cfg.NATS.URL)
	cfg.NATS.SubjectPrefix = envutil.String("NATS_SUBJECT_PREFIX", cfg.NATS.SubjectPrefix)

	cfg.Auth.JWTSecret = envutil.String("JWT_SECRET_KEY", cfg.Auth.JWTSecret)

	cfg.Priority.Timezone = envutil.String("PRIORITY_TIMEZONE", cfg.Priority.Timezone)
	cfg.Priority.SweepConcurrency = envutil.Int("PRIORITY_SWEEP_CONCURRENCY", cfg.Priority.SweepConcurrency)
	cfg.Priority.RequestAggregation = envutil.String("PRIORITY_REQUEST_AGGREGATION", cfg.Priority.RequestAggregation)
	cfg.Priority.LockTTL = envutil.Duration("PRIORITY_LOCK_TTL", cfg.Priority.LockTTL)
	cfg.Priority.SweepInterval = envutil.Duration("PRIORITY_SWEEP_INTERVAL", cfg.Priority.SweepInterval)
	cfg.Priority.TriggerMode = envutil.String("PRIORITY_TRIGGER_MODE", cfg.Priority.TriggerMode)

	cfg.Worker.Enabled = envutil.Bool("JOB_WORKER_ENABLED", cfg.Worker.Enabled)
	cfg.Worker.Concurrency = envutil.Int("JOB_WORKER_CONCURRENCY", cfg.Worker.Concurrency)
	cfg.Worker.PollInterval = envutil.Duration("JOB_WORKER_POLL_INTERVAL", cfg.Worker.PollInterval)

	cfg.Alerts.ExpiringWithinDays = envutil.Int("ALERTS_EXPIRING_WITHIN_DAYS", cfg.Alerts.ExpiringWithinDays)
	cfg.Alerts.CheckInterval = envutil.Duration("ALERTS_CHECK_INTERVAL", cfg.Alerts.CheckInterval)

	cfg.Dashboard.CacheTTL = envutil.Duration("DASHBOARD_CACHE_TTL", cfg.Dashboard.CacheTTL)

	cfg.Temporal.Address = envutil.String("TEMPORAL_ADDRESS", cfg.Temporal.Address)
	cfg.Temporal.Namespace = envutil.String("TEMPORAL_NAMESPACE", cfg.Temporal.Namespace)
	cfg.Temporal.TaskQueue = envutil.String("TEMPORAL_TASK_QUEUE", cfg.Temporal.TaskQueue)
	cfg.Temporal.ClientCertPath = envutil.String("TEMPORAL_TLS_CERT", cfg.Temporal.ClientCertPath)
	cfg.Temporal.ClientKeyPath = envutil.String("TEMPORAL_TLS_KEY", cfg.Temporal.ClientKeyPath)
	cfg.Temporal.ClientCAPath = envutil.String("TEMPORAL_TLS_CA", cfg.Temporal.ClientCAPath)
	cfg.Temporal.AutoRegisterNamespace = envutil.Bool("TEMPORAL_AUTO_REGISTER_NAMESPACE", cfg.Temporal.AutoRegisterNamespace)
	if cfg.Temporal.SweepInterval == 0 {
		cfg.Temporal.SweepInterval = cfg.Priority.SweepInterval
	}

	cfg.Metrics.Enabled = envutil.Bool("METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Addr = envutil.String("METRICS_ADDR", cfg.Metrics.Addr)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", cfg.Otel.Environment)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
}

func (c Config) Validate() error {
	var problems []error
	if _, err := time.LoadLocation(c.Priority.Timezone); err != nil {
		problems = append(problems, fmt.Errorf("priority.timezone: %w", err))
	}
	if _, err := priority.ParseAggregation(c.Priority.RequestAggregation); err != nil {
		problems = append(problems, fmt.Errorf("priority.request_aggregation: %w", err))
	}
	if _, err := services.ParseTriggerMode(c.Priority.TriggerMode); err != nil {
		problems = append(problems, fmt.Errorf("priority.trigger_mode: %w", err))
	}
	if c.Priority.SweepConcurrency < 1 {
		problems = append(problems, fmt.Errorf("priority.sweep_concurrency must be at least 1, got %d", c.Priority.SweepConcurrency))
	}
	if c.Priority.SweepInterval < 0 || c.Alerts.CheckInterval < 0 {
		problems = append(problems, errors.New("intervals cannot be negative"))
	}
	if c.Alerts.ExpiringWithinDays < 1 {
		problems = append(problems, fmt.Errorf("alerts.expiring_within_days must be positive, got %d", c.Alerts.ExpiringWithinDays))
	}
	if c.Worker.Concurrency < 0 {
		problems = append(problems, fmt.Errorf("worker.concurrency cannot be negative"))
	}
	return errors.Join(problems...)
}

// Location is only valid after Validate.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Priority.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
