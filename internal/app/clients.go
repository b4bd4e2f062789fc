package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/medsupply-backend/internal/clients/natsbus"
	redisclient "github.com/yungbote/medsupply-backend/internal/clients/redis"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
	"github.com/yungbote/medsupply-backend/internal/temporalx"
)

// Clients holds the optional external connections. Each is nil when its
// address is not configured.
type Clients struct {
	Redis    *goredis.Client
	NATS     *natsbus.Bus
	Temporal temporalsdkclient.Client
}

func wireClients(cfg Config, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	if cfg.Redis.Enabled() {
		rdb, err := redisclient.NewClient(cfg.Redis, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
	}

	if cfg.NATS.URL != "" {
		bus, err := natsbus.Connect(cfg.NATS, log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init nats: %w", err)
		}
		out.NATS = bus
	}

	if cfg.Temporal.Enabled() {
		tc, err := temporalx.NewClient(cfg.Temporal, log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init temporal: %w", err)
		}
		out.Temporal = tc
	}
	return out, nil
}

// Publisher returns the bus as a Publisher, or a nil interface when NATS is off.
func (c *Clients) Publisher() natsbus.Publisher {
	if c == nil || c.NATS == nil {
		return nil
	}
	return c.NATS
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.NATS != nil {
		c.NATS.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
