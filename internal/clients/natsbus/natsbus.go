package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

type Config struct {
	URL            string        `yaml:"url"`
	Name           string        `yaml:"name"`
	SubjectPrefix  string        `yaml:"subject_prefix"`
	ReconnectWait  time.Duration `yaml:"reconnect_wait"`
	MaxReconnects  int           `yaml:"max_reconnects"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// Publisher is the narrow surface event emitters depend on.
type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

// Bus wraps a NATS connection with JSON publish and queue-group subscriptions.
type Bus struct {
	conn   *nats.Conn
	log    *logger.Logger
	prefix string

	mu   sync.Mutex
	subs []*nats.Subscription
}

func Connect(cfg Config, baseLog *logger.Logger) (*Bus, error) {
	log := baseLog.With("client", "NATSBus")
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	if cfg.Name == "" {
		cfg.Name = "medsupply-backend"
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = -1
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("connected to nats", "url", conn.ConnectedUrl())
	return &Bus{conn: conn, log: log, prefix: strings.TrimSuffix(cfg.SubjectPrefix, ".")}, nil
}

// Subject prepends the configured prefix.
func (b *Bus) Subject(name string) string {
	if b == nil || b.prefix == "" {
		return name
	}
	return b.prefix + "." + name
}

func (b *Bus) Publish(ctx context.Context, subject string, v any) error {
	if b == nil || b.conn == nil {
		return fmt.Errorf("nats not connected")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	return b.conn.Publish(b.Subject(subject), payload)
}

// QueueSubscribe delivers each message to one member of the queue group.
// Handler errors are logged; NATS core has no redelivery.
func (b *Bus) QueueSubscribe(subject, queue string, handler func(ctx context.Context, data []byte) error) error {
	if b == nil || b.conn == nil {
		return fmt.Errorf("nats not connected")
	}
	full := b.Subject(subject)
	sub, err := b.conn.QueueSubscribe(full, queue, func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := handler(ctx, msg.Data); err != nil {
			b.log.Warn("nats handler failed", "subject", msg.Subject, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe %s: %w", full, err)
	}
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	b.log.Info("nats subscription started", "subject", full, "queue", queue)
	return nil
}

func (b *Bus) Close() {
	if b == nil || b.conn == nil {
		return
	}
	b.mu.Lock()
	for _, s := range b.subs {
		_ = s.Unsubscribe()
	}
	b.subs = nil
	b.mu.Unlock()
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}
