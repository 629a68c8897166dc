package app

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/capitanshop/shopbot/core/config"
	"github.com/capitanshop/shopbot/core/database"
	"github.com/capitanshop/shopbot/core/telegram/sender"
	"github.com/capitanshop/shopbot/internal/flow"
	"github.com/capitanshop/shopbot/internal/media"
)

const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// SessionConfig selects where pending admin flows are kept.
type SessionConfig struct {
	Backend string        `yaml:"backend" envconfig:"SESSION_BACKEND"`
	TTL     time.Duration `yaml:"ttl" envconfig:"SESSION_TTL"`
	Prefix  string        `yaml:"prefix" envconfig:"SESSION_PREFIX"`
	Redis   RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// SenderConfig tunes the outbound dispatcher used for broadcasts.
type SenderConfig struct {
	QueueSize  int     `yaml:"queue_size" envconfig:"SENDER_QUEUE_SIZE"`
	Workers    int     `yaml:"workers" envconfig:"SENDER_WORKERS"`
	MaxRetries int     `yaml:"max_retries" envconfig:"SENDER_MAX_RETRIES"`
	PerSecond  float64 `yaml:"per_second" envconfig:"SENDER_PER_SECOND"`
	Burst      int     `yaml:"burst" envconfig:"SENDER_BURST"`
}

func (s SenderConfig) options() sender.Options {
	return sender.Options{
		QueueSize:  s.QueueSize,
		Workers:    s.Workers,
		MaxRetries: s.MaxRetries,
		PerSecond:  s.PerSecond,
		Burst:      s.Burst,
	}
}

// Config is the full bot configuration: the reusable core plus shop settings.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database database.Config `yaml:"database"`
	Shop     flow.Shop       `yaml:"shop"`
	Session  SessionConfig   `yaml:"session"`
	Media    media.Config    `yaml:"media"`
	Sender   SenderConfig    `yaml:"sender"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads path, overlays the environment and validates every section.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}
	if err := c.Shop.Normalize(); err != nil {
		return err
	}
	if err := c.Media.Normalize(); err != nil {
		return err
	}

	c.Session.Backend = strings.ToLower(strings.TrimSpace(c.Session.Backend))
	switch c.Session.Backend {
	case "":
		c.Session.Backend = SessionMemory
	case SessionMemory:
	case SessionRedis:
		if c.Session.Redis.Addr == "" {
			return fmt.Errorf("session.redis.addr is required for the redis session backend")
		}
	default:
		return fmt.Errorf("invalid session.backend %q; allowed: memory, redis", c.Session.Backend)
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("session.ttl must be >= 0")
	}
	if c.Session.Prefix == "" {
		c.Session.Prefix = "shopbot:flow:"
	}

	if c.Sender.MaxRetries == 0 {
		c.Sender.MaxRetries = 2
	}
	if c.Sender.PerSecond == 0 {
		c.Sender.PerSecond = 25
	}
	return nil
}
