package scheduler

import (
	"time"

	appconfig "github.com/nalotext/smsmargin/internal/config"
)

// Config controls the sweep interval and batch size.
type Config struct {
	RunInterval time.Duration
	BatchSize   int
}

func DefaultConfig() Config {
	return Config{
		RunInterval: 5 * time.Minute,
		BatchSize:   50,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	return c
}

func ProvideConfig(cfg appconfig.Config) Config {
	return Config{
		RunInterval: cfg.AutoDistributeInterval,
		BatchSize:   cfg.AutoDistributeBatch,
	}.withDefaults()
}
