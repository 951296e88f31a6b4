package scheduler

import "time"

// Config controls sweep cadence and scope.
type Config struct {
	RunInterval time.Duration
	// Retention is how long a soft-deleted document stays restorable.
	Retention time.Duration
	BatchSize int
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Hour,
		Retention:   30 * 24 * time.Hour,
		BatchSize:   100,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.Retention <= 0 {
		c.Retention = defaults.Retention
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	return c
}
