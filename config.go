package maple

import (
	"time"

	"go.uber.org/zap"
)

// Config holds the timing and logging settings of a reset
type Config struct {
	Pulse  time.Duration // how long DTR is held high
	Settle time.Duration // delay after DTR drops, before the magic bytes
	Logger *zap.Logger
}

// Option is a functional option for configuring a reset
type Option func(*Config) error

// DefaultConfig returns a configuration with the libmaple timings
func DefaultConfig() Config {
	return Config{
		Pulse:  50 * time.Millisecond,
		Settle: 50 * time.Millisecond,
		Logger: zap.NewNop(),
	}
}

// WithPulse sets how long DTR is held high
func WithPulse(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return ErrInvalidConfig
		}
		c.Pulse = d
		return nil
	}
}

// WithSettle sets the delay between dropping DTR and writing the magic bytes
func WithSettle(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return ErrInvalidConfig
		}
		c.Settle = d
		return nil
	}
}

// WithLogger sets the logger used for step-by-step debug output
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) error {
		if logger == nil {
			return ErrInvalidConfig
		}
		c.Logger = logger
		return nil
	}
}

func buildConfig(opts []Option) (Config, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return Config{}, err
		}
	}
	return config, nil
}
