package splitflap

import (
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaudRate is the rate the splitflap firmware's serial task listens at
	DefaultBaudRate = 230400

	// DefaultSettleDelay gives the device time to come out of the reset
	// triggered by opening the port before anything is transmitted.
	DefaultSettleDelay = 500 * time.Millisecond

	DefaultReadBufferSize = 4096
)

// Config holds the configuration for a Driver
type Config struct {
	BaudRate       int
	SettleDelay    time.Duration
	ReadBufferSize int
	Logger         *zap.Logger
	Observer       Observer
}

// Option is a functional option for configuring a Driver
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:       DefaultBaudRate,
		SettleDelay:    DefaultSettleDelay,
		ReadBufferSize: DefaultReadBufferSize,
		Logger:         zap.NewNop(),
		Observer:       nopObserver{},
	}
}

// WithBaudRate sets the rate passed to Connection.Open
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if rate <= 0 {
			return ErrInvalidBaudRate
		}
		c.BaudRate = rate
		return nil
	}
}

// WithSettleDelay sets the wait between open and the handshake preamble
func WithSettleDelay(d time.Duration) Option {
	return func(c *Config) error {
		if d < 0 {
			return ErrInvalidConfig
		}
		c.SettleDelay = d
		return nil
	}
}

// WithReadBufferSize sets the largest chunk a single read can produce
func WithReadBufferSize(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return ErrInvalidConfig
		}
		c.ReadBufferSize = n
		return nil
	}
}

// WithLogger sets the logger used by the driver
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return ErrInvalidConfig
		}
		c.Logger = l
		return nil
	}
}

// WithObserver registers hooks for state changes and traffic
func WithObserver(o Observer) Option {
	return func(c *Config) error {
		if o == nil {
			return ErrInvalidConfig
		}
		c.Observer = o
		return nil
	}
}
