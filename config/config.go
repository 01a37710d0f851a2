// Package config defines the runtime configuration for aesdsocket.
package config

import (
	"time"

	errs "github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/errors"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/util"
)

// Config holds every tuneable for one server run.
type Config struct {
	// ── Listener ─────────────────────────────────────────────────────
	Port        int
	BindAddress string // empty means every interface

	// ── Storage ──────────────────────────────────────────────────────
	DataFile         string
	BreakerThreshold int // 0 disables the breaker
	BreakerReset     time.Duration

	// ── Lifecycle ────────────────────────────────────────────────────
	Daemon      bool
	IdleTimeout time.Duration // -w: 0 means never
	GracePeriod time.Duration

	// ── Output ───────────────────────────────────────────────────────
	UseSyslog bool
	Verbose   int
}

// Defaults returns a Config with every field at its default value.
func Defaults() *Config {
	return &Config{
		Port:             DefaultPort,
		DataFile:         DefaultDataFile,
		BreakerThreshold: DefaultBreakerThreshold,
		BreakerReset:     DefaultBreakerReset,
		GracePeriod:      DefaultGracePeriod,
		Verbose:          1,
	}
}

// Address is the host:port the server binds.
func (c *Config) Address() string {
	return util.FormatAddr(c.BindAddress, c.Port)
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is usable.  Failures are
// *errors.ConfigError values carrying a hint for the user.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return &errs.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "out of range 1-65535",
			Hint:    "the default is 9000",
		}
	}
	if c.DataFile == "" {
		return &errs.ConfigError{
			Field:   "data-file",
			Message: "must not be empty",
			Hint:    "use -f " + DefaultDataFile,
		}
	}
	if c.IdleTimeout < 0 {
		return &errs.ConfigError{
			Field:   "timeout",
			Value:   c.IdleTimeout,
			Message: "must not be negative",
			Hint:    "use 0 to disable the idle timeout",
		}
	}
	if c.GracePeriod < 0 {
		return &errs.ConfigError{
			Field:   "grace",
			Value:   c.GracePeriod,
			Message: "must not be negative",
			Hint:    "use 0 to close connections immediately at shutdown",
		}
	}
	if c.BreakerThreshold < 0 {
		return &errs.ConfigError{
			Field:   "breaker-threshold",
			Value:   c.BreakerThreshold,
			Message: "must not be negative",
			Hint:    "use 0 to disable the storage circuit breaker",
		}
	}
	if c.BreakerThreshold > 0 && c.BreakerReset <= 0 {
		return &errs.ConfigError{
			Field:   "breaker-reset",
			Value:   c.BreakerReset,
			Message: "must be positive while the breaker is enabled",
			Hint:    "e.g. --breaker-reset 1s",
		}
	}
	return nil
}
