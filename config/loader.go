package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the AESD_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := envInt("AESD_PORT"); v > 0 {
		cfg.Port = v
	}
	if v := os.Getenv("AESD_BIND"); v != "" {
		cfg.BindAddress = v
	}
	if v := os.Getenv("AESD_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if envBool("AESD_DAEMON") {
		cfg.Daemon = true
	}
	if v := envInt("AESD_TIMEOUT"); v > 0 {
		cfg.IdleTimeout = secondsDuration(v)
	}
	if v, ok := envIntSet("AESD_GRACE"); ok && v >= 0 {
		cfg.GracePeriod = secondsDuration(v)
	}
	if envBool("AESD_SYSLOG") {
		cfg.UseSyslog = true
	}
	if v, ok := envIntSet("AESD_BREAKER_THRESHOLD"); ok && v >= 0 {
		cfg.BreakerThreshold = v
	}
	if v := envInt("AESD_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	n, _ := envIntSet(key)
	return n
}

// envIntSet distinguishes an explicit zero from an unset variable.
func envIntSet(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
