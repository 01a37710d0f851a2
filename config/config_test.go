package config

import (
	"strings"
	"testing"
	"time"

	errs "github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/errors"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.DataFile != "/var/tmp/aesdsocketdata" {
		t.Errorf("DataFile = %q", cfg.DataFile)
	}
	if cfg.GracePeriod != DefaultGracePeriod {
		t.Errorf("GracePeriod = %v", cfg.GracePeriod)
	}
	if cfg.Daemon || cfg.UseSyslog {
		t.Error("daemon and syslog should be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestAddress(t *testing.T) {
	tests := []struct {
		bind string
		port int
		want string
	}{
		{"", 9000, ":9000"},
		{"127.0.0.1", 9000, "127.0.0.1:9000"},
		{"::1", 9001, "[::1]:9001"},
	}
	for _, tt := range tests {
		cfg := &Config{BindAddress: tt.bind, Port: tt.port}
		if got := cfg.Address(); got != tt.want {
			t.Errorf("Address(%q, %d) = %q, want %q", tt.bind, tt.port, got, tt.want)
		}
	}
}

// ── Validation ───────────────────────────────────────────────────────

// TestValidate_ErrorMessages verifies that Validate returns actionable
// error messages with hints.
func TestValidate_ErrorMessages(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"port zero", func(c *Config) { c.Port = 0 }, "port"},
		{"port too large", func(c *Config) { c.Port = 70000 }, "port"},
		{"empty data file", func(c *Config) { c.DataFile = "" }, "data-file"},
		{"negative timeout", func(c *Config) { c.IdleTimeout = -time.Second }, "timeout"},
		{"negative grace", func(c *Config) { c.GracePeriod = -time.Second }, "grace"},
		{"negative threshold", func(c *Config) { c.BreakerThreshold = -1 }, "breaker-threshold"},
		{"zero reset with breaker", func(c *Config) { c.BreakerReset = 0 }, "breaker-reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			var ce *errs.ConfigError
			if !errs.As(err, &ce) {
				t.Fatalf("error %T is not a *ConfigError", err)
			}
			if ce.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ce.Field, tt.wantField)
			}
			if !strings.Contains(err.Error(), "hint:") {
				t.Errorf("error %q should carry a hint", err.Error())
			}
		})
	}
}

func TestValidate_BreakerDisabledIgnoresReset(t *testing.T) {
	cfg := Defaults()
	cfg.BreakerThreshold = 0
	cfg.BreakerReset = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_Boundaries(t *testing.T) {
	for _, port := range []int{1, 65535} {
		cfg := Defaults()
		cfg.Port = port
		if err := cfg.Validate(); err != nil {
			t.Errorf("port %d: %v", port, err)
		}
	}
}
