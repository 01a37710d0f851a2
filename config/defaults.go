package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and environment variable loading.

const (
	// DefaultPort is the TCP port the server listens on.
	DefaultPort = 9000

	// DefaultDataFile is the shared data log.  It is created on the
	// first complete packet and removed at shutdown.
	DefaultDataFile = "/var/tmp/aesdsocketdata"

	// DefaultGracePeriod is how long shutdown waits for handlers
	// before closing their connections.
	DefaultGracePeriod = 5 * time.Second

	// DefaultBreakerThreshold is the number of consecutive storage
	// failures that trip the data log's circuit breaker.
	DefaultBreakerThreshold = 5

	// DefaultBreakerReset is how long the breaker stays open before
	// letting one append through again.
	DefaultBreakerReset = time.Second

	// SyslogTag identifies the server's entries in the system log.
	SyslogTag = "aesdsocket"
)
