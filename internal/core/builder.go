package core

import (
	"net"

	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/config"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/capability"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/datalog"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/metrics"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/retry"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/util"
)

// Build constructs a Server from the given configuration, serving
// connections accepted on ln.  The listener is bound by the caller so
// that bind errors surface before any daemonizing.
func Build(cfg *config.Config, ln net.Listener, logger *util.Logger) *Server {
	m := metrics.New()
	log := buildLog(cfg, logger)

	return &Server{
		Listener: ln,
		Capability: &capability.AppendEcho{
			Log:         log,
			Metrics:     m,
			Backoff:     retry.SendBackoff(),
			IdleTimeout: cfg.IdleTimeout,
		},
		Log:         log,
		Metrics:     m,
		Logger:      logger,
		GracePeriod: cfg.GracePeriod,
	}
}

// ── shared helpers ───────────────────────────────────────────────────

// buildLog opens the data log, guarded by a circuit breaker unless the
// threshold is zero.
func buildLog(cfg *config.Config, logger *util.Logger) *datalog.Log {
	opts := []datalog.Option{datalog.WithLogger(logger)}
	if cfg.BreakerThreshold > 0 {
		opts = append(opts, datalog.WithBreaker(retry.NewCircuitBreaker(&retry.CircuitBreakerConfig{
			MaxFailures:  cfg.BreakerThreshold,
			ResetTimeout: cfg.BreakerReset,
			OnStateChange: func(from, to retry.State) {
				logger.Warn("data log circuit %s -> %s", from, to)
			},
		})))
	}
	return datalog.Open(cfg.DataFile, opts...)
}
