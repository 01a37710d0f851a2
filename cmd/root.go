// Package cmd wires up the CLI flags and starts the server.
package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/config"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/core"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/transport"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// options is the outcome of parsing the command line.
type options struct {
	cfg         *config.Config
	showVersion bool
	showHelp    bool
	dryRun      bool
	fs          *flag.FlagSet
}

// Execute parses args and runs the server until ctx is cancelled.
func Execute(ctx context.Context, args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	if opts.showHelp {
		printUsage(opts.fs)
		return nil
	}
	if opts.showVersion {
		fmt.Printf("aesdsocket %s\n", version)
		return nil
	}

	cfg := opts.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	if opts.dryRun {
		printConfig(cfg)
		return nil
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	defer logger.Close() //nolint:errcheck

	child := isDaemonChild()
	if cfg.UseSyslog || child {
		if err := logger.UseSyslog(config.SyslogTag); err != nil {
			logger.Warn("%v; logging to stderr", err)
		}
	}

	var ln net.Listener
	if child {
		ln, err = inheritListener()
	} else {
		ln, err = transport.Listen(ctx, cfg.Address())
	}
	if err != nil {
		return err
	}

	if cfg.Daemon && !child {
		return daemonize(ln, daemonArgs(args, cfg), logger)
	}

	logger.Verbose("aesdsocket %s, data file %s", version, cfg.DataFile)
	return core.Build(cfg, ln, logger).Run(ctx)
}

// parseArgs layers flags over the environment over the defaults.
func parseArgs(args []string) (*options, error) {
	cfg := config.Defaults()
	config.LoadFromEnv(cfg)

	opts := &options{cfg: cfg}
	fs := flag.NewFlagSet("aesdsocket", flag.ContinueOnError)
	opts.fs = fs

	// ── listener ─────────────────────────────────────────────────
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "TCP port to listen on")
	fs.StringVarP(&cfg.BindAddress, "bind", "b", cfg.BindAddress, "Address to bind (default: all interfaces)")

	// ── storage ──────────────────────────────────────────────────
	fs.StringVarP(&cfg.DataFile, "data-file", "f", cfg.DataFile, "Shared data log, removed at exit")
	fs.IntVar(&cfg.BreakerThreshold, "breaker-threshold", cfg.BreakerThreshold,
		"Consecutive storage failures before appends fail fast (0 = off)")
	fs.DurationVar(&cfg.BreakerReset, "breaker-reset", cfg.BreakerReset,
		"How long appends fail fast before retrying storage")

	// ── lifecycle ────────────────────────────────────────────────
	fs.BoolVarP(&cfg.Daemon, "daemon", "d", cfg.Daemon, "Run in the background after binding")

	timeoutSec := int(cfg.IdleTimeout / time.Second)
	graceSec := int(cfg.GracePeriod / time.Second)
	fs.IntVarP(&timeoutSec, "timeout", "w", timeoutSec, "Close connections idle for this many seconds (0 = never)")
	fs.IntVarP(&graceSec, "grace", "g", graceSec, "Seconds to let connections finish at shutdown")

	// ── output ───────────────────────────────────────────────────
	fs.BoolVar(&cfg.UseSyslog, "syslog", cfg.UseSyslog, "Log to the system log instead of stderr")

	var extraVerbose int
	fs.CountVarP(&extraVerbose, "verbose", "v", "Increase verbosity (repeatable)")

	fs.BoolVar(&opts.dryRun, "dry-run", false, "Validate configuration and exit")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&opts.showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q (use --help for usage)", fs.Arg(0))
	}

	if fs.Changed("timeout") {
		cfg.IdleTimeout = time.Duration(timeoutSec) * time.Second
	}
	if fs.Changed("grace") {
		cfg.GracePeriod = time.Duration(graceSec) * time.Second
	}
	cfg.Verbose += extraVerbose
	return opts, nil
}

// ── helpers ──────────────────────────────────────────────────────────

// daemonArgs is the child's command line: the parent's flags, with the
// data file made absolute because the child runs from "/".
func daemonArgs(args []string, cfg *config.Config) []string {
	out := append([]string(nil), args...)
	if abs, err := filepath.Abs(cfg.DataFile); err == nil {
		out = append(out, "--data-file="+abs)
	}
	return out
}

func printConfig(cfg *config.Config) {
	fmt.Printf("listen:      %s\n", cfg.Address())
	fmt.Printf("data file:   %s\n", cfg.DataFile)
	fmt.Printf("daemon:      %t\n", cfg.Daemon)
	fmt.Printf("idle:        %v\n", cfg.IdleTimeout)
	fmt.Printf("grace:       %v\n", cfg.GracePeriod)
	fmt.Printf("breaker:     %d failures, %v reset\n", cfg.BreakerThreshold, cfg.BreakerReset)
	fmt.Printf("syslog:      %t\n", cfg.UseSyslog)
	fmt.Printf("verbosity:   %d\n", cfg.Verbose)
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `aesdsocket v%s

A TCP server that appends newline-terminated packets to a shared data
log and answers each one with the whole log.

Usage:
  aesdsocket [options]            Serve on port 9000
  aesdsocket -d [options]         Serve in the background

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Environment:
  AESD_PORT, AESD_BIND, AESD_DATA_FILE, AESD_DAEMON, AESD_TIMEOUT,
  AESD_GRACE, AESD_SYSLOG, AESD_BREAKER_THRESHOLD, AESD_VERBOSE
  (flags take precedence)

Examples:
  aesdsocket -v                           Serve with verbose logging
  aesdsocket -d                           Daemonize after binding
  aesdsocket -p 9001 -f /tmp/log -w 30    Custom port, log, idle timeout
  echo hello | nc localhost 9000          Append and read back
`)
}
