// Package errors provides domain-specific error types for aesdsocket.
//
// The types mirror how a failure is handled: a StartupError ends the
// process, a ConnectionError or StorageError ends one connection, and a
// ShutdownError is only logged.  They carry structured context
// (operation, address, path) for diagnostics.
package errors

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrLogClosed   = errors.New("data log is closed")
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ── Structured error types ───────────────────────────────────────────

// StartupError is a failure to bring up the listening socket.  It is
// fatal: the process exits with a failure status before serving.
type StartupError struct {
	Op   string // "listen", "inherit", "daemonize"
	Addr string
	Err  error
}

func (e *StartupError) Error() string {
	if e.Addr == "" {
		return fmt.Sprintf("startup %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("startup %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// ConnectionError represents a receive or send failure on one client.
type ConnectionError struct {
	Op        string // "read", "write"
	Peer      string // remote address
	Err       error
	Retryable bool
}

func (e *ConnectionError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Peer, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// StorageError represents a failure to open, append to, or read the
// data log.
type StorageError struct {
	Op   string // "open", "lock", "append", "read"
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ShutdownError is a failure during orderly shutdown, typically while
// removing the data log.  It never changes the exit status.
type ShutdownError struct {
	Op   string
	Path string
	Err  error
}

func (e *ShutdownError) Error() string {
	return fmt.Sprintf("shutdown %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ShutdownError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a ConnectionError, automatically detecting retryability
// from the underlying error.
func Wrap(op, peer string, err error) *ConnectionError {
	return &ConnectionError{
		Op:        op,
		Peer:      peer,
		Err:       err,
		Retryable: classifyRetryable(err),
	}
}

// ── Classification helpers ───────────────────────────────────────────

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ce *ConnectionError
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	return classifyRetryable(err)
}

// IsDisconnect reports whether err just means the peer went away or the
// socket was closed under us.  Those end a connection quietly.
func IsDisconnect(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// IsStorage reports whether err originated in the data log.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// classifyRetryable inspects standard library error types.
func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.EAGAIN) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Temporary() //nolint:staticcheck // Temporary is deprecated but still useful
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
