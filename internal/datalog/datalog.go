// Package datalog owns the server-wide data log: the file every
// completed packet is appended to and whose full contents are echoed
// back after each append.
//
// The only way to touch the file is [Log.AppendAndSnapshot], which runs
// the append and the read-back as one critical section.  Callers cannot
// reach the file directly, so they cannot reintroduce a race between a
// write and the snapshot that should include it.
package datalog

import (
	"errors"
	"io"
	"os"
	"sync"

	"go.uber.org/multierr"

	errs "github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/errors"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/retry"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/util"
)

// FileMode is the permission the log is created with.
const FileMode os.FileMode = 0o644

// Log is the append-only data log.  It is safe for concurrent use.
//
// Mutual exclusion is two-level: a mutex serializes callers inside this
// process, and an exclusive flock(2) on the open file serializes against
// any other process appending to the same path.
type Log struct {
	path    string
	breaker *retry.CircuitBreaker
	logger  *util.Logger

	mu     sync.Mutex // guards the critical section and closed
	closed bool
}

// Option configures a Log.
type Option func(*Log)

// WithBreaker guards storage with cb.  While cb is open, appends fail
// immediately with a StorageError wrapping [errs.ErrCircuitOpen].
func WithBreaker(cb *retry.CircuitBreaker) Option {
	return func(l *Log) { l.breaker = cb }
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *util.Logger) Option {
	return func(l *Log) { l.logger = logger }
}

// Open returns a Log backed by path.  The file is not created until the
// first append.
func Open(path string, opts ...Option) *Log {
	l := &Log{path: path}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = util.NewLogger(0)
	}
	return l
}

// Path returns the file backing the log.
func (l *Log) Path() string { return l.path }

// AppendAndSnapshot appends packet to the end of the log and returns the
// whole log, from offset zero through the end of packet, as it exists at
// that instant.  No other append can interleave with it.
//
// The packet is either fully appended or not at all: a failed write is
// rolled back by truncating to the previous size.  Every failure is a
// *errs.StorageError.
func (l *Log) AppendAndSnapshot(packet []byte) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, &errs.StorageError{Op: "append", Path: l.path, Err: errs.ErrLogClosed}
	}

	var snap []byte
	err := l.breaker.Execute(func() error {
		var err error
		snap, err = l.appendLocked(packet)
		return err
	})
	if err != nil {
		if !errs.IsStorage(err) {
			err = &errs.StorageError{Op: "append", Path: l.path, Err: err}
		}
		return nil, err
	}
	return snap, nil
}

// appendLocked does the file work.  l.mu must be held.
func (l *Log) appendLocked(packet []byte) ([]byte, error) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, FileMode)
	if err != nil {
		return nil, &errs.StorageError{Op: "open", Path: l.path, Err: err}
	}
	defer f.Close()

	if err := lockFile(f); err != nil {
		return nil, &errs.StorageError{Op: "lock", Path: l.path, Err: err}
	}
	defer unlockFile(f) //nolint:errcheck

	info, err := f.Stat()
	if err != nil {
		return nil, &errs.StorageError{Op: "stat", Path: l.path, Err: err}
	}
	size := info.Size()

	if _, err := f.Write(packet); err != nil {
		if terr := f.Truncate(size); terr != nil {
			l.logger.Error("data log %s: rollback to %d bytes failed: %v", l.path, size, terr)
			err = multierr.Append(err, terr)
		}
		return nil, &errs.StorageError{Op: "append", Path: l.path, Err: err}
	}

	snap := make([]byte, size+int64(len(packet)))
	n, err := f.ReadAt(snap, 0)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(snap)) {
		return nil, &errs.StorageError{Op: "read", Path: l.path, Err: err}
	}

	l.logger.Debug("data log: appended %d bytes, now %d bytes", len(packet), len(snap))
	return snap, nil
}

// Size returns the current length of the log in bytes; 0 if the file
// does not exist yet.
func (l *Log) Size() (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, err := os.Stat(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, &errs.StorageError{Op: "stat", Path: l.path, Err: err}
	}
	return info.Size(), nil
}

// Remove closes the log to further appends and unlinks the file.  It
// waits for an in-flight append to finish first, so no packet is half
// written when the file goes away.  A missing file is not an error and
// Remove may be called more than once.
func (l *Log) Remove() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &errs.ShutdownError{Op: "remove", Path: l.path, Err: err}
	}
	return nil
}
