package core

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/atomic"

	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/capability"
	errs "github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/errors"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/metrics"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/session"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/util"
)

// Accept-retry delays for temporary failures such as EMFILE.
const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// LogRemover is the shutdown half of the data log.
type LogRemover interface {
	Remove() error
	Path() string
}

// Server accepts connections on Listener and serves each one with
// Capability on its own goroutine.
type Server struct {
	Listener    net.Listener
	Capability  capability.Capability
	Log         LogRemover
	Metrics     *metrics.Collector
	Logger      *util.Logger
	GracePeriod time.Duration

	state atomic.Int32
	wg    conc.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// State reports the current lifecycle state.
func (s *Server) State() State { return State(s.state.Load()) }

func (s *Server) setState(st State) {
	s.state.Store(int32(st))
	s.Logger.Debug("server %s", st)
}

// Run serves until ctx is cancelled or the listener fails, then shuts
// down: the listener is closed, handlers get GracePeriod to finish,
// stragglers have their connections closed, and the data log is
// removed.
//
// A cancelled ctx is a clean stop and returns nil.  Failing to remove
// the data log is logged but does not change the result.
func (s *Server) Run(ctx context.Context) error {
	if s.Listener == nil {
		return &errs.StartupError{Op: "run", Err: errs.New("no listener")}
	}

	stop := context.AfterFunc(ctx, func() { s.Listener.Close() })
	defer stop()

	s.setState(Listening)
	s.Logger.Verbose("listening on %s", s.Listener.Addr())

	err := s.acceptLoop(ctx)

	s.setState(ShuttingDown)
	if ctx.Err() != nil {
		s.Logger.Info("Caught signal, exiting")
	}
	s.Listener.Close()
	s.drain()
	s.cleanup()
	s.setState(Stopped)
	return err
}

// ── Accept loop ──────────────────────────────────────────────────────

func (s *Server) acceptLoop(ctx context.Context) error {
	var delay time.Duration
	for {
		conn, err := s.Listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if !errs.IsRetryable(err) {
				return errs.Wrap("accept", s.Listener.Addr().String(), err)
			}

			delay = nextAcceptDelay(delay)
			s.Metrics.RecordError(err.Error())
			s.Logger.Warn("accept: %v; retrying in %v", err, delay)

			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil
			case <-t.C:
			}
			continue
		}
		delay = 0

		s.track(conn)
		s.Metrics.ConnectionOpened()
		s.wg.Go(func() { s.serve(ctx, conn) })
	}
}

func nextAcceptDelay(d time.Duration) time.Duration {
	if d == 0 {
		return minAcceptDelay
	}
	d *= 2
	if d > maxAcceptDelay {
		d = maxAcceptDelay
	}
	return d
}

// ── Per-connection ───────────────────────────────────────────────────

// serve runs the capability for one connection.  A panic in the
// handler is contained here and ends only that connection.
func (s *Server) serve(ctx context.Context, conn net.Conn) {
	sess := session.New(conn, s.Logger)
	s.Logger.Info("Accepted connection from %s", sess.Peer)

	defer func() {
		discarded, _ := sess.Close()
		s.untrack(conn)
		if discarded > 0 {
			s.Metrics.PartialDropped()
			s.Logger.Debug("%s: discarded %d bytes without a newline", sess.Peer, discarded)
		}
		s.Metrics.ConnectionClosed()
		s.Logger.Info("Closed connection from %s", sess.Peer)
	}()

	var err error
	var pc panics.Catcher
	pc.Try(func() { err = s.Capability.Handle(ctx, sess) })
	if r := pc.Recovered(); r != nil {
		s.Metrics.RecordError(fmt.Sprint(r.Value))
		s.Logger.Error("%s: handler panic: %v", sess.Peer, r.Value)
		s.Logger.Debug("%s", r.Stack)
		return
	}
	s.report(sess.Peer, err)
}

// report logs how a handler ended.  Storage failures are kept apart
// from socket failures.
func (s *Server) report(peer string, err error) {
	switch {
	case err == nil:
	case errs.IsStorage(err):
		s.Metrics.RecordStorageError(err.Error())
		s.Logger.Error("%s: %v", peer, err)
	case errs.IsDisconnect(err):
		s.Logger.Verbose("%s: %v", peer, err)
	default:
		s.Metrics.RecordError(err.Error())
		s.Logger.Warn("%s: %v", peer, err)
	}
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		s.conns = make(map[net.Conn]struct{})
	}
	s.conns[conn] = struct{}{}
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

// closeAll closes every tracked connection and returns how many there
// were.  Handlers still own their sessions and clean up on their own.
func (s *Server) closeAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
	return len(s.conns)
}

// ── Shutdown ─────────────────────────────────────────────────────────

// drain waits for every handler.  After GracePeriod the remaining
// connections are closed, which unblocks any pending send, and drain
// waits again.
func (s *Server) drain() {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(s.GracePeriod)
	defer timer.Stop()

	select {
	case <-done:
		return
	case <-timer.C:
	}

	n := s.closeAll()
	s.Logger.Warn("grace period of %v elapsed, closing %d connection(s)", s.GracePeriod, n)
	<-done
}

func (s *Server) cleanup() {
	if s.Log != nil {
		if err := s.Log.Remove(); err != nil {
			s.Metrics.RecordError(err.Error())
			s.Logger.Error("%v", err)
		} else {
			s.Logger.Verbose("removed %s", s.Log.Path())
		}
	}
	s.Logger.Verbose("metrics: %s", s.Metrics.JSON())
}
