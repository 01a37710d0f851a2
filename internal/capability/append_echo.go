package capability

import (
	"context"
	"os"
	"time"

	errs "github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/errors"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/metrics"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/retry"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/session"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/util"
)

// AppendEcho appends every newline-terminated packet a client sends to
// the data log and answers each one with the whole log.
//
// Packets are committed and echoed in the order they complete on the
// connection.  Bytes after the last delimiter stay in the session's
// framer; if the client leaves before terminating them they are never
// written.
type AppendEcho struct {
	Log     Appender
	Metrics *metrics.Collector
	Backoff *retry.Backoff

	// IdleTimeout closes a connection that sends nothing for this long.
	// Zero disables it.
	IdleTimeout time.Duration
}

// Handle runs the receive loop.  Cancelling ctx unblocks a pending
// receive; a packet already taken off the wire is still appended and
// echoed before Handle returns.
//
// A storage failure is returned as the *errs.StorageError itself; a
// socket failure as *errs.ConnectionError.
func (a *AppendEcho) Handle(ctx context.Context, sess *session.Session) error {
	stop := context.AfterFunc(ctx, func() {
		sess.Conn.SetReadDeadline(time.Now()) //nolint:errcheck
	})
	defer stop()

	bufp := util.GetBuf()
	defer util.PutBuf(bufp)
	buf := *bufp

	for {
		// The idle deadline goes first: once ctx is checked, a later
		// cancellation always lands after it and wins.
		if a.IdleTimeout > 0 {
			sess.Conn.SetReadDeadline(time.Now().Add(a.IdleTimeout)) //nolint:errcheck
		}
		if ctx.Err() != nil {
			return nil
		}

		n, err := sess.Conn.Read(buf)
		if n > 0 {
			a.Metrics.BytesReceived(int64(n))
			for _, pkt := range sess.Framer.Feed(buf[:n]) {
				if err := a.commit(ctx, sess, pkt); err != nil {
					return err
				}
			}
		}
		if err != nil {
			return a.readError(ctx, sess, err)
		}
	}
}

// commit is the per-packet step: append, then send the snapshot.
func (a *AppendEcho) commit(ctx context.Context, sess *session.Session, pkt []byte) error {
	snap, err := a.Log.AppendAndSnapshot(pkt)
	if err != nil {
		return err
	}
	a.Metrics.PacketAppended()

	n, err := util.WriteFull(ctx, sess.Conn, snap, a.Backoff)
	a.Metrics.BytesSent(int64(n))
	if err != nil {
		return errs.Wrap("write", sess.Peer, err)
	}
	sess.Logger.Debug("%s: packet of %d bytes, echoed %d bytes", sess.Peer, len(pkt), n)
	return nil
}

func (a *AppendEcho) readError(ctx context.Context, sess *session.Session, err error) error {
	switch {
	case errs.IsDisconnect(err):
		return nil
	case errs.Is(err, os.ErrDeadlineExceeded) && ctx.Err() != nil:
		return nil
	case errs.Is(err, os.ErrDeadlineExceeded):
		sess.Logger.Verbose("%s: idle for %v, closing", sess.Peer, a.IdleTimeout)
		return nil
	default:
		return errs.Wrap("read", sess.Peer, err)
	}
}
