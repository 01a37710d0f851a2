// Package capability defines what the server does with an accepted
// connection.  A Capability operates on a Session rather than a raw
// net.Conn, which keeps it testable and decoupled from how the
// connection was accepted.
package capability

import (
	"context"

	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/session"
)

// Capability handles a single connection.  The production
// implementation is AppendEcho.
type Capability interface {
	// Handle serves the session until the client disconnects, an I/O
	// error occurs, or ctx is cancelled.  A clean end returns nil.
	Handle(ctx context.Context, sess *session.Session) error
}

// Appender is the one operation a handler may perform on the shared
// data log.
type Appender interface {
	AppendAndSnapshot(packet []byte) ([]byte, error)
}
