// Package session represents one accepted connection: its socket, the
// reassembly buffer of bytes not yet forming a packet, and the peer
// name used in diagnostics.
//
// A Session is owned by the goroutine handling it; nothing else reads
// or writes it.
package session

import (
	"net"

	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/framer"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/util"
)

// Session encapsulates the runtime state of a single client connection.
type Session struct {
	Conn   net.Conn
	Peer   string
	Framer *framer.Framer
	Logger *util.Logger
}

// New creates a Session bound to conn with an empty reassembly buffer.
func New(conn net.Conn, logger *util.Logger) *Session {
	return &Session{
		Conn:   conn,
		Peer:   util.PeerName(conn),
		Framer: framer.New(),
		Logger: logger,
	}
}

// Close closes the socket and frees the reassembly buffer.  It returns
// the number of buffered bytes that never saw a delimiter and were
// therefore discarded.
func (s *Session) Close() (discarded int, err error) {
	discarded = s.Framer.Pending()
	s.Framer.Reset()
	return discarded, s.Conn.Close()
}
