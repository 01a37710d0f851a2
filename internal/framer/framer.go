// Package framer splits a client's byte stream into newline-terminated
// packets.
//
// Feed is a pure function and does no I/O; Framer wraps it with the
// per-connection carry-over buffer.  There is no maximum packet size:
// the carry-over grows until a delimiter arrives.
package framer

import "bytes"

// Delimiter terminates every packet.  It is included in the packet.
const Delimiter byte = '\n'

// Feed appends chunk to the carry-over buf and splits off every
// complete packet, in stream order.  Each returned packet is a fresh
// slice that does not alias buf or chunk.  rest holds the bytes after
// the last delimiter and may reuse buf's storage.
func Feed(buf, chunk []byte) (packets [][]byte, rest []byte) {
	for {
		i := bytes.IndexByte(chunk, Delimiter)
		if i < 0 {
			return packets, append(buf, chunk...)
		}

		pkt := make([]byte, 0, len(buf)+i+1)
		pkt = append(pkt, buf...)
		pkt = append(pkt, chunk[:i+1]...)
		packets = append(packets, pkt)

		buf = buf[:0]
		chunk = chunk[i+1:]
	}
}

// Framer holds the reassembly buffer of one connection.  It is not
// safe for concurrent use; a connection's handler owns it.
type Framer struct {
	buf []byte
}

// New returns an empty Framer.
func New() *Framer { return &Framer{} }

// Feed consumes chunk and returns the packets it completed.
func (f *Framer) Feed(chunk []byte) [][]byte {
	var packets [][]byte
	packets, f.buf = Feed(f.buf, chunk)
	return packets
}

// Pending returns the number of buffered bytes not yet terminated by a
// delimiter.
func (f *Framer) Pending() int { return len(f.buf) }

// Reset discards any partial packet.
func (f *Framer) Reset() { f.buf = nil }
