package util

import (
	"context"
	"net"

	errs "github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/errors"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/retry"
)

// DefaultBufSize is the size of one receive (32 KiB).  It bounds a
// single read, not the size of a packet.
const DefaultBufSize = 32 * 1024

// WriteFull sends all of p on conn and returns the number of bytes
// sent.  A short write continues from where it stopped.  Transient
// errors are retried within b's budget; a disconnect or any other hard
// error ends the send at once.  A nil b means no retries.
func WriteFull(ctx context.Context, conn net.Conn, p []byte, b *retry.Backoff) (int, error) {
	var sent int
	err := b.Do(ctx, func(_ int) error {
		for sent < len(p) {
			n, err := conn.Write(p[sent:])
			sent += n
			if err != nil {
				if errs.IsDisconnect(err) || !errs.IsRetryable(err) {
					return retry.Permanent(err)
				}
				return err
			}
		}
		return nil
	})
	return sent, err
}
