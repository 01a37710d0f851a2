package capability

import (
	"context"
	"io"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/datalog"
	errs "github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/errors"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/metrics"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/session"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/util"
)

// memLog is an in-memory Appender.
type memLog struct {
	mu   sync.Mutex
	data []byte
	err  error
}

func (m *memLog) AppendAndSnapshot(p []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.data = append(m.data, p...)
	return append([]byte(nil), m.data...), nil
}

func (m *memLog) contents() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data)
}

// serve starts h on one end of a pipe and returns the other end plus a
// channel carrying Handle's result.
func serve(t *testing.T, ctx context.Context, h Capability) (net.Conn, *session.Session, <-chan error) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { client.Close() })

	sess := session.New(server, util.NewLogger(0))
	done := make(chan error, 1)
	go func() {
		done <- h.Handle(ctx, sess)
		server.Close()
	}()
	return client, sess, done
}

func readN(t *testing.T, c net.Conn, n int) string {
	t.Helper()
	c.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	buf := make([]byte, n)
	_, err := io.ReadFull(c, buf)
	require.NoError(t, err)
	return string(buf)
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Handle did not return")
		return nil
	}
}

func TestAppendEcho_EchoesWholeLog(t *testing.T) {
	log := &memLog{}
	m := metrics.New()
	client, _, done := serve(t, context.Background(), &AppendEcho{Log: log, Metrics: m})

	_, err := client.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", readN(t, client, 6))

	_, err = client.Write([]byte("world\n"))
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", readN(t, client, 12))

	client.Close()
	assert.NoError(t, wait(t, done))

	assert.Equal(t, int64(2), m.PacketsAppended())
	assert.Equal(t, int64(12), m.TotalBytesIn())
	assert.Equal(t, int64(18), m.TotalBytesOut())
}

func TestAppendEcho_TwoPacketsOneChunk(t *testing.T) {
	log := &memLog{}
	client, _, done := serve(t, context.Background(), &AppendEcho{Log: log})

	_, err := client.Write([]byte("a\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, "a\n", readN(t, client, 2))
	assert.Equal(t, "a\nb\n", readN(t, client, 4))

	client.Close()
	assert.NoError(t, wait(t, done))
	assert.Equal(t, "a\nb\n", log.contents())
}

func TestAppendEcho_PacketAcrossReads(t *testing.T) {
	log := &memLog{}
	client, _, done := serve(t, context.Background(), &AppendEcho{Log: log})

	for _, part := range []string{"he", "ll", "o\n"} {
		_, err := client.Write([]byte(part))
		require.NoError(t, err)
	}
	assert.Equal(t, "hello\n", readN(t, client, 6))

	client.Close()
	assert.NoError(t, wait(t, done))
}

func TestAppendEcho_PartialDiscardedOnDisconnect(t *testing.T) {
	log := &memLog{}
	client, sess, done := serve(t, context.Background(), &AppendEcho{Log: log})

	_, err := client.Write([]byte("abc"))
	require.NoError(t, err)
	client.Close()

	assert.NoError(t, wait(t, done))
	assert.Empty(t, log.contents())
	assert.Equal(t, 3, sess.Framer.Pending())
}

func TestAppendEcho_CancelUnblocksRead(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	_, _, done := serve(t, ctx, &AppendEcho{Log: &memLog{}})

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.NoError(t, wait(t, done))
}

func TestAppendEcho_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, done := serve(t, ctx, &AppendEcho{Log: &memLog{}, IdleTimeout: time.Minute})
	assert.NoError(t, wait(t, done))
}

func TestAppendEcho_IdleTimeout(t *testing.T) {
	_, _, done := serve(t, context.Background(), &AppendEcho{
		Log:         &memLog{},
		IdleTimeout: 50 * time.Millisecond,
	})
	assert.NoError(t, wait(t, done))
}

func TestAppendEcho_StorageErrorReturned(t *testing.T) {
	log := &memLog{err: &errs.StorageError{Op: "open", Path: "/nope", Err: io.ErrUnexpectedEOF}}
	client, _, done := serve(t, context.Background(), &AppendEcho{Log: log})

	_, err := client.Write([]byte("x\n"))
	require.NoError(t, err)

	err = wait(t, done)
	var se *errs.StorageError
	require.True(t, errs.As(err, &se), "got %v", err)
	assert.Equal(t, "open", se.Op)
}

func TestAppendEcho_PeerGoneDuringEcho(t *testing.T) {
	log := &memLog{}
	client, _, done := serve(t, context.Background(), &AppendEcho{Log: log})

	_, err := client.Write([]byte("x\n"))
	require.NoError(t, err)
	client.Close()

	err = wait(t, done)
	var ce *errs.ConnectionError
	require.True(t, errs.As(err, &ce), "got %v", err)
	assert.Equal(t, "write", ce.Op)
	assert.True(t, errs.IsDisconnect(err))
	// The packet was complete, so it stays in the log.
	assert.Equal(t, "x\n", log.contents())
}

func TestAppendEcho_WithDataLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aesdsocketdata")
	dl := datalog.Open(path)
	t.Cleanup(func() { dl.Remove() }) //nolint:errcheck

	for _, want := range []string{"one\n", "one\ntwo\n"} {
		client, _, done := serve(t, context.Background(), &AppendEcho{Log: dl})
		pkt := want[len(want)-4:]
		_, err := client.Write([]byte(pkt))
		require.NoError(t, err)
		assert.Equal(t, want, readN(t, client, len(want)))
		client.Close()
		assert.NoError(t, wait(t, done))
	}
}

var _ Capability = (*AppendEcho)(nil)
var _ Appender = (*datalog.Log)(nil)
