package errors

import (
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"
)

func TestConnectionError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  ConnectionError
		want string
	}{
		{
			name: "retryable",
			err:  ConnectionError{Op: "write", Peer: "10.0.0.7:51234", Err: io.EOF, Retryable: true},
			want: "write 10.0.0.7:51234: EOF (retryable)",
		},
		{
			name: "non-retryable",
			err:  ConnectionError{Op: "read", Peer: "10.0.0.7:51234", Err: fmt.Errorf("reset")},
			want: "read 10.0.0.7:51234: reset",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConnectionError_Unwrap(t *testing.T) {
	err := &ConnectionError{Op: "read", Peer: "x", Err: io.EOF}
	if !Is(err, io.EOF) {
		t.Error("should unwrap to io.EOF")
	}
}

func TestStartupError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  StartupError
		want string
	}{
		{"with addr", StartupError{Op: "listen", Addr: ":9000", Err: fmt.Errorf("address already in use")}, "startup listen :9000: address already in use"},
		{"no addr", StartupError{Op: "daemonize", Err: fmt.Errorf("fork failed")}, "startup daemonize: fork failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStorageError(t *testing.T) {
	err := &StorageError{Op: "append", Path: "/var/tmp/aesdsocketdata", Err: os.ErrPermission}
	want := "storage append /var/tmp/aesdsocketdata: permission denied"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !Is(err, os.ErrPermission) {
		t.Error("should unwrap to os.ErrPermission")
	}
	if !IsStorage(fmt.Errorf("handler: %w", err)) {
		t.Error("IsStorage should see through wrapping")
	}
	if IsStorage(Wrap("read", "x", io.EOF)) {
		t.Error("connection error is not a storage error")
	}
}

func TestShutdownError(t *testing.T) {
	err := &ShutdownError{Op: "remove", Path: "/tmp/x", Err: os.ErrPermission}
	if got, want := err.Error(), "shutdown remove /tmp/x: permission denied"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !Is(err, os.ErrPermission) {
		t.Error("should unwrap")
	}
}

func TestConfigError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  ConfigError
		want string
	}{
		{
			name: "with value and hint",
			err: ConfigError{
				Field:   "port",
				Value:   99999,
				Message: "out of range 1-65535",
				Hint:    "use a port between 1 and 65535",
			},
			want: "config: --port=99999: out of range 1-65535\n  hint: use a port between 1 and 65535",
		},
		{
			name: "missing value no hint",
			err: ConfigError{
				Field:   "data-file",
				Message: "required",
			},
			want: "config: --data-file: required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	inner := fmt.Errorf("connection reset")
	err := Wrap("write", "10.0.0.1:40000", inner)

	if err.Op != "write" || err.Peer != "10.0.0.1:40000" {
		t.Errorf("wrong fields: Op=%q Peer=%q", err.Op, err.Peer)
	}
	if !Is(err, inner) {
		t.Error("should unwrap to inner error")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"retryable connection", &ConnectionError{Op: "write", Peer: "x", Err: io.EOF, Retryable: true}, true},
		{"non-retryable connection", &ConnectionError{Op: "write", Peer: "x", Err: io.EOF}, false},
		{"plain error", fmt.Errorf("boom"), false},
		{"EINTR", syscall.EINTR, true},
		{"wrapped EAGAIN", fmt.Errorf("send: %w", syscall.EAGAIN), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDisconnect(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"EOF", io.EOF, true},
		{"closed", net.ErrClosed, true},
		{"reset", &net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", syscall.ECONNRESET)}, true},
		{"broken pipe", fmt.Errorf("write: %w", syscall.EPIPE), true},
		{"unexpected EOF", io.ErrUnexpectedEOF, false},
		{"storage", &StorageError{Op: "open", Path: "x", Err: os.ErrPermission}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDisconnect(tt.err); got != tt.want {
				t.Errorf("IsDisconnect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyRetryable_NetOpError(t *testing.T) {
	opErr := &net.OpError{
		Op:  "write",
		Net: "tcp",
		Err: &net.DNSError{IsTemporary: true},
	}
	if !classifyRetryable(opErr) {
		t.Error("temporary OpError should be retryable")
	}
}

func TestSentinels(t *testing.T) {
	if Is(ErrLogClosed, ErrCircuitOpen) || Is(ErrCircuitOpen, ErrLogClosed) {
		t.Error("sentinels should be distinct")
	}
}
