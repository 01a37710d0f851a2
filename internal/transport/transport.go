// Package transport sets up the server's listening socket.  It covers
// the "where do connections come from" half of the server: binding a
// fresh TCP endpoint, or picking up one a parent process already bound
// and handed over as a file descriptor.
package transport

import (
	"context"
	"fmt"
	"net"
	"os"

	errs "github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/errors"
)

// Listen binds a TCP stream socket on addr and starts listening.
// Address reuse is enabled so a restart can rebind while old
// connections sit in TIME_WAIT.
//
// Every failure is returned as *errs.StartupError with the operation
// the kernel rejected.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, &errs.StartupError{Op: startupOp(err), Addr: addr, Err: err}
	}
	return ln, nil
}

// Inherit rebuilds a listener from a descriptor passed in by the parent
// process.  f is closed either way; the returned listener holds its own
// duplicate.
func Inherit(f *os.File) (net.Listener, error) {
	defer f.Close()

	ln, err := net.FileListener(f)
	if err != nil {
		return nil, &errs.StartupError{Op: "inherit", Addr: f.Name(), Err: err}
	}
	if _, ok := ln.(*net.TCPListener); !ok {
		ln.Close()
		return nil, &errs.StartupError{
			Op:   "inherit",
			Addr: f.Name(),
			Err:  fmt.Errorf("descriptor is a %T, not a TCP listener", ln),
		}
	}
	return ln, nil
}

// File returns a duplicate descriptor for ln, suitable for handing to
// a child process.  The caller owns and must close it.
func File(ln net.Listener) (*os.File, error) {
	tl, ok := ln.(*net.TCPListener)
	if !ok {
		return nil, fmt.Errorf("listener %T cannot be passed to a child", ln)
	}
	return tl.File()
}

// startupOp names the step a listen error came from, mirroring the
// socket/bind/listen sequence.
func startupOp(err error) string {
	var opErr *net.OpError
	if errs.As(err, &opErr) {
		var sysErr *os.SyscallError
		if errs.As(opErr.Err, &sysErr) {
			return sysErr.Syscall
		}
	}
	return "listen"
}
