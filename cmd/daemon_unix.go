//go:build unix

package cmd

import (
	"net"
	"os"
	"os/exec"
	"syscall"

	errs "github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/errors"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/transport"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/util"
)

// daemonize starts a detached copy of this program that serves ln and
// returns once it is running.  The child gets its own session, "/" as
// its working directory and /dev/null for stdio.  The parent's copy of
// the listener is closed.
func daemonize(ln net.Listener, args []string, logger *util.Logger) error {
	addr := ln.Addr().String()
	defer ln.Close()

	f, err := transport.File(ln)
	if err != nil {
		return &errs.StartupError{Op: "daemonize", Addr: addr, Err: err}
	}
	defer f.Close()

	exe, err := os.Executable()
	if err != nil {
		return &errs.StartupError{Op: "daemonize", Addr: addr, Err: err}
	}

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return &errs.StartupError{Op: "daemonize", Addr: addr, Err: err}
	}
	defer devnull.Close()

	cmd := exec.Command(exe, args...)
	cmd.Dir = "/"
	cmd.Env = append(os.Environ(), daemonEnv+"=1")
	cmd.Stdin = devnull
	cmd.Stdout = devnull
	cmd.Stderr = devnull
	cmd.ExtraFiles = []*os.File{f} // becomes fd 3
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return &errs.StartupError{Op: "daemonize", Addr: addr, Err: err}
	}
	logger.Verbose("daemon started, pid %d", cmd.Process.Pid)
	return cmd.Process.Release()
}
