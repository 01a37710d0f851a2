//go:build !unix

package cmd

import (
	"net"

	errs "github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/errors"
	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/util"
)

func daemonize(ln net.Listener, _ []string, _ *util.Logger) error {
	ln.Close()
	return &errs.StartupError{
		Op:  "daemonize",
		Err: errs.New("daemon mode is not supported on this platform"),
	}
}
