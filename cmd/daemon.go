package cmd

import (
	"net"
	"os"

	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/internal/transport"
)

// daemonEnv marks the re-executed background child.
const daemonEnv = "AESDSOCKET_DAEMON"

// listenerFD is where the child finds the listening socket: the first
// descriptor after stdin, stdout and stderr.
const listenerFD = 3

func isDaemonChild() bool {
	return os.Getenv(daemonEnv) == "1"
}

func inheritListener() (net.Listener, error) {
	return transport.Inherit(os.NewFile(listenerFD, "listener"))
}
