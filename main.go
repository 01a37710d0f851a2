// aesdsocket - a TCP server that appends newline-terminated packets to
// a shared data log and echoes the whole log back after each one.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cu-ecen-aeld/assignments-3-and-later-Temidayo-icon/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "aesdsocket: %v\n", err)
		os.Exit(1)
	}
}
