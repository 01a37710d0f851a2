//go:build unix

package datalog

import (
	"os"

	"golang.org/x/sys/unix"
)

// flockAttempts bounds retries of a flock interrupted by a signal.
const flockAttempts = 3

func lockFile(f *os.File) error {
	var err error
	for i := 0; i < flockAttempts; i++ {
		if err = unix.Flock(int(f.Fd()), unix.LOCK_EX); err != unix.EINTR {
			return err
		}
	}
	return err
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
