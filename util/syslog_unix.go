//go:build !windows && !plan9

package util

import (
	"fmt"
	"log/syslog"
)

// UseSyslog routes all further output to the system log under tag,
// using the user facility.  Severity follows the message level.
func (l *Logger) UseSyslog(tag string) error {
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_USER, tag)
	if err != nil {
		return fmt.Errorf("connect to syslog: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sink != nil {
		l.sink.Close() //nolint:errcheck
	}
	l.sink = w
	return nil
}
