//go:build windows || plan9

package util

import "errors"

// UseSyslog is not available on this platform.
func (l *Logger) UseSyslog(tag string) error {
	return errors.New("syslog is not supported on this platform")
}
