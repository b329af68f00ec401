//go:build windows

package util

import (
	"os"
	"syscall"
)

// shutdownSignals is the signal set ShutdownGuard watches. syscall.SIGABRT
// doesn't exist on Windows, so the set is narrower than signal_unix.go's.
func shutdownSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}
