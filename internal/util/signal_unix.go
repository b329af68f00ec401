//go:build !windows

package util

import (
	"os"
	"syscall"
)

// shutdownSignals is the signal set ShutdownGuard watches. SIGABRT is only
// meaningful where the OS actually delivers it; Windows has no equivalent.
func shutdownSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGABRT}
}
