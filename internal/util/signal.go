package util

import (
	"io"
	"os"
	"os/signal"
	"sync/atomic"
)

// ShutdownGuard holds the single "currently open socket" slot a signal
// handler needs to close on Ctrl+C, without any layer above it reaching
// into the transport directly. There is at most one live RCON connection
// per process, so one slot is all this ever needs to hold.
type ShutdownGuard struct {
	current atomic.Pointer[io.Closer]
	stop    chan struct{}
}

// NewShutdownGuard starts the signal-watching goroutine and returns the
// guard. Call Stop to release the underlying os/signal registration.
func NewShutdownGuard() *ShutdownGuard {
	g := &ShutdownGuard{stop: make(chan struct{})}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals()...)

	go func() {
		logger := ComponentLogger("signal")
		select {
		case sig := <-sigCh:
			logger.Warn().Stringer("signal", sig).Msg("shutting down")
			if c := g.current.Load(); c != nil {
				if err := (*c).Close(); err != nil {
					logger.Debug().Err(err).Msg("error closing connection during shutdown")
				}
			}
			os.Exit(130)
		case <-g.stop:
			signal.Stop(sigCh)
		}
	}()

	return g
}

// Set records the closer that should be closed if a shutdown signal arrives
// while it is current. Passing nil clears the slot.
func (g *ShutdownGuard) Set(c io.Closer) {
	if c == nil {
		g.current.Store(nil)
		return
	}
	g.current.Store(&c)
}

// Stop releases the signal registration without closing anything. Call this
// once the process is exiting normally.
func (g *ShutdownGuard) Stop() {
	close(g.stop)
}
