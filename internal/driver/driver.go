// Package driver owns the process's one Session for its lifetime and
// sequences commands against it with the configured inter-command delay.
// It returns the Session's tagged errors to its caller; cliapp.Execute is
// what renders them and turns them into an exit code.
package driver

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/radj307/ARRCON/internal/hosts"
	"github.com/radj307/ARRCON/internal/rcon"
	"github.com/radj307/ARRCON/internal/render"
	"github.com/radj307/ARRCON/internal/transport"
	"github.com/radj307/ARRCON/internal/util"
)

// Config holds the Driver's own knobs, separate from the Session's internal
// reassembly timing (rcon.Config).
type Config struct {
	// CommandDelay is the pause between commands in a batch (-w/--wait).
	CommandDelay time.Duration
	// Interactive forces an interactive shell even when a batch of
	// commands was already given (-i/-t/--interactive).
	Interactive bool
	// NoPrompt disables the interactive prompt and command echo.
	NoPrompt bool
}

// Driver owns the Session for one connection's lifetime and the single
// atomically-swappable "current session" slot a signal handler closes on
// shutdown.
type Driver struct {
	session *rcon.Session
	cfg     Config
	render  *render.Renderer
	guard   *util.ShutdownGuard
	logger  zerolog.Logger
}

// Connect dials target, authenticates, and returns a ready Driver. The
// caller must eventually call Close.
func Connect(ctx context.Context, target hosts.Target, sessionCfg rcon.Config, cfg Config, r *render.Renderer, guard *util.ShutdownGuard) (*Driver, error) {
	addr := target.Host + ":" + target.Port

	tr, err := transport.Connect(ctx, addr)
	if err != nil {
		return nil, err
	}

	session := rcon.New(tr, sessionCfg)
	if guard != nil {
		guard.Set(sessionCloser{session})
	}

	if err := session.Authenticate(target.Password); err != nil {
		return nil, err
	}

	return &Driver{
		session: session,
		cfg:     cfg,
		render:  r,
		guard:   guard,
		logger:  util.ComponentLogger("driver"),
	}, nil
}

// sessionCloser adapts *rcon.Session to io.Closer for the shutdown guard.
type sessionCloser struct{ s *rcon.Session }

func (c sessionCloser) Close() error { return c.s.Close() }

// RunBatch sends every command in commands in order, printing each one's
// reassembled output through the Driver's Renderer, pausing CommandDelay
// between commands. It stops at the first error (a lost or closed session
// makes every subsequent command fail anyway) and returns it.
func (d *Driver) RunBatch(commands []string) error {
	for i, command := range commands {
		if !d.cfg.NoPrompt {
			d.render.Info("> " + command)
		}

		output, err := d.session.RunCommand(command, nil)
		if output != "" {
			d.render.Command(output)
		}
		if err != nil {
			return err
		}

		if i < len(commands)-1 && d.cfg.CommandDelay > 0 {
			time.Sleep(d.cfg.CommandDelay)
		}
	}
	return nil
}

// ShouldRunInteractive reports whether an interactive shell should follow a
// batch run: either no commands were given, or -i/--interactive forced it.
func (d *Driver) ShouldRunInteractive(ranBatch bool) bool {
	return !ranBatch || d.cfg.Interactive
}

// Close closes the underlying Session.
func (d *Driver) Close() error {
	if d.guard != nil {
		d.guard.Set(nil)
	}
	return d.session.Close()
}
