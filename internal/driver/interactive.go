package driver

import (
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/radj307/ARRCON/internal/apperr"
)

// RunInteractive starts a read-eval-print loop against the Driver's
// Session: each line the user types is sent as a command and its output is
// printed immediately, until EOF (Ctrl+D), "exit"/"quit", or a connection
// error ends the session.
func (d *Driver) RunInteractive(promptHost string) error {
	prompt := d.interactivePrompt(promptHost)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      prompt,
		HistoryFile: "",
	})
	if err != nil {
		return apperr.New(apperr.UsageError, "driver.RunInteractive", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return nil
			}
			return apperr.New(apperr.UsageError, "driver.RunInteractive", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		output, err := d.session.RunCommand(line, nil)
		if output != "" {
			d.render.Command(output)
		}
		if err != nil {
			return err
		}
	}
}

// interactivePrompt builds the "RCON@host> " prompt, or "" when NoPrompt is
// set (matching the batch mode's suppressed command echo).
func (d *Driver) interactivePrompt(host string) string {
	if d.cfg.NoPrompt {
		return ""
	}
	return "RCON@" + host + "> "
}
