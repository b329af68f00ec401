// Package render is the one place ARRCON writes to standard out and standard
// error: command output, saved-host listings, and the fatal-error line
// printed before the process exits.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/radj307/ARRCON/internal/apperr"
	"github.com/radj307/ARRCON/internal/hosts"
)

// errorTag prefixes every fatal message written to standard error.
const errorTag = "[ARRCON]"

// Renderer writes command output and status messages, respecting Quiet and
// NoColor.
type Renderer struct {
	Out   io.Writer
	Err   io.Writer
	Quiet bool

	errorColor *color.Color
	warnColor  *color.Color
	infoColor  *color.Color
}

// New builds a Renderer. noColor disables ANSI attributes on all three
// color instances; the host table is never colorized.
func New(out, err io.Writer, quiet, noColor bool) *Renderer {
	r := &Renderer{
		Out:        out,
		Err:        err,
		Quiet:      quiet,
		errorColor: color.New(color.FgRed, color.Bold),
		warnColor:  color.New(color.FgYellow),
		infoColor:  color.New(color.FgCyan),
	}
	if noColor {
		r.errorColor.DisableColor()
		r.warnColor.DisableColor()
		r.infoColor.DisableColor()
	}
	return r
}

// Command writes one reassembled command response to standard out, followed
// by a newline, matching S1/S2's "output followed by a newline" contract.
func (r *Renderer) Command(output string) {
	fmt.Fprintln(r.Out, output)
}

// Fatal writes a tagged error line to standard error. Always printed,
// Quiet notwithstanding — a fatal error is never merely informational. The
// error's Kind is prefixed when known, so a user can tell an AuthRejected
// from a ConnectFailed at a glance.
func (r *Renderer) Fatal(err error) {
	r.errorColor.Fprintf(r.Err, "%s ", errorTag)
	fmt.Fprintln(r.Err, errorMessage(err))
}

func errorMessage(err error) string {
	kind := apperr.KindOf(err)
	if kind == apperr.Unknown {
		return err.Error()
	}
	return kind.String() + ": " + err.Error()
}

// Warn writes a non-fatal warning to standard error, suppressed by Quiet.
func (r *Renderer) Warn(msg string) {
	if r.Quiet {
		return
	}
	r.warnColor.Fprintf(r.Err, "%s ", errorTag)
	fmt.Fprintln(r.Err, msg)
}

// Info writes an informational line to standard error, suppressed by Quiet.
func (r *Renderer) Info(msg string) {
	if r.Quiet {
		return
	}
	r.infoColor.Fprintln(r.Err, msg)
}

// HostTable renders the saved-hosts list (-l/--list-hosts) as a bordered
// table, password column always redacted by the caller via hosts.Entry.
func (r *Renderer) HostTable(entries []hosts.Entry) {
	if len(entries) == 0 {
		r.Info("no saved hosts")
		return
	}

	tw := tablewriter.NewWriter(r.Out)
	tw.SetHeader([]string{"Name", "Host", "Port"})
	tw.SetBorder(true)
	tw.SetAutoWrapText(false)

	for _, e := range entries {
		tw.Append([]string{e.Name, e.Target.Host, e.Target.Port})
	}
	tw.Render()
}

// PrintEnv writes the environment-variable names and the given resolved
// values to standard out, for --print-env. A non-empty password is masked.
func (r *Renderer) PrintEnv(prefix string, host, port, pass string) {
	fmt.Fprintf(r.Out, "%s_HOST=%s\n", prefix, host)
	fmt.Fprintf(r.Out, "%s_PORT=%s\n", prefix, port)
	if pass == "" {
		fmt.Fprintf(r.Out, "%s_PASS=\n", prefix)
	} else {
		fmt.Fprintf(r.Out, "%s_PASS=%s\n", prefix, "********")
	}
}

// Default builds a Renderer writing to the process's real stdout/stderr.
func Default(quiet, noColor bool) *Renderer {
	return New(os.Stdout, os.Stderr, quiet, noColor)
}
