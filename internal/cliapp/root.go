// Package cliapp wires the command line onto internal/config, internal/
// hosts, internal/driver, and internal/render: it is the only package that
// knows about argv and os.Exit.
package cliapp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/radj307/ARRCON/internal/config"
	"github.com/radj307/ARRCON/internal/render"
)

// ProgramName is used to build the default INI/hosts file names and the
// ARRCON_* environment variable prefix.
const ProgramName = "ARRCON"

// Version is the program version reported by -v/--version.
const Version = "2.0.0"

// flags holds every value cobra/pflag populates for the run. interactiveT
// backs the -t alias for --interactive and quietS backs the -s alias for
// --quiet; pflag has no multi-shorthand flags, so each alias is a second
// flag bound to its own bool and OR'd together in run.
type flags struct {
	host, port, pass, saved string
	saveHost, removeHost    string
	listHosts               bool
	files                   []string
	interactive             bool
	interactiveT            bool
	noPrompt                bool
	quiet                   bool
	quietS                  bool
	noColor                 bool
	waitMS                  int
	printEnv                bool
	writeIni                bool
	updateIni               bool
}

// NewRootCommand builds the cobra command tree described by the CLI
// surface: target flags, host-registry flags, behavior flags, and
// lifecycle flags. The flags are not bound to viper; environment variables
// are layered underneath the target flags by config.ResolveTarget.
func NewRootCommand() *cobra.Command {
	f := &flags{}
	return buildRootCommand(f, func(args []string) error {
		_, err := run(f, args)
		return err
	})
}

// Execute builds the root command, runs it against os.Args, and renders any
// returned error through internal/render before returning the process exit
// code. It is the only entry point cmd/ARRCON needs to call, so that a
// fatal error is always rendered with the user's resolved Quiet/NoColor
// settings instead of a hand-rolled fmt.Fprintf bypassing render entirely.
func Execute() int {
	f := &flags{}
	var r *render.Renderer
	root := buildRootCommand(f, func(args []string) error {
		var err error
		r, err = run(f, args)
		return err
	})

	err := root.Execute()
	if err != nil {
		if r == nil {
			r = render.Default(f.quiet || f.quietS, f.noColor)
		}
		r.Fatal(err)
	}
	return ExitCode(err)
}

// buildRootCommand assembles the cobra command tree bound to f, deferring
// to onRun for the actual work so NewRootCommand and Execute can each
// observe the result differently.
func buildRootCommand(f *flags, onRun func(args []string) error) *cobra.Command {
	root := &cobra.Command{
		Use:           strings.ToLower(ProgramName) + " [OPTIONS] [COMMANDS]",
		Short:         "A command-line Remote-CONsole (RCON) client for the Source RCON Protocol",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return onRun(args)
		},
	}

	fl := root.Flags()
	fl.StringVarP(&f.host, "host", "H", "", "RCON server IP/hostname")
	fl.StringVarP(&f.port, "port", "P", "", "RCON server port")
	fl.StringVarP(&f.pass, "pass", "p", "", "RCON server password")
	fl.StringVarP(&f.saved, "saved", "S", "", "use a saved host's connection info")

	fl.StringVar(&f.saveHost, "save-host", "", "save the current target under this name, then exit")
	fl.StringVar(&f.removeHost, "remove-host", "", "remove a saved host by name, then exit")
	fl.BoolVarP(&f.listHosts, "list-hosts", "l", false, "list all saved hosts, then exit")

	fl.StringArrayVarP(&f.files, "file", "f", nil, "read commands from a file (repeatable)")

	fl.BoolVarP(&f.interactive, "interactive", "i", false, "start an interactive shell after any scripted commands")
	fl.BoolVarP(&f.interactiveT, "interactive-t", "t", false, "alias for --interactive")
	fl.BoolVarP(&f.noPrompt, "no-prompt", "Q", false, "disable the interactive prompt and command echo")
	fl.IntVarP(&f.waitMS, "wait", "w", 0, "milliseconds to wait between commands")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "suppress informational output")
	fl.BoolVarP(&f.quietS, "quiet-s", "s", false, "alias for --quiet")
	fl.BoolVarP(&f.noColor, "no-color", "n", false, "disable colorized output")

	fl.BoolVar(&f.printEnv, "print-env", false, "print recognized environment variables and exit")
	fl.BoolVar(&f.writeIni, "write-ini", false, "(over)write the ini file with the current values and exit")
	fl.BoolVar(&f.updateIni, "update-ini", false, "write current values to the ini file, adding missing keys, and exit")

	fl.SortFlags = false
	root.SetVersionTemplate(fmt.Sprintf("%s v{{.Version}}\n", ProgramName))

	cobra.OnInitialize(func() {
		viper.SetEnvPrefix(config.EnvPrefix)
		viper.AutomaticEnv()
	})

	return root
}

// defaultConfigDir is the directory holding <PROG>.ini/<PROG>.hosts: the
// directory containing the running executable, falling back to the
// current working directory if that can't be determined.
func defaultConfigDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
