package driver

import (
	"bufio"
	"os"
	"strings"

	"github.com/radj307/ARRCON/internal/apperr"
	"github.com/radj307/ARRCON/internal/util"
)

// scriptExtensions is tried, in order, when a -f/--file argument doesn't
// name a file that exists as given.
var scriptExtensions = []string{"", ".txt"}

// stripLine trims surrounding whitespace and drops anything from the first
// '#' or ';' onward, matching the source script format's comment markers.
func stripLine(line string) string {
	line = strings.TrimSpace(line)
	if i := strings.IndexAny(line, "#;"); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	return line
}

// readScriptFile reads path (resolving it against PATH with scriptExtensions
// if it isn't found as given) and returns one command per non-blank,
// non-comment line.
func readScriptFile(path string) ([]string, error) {
	resolved := path
	if _, err := os.Stat(resolved); err != nil {
		found, ok := util.ResolveInPath(path, scriptExtensions)
		if !ok {
			return nil, apperr.New(apperr.FileError, "driver.readScriptFile", errNotFound(path))
		}
		resolved = found
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, apperr.New(apperr.FileError, "driver.readScriptFile", err)
	}
	defer f.Close()

	var commands []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := stripLine(scanner.Text()); line != "" {
			commands = append(commands, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.New(apperr.FileError, "driver.readScriptFile", err)
	}
	return commands, nil
}

// readStdinCommands reads one command per non-blank, non-comment line from
// stdin, used when input is piped rather than a terminal. Stripped with the
// same stripLine rules as a script file, so a piped command list can carry
// the same "#"/";" comments a -f file can.
func readStdinCommands() []string {
	var commands []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if line := stripLine(scanner.Text()); line != "" {
			commands = append(commands, line)
		}
	}
	return commands
}

// stdinHasPendingData reports whether standard input is a pipe or redirected
// file rather than an interactive terminal.
func stdinHasPendingData() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) == 0
}

type errNotFound string

func (e errNotFound) Error() string {
	return "couldn't find file: " + string(e)
}

// BuildCommandList assembles the full ordered list of commands to run:
// positional arguments first, then piped standard input (if any), then
// every -f/--file script in the order given. A file that can't be resolved
// or read is reported through onWarn rather than aborting the whole list;
// a successfully-read file is reported through onInfo.
func BuildCommandList(positional []string, files []string, onInfo, onWarn func(msg string)) []string {
	commands := make([]string, 0, len(positional))
	commands = append(commands, positional...)

	if stdinHasPendingData() {
		commands = append(commands, readStdinCommands()...)
	}

	for _, file := range files {
		fromFile, err := readScriptFile(file)
		if err != nil {
			if onWarn != nil {
				onWarn(err.Error())
			}
			continue
		}
		if onInfo != nil {
			onInfo("read commands from " + file)
		}
		commands = append(commands, fromFile...)
	}

	return commands
}
