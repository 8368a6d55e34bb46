package compdb

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mattn/go-shellwords"
)

// Entry is one command object of a compile_commands.json file.
// Arguments takes precedence over Command when both are present.
type Entry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Command   string   `json:"command,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
	Output    string   `json:"output,omitempty"`
}

// launchers are compiler wrappers that precede the real driver in argv.
var launchers = []string{"ccache", "sccache", "distcc", "icecc", "pdistcc"}

// Argv returns the full compiler invocation, splitting Command with POSIX
// shell rules when Arguments is empty.
func (e *Entry) Argv() ([]string, error) {
	if len(e.Arguments) > 0 {
		return e.Arguments, nil
	}
	if e.Command == "" {
		return nil, fmt.Errorf("entry for %q has neither arguments nor command", e.File)
	}
	argv, err := shellwords.Parse(e.Command)
	if err != nil {
		return nil, fmt.Errorf("failed to split command for %q: %w", e.File, err)
	}
	return argv, nil
}

// AbsFile returns the entry's file resolved against its directory.
func (e *Entry) AbsFile() string {
	if filepath.IsAbs(e.File) || e.Directory == "" {
		return filepath.Clean(e.File)
	}
	return filepath.Join(e.Directory, e.File)
}

// Flags returns the compiler flags of the entry: argv without the driver
// (and any launcher in front of it), without -c, without -o and its
// argument, and without the source file itself.
func (e *Entry) Flags() ([]string, error) {
	argv, err := e.Argv()
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return []string{}, nil
	}

	start := 1
	if slices.Contains(launchers, filepath.Base(argv[0])) && len(argv) > 1 {
		start = 2
	}

	source := e.AbsFile()
	out := make([]string, 0, len(argv))
	for i := start; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "-c":
			continue
		case arg == "-o":
			i++
			continue
		case strings.HasPrefix(arg, "-o"):
			// fused -o<out>; no other driver flag starts with -o
			continue
		case arg == e.File || e.resolve(arg) == source:
			continue
		}
		out = append(out, arg)
	}
	return out, nil
}

func (e *Entry) resolve(arg string) string {
	if arg == "" || arg[0] == '-' {
		return ""
	}
	if filepath.IsAbs(arg) {
		return filepath.Clean(arg)
	}
	return filepath.Join(e.Directory, arg)
}
