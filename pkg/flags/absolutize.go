// Package flags builds the compiler flag lists handed to the completion
// engine: path absolutization, language/standard selection, user-declared
// include directories and include directory globbing.
package flags

import (
	"path/filepath"
	"strings"
)

// pathFlags take a path argument, either fused ("-Iinc") or as the next
// token ("-I inc"). -isystem must be tested before -I.
var pathFlags = []string{"-isystem", "-I", "-iquote", "--sysroot="}

// Absolutize rewrites the path arguments of path flags so that relative
// paths are resolved against workingDir. Absolute paths and all other tokens
// pass through unchanged, which makes the function idempotent for a fixed
// workingDir. Empty tokens are dropped.
//
// An empty workingDir returns a copy of flags.
func Absolutize(flags []string, workingDir string) []string {
	if workingDir == "" {
		return append([]string(nil), flags...)
	}

	out := make([]string, 0, len(flags))
	makeNextAbsolute := false
	for _, flag := range flags {
		newFlag := flag

		if makeNextAbsolute {
			makeNextAbsolute = false
			newFlag = resolvePath(workingDir, flag)
		}

		for _, pathFlag := range pathFlags {
			if flag == pathFlag {
				makeNextAbsolute = true
				break
			}
			if strings.HasPrefix(flag, pathFlag) {
				newFlag = pathFlag + resolvePath(workingDir, flag[len(pathFlag):])
				break
			}
		}

		if newFlag != "" {
			out = append(out, newFlag)
		}
	}
	return out
}

// resolvePath joins path onto workingDir unless it is already absolute.
func resolvePath(workingDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	joined := filepath.Join(workingDir, path)
	if !filepath.IsAbs(joined) {
		if abs, err := filepath.Abs(joined); err == nil {
			return abs
		}
	}
	return joined
}
