package flags

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/albertocavalcante/ccflags/internal/log"
)

// ExpandDirs expands each glob pattern and keeps the matches that are
// existing directories. Results follow pattern order, then match order.
// Relative patterns are resolved against baseDir when it is set.
//
// Patterns that are malformed or match nothing contribute nothing: a missing
// optional include directory must not break completion.
func ExpandDirs(patterns []string, baseDir string) []string {
	dirs := []string{}
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		p := pattern
		if baseDir != "" && !filepath.IsAbs(p) {
			p = filepath.Join(escapeMeta(baseDir), p)
		}

		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			log.Component("flags").Debug("skipping include pattern", "pattern", pattern, "error", err)
			continue
		}
		for _, m := range matches {
			if isDir(m) {
				dirs = append(dirs, m)
			}
		}
		if len(matches) == 0 {
			log.V(log.VerbosityDebug).Debug("include pattern matched nothing", "pattern", pattern)
		}
	}
	return dirs
}

// escapeMeta quotes glob metacharacters so a directory like "proj[1]"
// matches itself literally.
func escapeMeta(path string) string {
	var b strings.Builder
	for _, r := range path {
		if strings.ContainsRune("*?[]{}", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
