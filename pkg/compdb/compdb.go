// Package compdb reads clang compilation databases (compile_commands.json)
// and answers per-file flag lookups.
package compdb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/albertocavalcante/ccflags/internal/log"
	"github.com/albertocavalcante/ccflags/pkg/flags"
)

// FileName is the conventional database file name.
const FileName = "compile_commands.json"

// CompileInfo is the recorded compile command for one file.
type CompileInfo struct {
	Flags      []string
	WorkingDir string
}

// Database is a parsed compilation database. A nil *Database is valid and
// has no entries.
type Database struct {
	path    string
	hash    string
	entries map[string]*Entry
}

// Open loads the database at path, which may name the JSON file or a
// directory containing compile_commands.json. An empty path disables the
// database and returns (nil, nil).
func Open(path string) (*Database, error) {
	if path == "" {
		return nil, nil
	}

	path, err := Locate(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compilation database: %w", err)
	}

	db, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	db.path = path

	log.Component("compdb").Info("loaded compilation database", "path", path, "entries", db.Len())
	return db, nil
}

// Locate resolves a database path: a directory is expanded to the
// compile_commands.json inside it. The result is absolute.
func Locate(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("compilation database not found: %w", err)
	}
	if info.IsDir() {
		abs = filepath.Join(abs, FileName)
	}
	return abs, nil
}

// Parse decodes database JSON. Relative entry directories are resolved
// against baseDir. When a file appears more than once the first entry wins.
func Parse(data []byte, baseDir string) (*Database, error) {
	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	db := &Database{
		hash:    HashBytes(data),
		entries: make(map[string]*Entry, len(entries)),
	}
	for _, e := range entries {
		if e == nil || e.File == "" {
			continue
		}
		if e.Directory != "" && !filepath.IsAbs(e.Directory) && baseDir != "" {
			e.Directory = filepath.Join(baseDir, e.Directory)
		}
		key := e.AbsFile()
		if _, dup := db.entries[key]; dup {
			continue
		}
		db.entries[key] = e
	}
	return db, nil
}

// Path returns the file the database was loaded from ("" when parsed from
// memory).
func (db *Database) Path() string {
	if db == nil {
		return ""
	}
	return db.path
}

// Len returns the number of distinct files in the database.
func (db *Database) Len() int {
	if db == nil {
		return 0
	}
	return len(db.entries)
}

// Lookup returns the flags recorded for filename, absolutized against the
// entry's directory. It reports false when db is nil, filename has no entry,
// or the entry's command cannot be split.
func (db *Database) Lookup(filename string) (*CompileInfo, bool) {
	if db == nil || filename == "" {
		return nil, false
	}

	key, err := filepath.Abs(filename)
	if err != nil {
		return nil, false
	}
	e, ok := db.entries[key]
	if !ok {
		return nil, false
	}

	entryFlags, err := e.Flags()
	if err != nil {
		log.Component("compdb").Warn("unusable database entry", "file", key, "error", err)
		return nil, false
	}
	return &CompileInfo{
		Flags:      flags.Absolutize(entryFlags, e.Directory),
		WorkingDir: e.Directory,
	}, true
}

// Stale reports whether the file behind db changed since it was parsed.
// A database that was not loaded from a file is never stale.
func (db *Database) Stale() bool {
	if db == nil || db.path == "" {
		return false
	}
	data, err := os.ReadFile(db.path)
	if err != nil {
		return true
	}
	return HashBytes(data) != db.hash
}
