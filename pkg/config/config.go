// Package config provides configuration management for ccflags.
// It supports multi-layer configuration with precedence:
//  1. Built-in defaults (lowest priority)
//  2. Global user config (~/.config/ccflags/config.toml)
//  3. Project config (.ccflags/config.toml, .ccflags.toml or .ccflags.yaml)
//  4. .env file next to the project config, then environment (CCFLAGS_*)
//  5. CLI flags (highest priority)
package config

import (
	"io"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the settings used to compute flags for files that have no
// compilation database entry.
type Config struct {
	// Flags are passed to the compiler for every file without a database entry.
	Flags []string `toml:"flags" yaml:"flags"`

	// ExtraFlags are appended to Flags when layers are merged, so a project
	// can add flags without restating the defaults.
	ExtraFlags []string `toml:"extra_flags,omitempty" yaml:"extra_flags,omitempty"`

	// Database is the compile_commands.json file or the directory holding it.
	// Empty disables database lookups.
	Database string `toml:"database" yaml:"database"`

	// Language is the -x language ("c", "c++", "objective-c",
	// "objective-c++"), "auto" to infer it from the file extension, or empty
	// to emit no -x flag.
	Language string `toml:"language" yaml:"language"`

	// Standard is the -std= value. Unknown values fall back to the
	// language default.
	Standard string `toml:"standard" yaml:"standard"`

	// IncludeDirs are glob patterns passed with -I.
	IncludeDirs []string `toml:"include_dirs" yaml:"include_dirs"`

	// SystemIncludeDirs are glob patterns passed with -isystem.
	SystemIncludeDirs []string `toml:"system_include_dirs" yaml:"system_include_dirs"`

	// EnableCache is returned to the host as the do_cache hint and enables
	// result memoisation.
	EnableCache *bool `toml:"enable_cache" yaml:"enable_cache"`

	// Dir is the base for relative paths: the directory of the project
	// config, or the directory the search started from.
	Dir string `toml:"-" yaml:"-"`

	// Source is the project config file that was loaded, if any.
	Source string `toml:"-" yaml:"-"`
}

// DefaultFlags are the warning and language flags used when no
// configuration overrides them.
var DefaultFlags = []string{
	"-Wall",
	"-Wextra",
	"-Werror",
	"-Wc++98-compat",
	"-Wno-long-long",
	"-Wno-variadic-macros",
	"-fexceptions",
}

// NewConfig creates a new Config with built-in defaults.
func NewConfig() *Config {
	trueVal := true
	return &Config{
		Flags:             append([]string(nil), DefaultFlags...),
		Language:          "c++",
		IncludeDirs:       []string{"."},
		SystemIncludeDirs: []string{"/usr/include"},
		EnableCache:       &trueVal,
	}
}

// CacheEnabled reports the effective enable_cache value.
func (c *Config) CacheEnabled() bool {
	return c.EnableCache != nil && *c.EnableCache
}

// DatabasePath returns Database resolved against Dir.
func (c *Config) DatabasePath() string {
	if c.Database == "" || filepath.IsAbs(c.Database) || c.Dir == "" {
		return c.Database
	}
	return filepath.Join(c.Dir, c.Database)
}

// AllFlags returns Flags followed by ExtraFlags.
func (c *Config) AllFlags() []string {
	out := make([]string, 0, len(c.Flags)+len(c.ExtraFlags))
	out = append(out, c.Flags...)
	return append(out, c.ExtraFlags...)
}

// Merge merges another config into this one (other takes precedence).
// Empty strings and nil slices in other mean "not set".
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Flags != nil {
		c.Flags = other.Flags
	}
	if len(other.ExtraFlags) > 0 {
		c.ExtraFlags = append(c.ExtraFlags, other.ExtraFlags...)
	}
	if other.Database != "" {
		c.Database = other.Database
	}
	if other.Language != "" {
		c.Language = other.Language
	}
	if other.Standard != "" {
		c.Standard = other.Standard
	}
	if other.IncludeDirs != nil {
		c.IncludeDirs = other.IncludeDirs
	}
	if other.SystemIncludeDirs != nil {
		c.SystemIncludeDirs = other.SystemIncludeDirs
	}
	if other.EnableCache != nil {
		c.EnableCache = other.EnableCache
	}
	if other.Dir != "" {
		c.Dir = other.Dir
	}
	if other.Source != "" {
		c.Source = other.Source
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Flags = cloneSlice(c.Flags)
	out.ExtraFlags = cloneSlice(c.ExtraFlags)
	out.IncludeDirs = cloneSlice(c.IncludeDirs)
	out.SystemIncludeDirs = cloneSlice(c.SystemIncludeDirs)
	if c.EnableCache != nil {
		v := *c.EnableCache
		out.EnableCache = &v
	}
	return &out
}

// WriteTOML encodes c as TOML.
func (c *Config) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func cloneSlice(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}
