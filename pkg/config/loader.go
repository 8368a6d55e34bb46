package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/mattn/go-shellwords"
	"gopkg.in/yaml.v3"

	"github.com/albertocavalcante/ccflags/internal/log"
)

// ConfigDirName is the name of the project-level config directory.
const ConfigDirName = ".ccflags"

// GlobalConfigDir is the name of the global config directory inside the
// user's config directory.
const GlobalConfigDir = "ccflags"

// ProjectConfigNames are the project config files checked in each
// directory, in order.
var ProjectConfigNames = []string{
	filepath.Join(ConfigDirName, "config.toml"),
	".ccflags.toml",
	".ccflags.yaml",
	".ccflags.yml",
}

// rootMarkers stop the upward search for a project config.
var rootMarkers = []string{".git", ".hg", ".svn"}

// Load loads configuration starting from the current directory.
func Load() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return LoadFrom(wd)
}

// LoadFrom loads configuration from all layers, searching for a project
// config from dir upwards. dir may also name a file, in which case the
// search starts in its directory.
func LoadFrom(dir string) *Config {
	dir = searchStart(dir)

	cfg := NewConfig()
	cfg.Dir = dir

	if globalCfg := loadGlobalConfig(); globalCfg != nil {
		cfg.Merge(globalCfg)
	}

	if projectCfg := loadProjectConfigFrom(dir); projectCfg != nil {
		cfg.Merge(projectCfg)
	}

	applyEnvironment(cfg, envLookup(cfg.Dir))
	return cfg
}

// LoadFile loads defaults, the global config, the given file as the project
// layer, and the environment. Unlike LoadFrom, a missing or malformed file
// is an error.
func LoadFile(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	projectCfg, err := loadConfigFile(abs)
	if err != nil {
		return nil, err
	}

	cfg := NewConfig()
	if globalCfg := loadGlobalConfig(); globalCfg != nil {
		cfg.Merge(globalCfg)
	}
	cfg.Merge(projectCfg)
	applyEnvironment(cfg, envLookup(cfg.Dir))
	return cfg, nil
}

func searchStart(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return filepath.Dir(abs)
	}
	return abs
}

// loadGlobalConfig loads ~/.config/ccflags/config.toml.
func loadGlobalConfig() *Config {
	path := GetGlobalConfigPath()
	if path == "" {
		return nil
	}
	cfg, err := loadConfigFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Component("config").Warn("ignoring global config", "path", path, "error", err)
		}
		return nil
	}
	// Relative paths in the global config follow the project directory.
	cfg.Dir = ""
	cfg.Source = ""
	return cfg
}

// loadProjectConfigFrom looks for a project config from dir upwards,
// stopping at a VCS root or the filesystem root.
func loadProjectConfigFrom(dir string) *Config {
	current := dir
	for {
		for _, path := range GetProjectConfigPaths(current) {
			cfg, err := loadConfigFile(path)
			if err == nil {
				log.Component("config").Info("loaded project config", "path", path)
				return cfg
			}
			if !errors.Is(err, os.ErrNotExist) {
				log.Component("config").Warn("ignoring project config", "path", path, "error", err)
			}
		}

		if isProjectRoot(current) {
			break
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return nil
}

// isProjectRoot checks for a VCS marker in dir.
func isProjectRoot(dir string) bool {
	for _, marker := range rootMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// loadConfigFile decodes a TOML or YAML config file. Dir is set to the
// project directory the file belongs to.
func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	dir := filepath.Dir(path)
	if filepath.Base(dir) == ConfigDirName {
		dir = filepath.Dir(dir)
	}
	cfg.Dir = dir
	cfg.Source = path
	return &cfg, nil
}

// envLookup returns a lookup that prefers the process environment and falls
// back to a .env file in dir.
func envLookup(dir string) func(string) string {
	dotenv, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil {
		dotenv = nil
	}
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}
}

// applyEnvironment applies CCFLAGS_* variables to the config.
func applyEnvironment(cfg *Config, getenv func(string) string) {
	if v := getenv("CCFLAGS_FLAGS"); v != "" {
		if words, err := shellwords.Parse(v); err == nil {
			cfg.Flags = words
		} else {
			log.Component("config").Warn("ignoring CCFLAGS_FLAGS", "error", err)
		}
	}
	if v := getenv("CCFLAGS_DATABASE"); v != "" {
		cfg.Database = v
	}
	if v := getenv("CCFLAGS_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := getenv("CCFLAGS_STANDARD"); v != "" {
		cfg.Standard = v
	}
	if v := getenv("CCFLAGS_INCLUDE_DIRS"); v != "" {
		cfg.IncludeDirs = splitList(v)
	}
	if v := getenv("CCFLAGS_SYSTEM_INCLUDE_DIRS"); v != "" {
		cfg.SystemIncludeDirs = splitList(v)
	}
	applyBoolEnv(getenv("CCFLAGS_ENABLE_CACHE"), &cfg.EnableCache)
}

// splitList splits a PATH-style list and drops empty elements.
func splitList(s string) []string {
	parts := filepath.SplitList(s)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// applyBoolEnv applies a boolean environment value to a pointer.
func applyBoolEnv(v string, target **bool) {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		t := true
		*target = &t
	case "false", "0", "no":
		f := false
		*target = &f
	}
}

// GetGlobalConfigPath returns the path to the global config file.
func GetGlobalConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, GlobalConfigDir, "config.toml")
}

// GetProjectConfigPaths returns potential project config paths for dir.
func GetProjectConfigPaths(dir string) []string {
	paths := make([]string, len(ProjectConfigNames))
	for i, name := range ProjectConfigNames {
		paths[i] = filepath.Join(dir, name)
	}
	return paths
}
