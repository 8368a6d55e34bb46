// Package cli implements the ccflags command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/ccflags/internal/log"
	"github.com/albertocavalcante/ccflags/pkg/config"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// globalFlags holds persistent flags that apply to all commands
var globalFlags struct {
	verbosity int
	logFormat string

	configPath        string
	database          string
	language          string
	standard          string
	includeDirs       []string
	systemIncludeDirs []string
	noCache           bool
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ccflags",
	Short: "Compiler flags for C-family code completion",
	Long: `ccflags computes the compiler flags a semantic completion engine needs
to parse a C, C++, Objective-C or Objective-C++ file.

Flags come from compile_commands.json when it has an entry for the file,
otherwise from the configured defaults (.ccflags.toml, CCFLAGS_* variables
and the flags below).`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ccflags %s (%s)\n", Version, GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.IntVarP(&globalFlags.verbosity, "verbosity", "v", 1,
		"Verbosity level (0=error, 1=warn, 2=info, 3=debug, 4=trace)")
	pf.StringVar(&globalFlags.logFormat, "log-format", "text",
		"Log format (text, json)")

	pf.StringVarP(&globalFlags.configPath, "config", "c", "",
		"Config file (default: search .ccflags.toml upwards)")
	pf.StringVarP(&globalFlags.database, "database", "d", "",
		"compile_commands.json or the directory holding it")
	pf.StringVarP(&globalFlags.language, "language", "x", "",
		"Language (c, c++, objective-c, objective-c++, auto)")
	pf.StringVar(&globalFlags.standard, "std", "",
		"Language standard (e.g. c++11)")
	pf.StringSliceVarP(&globalFlags.includeDirs, "include-dir", "I", nil,
		"Include directory glob (repeatable, replaces configured list)")
	pf.StringSliceVar(&globalFlags.systemIncludeDirs, "system-include-dir", nil,
		"System include directory glob (repeatable, replaces configured list)")
	pf.BoolVar(&globalFlags.noCache, "no-cache", false,
		"Disable result caching and report do_cache=false")

	cobra.OnInitialize(initLogging)
}

// initLogging applies CLI flags to the logger.
func initLogging() {
	log.Init(globalFlags.verbosity, globalFlags.logFormat)
}

// loadConfig builds the effective configuration for a command. start is
// the file or directory the project config search begins from. Persistent
// flags set on the command line override every other layer.
func loadConfig(cmd *cobra.Command, start string) (*config.Config, error) {
	var cfg *config.Config
	if globalFlags.configPath != "" {
		loaded, err := config.LoadFile(globalFlags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.LoadFrom(start)
	}

	overrides := &config.Config{}
	changed := cmd.Flags().Changed
	if changed("database") {
		db, err := filepath.Abs(globalFlags.database)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		overrides.Database = db
	}
	if changed("language") {
		overrides.Language = globalFlags.language
	}
	if changed("std") {
		overrides.Standard = globalFlags.standard
	}
	if changed("include-dir") {
		overrides.IncludeDirs = absPatterns(globalFlags.includeDirs)
	}
	if changed("system-include-dir") {
		overrides.SystemIncludeDirs = absPatterns(globalFlags.systemIncludeDirs)
	}
	if changed("no-cache") {
		enabled := !globalFlags.noCache
		overrides.EnableCache = &enabled
	}
	cfg.Merge(overrides)

	log.Component("cli").Debug("configuration loaded", "dir", cfg.Dir, "source", cfg.Source, "database", cfg.Database)
	return cfg, nil
}

// absPatterns anchors command-line globs at the working directory, since
// configured patterns are otherwise relative to the config directory.
func absPatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, p)
	}
	return out
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}
