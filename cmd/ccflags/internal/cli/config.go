package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [path]",
	Short: "Print the effective configuration",
	Long: `Prints the configuration that applies to path (default: the current
directory) after merging defaults, the global config, the project config,
.env, CCFLAGS_* variables and command-line flags.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	start := "."
	if len(args) > 0 {
		start = args[0]
	}

	cfg, err := loadConfig(cmd, start)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	source := cfg.Source
	if source == "" {
		source = "(none)"
	}
	fmt.Fprintf(out, "# project config: %s\n", source)
	fmt.Fprintf(out, "# base directory: %s\n", cfg.Dir)
	if db := cfg.DatabasePath(); db != "" {
		fmt.Fprintf(out, "# database: %s\n", db)
	}
	fmt.Fprintln(out)
	return cfg.WriteTOML(out)
}
