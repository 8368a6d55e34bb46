package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/ccflags/pkg/compdb"
	"github.com/albertocavalcante/ccflags/pkg/config"
)

// initFileName is the config file written by init.
const initFileName = ".ccflags.toml"

var initFlags struct {
	force  bool
	dryRun bool
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a default .ccflags.toml",
	Long: `Writes a .ccflags.toml with the default flags into dir (default: the
current directory).

If dir contains compile_commands.json, the config points at it.
Use --dry-run to print the file instead of writing it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initFlags.force, "force", false,
		"Overwrite an existing config")
	initCmd.Flags().BoolVar(&initFlags.dryRun, "dry-run", false,
		"Show the config without writing it")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	content, err := generateInitConfig(absDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if initFlags.dryRun {
		_, err := out.Write(content)
		return err
	}

	path := filepath.Join(absDir, initFileName)
	if fileExists(path) && !initFlags.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(out, "Created %s\n", path)
	return nil
}

// generateInitConfig renders the default config for dir.
func generateInitConfig(dir string) ([]byte, error) {
	cfg := config.NewConfig()
	if fileExists(filepath.Join(dir, compdb.FileName)) {
		cfg.Database = compdb.FileName
	}

	var buf bytes.Buffer
	buf.WriteString("# ccflags configuration. Paths are relative to this file.\n")
	buf.WriteString("# Files listed in the compilation database use its flags instead.\n\n")
	if err := cfg.WriteTOML(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
