package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/ccflags/internal/log"
	"github.com/albertocavalcante/ccflags/pkg/resolver"
)

var flagsFlags struct {
	format string
}

var flagsCmd = &cobra.Command{
	Use:   "flags FILE",
	Short: "Print the compiler flags for a file",
	Long: `Prints the flags the completion engine should use for FILE.

Formats:
  json   {"flags": [...], "do_cache": bool} (the editor plugin contract)
  lines  one flag per line
  shell  flags joined by spaces, quoted where needed`,
	Args: cobra.ExactArgs(1),
	RunE: runFlags,
}

func init() {
	flagsCmd.Flags().StringVarP(&flagsFlags.format, "format", "f", "json",
		"Output format (json, lines, shell)")
	rootCmd.AddCommand(flagsCmd)
}

func runFlags(cmd *cobra.Command, args []string) error {
	filename := args[0]

	cfg, err := loadConfig(cmd, filename)
	if err != nil {
		return err
	}

	res, src := resolver.New(cfg).Resolve(filename)
	log.V(log.VerbosityInfo).Info("flags resolved", "file", filename, "source", src)

	return writeResult(cmd.OutOrStdout(), res, flagsFlags.format)
}

func writeResult(w io.Writer, res resolver.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return enc.Encode(res)
	case "lines":
		for _, f := range res.Flags {
			if _, err := fmt.Fprintln(w, f); err != nil {
				return err
			}
		}
		return nil
	case "shell":
		quoted := make([]string, len(res.Flags))
		for i, f := range res.Flags {
			quoted[i] = shellQuote(f)
		}
		_, err := fmt.Fprintln(w, strings.Join(quoted, " "))
		return err
	default:
		return fmt.Errorf("unknown format %q (want json, lines or shell)", format)
	}
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`*?[]{}()<>|&;#~!") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
