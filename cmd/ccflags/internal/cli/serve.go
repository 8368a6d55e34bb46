package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/ccflags/cmd/ccflags/internal/server"
	"github.com/albertocavalcante/ccflags/internal/log"
	"github.com/albertocavalcante/ccflags/pkg/compdb"
	"github.com/albertocavalcante/ccflags/pkg/config"
	"github.com/albertocavalcante/ccflags/pkg/resolver"
)

var serveFlags struct {
	watch    bool
	debounce int
	dir      string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer flag requests over stdio (JSON-RPC 2.0)",
	Long: `Runs a long-lived server that reads newline-delimited JSON-RPC 2.0
requests from stdin and writes responses to stdout. Logs go to stderr.

Methods:
  ping                              health check
  flags/get {"filename": "..."}     {"flags": [...], "do_cache": bool}
  database/reload                   reopen compile_commands.json if it changed
  cache/clear                       drop memoised results
  shutdown                          stop the server

With --watch, the compilation database and the project config are reloaded
automatically when they change on disk.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVarP(&serveFlags.watch, "watch", "w", false,
		"Reload the database and config when they change")
	serveCmd.Flags().IntVar(&serveFlags.debounce, "debounce", 300,
		"Debounce window in milliseconds for --watch")
	serveCmd.Flags().StringVar(&serveFlags.dir, "dir", ".",
		"Directory the project config search starts from")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd, serveFlags.dir)
	if err != nil {
		return err
	}

	r := resolver.New(cfg)
	h := server.NewHandler(r, Version)
	srv := server.New(h, cmd.InOrStdin(), cmd.OutOrStdout())

	if serveFlags.watch {
		reload := func(paths []string) {
			reloadChanged(cmd, h, paths)
		}
		w, err := server.NewWatcher(watchedFiles(cfg), time.Duration(serveFlags.debounce)*time.Millisecond, reload)
		if err != nil {
			return err
		}
		defer w.Close()

		go func() {
			if err := w.Run(ctx); err != nil {
				log.Component("watch").Error("watcher stopped", "error", err)
			}
		}()
		log.Component("watch").Info("watching for changes", "files", w.Files())
	}

	if err := srv.Serve(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// watchedFiles lists the files whose changes affect results: the database
// and the project config.
func watchedFiles(cfg *config.Config) []string {
	var files []string
	if db := cfg.DatabasePath(); db != "" {
		if located, err := compdb.Locate(db); err == nil {
			db = located
		} else if filepath.Ext(db) != ".json" {
			db = filepath.Join(db, compdb.FileName)
		}
		files = append(files, db)
	}
	if cfg.Source != "" {
		files = append(files, cfg.Source)
	}
	return files
}

// reloadChanged applies a batch of file changes. A config change rebuilds
// the resolver from scratch; a database change only reopens the database.
func reloadChanged(cmd *cobra.Command, h *server.Handler, paths []string) {
	logger := log.Component("watch")

	current, ok := h.Resolver().(*resolver.Resolver)
	if !ok {
		h.Resolver().Reload()
		return
	}

	if source := current.Config().Source; source != "" && slices.Contains(paths, source) {
		cfg, err := loadConfig(cmd, serveFlags.dir)
		if err != nil {
			logger.Warn("keeping previous config", "error", err)
			return
		}
		h.SetResolver(resolver.New(cfg))
		logger.Info("config reloaded", "path", source)
		return
	}

	current.Reload()
}
