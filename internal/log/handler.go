package log

import (
	"io"
	"log/slog"
	"os"
)

// formatJSON selects the JSON handler; any other format is text.
const formatJSON = "json"

// newHandler writes records at or above lvl to w. A nil w means stderr,
// since stdout carries command output and the serve protocol.
func newHandler(w io.Writer, format string, lvl slog.Leveler) slog.Handler {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: lvl, ReplaceAttr: levelAttr}
	if format == formatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// levelAttr prints TRACE rather than slog's DEBUG-4.
func levelAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok {
		return slog.String(slog.LevelKey, LevelName(lvl))
	}
	return a
}
