package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/hunter-rf-core/internal/infrastructure/config"
)

// LevelTrace sits below slog.LevelDebug and carries high-volume decoder
// diagnostics such as raw bit dumps. It is advisory output only.
const LevelTrace = slog.Level(-8)

// Logger is the daemon's structured logger. It embeds slog.Logger and
// adds a trace tier for output that would swamp debug. Safe for
// concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds a logger from the logging section of config.yaml. Format
// selects JSON (the default) or text, output stdout or stderr, and
// every record carries service and version fields.
func New(cfg config.LoggingConfig, version string) *Logger {
	return &Logger{Logger: slog.New(newHandler(cfg, version, writerFor(cfg.Output)))}
}

// newHandler assembles the slog handler. Split from New so tests can
// capture output in a buffer.
func newHandler(cfg config.LoggingConfig, version string, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	return h.WithAttrs([]slog.Attr{
		slog.String("service", "hunterrf"),
		slog.String("version", version),
	})
}

func writerFor(output string) io.Writer {
	if strings.EqualFold(output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

// parseLevel maps a config level name onto slog. Unrecognised names
// fall back to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Trace logs below debug. The decoder uses it for per-row bit dumps.
func (l *Logger) Trace(msg string, args ...any) {
	l.Log(context.Background(), LevelTrace, msg, args...)
}

// With returns a child logger carrying extra default attributes, such
// as a component name.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default is the bootstrap logger used before config.yaml is loaded:
// JSON to stdout at info level.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
