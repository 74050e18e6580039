package util

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	handlerTypeFlag = flag.String("log_handler_type", "text", "Log handler type: json/text")
	logLevelFlag    = flag.String("log_level", "info", "Log level: debug/info/warn/error")
)

// NewLogger builds a slog.Logger writing to w.
// handlerType is "json" or "text"; level is debug/info/warn/error.
func NewLogger(w io.Writer, handlerType, level string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unsupported log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(handlerType) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log handler type %q", handlerType)
	}
}

// InitLogging configures the default slog logger from -log_handler_type and
// -log_level. It must be called after flag.Parse().
func InitLogging() error {
	l, err := NewLogger(os.Stderr, *handlerTypeFlag, *logLevelFlag)
	if err != nil {
		return err
	}
	slog.SetDefault(l)
	slog.Debug("Log handler configured.", "type", *handlerTypeFlag, "level", *logLevelFlag)
	return nil
}
