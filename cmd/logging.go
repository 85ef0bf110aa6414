package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var logFile *os.File

// setupLogging points the package logger at a text log file. The TUI owns
// the terminal, so nothing is logged to stderr.
func setupLogging(cmd *cobra.Command) error {
	var level slog.Level
	if s := flagOrEnv(cmd, "log-level", "TIMEDQUIZ_LOG_LEVEL"); s != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
			return fmt.Errorf("invalid log level %q", s)
		}
	}

	path := flagOrEnv(cmd, "log-file", "TIMEDQUIZ_LOG_FILE")
	if path == "" {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve log path: %w", err)
		}
		path = filepath.Join(filepath.Dir(dbPath), "timedquiz.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logFile = f
	logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})).
		With("cmd", cmd.Name())
	return nil
}

func closeLogging() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
