package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/abhisek/timedquiz/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "timedquiz",
	Short: "Timed quizzes in the terminal",
	Long: "timedquiz runs timed question sessions from YAML or JSON question banks, " +
		"archives every attempt to SQLite and can author banks with an LLM.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLogging()
	},
}

// Execute runs the command line.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TIMEDQUIZ_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides TIMEDQUIZ_LOG_LEVEL, default info)")
	rootCmd.PersistentFlags().String("log-file", "", "Log file path (overrides TIMEDQUIZ_LOG_FILE, default next to the database)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then TIMEDQUIZ_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, os.MkdirAll(filepath.Dir(p), 0o755)
	}
	return store.DefaultDBPath()
}

// openStore opens the database selected by resolveDBPath.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(cmd.Context(), dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("database opened", "path", dbPath)
	return st, nil
}

// flagOrEnv returns the flag value if set, else the environment variable.
func flagOrEnv(cmd *cobra.Command, flag, env string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return os.Getenv(env)
}

var logger = slog.New(slog.DiscardHandler)
