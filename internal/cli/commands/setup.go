package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leapxfer/internal/cli/config"
	"github.com/leapstack-labs/leapxfer/internal/cli/output"
	intconfig "github.com/leapstack-labs/leapxfer/internal/config"
	"github.com/leapstack-labs/leapxfer/internal/loader"
	"github.com/leapstack-labs/leapxfer/internal/state"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Store    state.Store // nil when no_state is set
}

// NewCommandContext creates a CommandContext with the rule store opened.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	c := NewCommandContextWithoutStore(cmd)
	if c.Cfg.NoState {
		return c, func() {}, nil
	}

	store, err := openStore(c.Cfg.StatePath)
	if err != nil {
		return nil, nil, err
	}
	c.Store = store

	cleanup := func() {
		_ = store.Close()
	}
	return c, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext without a rule store.
// Useful for commands that don't remember anything.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to defaults.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		TransfersPath: getEnvOrDefault("LEAPXFER_TRANSFERS_PATH", intconfig.DefaultTransfersPath()),
		StatePath:     getEnvOrDefault("LEAPXFER_STATE_PATH", intconfig.DefaultStatePath()),
		NoState:       os.Getenv("LEAPXFER_NO_STATE") == "true",
		PreviewRows:   config.DefaultPreviewRows,
		OutputFormat:  os.Getenv("LEAPXFER_OUTPUT"),
		LogLevel:      config.DefaultLogLevel,
		MaxSteps:      config.DefaultMaxSteps,
		Loader:        loader.DefaultOptions(),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func openStore(path string) (*state.SQLiteStore, error) {
	// Ensure state directory exists
	stateDir := filepath.Dir(path)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore()
	if err := store.Open(path); err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	return store, nil
}
