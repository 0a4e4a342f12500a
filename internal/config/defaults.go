// Package config holds defaults and file locations shared by leapxfer
// components. It is decoupled from CLI concerns.
package config

import (
	"os"
	"path/filepath"
)

// AppName names the per-user configuration directory.
const AppName = "leapxfer"

// Default configuration values.
const (
	DefaultTransfersFile = "transfers.star"
	DefaultStateFile     = "state.db"
	DefaultPreviewRows   = 5
	DefaultMaxSteps      = 100_000
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel      = "info"
)

// UserDir returns the per-user configuration directory, e.g.
// ~/.config/leapxfer. It falls back to ./.leapxfer when the platform
// reports no user config directory.
func UserDir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return "." + AppName
	}
	return filepath.Join(base, AppName)
}

// DefaultTransfersPath returns where the user transfer script lives by default.
func DefaultTransfersPath() string {
	return filepath.Join(UserDir(), DefaultTransfersFile)
}

// DefaultStatePath returns where remembered rules live by default.
func DefaultStatePath() string {
	return filepath.Join(UserDir(), DefaultStateFile)
}
