// Package config provides configuration management for the leapxfer CLI.
//
// Values are layered with koanf: defaults, then the config file, then
// LEAPXFER_ environment variables, then explicitly set flags.
package config

import (
	sharedcfg "github.com/leapstack-labs/leapxfer/internal/config"
	"github.com/leapstack-labs/leapxfer/internal/loader"
)

// LoaderConfig is the raw table loader configuration.
// This allows CLI code to use config.LoaderConfig without importing internal/loader.
type LoaderConfig = loader.Options

// Config holds all CLI configuration options.
type Config struct {
	TransfersPath string       `koanf:"transfers_path"`
	StatePath     string       `koanf:"state_path"`
	NoState       bool         `koanf:"no_state"`
	PreviewRows   int          `koanf:"preview_rows"`
	OutputFormat  string       `koanf:"output"`
	Verbose       bool         `koanf:"verbose"`
	LogLevel      string       `koanf:"log_level"`
	MaxSteps      uint64       `koanf:"max_steps"`
	Loader        LoaderConfig `koanf:"loader"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultPreviewRows = sharedcfg.DefaultPreviewRows
	DefaultMaxSteps    = sharedcfg.DefaultMaxSteps
	DefaultOutput      = sharedcfg.DefaultOutput
	DefaultLogLevel    = sharedcfg.DefaultLogLevel
)

// flagKeys maps flag names to config keys where they differ from the
// kebab-to-snake translation.
var flagKeys = map[string]string{
	"transfers":   "transfers_path",
	"state":       "state_path",
	"rows":        "preview_rows",
	"delimiter":   "loader.delimiter",
	"header-row":  "loader.header_row",
	"parse-dates": "loader.parse_dates",
	"index-col":   "loader.index_columns",
	"widths":      "loader.widths",
	"sheet":       "loader.sheet",
	"format":      "loader.format",
	"na-values":   "loader.na_values",
}
