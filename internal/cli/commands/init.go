package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	intconfig "github.com/leapstack-labs/leapxfer/internal/config"
	"github.com/leapstack-labs/leapxfer/internal/userfunc"
	"github.com/spf13/cobra"
)

// configTemplate is written by init --write-config.
const configTemplate = `# leapxfer configuration
# Values can be overridden with LEAPXFER_* environment variables or flags.

# transfers_path: ~/.config/leapxfer/transfers.star
# state_path: ~/.config/leapxfer/state.db
# no_state: false
preview_rows: 5
output: auto
log_level: info
max_steps: 100000

loader:
  format: auto
  delimiter: ","
  header_row: 0
  parse_dates: false
  # index_columns: [0]
  # widths: [10, 8, 12]
  # sheet: Sheet1
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var withConfig bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the transfer script",
		Long: `Create the transfer script with a commented example if it does not exist.

The script holds your own transfer functions. Every top-level function
whose name does not start with "_" can be used as a column rule.

Use --write-config to also write a leapxfer.yaml in the current directory.`,
		Example: `  # Create the transfer script
  leapxfer init

  # Also write ./leapxfer.yaml
  leapxfer init --write-config

  # Replace an existing script with the example
  leapxfer init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, force, withConfig)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&withConfig, "write-config", false, "Also write "+intconfig.ConfigFileName)

	return cmd
}

func runInit(cmd *cobra.Command, force, withConfig bool) error {
	cmdCtx := NewCommandContextWithoutStore(cmd)
	r := cmdCtx.Renderer
	path := cmdCtx.Cfg.TransfersPath

	if force {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to replace transfer script: %w", err)
		}
	}
	created, err := userfunc.EnsureFile(path, true)
	if err != nil {
		return err
	}
	if created {
		r.Success("Created transfer script " + path)
	} else {
		r.Println("Transfer script already exists: " + path)
	}

	// Check the script still parses so a broken file is reported now.
	reg, err := userfunc.Load(path, cmdCtx.Logger)
	if err != nil {
		r.Warning(err.Error())
	} else {
		r.Println(fmt.Sprintf("%d transfer function(s) available", reg.Len()))
	}

	if !withConfig {
		return nil
	}

	cfgPath := intconfig.ConfigFileName
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", cfgPath)
	}
	if err := os.WriteFile(cfgPath, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfgPath, err)
	}
	r.Success("Created " + cfgPath)
	return nil
}
