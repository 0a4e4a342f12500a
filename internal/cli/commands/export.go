package commands

import (
	"fmt"

	"github.com/leapstack-labs/leapxfer/internal/preset"
	"github.com/spf13/cobra"
)

// NewExportRulesCommand creates the export-rules command.
func NewExportRulesCommand() *cobra.Command {
	var rules, ignore []string

	cmd := &cobra.Command{
		Use:   "export-rules <file> <preset>",
		Short: "Write the rules for a file to a YAML preset",
		Long: `Write the rules remembered for a file, plus any --rule and --ignore
flags, to a YAML preset. Presets can be applied to other files with
'leapxfer preview --rules'. Columns left at their default rule are not
written.`,
		Example: `  # Export remembered rules
  leapxfer export-rules january.csv monthly.yaml

  # Build a preset from flags
  leapxfer export-rules january.csv monthly.yaml --rule amount=Float --ignore notes`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			s, err := cmdCtx.openSession(cmd.Context(), args[0], cmdCtx.Cfg.Loader)
			if err != nil {
				return err
			}
			if err := s.applyRuleFlags(rules, ignore); err != nil {
				return err
			}

			p := preset.Capture(s.Engine, s.Source)
			if err := preset.Save(args[1], p); err != nil {
				return err
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("Wrote %d column rule(s) to %s", len(p.Columns), args[1]))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&rules, "rule", nil, "Set a column rule (COLUMN=RULE, repeatable)")
	cmd.Flags().StringArrayVar(&ignore, "ignore", nil, "Ignore a column (repeatable)")

	return cmd
}
