package commands

import (
	"fmt"

	"github.com/leapstack-labs/leapxfer/internal/cli/output"
	"github.com/leapstack-labs/leapxfer/internal/preview"
	"github.com/spf13/cobra"
)

// PreviewOptions holds options for the preview command.
type PreviewOptions struct {
	Rules  []string // COLUMN=RULE assignments
	Ignore []string // columns dropped from the output
	Preset string   // YAML preset applied before the flags
	Save   bool     // remember the resulting rules for the file
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand() *cobra.Command {
	opts := &PreviewOptions{}
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Apply transfer rules to a file and show the first rows",
		Long: `Load a CSV, fixed-width or Excel file, apply the transfer rule of every
column and show the first rows of the result together with any column
that failed to transfer.

Rules remembered for the file are applied first, then --rules, then the
--rule and --ignore flags. A rule is a builtin (Int, Float, String,
Unicode, Boolean) or the name of a function in the transfer script.`,
		Example: `  # Preview with the inferred types
  leapxfer preview data.csv

  # Convert two columns and drop one
  leapxfer preview data.csv --rule amount=Float --rule code=upper --ignore notes

  # Apply a preset and remember the result for next time
  leapxfer preview data.csv --rules monthly.yaml --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Rules, "rule", nil, "Set a column rule (COLUMN=RULE, repeatable)")
	cmd.Flags().StringArrayVar(&opts.Ignore, "ignore", nil, "Drop a column from the output (repeatable)")
	cmd.Flags().StringVar(&opts.Preset, "rules", "", "Apply a YAML rule preset")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "Remember the rules for this file")

	return cmd
}

func runPreview(cmd *cobra.Command, path string, opts *PreviewOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	r := cmdCtx.Renderer

	s, err := cmdCtx.openSession(cmd.Context(), path, cmdCtx.Cfg.Loader)
	if err != nil {
		return err
	}
	if opts.Preset != "" {
		if err := s.applyPreset(opts.Preset); err != nil {
			return err
		}
	}
	if err := s.applyRuleFlags(opts.Rules, opts.Ignore); err != nil {
		return err
	}

	out := s.Apply()

	format := r.PreviewFormat()
	if err := preview.Render(r.Writer(), out, preview.Options{Rows: cmdCtx.Cfg.PreviewRows, Format: format}); err != nil {
		return err
	}

	if errs := s.Engine.Errors(); len(errs) > 0 {
		if err := preview.RenderErrors(r.ErrWriter(), errs, format); err != nil {
			return err
		}
	}

	if opts.Save {
		if err := s.Remember(); err != nil {
			return err
		}
		if r.EffectiveMode() != output.ModeJSON {
			r.Success(fmt.Sprintf("Rules saved for %s", s.Source))
		}
	}
	return nil
}
