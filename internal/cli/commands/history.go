package commands

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/leapstack-labs/leapxfer/internal/cli/output"
	"github.com/leapstack-labs/leapxfer/internal/state"
	"github.com/spf13/cobra"
)

var errNoState = errors.New("rule memory is disabled (no_state)")

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [file]",
		Short: "Show remembered files or the runs of one file",
		Long: `Without arguments, list every file with remembered rules. With a file,
list its most recent runs and the columns that failed in each.`,
		Example: `  # Files with remembered rules
  leapxfer history

  # Last 5 runs of a file
  leapxfer history data.csv --limit 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			if cmdCtx.Store == nil {
				return errNoState
			}
			if len(args) == 0 {
				return listSources(cmdCtx)
			}
			return listRuns(cmdCtx, args[0], limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")

	return cmd
}

// NewForgetCommand creates the forget command.
func NewForgetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <file>",
		Short: "Forget the rules remembered for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			if cmdCtx.Store == nil {
				return errNoState
			}
			source := state.SourceKey(args[0])
			if err := cmdCtx.Store.DeleteRules(source); err != nil {
				return err
			}
			cmdCtx.Renderer.Success("Forgot rules for " + source)
			return nil
		},
	}
}

func listSources(cmdCtx *CommandContext) error {
	r := cmdCtx.Renderer
	sources, err := cmdCtx.Store.Sources()
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		type entry struct {
			Path      string `json:"path"`
			UpdatedAt string `json:"updated_at"`
		}
		out := make([]entry, len(sources))
		for i, s := range sources {
			out[i] = entry{Path: s.Path, UpdatedAt: s.UpdatedAt.Format(timeFormat)}
		}
		return r.JSON(map[string]any{"sources": out})
	}

	if len(sources) == 0 {
		r.Muted("No remembered files")
		return nil
	}
	t := historyTable()
	t.AppendHeader(table.Row{"File", "Updated"})
	for _, s := range sources {
		t.AppendRow(table.Row{s.Path, s.UpdatedAt.Local().Format(timeFormat)})
	}
	renderHistoryTable(r, t)
	return nil
}

func listRuns(cmdCtx *CommandContext, path string, limit int) error {
	r := cmdCtx.Renderer
	source := state.SourceKey(path)
	runs, err := cmdCtx.Store.Runs(source, limit)
	if err != nil {
		return err
	}

	out := output.HistoryOutput{Source: source, Runs: make([]output.RunInfo, len(runs))}
	for i, run := range runs {
		out.Runs[i] = output.RunInfo{
			ID:        run.ID,
			StartedAt: run.StartedAt.Format(timeFormat),
			Columns:   run.Columns,
			Failed:    run.Failed,
			Errors:    run.Errors,
		}
	}
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	r.Header(fmt.Sprintf("Runs of %s", source))
	if len(runs) == 0 {
		r.Muted("No runs recorded")
		return nil
	}
	t := historyTable()
	t.AppendHeader(table.Row{"Started", "Columns", "Failed", "Failed columns"})
	for _, run := range runs {
		t.AppendRow(table.Row{run.StartedAt.Local().Format(timeFormat), run.Columns, run.Failed, run.Errors})
	}
	renderHistoryTable(r, t)
	return nil
}

const timeFormat = "2006-01-02 15:04:05"

func historyTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	return t
}

func renderHistoryTable(r *output.Renderer, t table.Writer) {
	if r.EffectiveMode() == output.ModeText {
		r.Println(t.Render())
		return
	}
	r.Println(t.RenderMarkdown())
}
