package commands

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"

	"github.com/leapstack-labs/leapxfer/internal/cli/output"
	"github.com/leapstack-labs/leapxfer/internal/userfunc"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Apply remembered rules to files and report failed columns",
		Long: `Load each file, apply the rules remembered for it and report every column
whose transfer failed. Files are processed concurrently.

The command exits with an error when any file fails to load or any
column fails to transfer.`,
		Example: `  # Check a batch of exports
  leapxfer check exports/*.csv

  # Limit concurrency and emit JSON
  leapxfer check --jobs 2 -o json a.csv b.xlsx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, jobs)
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0), "Number of files processed at once")

	return cmd
}

func runCheck(cmd *cobra.Command, paths []string, jobs int) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	r := cmdCtx.Renderer

	// Report a broken script once instead of once per file.
	if _, err := userfunc.Load(cmdCtx.Cfg.TransfersPath, cmdCtx.Logger); err != nil {
		r.Warning(err.Error())
	}

	results := checkFiles(cmd.Context(), cmdCtx, paths, jobs)

	out := output.CheckOutput{Results: results}
	for _, res := range results {
		if res.OK() {
			out.Passed++
		} else {
			out.Failed++
		}
	}

	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(out); err != nil {
			return err
		}
	} else {
		renderCheck(r, out)
	}

	if out.Failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", out.Failed, len(results))
	}
	return nil
}

// checkFiles applies rules to every path with at most jobs files in flight.
// Results keep the order of paths.
func checkFiles(ctx context.Context, cmdCtx *CommandContext, paths []string, jobs int) []output.CheckResult {
	quiet := *cmdCtx
	quiet.Renderer = output.NewRenderer(io.Discard, io.Discard, output.ModeText)

	results := make([]output.CheckResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range paths {
		g.Go(func() error {
			results[i] = checkFile(gctx, &quiet, path)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func checkFile(ctx context.Context, cmdCtx *CommandContext, path string) output.CheckResult {
	res := output.CheckResult{Source: path}
	s, err := cmdCtx.openSession(ctx, path, cmdCtx.Cfg.Loader)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Source = s.Source

	out := s.Apply()
	res.Rows = out.Len()
	res.Columns = len(s.Engine.Columns())
	for _, e := range s.Engine.Errors() {
		if res.Failed == nil {
			res.Failed = map[string]string{}
		}
		res.Failed[e.Column] = e.Error()
	}
	cmdCtx.Logger.Debug("checked file", "source", res.Source, "failed", len(res.Failed))
	return res
}

func renderCheck(r *output.Renderer, out output.CheckOutput) {
	styles := r.Styles()
	text := r.EffectiveMode() == output.ModeText

	if text {
		for _, res := range out.Results {
			r.StatusLine(res.Source, res.OK(), checkDetail(res))
			for _, col := range sortedKeys(res.Failed) {
				r.Printf("       %s: %s\n", styles.Column.Render(col), res.Failed[col])
			}
		}
		r.Println("")
		r.Println(styles.Bold.Render(fmt.Sprintf("%d passed, %d failed", out.Passed, out.Failed)))
		return
	}

	r.Println(output.FormatHeader(1, "Check Results"))
	for _, res := range out.Results {
		mark := "ok"
		if !res.OK() {
			mark = "FAIL"
		}
		r.Printf("- **%s** `%s` %s\n", mark, res.Source, checkDetail(res))
		for _, col := range sortedKeys(res.Failed) {
			r.Printf("  - `%s`: %s\n", col, res.Failed[col])
		}
	}
	r.Println("")
	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Passed", fmt.Sprintf("%d", out.Passed)))
	r.Println(output.FormatKeyValue("Failed", fmt.Sprintf("%d", out.Failed)))
}

func checkDetail(res output.CheckResult) string {
	if res.Error != "" {
		return res.Error
	}
	return fmt.Sprintf("%d rows, %d columns", res.Rows, res.Columns)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
