package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/leapstack-labs/leapxfer/internal/cli/output"
	"github.com/leapstack-labs/leapxfer/internal/transfer"
	"github.com/spf13/cobra"
)

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules <file> [column]",
		Short: "List columns with their inferred type and transfer rule",
		Long: `List every column of a file with its inferred type, current rule and how
the rule resolves. With a column name, also list the rules that can be
applied to it.

Resolution is one of:
  skipped     the rule matches the inferred type, values pass through
  builtin     a builtin conversion runs
  user        a function from the transfer script runs
  unresolved  the rule names nothing; the column passes through unchanged

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List all columns
  leapxfer rules data.csv

  # Show the applicable rules for one column
  leapxfer rules data.csv amount

  # Output as JSON
  leapxfer rules data.csv -o json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			column := ""
			if len(args) > 1 {
				column = args[1]
			}
			return runRules(cmd, args[0], column)
		},
	}
	return cmd
}

func runRules(cmd *cobra.Command, path, column string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	s, err := cmdCtx.openSession(cmd.Context(), path, cmdCtx.Cfg.Loader)
	if err != nil {
		return err
	}
	s.Engine.Apply()

	info, err := describeColumns(s.Engine, column)
	if err != nil {
		return err
	}
	out := output.RulesOutput{
		Source:        s.Source,
		Rows:          s.Engine.Table().Len(),
		Columns:       info,
		UserFunctions: s.Engine.UserFunctions(),
	}
	if out.UserFunctions == nil {
		out.UserFunctions = []string{}
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeText:
		return rulesText(r, out, column != "")
	default:
		return rulesMarkdown(r, out, column != "")
	}
}

// describeColumns collects column info, for one column when column is set.
func describeColumns(e *transfer.Engine, column string) ([]output.ColumnInfo, error) {
	var infos []output.ColumnInfo
	for _, col := range e.Columns() {
		if column != "" && col.Name != column {
			continue
		}
		rule, _ := e.Rule(col.Name)
		res, _ := e.Resolution(col.Name)
		ignored, _ := e.IsIgnored(col.Name)
		msg, _ := e.Error(col.Name)
		ci := output.ColumnInfo{
			Name:       col.Name,
			Inferred:   col.Inferred.String(),
			Rule:       string(rule),
			Resolution: res.String(),
			Ignored:    ignored,
			Error:      msg,
		}
		if column != "" {
			applicable, _ := e.ApplicableRules(col.Name)
			for _, a := range applicable {
				ci.Applicable = append(ci.Applicable, string(a))
			}
		}
		infos = append(infos, ci)
	}
	if column != "" && len(infos) == 0 {
		return nil, &transfer.UnknownColumnError{Column: column}
	}
	return infos, nil
}

func rulesTable(out output.RulesOutput) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row{"Column", "Inferred", "Rule", "Resolution", "Ignored", "Error"})
	for _, c := range out.Columns {
		ignored := ""
		if c.Ignored {
			ignored = "yes"
		}
		t.AppendRow(table.Row{c.Name, c.Inferred, c.Rule, c.Resolution, ignored, c.Error})
	}
	return t
}

// rulesText outputs columns in styled text format.
func rulesText(r *output.Renderer, out output.RulesOutput, detail bool) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("%s (%d rows, %d columns)", out.Source, out.Rows, len(out.Columns))))
	r.Println("")
	r.Println(rulesTable(out).Render())

	if detail {
		c := out.Columns[0]
		r.Println("")
		r.Println(styles.Header2.Render("Applicable rules"))
		for _, a := range c.Applicable {
			marker := "  "
			if a == c.Rule {
				marker = styles.Success.Render("* ")
			}
			r.Println("  " + marker + a)
		}
	}

	r.Println("")
	if len(out.UserFunctions) == 0 {
		r.Println(styles.Muted.Render("No user functions loaded"))
	} else {
		r.Println(styles.Muted.Render("User functions: " + strings.Join(out.UserFunctions, ", ")))
	}
	return nil
}

// rulesMarkdown outputs columns in markdown format.
func rulesMarkdown(r *output.Renderer, out output.RulesOutput, detail bool) error {
	r.Println(output.FormatHeader(1, "Columns"))
	r.Println(output.FormatKeyValue("Source", out.Source))
	r.Println(output.FormatKeyValue("Rows", fmt.Sprintf("%d", out.Rows)))
	r.Println("")
	r.Println(rulesTable(out).RenderMarkdown())

	if detail {
		r.Println("")
		r.Println(output.FormatHeader(2, "Applicable rules"))
		for _, a := range out.Columns[0].Applicable {
			r.Printf("- `%s`\n", a)
		}
	}

	r.Println("")
	r.Println(output.FormatHeader(2, "User functions"))
	if len(out.UserFunctions) == 0 {
		r.Println("_none_")
	}
	for _, name := range out.UserFunctions {
		r.Printf("- `%s`\n", name)
	}
	return nil
}
