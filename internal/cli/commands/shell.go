package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapxfer/internal/loader"
	"github.com/leapstack-labs/leapxfer/internal/preset"
	"github.com/leapstack-labs/leapxfer/internal/preview"
	"github.com/leapstack-labs/leapxfer/internal/transfer"
	"github.com/spf13/cobra"
)

const shellPrompt = "leapxfer> "

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell <file>",
		Short: "Interactively choose transfer rules for a file",
		Long: `Open a file and choose column rules interactively. Every change is applied
immediately and the preview is shown again.

Type 'help' inside the shell for the list of commands.`,
		Example: `  leapxfer shell data.csv`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, args[0])
		},
	}
}

func runShell(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	s, err := cmdCtx.openSession(ctx, path, cmdCtx.Cfg.Loader)
	if err != nil {
		return err
	}
	sh := newShell(s, cmd.OutOrStdout(), cmd.ErrOrStderr())

	// History lives next to the transfer script.
	historyFile := filepath.Join(filepath.Dir(cmdCtx.Cfg.TransfersPath), "shell_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    sh.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(sh.out, "leapxfer shell (%s, %d columns)\n", s.Source, len(s.Engine.Columns()))
	_, _ = fmt.Fprintln(sh.out, "Type help for commands, quit to exit")
	_, _ = fmt.Fprintln(sh.out)
	sh.show()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if sh.exec(ctx, line) {
			break
		}
		// Columns may change after set or reload.
		rl.Config.AutoComplete = sh.completer()
	}
	return nil
}

// shell executes session commands. It is separate from readline so the
// command set can be driven from tests.
type shell struct {
	s    *session
	out  io.Writer
	errw io.Writer
	rows int
}

func newShell(s *session, out, errw io.Writer) *shell {
	return &shell{s: s, out: out, errw: errw, rows: s.cmdCtx.Cfg.PreviewRows}
}

func (sh *shell) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(sh.out, format, a...)
}

func (sh *shell) fail(err error) {
	_, _ = fmt.Fprintf(sh.errw, "Error: %v\n", err)
}

// exec runs one command line and reports whether the shell should exit.
func (sh *shell) exec(ctx context.Context, line string) bool {
	args, err := splitArgs(line)
	if err != nil {
		sh.fail(err)
		return false
	}
	if len(args) == 0 {
		return false
	}
	e := sh.s.Engine
	verb := strings.ToLower(args[0])

	switch verb {
	case "quit", "exit":
		return true

	case "help":
		printShellHelp(sh.out)

	case "columns":
		sh.columns()

	case "rule":
		if len(args) < 2 {
			sh.fail(errors.New("usage: rule <column> [rule]"))
			return false
		}
		if len(args) == 2 {
			applicable, err := e.ApplicableRules(args[1])
			if err != nil {
				sh.fail(err)
				return false
			}
			current, _ := e.Rule(args[1])
			for _, a := range applicable {
				marker := "  "
				if a == current {
					marker = "* "
				}
				sh.printf("%s%s\n", marker, a)
			}
			return false
		}
		if err := e.SetRule(args[1], transfer.Rule(strings.Join(args[2:], " "))); err != nil {
			sh.fail(err)
			return false
		}
		sh.show()

	case "ignore", "unignore":
		if len(args) < 2 {
			sh.fail(fmt.Errorf("usage: %s <column>", verb))
			return false
		}
		for _, col := range args[1:] {
			if err := e.SetIgnore(col, verb == "ignore"); err != nil {
				sh.fail(err)
				return false
			}
		}
		sh.show()

	case "apply", "preview":
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				sh.fail(fmt.Errorf("invalid row count %q", args[1]))
				return false
			}
			sh.rows = n
		}
		sh.show()

	case "errors":
		errs := e.Errors()
		if len(errs) == 0 {
			sh.printf("No transfer errors\n")
			return false
		}
		if err := preview.RenderErrors(sh.out, errs, preview.FormatText); err != nil {
			sh.fail(err)
		}

	case "functions":
		names := e.UserFunctions()
		if len(names) == 0 {
			sh.printf("No user functions in %s\n", e.ScriptPath())
			return false
		}
		sh.printf("%s\n", strings.Join(names, "\n"))

	case "reload":
		if err := e.ReloadUserFunctions(); err != nil {
			sh.fail(err)
			return false
		}
		sh.printf("Loaded %d user function(s)\n", len(e.UserFunctions()))
		sh.show()

	case "options":
		sh.options()

	case "set":
		if len(args) < 3 {
			sh.fail(errors.New("usage: set <option> <value>"))
			return false
		}
		opts, err := setLoaderOption(sh.s.Options, args[1], strings.Join(args[2:], " "))
		if err != nil {
			sh.fail(err)
			return false
		}
		if err := sh.s.Reload(ctx, opts); err != nil {
			sh.fail(err)
			return false
		}
		sh.show()

	case "save":
		if err := sh.s.Remember(); err != nil {
			sh.fail(err)
			return false
		}
		sh.printf("Rules saved for %s\n", sh.s.Source)

	case "export":
		if len(args) != 2 {
			sh.fail(errors.New("usage: export <preset.yaml>"))
			return false
		}
		p := preset.Capture(e, sh.s.Source)
		if err := preset.Save(args[1], p); err != nil {
			sh.fail(err)
			return false
		}
		sh.printf("Wrote %d column rule(s) to %s\n", len(p.Columns), args[1])

	case "load":
		if len(args) != 2 {
			sh.fail(errors.New("usage: load <preset.yaml>"))
			return false
		}
		if err := sh.s.applyPreset(args[1]); err != nil {
			sh.fail(err)
			return false
		}
		sh.show()

	default:
		sh.fail(fmt.Errorf("unknown command: %s (type help for commands)", args[0]))
	}
	return false
}

// show applies the rules and prints the preview and any failed columns.
func (sh *shell) show() {
	out := sh.s.Apply()
	if err := preview.Render(sh.out, out, preview.Options{Rows: sh.rows, Format: preview.FormatText}); err != nil {
		sh.fail(err)
		return
	}
	for _, e := range sh.s.Engine.Errors() {
		_, _ = fmt.Fprintf(sh.errw, "! %s: %s\n", e.Column, e.Detail())
	}
}

func (sh *shell) columns() {
	e := sh.s.Engine
	for _, col := range e.Columns() {
		rule, _ := e.Rule(col.Name)
		res, _ := e.Resolution(col.Name)
		flags := ""
		if ignored, _ := e.IsIgnored(col.Name); ignored {
			flags = " (ignored)"
		}
		sh.printf("%-20s %-10s %-24s %s%s\n", col.Name, col.Inferred, rule, res, flags)
	}
}

func (sh *shell) options() {
	o := sh.s.Options
	sh.printf("format       %s\n", o.Format)
	sh.printf("delimiter    %q\n", o.Delimiter)
	sh.printf("header_row   %d\n", o.HeaderRow)
	sh.printf("parse_dates  %t\n", o.ParseDates)
	sh.printf("index_columns %v\n", o.IndexColumns)
	sh.printf("widths       %v\n", o.Widths)
	sh.printf("sheet        %s\n", o.Sheet)
}

// setLoaderOption returns a copy of opts with one option changed.
func setLoaderOption(opts loader.Options, name, value string) (loader.Options, error) {
	switch strings.ReplaceAll(name, "-", "_") {
	case "format":
		opts.Format = loader.Format(value)
	case "delimiter":
		opts.Delimiter = value
	case "header_row", "header":
		if value == "none" {
			opts.HeaderRow = loader.NoHeader
			break
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return opts, fmt.Errorf("invalid header_row %q", value)
		}
		opts.HeaderRow = n
	case "parse_dates":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return opts, fmt.Errorf("invalid parse_dates %q", value)
		}
		opts.ParseDates = b
	case "index_columns", "index":
		cols, err := parseInts(value)
		if err != nil {
			return opts, fmt.Errorf("invalid index_columns: %w", err)
		}
		opts.IndexColumns = cols
	case "widths":
		widths, err := parseInts(value)
		if err != nil {
			return opts, fmt.Errorf("invalid widths: %w", err)
		}
		opts.Widths = widths
	case "sheet":
		opts.Sheet = value
	default:
		return opts, fmt.Errorf("unknown option %q", name)
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// parseInts parses "1,2 3" into integers. "none" or an empty value clears.
func parseInts(s string) ([]int, error) {
	if s == "none" {
		return nil, nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", f)
		}
		out = append(out, n)
	}
	return out, nil
}

// splitArgs splits a command line on spaces. Double quotes group words.
func splitArgs(line string) ([]string, error) {
	var args []string
	var cur strings.Builder
	inQuote, hasArg := false, false
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			hasArg = true
		case (r == ' ' || r == '\t') && !inQuote:
			if hasArg {
				args = append(args, cur.String())
				cur.Reset()
				hasArg = false
			}
		default:
			cur.WriteRune(r)
			hasArg = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	if hasArg {
		args = append(args, cur.String())
	}
	return args, nil
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  columns                 List columns with type, rule and resolution
  rule <column>           List the rules applicable to a column
  rule <column> <rule>    Set a column rule (empty restores the default)
  ignore <column>...      Drop columns from the output
  unignore <column>...    Keep columns in the output
  apply [rows]            Apply the rules and show the preview
  errors                  Show the columns that failed to transfer
  functions               List user functions
  reload                  Reload the transfer script
  options                 Show loader options
  set <option> <value>    Change a loader option and re-import the file
  save                    Remember the rules for this file
  export <preset.yaml>    Write the rules to a preset
  load <preset.yaml>      Apply a preset
  help                    Show this help message
  quit / exit             Exit the shell

Tips:
  - Quote column names with spaces: rule "unit price" Float
  - Tab completion works for commands and column names
`
	_, _ = fmt.Fprintln(w, help)
}

// completer creates a readline completer for commands and column names.
func (sh *shell) completer() *readline.PrefixCompleter {
	var cols []readline.PrefixCompleterInterface
	for _, c := range sh.s.Engine.Columns() {
		name := c.Name
		if strings.ContainsAny(name, " \t") {
			name = `"` + name + `"`
		}
		cols = append(cols, readline.PcItem(name))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("columns"),
		readline.PcItem("rule", cols...),
		readline.PcItem("ignore", cols...),
		readline.PcItem("unignore", cols...),
		readline.PcItem("apply"),
		readline.PcItem("errors"),
		readline.PcItem("functions"),
		readline.PcItem("reload"),
		readline.PcItem("options"),
		readline.PcItem("set",
			readline.PcItem("format"),
			readline.PcItem("delimiter"),
			readline.PcItem("header_row"),
			readline.PcItem("parse_dates"),
			readline.PcItem("index_columns"),
			readline.PcItem("widths"),
			readline.PcItem("sheet"),
		),
		readline.PcItem("save"),
		readline.PcItem("export"),
		readline.PcItem("load"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
		readline.PcItem("exit"),
	)
}
