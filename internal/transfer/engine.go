// Package transfer converts the columns of an imported table.
//
// An Engine holds a table together with one rule and one ignore flag per
// column. Apply runs every rule against a copy of the table; a rule that
// fails for any value leaves that column untouched and records the error,
// so one bad column never spoils the rest of the import.
//
// An Engine is not safe for concurrent use.
package transfer

import (
	"log/slog"
	"slices"

	xstar "github.com/leapstack-labs/leapxfer/internal/starlark"
	"github.com/leapstack-labs/leapxfer/internal/userfunc"
	"github.com/leapstack-labs/leapxfer/pkg/core"
)

// ColumnDescriptor pairs a column with its inferred type.
type ColumnDescriptor struct {
	Name     string
	Inferred core.TypeTag
}

// Engine holds transfer state for one table.
type Engine struct {
	table      *core.Table
	types      map[string]core.TypeTag
	rules      map[string]Rule
	ignore     map[string]bool
	errors     map[string]*ColumnTransferError
	registry   *userfunc.Registry
	scriptPath string
	maxSteps   uint64
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxSteps bounds every user function call. Zero means unbounded.
func WithMaxSteps(n uint64) Option {
	return func(e *Engine) { e.maxSteps = n }
}

// New creates an engine for tbl and loads user functions from scriptPath,
// creating an empty script there if none exists.
//
// The engine is always returned. If the script fails to load the error is
// a *ScriptLoadError and the engine starts with no user functions.
func New(tbl *core.Table, scriptPath string, opts ...Option) (*Engine, error) {
	e := &Engine{
		rules:      make(map[string]Rule),
		ignore:     make(map[string]bool),
		errors:     make(map[string]*ColumnTransferError),
		registry:   userfunc.Empty(scriptPath),
		scriptPath: scriptPath,
		maxSteps:   xstar.DefaultMaxSteps,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	err := e.ReloadUserFunctions()
	e.UpdateTable(tbl)
	if err != nil {
		return e, err
	}
	return e, nil
}

// UpdateTable replaces the held table and reconciles per-column state.
// New columns get their default rule and are not ignored; columns that
// disappeared lose their state; rules of surviving columns are kept.
// The error report is cleared.
func (e *Engine) UpdateTable(tbl *core.Table) {
	if tbl == nil {
		tbl = core.Empty()
	}
	e.table = tbl
	e.types = core.InferTypes(tbl)
	e.errors = make(map[string]*ColumnTransferError)

	var added, removed []string
	for _, name := range tbl.ColumnNames() {
		if _, ok := e.rules[name]; ok {
			continue
		}
		e.rules[name] = DefaultRule(e.types[name])
		e.ignore[name] = false
		added = append(added, name)
	}
	for name := range e.rules {
		if tbl.Has(name) {
			continue
		}
		delete(e.rules, name)
		delete(e.ignore, name)
		removed = append(removed, name)
	}
	slices.Sort(removed)

	e.logger.Debug("table reconciled",
		"columns", tbl.Width(),
		"rows", tbl.Len(),
		"added", added,
		"removed", removed)
}

// Table returns the held, untransformed table.
func (e *Engine) Table() *core.Table {
	return e.table
}

// ScriptPath returns the path of the user transfer script.
func (e *Engine) ScriptPath() string {
	return e.scriptPath
}

// ReloadUserFunctions re-executes the transfer script. On failure the
// previous functions stay in place and a *ScriptLoadError is returned.
// Rules naming functions that no longer exist become unresolved.
func (e *Engine) ReloadUserFunctions() error {
	reg, err := userfunc.Load(e.scriptPath, e.logger)
	if err != nil {
		e.logger.Warn("transfer script failed to load", "path", e.scriptPath, "error", err)
		return &ScriptLoadError{Path: e.scriptPath, Err: err}
	}
	e.registry = reg
	return nil
}

// UserFunctions returns the names of the loaded user functions, sorted.
func (e *Engine) UserFunctions() []string {
	return e.registry.Names()
}

func (e *Engine) check(column string) error {
	if !e.table.Has(column) {
		return &UnknownColumnError{Column: column}
	}
	return nil
}

// SetRule sets the rule for column. Builtin aliases are stored under their
// canonical label; an empty rule restores the default. The rule takes
// effect on the next Apply.
func (e *Engine) SetRule(column string, rule Rule) error {
	if err := e.check(column); err != nil {
		return err
	}
	if rule == "" {
		rule = DefaultRule(e.types[column])
	}
	e.rules[column] = normalize(rule)
	return nil
}

// SetIgnore sets whether column is dropped from Apply output.
func (e *Engine) SetIgnore(column string, ignore bool) error {
	if err := e.check(column); err != nil {
		return err
	}
	e.ignore[column] = ignore
	return nil
}

// Rule returns the current rule for column.
func (e *Engine) Rule(column string) (Rule, error) {
	if err := e.check(column); err != nil {
		return "", err
	}
	return e.rules[column], nil
}

// IsIgnored reports whether column is dropped from Apply output.
func (e *Engine) IsIgnored(column string) (bool, error) {
	if err := e.check(column); err != nil {
		return false, err
	}
	return e.ignore[column], nil
}

// Error returns the message recorded for column by the last Apply, or ""
// when the column transferred cleanly.
func (e *Engine) Error(column string) (string, error) {
	if err := e.check(column); err != nil {
		return "", err
	}
	if cerr, ok := e.errors[column]; ok {
		return cerr.Error(), nil
	}
	return "", nil
}

// Errors returns the failures of the last Apply in table order.
func (e *Engine) Errors() []*ColumnTransferError {
	var out []*ColumnTransferError
	for _, name := range e.table.ColumnNames() {
		if cerr, ok := e.errors[name]; ok {
			out = append(out, cerr)
		}
	}
	return out
}

// InferredType returns the inferred type of column.
func (e *Engine) InferredType(column string) (core.TypeTag, error) {
	if err := e.check(column); err != nil {
		return core.TypeMixed, err
	}
	return e.types[column], nil
}

// Columns describes every column of the held table in order.
func (e *Engine) Columns() []ColumnDescriptor {
	names := e.table.ColumnNames()
	out := make([]ColumnDescriptor, len(names))
	for i, name := range names {
		out[i] = ColumnDescriptor{Name: name, Inferred: e.types[name]}
	}
	return out
}

// Rules returns a snapshot of every column's rule.
func (e *Engine) Rules() map[string]Rule {
	out := make(map[string]Rule, len(e.rules))
	for k, v := range e.rules {
		out[k] = v
	}
	return out
}

// Ignored returns the ignored columns in table order.
func (e *Engine) Ignored() []string {
	var out []string
	for _, name := range e.table.ColumnNames() {
		if e.ignore[name] {
			out = append(out, name)
		}
	}
	return out
}

// ApplicableRules lists the rules that can be offered for column: the
// inferred type label when no builtin is equivalent to it, then every
// builtin label, then every user function.
func (e *Engine) ApplicableRules(column string) ([]Rule, error) {
	if err := e.check(column); err != nil {
		return nil, err
	}
	users := e.registry.Names()
	out := make([]Rule, 0, 1+len(core.Conversions())+len(users))

	tag := e.types[column]
	if _, ok := core.ConversionFor(tag); !ok {
		if _, isUser := e.registry.Lookup(tag.String()); !isUser {
			out = append(out, Rule(tag.String()))
		}
	}
	for _, c := range core.Conversions() {
		out = append(out, BuiltinRule(c))
	}
	for _, name := range users {
		if _, shadowed := core.ParseConversion(name); shadowed {
			continue
		}
		out = append(out, Rule(name))
	}
	return out, nil
}
