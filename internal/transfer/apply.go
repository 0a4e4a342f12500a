package transfer

import (
	xstar "github.com/leapstack-labs/leapxfer/internal/starlark"
	"github.com/leapstack-labs/leapxfer/pkg/core"
	"go.starlark.net/starlark"
)

// resolved is a rule bound to what it will run.
type resolved struct {
	kind Resolution
	conv core.Conversion
	fn   starlark.Callable
}

func (e *Engine) resolve(column string) resolved {
	rule := e.rules[column]
	tag := e.types[column]

	if c, ok := core.ParseConversion(string(rule)); ok {
		if c.Matches(tag) {
			return resolved{kind: Skipped, conv: c}
		}
		return resolved{kind: Builtin, conv: c}
	}
	if t, ok := core.ParseTypeTag(string(rule)); ok && t == tag {
		return resolved{kind: Skipped}
	}
	if fn, ok := e.registry.Lookup(string(rule)); ok {
		return resolved{kind: User, fn: fn}
	}
	return resolved{kind: Unresolved}
}

// Resolution reports what Apply will do with column's current rule.
func (e *Engine) Resolution(column string) (Resolution, error) {
	if err := e.check(column); err != nil {
		return Unresolved, err
	}
	return e.resolve(column).kind, nil
}

// Apply runs every column's rule against a copy of the table and returns
// the copy with ignored columns removed. The held table is never modified.
//
// A conversion that fails for any value leaves the whole column with its
// original values; the failure is available from Error and Errors until
// the next Apply. Calling Apply again with unchanged state gives the same
// result.
func (e *Engine) Apply() *core.Table {
	out := e.table.Clone()
	e.errors = make(map[string]*ColumnTransferError)

	for _, col := range out.Columns() {
		r := e.resolve(col.Name)
		rule := e.rules[col.Name]

		var values []core.Value
		var cerr *ColumnTransferError
		switch r.kind {
		case Skipped:
			continue
		case Unresolved:
			e.logger.Debug("rule matches no transfer", "column", col.Name, "rule", rule)
			continue
		case Builtin:
			values, cerr = mapColumn(col, rule, builtinFunc(r.conv))
		case User:
			runner := xstar.NewRunner("transfer:"+col.Name, e.maxSteps, e.logger)
			values, cerr = mapColumn(col, rule, func(v core.Value) (core.Value, error) {
				return runner.Call(r.fn, v)
			})
		}

		if cerr != nil {
			e.errors[col.Name] = cerr
			e.logger.Warn("column transfer failed",
				"column", col.Name,
				"rule", rule,
				"row", cerr.Row,
				"error", cerr.Err)
			continue
		}
		if err := out.SetValues(col.Name, values); err != nil {
			e.errors[col.Name] = &ColumnTransferError{Column: col.Name, Rule: rule, Row: -1, Err: err}
		}
	}

	out.Drop(e.Ignored()...)
	return out
}

// mapColumn applies fn to every value, stopping at the first failure.
func mapColumn(col core.Column, rule Rule, fn convertFunc) ([]core.Value, *ColumnTransferError) {
	values := make([]core.Value, len(col.Values))
	for i, v := range col.Values {
		nv, err := fn(v)
		if err != nil {
			return nil, &ColumnTransferError{
				Column: col.Name,
				Rule:   rule,
				Row:    i,
				Value:  v,
				Err:    err,
			}
		}
		values[i] = nv
	}
	return values, nil
}
