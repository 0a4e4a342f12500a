package transfer

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapxfer/internal/userfunc"
	"github.com/leapstack-labs/leapxfer/pkg/core"
)

// ErrFloatConversion replaces the parse error of a failed Float conversion.
var ErrFloatConversion = errors.New("Conversion to float failed.") //nolint:revive,staticcheck // user-facing message

// UnknownColumnError is returned when an operation names a column that is
// not in the current table.
type UnknownColumnError struct {
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q", e.Column)
}

// ScriptLoadError is returned when the transfer script cannot be executed.
// The engine stays usable with its previous (or an empty) function set.
type ScriptLoadError struct {
	Path string
	Err  error
}

func (e *ScriptLoadError) Error() string {
	var le *userfunc.LoadError
	if errors.As(e.Err, &le) {
		return "failed to load transfer functions: " + le.Error()
	}
	return fmt.Sprintf("failed to load transfer functions from %s: %v", e.Path, e.Err)
}

func (e *ScriptLoadError) Unwrap() error { return e.Err }

// ColumnTransferError records why a column kept its original values.
// It is stored in the error report and never returned from Apply.
type ColumnTransferError struct {
	Column string
	Rule   Rule
	Row    int
	Value  core.Value
	Err    error
}

// Error returns the message of the failing conversion.
func (e *ColumnTransferError) Error() string {
	return e.Err.Error()
}

func (e *ColumnTransferError) Unwrap() error { return e.Err }

// Detail describes the failure including the offending row.
func (e *ColumnTransferError) Detail() string {
	return fmt.Sprintf("column %q rule %q row %d (%v): %v", e.Column, e.Rule, e.Row, e.Value, e.Err)
}
