// Package starlark runs user transfer functions written in Starlark.
//
// Cell values cross the boundary as scalars only: None, int, float, bool,
// string, bytes and time.time. Anything else a function returns is an error,
// which aborts the column being transferred.
package starlark

import (
	"fmt"
	"math"
	"time"

	"github.com/leapstack-labs/leapxfer/pkg/core"
	starlarktime "go.starlark.net/lib/time"
	"go.starlark.net/starlark"
)

// ToStarlark converts a cell value to a Starlark value.
// Supported types: nil, string, []byte, int, int32, int64, float32, float64, bool, time.Time
func ToStarlark(v core.Value) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}

	switch val := v.(type) {
	case string:
		return starlark.String(val), nil

	case []byte:
		return starlark.Bytes(val), nil

	case int:
		return starlark.MakeInt(val), nil

	case int32:
		return starlark.MakeInt64(int64(val)), nil

	case int64:
		return starlark.MakeInt64(val), nil

	case float32:
		return starlark.Float(val), nil

	case float64:
		return starlark.Float(val), nil

	case bool:
		return starlark.Bool(val), nil

	case time.Time:
		return starlarktime.Time(val), nil

	default:
		return nil, fmt.Errorf("unsupported cell type: %T", v)
	}
}

// FromStarlark converts a Starlark value back to a cell value.
// Returns: nil, string, int64, float64, bool or time.Time
func FromStarlark(v starlark.Value) (core.Value, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil

	case starlark.String:
		return string(val), nil

	case starlark.Bytes:
		return string(val), nil

	case starlark.Int:
		i64, ok := val.Int64()
		if !ok {
			return nil, fmt.Errorf("integer %s out of range", val.String())
		}
		return i64, nil

	case starlark.Float:
		return float64(val), nil

	case starlark.Bool:
		return bool(val), nil

	case starlarktime.Time:
		return time.Time(val), nil

	default:
		return nil, fmt.Errorf("unsupported result type: %s", v.Type())
	}
}

// Truth reports the Starlark truth value of a cell, matching bool(x) in scripts.
// NaN is truthy, as in Starlark.
func Truth(v core.Value) bool {
	switch val := v.(type) {
	case nil:
		return false
	case float64:
		return val != 0 || math.IsNaN(val)
	}
	sv, err := ToStarlark(v)
	if err != nil {
		return true
	}
	return bool(sv.Truth())
}
