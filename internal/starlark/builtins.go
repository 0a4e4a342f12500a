package starlark

import (
	"math"

	"github.com/leapstack-labs/leapxfer/internal/coerce"
	starlarkjson "go.starlark.net/lib/json"
	starlarkmath "go.starlark.net/lib/math"
	starlarktime "go.starlark.net/lib/time"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// Predeclared returns the globals visible to every transfer script.
//
// Besides the json, math and time modules, scripts get a few helpers for
// cleaning spreadsheet text:
//
//	parse_number("$1,234.50")  # 1234.5
//	parse_bool("yes")          # True
//	parse_date("3/5/2024")     # time.time
//	is_nan(x)                  # True for float NaN
func Predeclared() starlark.StringDict {
	return starlark.StringDict{
		"json":         starlarkjson.Module,
		"math":         starlarkmath.Module,
		"time":         starlarktime.Module,
		"struct":       starlark.NewBuiltin("struct", starlarkstruct.Make),
		"parse_number": starlark.NewBuiltin("parse_number", parseNumber),
		"parse_bool":   starlark.NewBuiltin("parse_bool", parseBool),
		"parse_date":   starlark.NewBuiltin("parse_date", parseDate),
		"is_nan":       starlark.NewBuiltin("is_nan", isNaN),
	}
}

func parseNumber(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &s); err != nil {
		return nil, err
	}
	f, err := coerce.ParseNumber(s)
	if err != nil {
		return nil, err
	}
	return starlark.Float(f), nil
}

func parseBool(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &s); err != nil {
		return nil, err
	}
	v, err := coerce.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return starlark.Bool(v), nil
}

func parseDate(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s, layout string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "s", &s, "layout?", &layout); err != nil {
		return nil, err
	}
	if layout != "" {
		t, err := coerce.ParseDateLayout(s, layout)
		if err != nil {
			return nil, err
		}
		return starlarktime.Time(t), nil
	}
	t, err := coerce.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return starlarktime.Time(t), nil
}

func isNaN(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &v); err != nil {
		return nil, err
	}
	f, ok := v.(starlark.Float)
	return starlark.Bool(ok && math.IsNaN(float64(f))), nil
}
