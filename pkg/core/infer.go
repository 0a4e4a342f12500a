package core

import (
	"time"
	"unicode/utf8"
)

// valueKind classifies a single non-missing value.
type valueKind int

const (
	kindInteger valueKind = iota
	kindFloating
	kindBoolean
	kindASCII
	kindText
	kindBytes
	kindDatetime
	kindOther
)

func kindOf(v Value) valueKind {
	switch val := v.(type) {
	case int64, int, int32:
		return kindInteger
	case float64, float32:
		return kindFloating
	case bool:
		return kindBoolean
	case string:
		if !utf8.ValidString(val) {
			return kindBytes
		}
		for i := 0; i < len(val); i++ {
			if val[i] >= utf8.RuneSelf {
				return kindText
			}
		}
		return kindASCII
	case time.Time:
		return kindDatetime
	default:
		return kindOther
	}
}

// InferType inspects the values of a column and returns its type.
// Missing values are skipped. Integers mixed with floats infer as floating;
// strings infer as unicode when at least one holds non-ASCII text and none
// hold undecodable bytes.
func InferType(values []Value) TypeTag {
	var seen [kindOther + 1]bool
	found := false
	for _, v := range values {
		if IsMissing(v) {
			continue
		}
		seen[kindOf(v)] = true
		found = true
	}
	if !found {
		return TypeEmpty
	}

	if seen[kindOther] {
		return TypeMixed
	}

	numeric := seen[kindInteger] || seen[kindFloating]
	stringy := seen[kindASCII] || seen[kindText] || seen[kindBytes]
	groups := 0
	for _, present := range []bool{numeric, seen[kindBoolean], stringy, seen[kindDatetime]} {
		if present {
			groups++
		}
	}
	if groups > 1 {
		return TypeMixed
	}

	switch {
	case numeric:
		if seen[kindFloating] {
			return TypeFloating
		}
		return TypeInteger
	case seen[kindBoolean]:
		return TypeBoolean
	case seen[kindDatetime]:
		return TypeDatetime
	default:
		if seen[kindText] && !seen[kindBytes] {
			return TypeUnicode
		}
		return TypeString
	}
}

// InferTypes returns the inferred type of every column, keyed by name.
func InferTypes(t *Table) map[string]TypeTag {
	out := make(map[string]TypeTag, t.Width())
	for _, col := range t.Columns() {
		out[col.Name] = InferType(col.Values)
	}
	return out
}
