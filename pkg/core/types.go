package core

import "strings"

// TypeTag is the inferred type of a column. The set is closed.
type TypeTag int

// Inferred column types. Datetime, Mixed and Empty have no builtin
// conversion equivalent.
const (
	TypeEmpty TypeTag = iota
	TypeInteger
	TypeFloating
	TypeBoolean
	TypeString
	TypeUnicode
	TypeDatetime
	TypeMixed
)

var typeTagNames = [...]string{
	TypeEmpty:    "empty",
	TypeInteger:  "integer",
	TypeFloating: "floating",
	TypeBoolean:  "boolean",
	TypeString:   "string",
	TypeUnicode:  "unicode",
	TypeDatetime: "datetime",
	TypeMixed:    "mixed",
}

// String returns the inference label, e.g. "integer".
func (t TypeTag) String() string {
	if t < 0 || int(t) >= len(typeTagNames) {
		return "mixed"
	}
	return typeTagNames[t]
}

// ParseTypeTag maps an inference label back to its tag.
func ParseTypeTag(s string) (TypeTag, bool) {
	for i, name := range typeTagNames {
		if name == s {
			return TypeTag(i), true
		}
	}
	return TypeMixed, false
}

// Conversion is a builtin transfer. The set is closed.
type Conversion int

// Builtin transfers, in the order they are offered to users.
const (
	ConvInt Conversion = iota + 1
	ConvFloat
	ConvString
	ConvUnicode
	ConvBoolean
)

// conversionTable links each builtin to its label, accepted aliases and the
// inferred type it is equivalent to. It is the only place this mapping lives.
var conversionTable = []struct {
	conv    Conversion
	label   string
	aliases []string
	tag     TypeTag
}{
	{ConvInt, "Int", nil, TypeInteger},
	{ConvFloat, "Float", nil, TypeFloating},
	{ConvString, "String", nil, TypeString},
	{ConvUnicode, "Unicode (from utf-8)", []string{"Unicode"}, TypeUnicode},
	{ConvBoolean, "Boolean", []string{"Bool"}, TypeBoolean},
}

// Conversions returns every builtin in display order.
func Conversions() []Conversion {
	out := make([]Conversion, len(conversionTable))
	for i, row := range conversionTable {
		out[i] = row.conv
	}
	return out
}

// String returns the display label, e.g. "Int".
func (c Conversion) String() string {
	for _, row := range conversionTable {
		if row.conv == c {
			return row.label
		}
	}
	return ""
}

// Equivalent returns the inferred type this builtin produces.
func (c Conversion) Equivalent() TypeTag {
	for _, row := range conversionTable {
		if row.conv == c {
			return row.tag
		}
	}
	return TypeMixed
}

// Matches reports whether applying c to a column of type t would be an identity.
func (c Conversion) Matches(t TypeTag) bool {
	return c.Equivalent() == t
}

// ParseConversion resolves a label or alias to a builtin.
// Matching is exact on labels and case-insensitive on aliases.
func ParseConversion(s string) (Conversion, bool) {
	for _, row := range conversionTable {
		if row.label == s {
			return row.conv, true
		}
		for _, alias := range row.aliases {
			if strings.EqualFold(alias, s) {
				return row.conv, true
			}
		}
	}
	return 0, false
}

// ConversionFor returns the builtin equivalent to an inferred type, if any.
func ConversionFor(t TypeTag) (Conversion, bool) {
	for _, row := range conversionTable {
		if row.tag == t {
			return row.conv, true
		}
	}
	return 0, false
}
