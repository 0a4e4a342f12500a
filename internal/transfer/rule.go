package transfer

import (
	"github.com/leapstack-labs/leapxfer/pkg/core"
)

// Rule identifies the transfer chosen for a column: a builtin label such as
// "Int", an inferred type label such as "datetime", or the name of a user
// function. Builtin labels take precedence over user functions of the same name.
type Rule string

// BuiltinRule returns the rule for a builtin conversion.
func BuiltinRule(c core.Conversion) Rule {
	return Rule(c.String())
}

// DefaultRule returns the rule a column gets when first seen: the builtin
// equivalent to its inferred type, or the type label itself when no builtin
// matches. Either way applying it is a no-op.
func DefaultRule(t core.TypeTag) Rule {
	if c, ok := core.ConversionFor(t); ok {
		return BuiltinRule(c)
	}
	return Rule(t.String())
}

// normalize maps builtin aliases to their canonical label.
func normalize(r Rule) Rule {
	if c, ok := core.ParseConversion(string(r)); ok {
		return BuiltinRule(c)
	}
	return r
}

// Resolution describes what Apply will do with a column's rule.
type Resolution int

const (
	// Skipped means the rule is equivalent to the inferred type.
	Skipped Resolution = iota
	// Builtin means a builtin conversion runs.
	Builtin
	// User means a user function runs.
	User
	// Unresolved means the rule names nothing known; the column passes through.
	Unresolved
)

func (r Resolution) String() string {
	switch r {
	case Skipped:
		return "skipped"
	case Builtin:
		return "builtin"
	case User:
		return "user"
	case Unresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}
