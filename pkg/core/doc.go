// Package core defines the shared language of the leapxfer system.
//
// This package contains:
//   - The in-memory Table (ordered, named, equal-length columns)
//   - TypeTag, the closed set of inferred column types
//   - Conversion, the closed set of builtin transfers, together with the
//     table that links every builtin to the inferred type it is equivalent to
//   - Type inference over column values
//
// Cell values are plain Go values: nil (missing), int64, float64, bool,
// string and time.Time. A string holding non-ASCII UTF-8 text is inferred
// as unicode; a string of ASCII or undecoded bytes is inferred as string.
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
