package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatFloat renders a float the way spreadsheet exports show it:
// integral values keep a trailing ".0" and very large or small
// magnitudes use exponent notation.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		format = 'g'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// FormatTime renders midnight times as a date and others as date and time.
func FormatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.DateTime)
}

// FormatValue renders a cell for display. Missing values render as "".
func FormatValue(v Value) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		if math.IsNaN(val) {
			return ""
		}
		return FormatFloat(val)
	case bool:
		if val {
			return "True"
		}
		return "False"
	case time.Time:
		return FormatTime(val)
	default:
		return fmt.Sprint(val)
	}
}
