package transfer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/leapstack-labs/leapxfer/internal/coerce"
	"github.com/leapstack-labs/leapxfer/pkg/core"
	"golang.org/x/text/encoding/charmap"
)

// convertFunc converts a single cell.
type convertFunc func(core.Value) (core.Value, error)

func builtinFunc(c core.Conversion) convertFunc {
	switch c {
	case core.ConvInt:
		return toInt
	case core.ConvFloat:
		return toFloat
	case core.ConvString:
		return toString
	case core.ConvUnicode:
		return toUnicode
	case core.ConvBoolean:
		return toBoolean
	default:
		return nil
	}
}

// toInt truncates floats toward zero. Missing values stay missing.
func toInt(v core.Value) (core.Value, error) {
	if core.IsMissing(v) {
		return nil, nil
	}
	switch val := v.(type) {
	case int64:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case float32:
		return toInt(float64(val))
	case float64:
		if math.IsInf(val, 0) || val >= math.MaxInt64 || val < math.MinInt64 {
			return nil, fmt.Errorf("cannot convert float %v to integer", val)
		}
		return int64(val), nil
	case bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case string:
		return coerce.ParseInt(val)
	default:
		return nil, fmt.Errorf("cannot convert %T to integer", v)
	}
}

func toFloat(v core.Value) (core.Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case bool:
		if val {
			return 1.0, nil
		}
		return 0.0, nil
	case string:
		f, err := coerce.ParseFloat(val)
		if err != nil {
			return nil, ErrFloatConversion
		}
		return f, nil
	default:
		return nil, ErrFloatConversion
	}
}

// toString renders values as text. Missing values stay missing.
func toString(v core.Value) (core.Value, error) {
	if core.IsMissing(v) {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case int:
		return strconv.Itoa(val), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case float64:
		return core.FormatFloat(val), nil
	case float32:
		return core.FormatFloat(float64(val)), nil
	case bool:
		if val {
			return "True", nil
		}
		return "False", nil
	case time.Time:
		return val.Format("2006-01-02 15:04:05"), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to string", v)
	}
}

// toUnicode decodes text as UTF-8, falling back to Latin-1 for byte
// sequences that are not valid UTF-8.
func toUnicode(v core.Value) (core.Value, error) {
	s, ok := v.(string)
	if !ok {
		return toString(v)
	}
	if utf8.ValidString(s) {
		return s, nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return nil, fmt.Errorf("cannot decode text: %w", err)
	}
	return out, nil
}

var errNotBoolean = errors.New("value is not a boolean")

func toBoolean(v core.Value) (core.Value, error) {
	if core.IsMissing(v) {
		return nil, nil
	}
	switch val := v.(type) {
	case bool:
		return val, nil
	case int64:
		return val != 0, nil
	case int:
		return val != 0, nil
	case int32:
		return val != 0, nil
	case float64:
		return val != 0, nil
	case float32:
		return val != 0, nil
	case string:
		b, err := coerce.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errNotBoolean, val)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: %T", errNotBoolean, v)
	}
}
