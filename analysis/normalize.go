package analysis

import (
	"fmt"
	"math"

	"github.com/zero-day-ai/kleegraph/graph"
)

// toInt64 converts backend count values to int64. Floats must be integral.
func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("uint64 value %d overflows int64", v)
		}
		return int64(v), nil
	case float32:
		return floatToInt64(float64(v))
	case float64:
		return floatToInt64(v)
	default:
		return 0, fmt.Errorf("cannot convert %T to int64", value)
	}
}

func floatToInt64(f float64) (int64, error) {
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("float value %v is not an integer count", f)
	}
	return int64(f), nil
}

// toString converts backend text values. nil reads as "".
func toString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("cannot convert %T to string", value)
	}
}

// rowReader extracts typed columns from a row, keeping the first error.
type rowReader struct {
	row graph.Row
	err error
}

func (r *rowReader) text(col string) string {
	s, err := toString(r.row[col])
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column %q: %w", col, err)
	}
	return s
}

func (r *rowReader) count(col string) int64 {
	v, ok := r.row[col]
	if !ok {
		if r.err == nil {
			r.err = fmt.Errorf("column %q missing", col)
		}
		return 0
	}
	n, err := toInt64(v)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column %q: %w", col, err)
	}
	return n
}
