package extractors

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/miradorstack/check-bond/internal/utils"
)

// Column names read from bond_slave and bond rows.
const (
	ColumnTime        = "time"
	ColumnHost        = "host"
	ColumnBond        = "bond"
	ColumnInterface   = "interface"
	ColumnStatus      = "status"
	ColumnActiveSlave = "active_slave"
)

// ColumnIndex maps column names onto row offsets for one InfluxDB response.
type ColumnIndex map[string]int

// NewColumnIndex indexes columns and asserts that every required column is present.
func NewColumnIndex(columns []string, required ...string) (ColumnIndex, error) {
	idx := make(ColumnIndex, len(columns))
	for i, name := range columns {
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, utils.NewAppError(utils.KindShape, "column index", fmt.Sprintf("missing required column %q in %v", name, columns), nil)
		}
	}
	return idx, nil
}

// Has reports whether the column is present.
func (c ColumnIndex) Has(name string) bool {
	_, ok := c[name]
	return ok
}

func (c ColumnIndex) value(row []any, name string) (any, bool) {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return nil, false
	}
	return row[i], true
}

// String returns the column as a string. Numbers are formatted; null yields "".
func (c ColumnIndex) String(row []any, name string) string {
	v, _ := c.value(row, name)
	return stringValue(v)
}

// Int returns the column as an integer. ok is false for null or non-numeric values.
func (c ColumnIndex) Int(row []any, name string) (int, bool) {
	v, _ := c.value(row, name)
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int(f), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

// Time returns the raw timestamp string and its parsed value.
func (c ColumnIndex) Time(row []any, name string) (string, time.Time, error) {
	raw := c.String(row, name)
	ts, err := utils.ParseTimestamp(raw)
	if err != nil {
		return raw, time.Time{}, utils.NewAppError(utils.KindShape, "column index", fmt.Sprintf("column %q", name), err)
	}
	return raw, ts, nil
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(s)
	}
}
