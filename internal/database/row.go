package database

import (
	"fmt"
	"strconv"
	"time"
)

// Row maps column names to values for one result row.
type Row map[string]any

// normalize converts driver byte slices to strings so callers see text
// columns uniformly regardless of driver.
func normalize(m map[string]any) Row {
	row := make(Row, len(m))
	for k, v := range m {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
			continue
		}
		row[k] = v
	}
	return row
}

// Int64 returns the column as an int64, or 0 if it is NULL or absent.
func (r Row) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// NullInt64 returns the column as an int64 and whether it was non-NULL.
func (r Row) NullInt64(col string) (int64, bool) {
	if r[col] == nil {
		return 0, false
	}
	return r.Int64(col), true
}

// String returns the column as a string, or "" if it is NULL or absent.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// Time returns the column as a time.Time, or the zero time.
func (r Row) Time(col string) time.Time {
	switch v := r[col].(type) {
	case time.Time:
		return v
	case string:
		t, _ := time.Parse(time.RFC3339Nano, v)
		return t
	default:
		return time.Time{}
	}
}

// Bool returns the column as a bool.
func (r Row) Bool(col string) bool {
	switch v := r[col].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}
