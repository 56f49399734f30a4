// Package field defines the declared column types of the grid along with the
// coercion and comparison rules attached to each type. Filtering and sorting
// both dispatch on a field's declared Type, so this package is the single
// source of truth for how raw cell values are interpreted.
package field

import (
	"strconv"
	"time"
)

// Type identifies the declared type of a grid column.
type Type string

// Supported field types.
const (
	TypeText     Type = "text"
	TypeNumber   Type = "number"
	TypeDate     Type = "date"
	TypeDateTime Type = "datetime"
	TypeObject   Type = "object"
)

// Direction specifies the direction for sorting.
type Direction string

// Supported sort directions.
const (
	DirectionAsc  Direction = "asc"
	DirectionDesc Direction = "desc"
)

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == DirectionDesc {
		return DirectionAsc
	}
	return DirectionDesc
}

// dateLayouts are the accepted textual date/datetime representations, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
}

// ParseTime converts a raw cell value into a time.Time. It accepts time.Time
// values directly and strings in one of the known layouts. The boolean reports
// whether the value was date-shaped at all.
func ParseTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return *val, true
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// Midnight truncates a time to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ToFloat64 converts a value of various numeric types to a float64. It returns
// the converted float64 and a boolean indicating whether the conversion was
// successful.
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
