package field

// Coerce converts a raw filter input into the given field type. The boolean
// reports success; false is the failure sentinel callers use to drop the
// condition that carried the value.
//
// Empty string and nil inputs pass through unchanged, meaning "no filter".
// Lists are coerced element-wise: date and datetime lists fail as a whole if
// any element fails, and a numeric two-element range collapses entirely when
// either bound fails. Other list shapes pass through unchanged. Scalar dates
// are normalized to midnight; scalar datetimes keep their time of day.
func Coerce(raw any, t Type) (any, bool) {
	if raw == nil {
		return nil, true
	}
	if s, ok := raw.(string); ok && s == "" {
		return "", true
	}

	if items, ok := ToSlice(raw); ok {
		return coerceList(items, t)
	}

	switch t {
	case TypeNumber:
		n, ok := ToFloat64(raw)
		if !ok {
			return nil, false
		}
		return n, true
	case TypeDate:
		parsed, ok := ParseTime(raw)
		if !ok {
			return nil, false
		}
		return Midnight(parsed), true
	case TypeDateTime:
		parsed, ok := ParseTime(raw)
		if !ok {
			return nil, false
		}
		return parsed, true
	default:
		return raw, true
	}
}

func coerceList(items []any, t Type) (any, bool) {
	switch t {
	case TypeDate, TypeDateTime:
		out := make([]any, len(items))
		for i, item := range items {
			coerced, ok := Coerce(item, t)
			if !ok {
				return nil, false
			}
			out[i] = coerced
		}
		return out, true
	case TypeNumber:
		// Only a two-element pair is treated as a range; anything else is
		// membership data and passes through as-is.
		if len(items) != 2 {
			return items, true
		}
		out := make([]any, 2)
		for i, item := range items {
			n, ok := ToFloat64(item)
			if !ok {
				return nil, false
			}
			out[i] = n
		}
		return out, true
	default:
		return items, true
	}
}

// ToSlice widens the common concrete slice shapes into []any.
func ToSlice(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]any, len(val))
		for i, n := range val {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]any, len(val))
		for i, n := range val {
			out[i] = n
		}
		return out, true
	default:
		return nil, false
	}
}
