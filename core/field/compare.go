package field

import (
	"fmt"
	"strings"
)

// Compare orders two cell values of the given field type, returning -1, 0 or 1.
// Text comparison is case-insensitive and empty values sort before non-empty
// ones. Numeric comparison uses natural ordering; operands that cannot be read
// as numbers are treated as absent and sort first. Date and datetime operands
// that fail to parse are likewise treated as absent. A descending direction
// negates the ascending result. All comparisons are pure and stateless.
func Compare(a, b any, t Type, dir Direction) int {
	result := compareAsc(a, b, t)
	if dir == DirectionDesc {
		return -result
	}
	return result
}

func compareAsc(a, b any, t Type) int {
	switch t {
	case TypeNumber:
		return compareNumbers(a, b)
	case TypeDate, TypeDateTime:
		return compareTimes(a, b)
	default:
		return compareText(a, b)
	}
}

func compareText(a, b any) int {
	aEmpty, bEmpty := isEmpty(a), isEmpty(b)
	switch {
	case aEmpty && bEmpty:
		return 0
	case aEmpty:
		return -1
	case bEmpty:
		return 1
	}
	return strings.Compare(strings.ToLower(asString(a)), strings.ToLower(asString(b)))
}

func compareNumbers(a, b any) int {
	aNum, aOK := ToFloat64(a)
	bNum, bOK := ToFloat64(b)
	switch {
	case !aOK && !bOK:
		return 0
	case !aOK:
		return -1
	case !bOK:
		return 1
	case aNum < bNum:
		return -1
	case aNum > bNum:
		return 1
	}
	return 0
}

func compareTimes(a, b any) int {
	aTime, aOK := ParseTime(a)
	bTime, bOK := ParseTime(b)
	switch {
	case !aOK && !bOK:
		return 0
	case !aOK:
		return -1
	case !bOK:
		return 1
	case aTime.Before(bTime):
		return -1
	case aTime.After(bTime):
		return 1
	}
	return 0
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
