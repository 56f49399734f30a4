package filter

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/asaidimu/go-datagrid/core/dataset"
	"github.com/asaidimu/go-datagrid/core/field"
	"go.uber.org/zap"
)

// Predicate evaluates one row against a single configured condition.
type Predicate interface {
	// Execute reports whether the row passes. rowValue is the cell value of
	// the condition's field; row is the full row for custom functions.
	Execute(rowValue any, row dataset.Row) bool
}

// New builds the predicate for a condition. For standard kinds the condition
// value is coerced to the condition's field type first; a coercion failure
// returns nil, which callers must treat as "drop this condition", never as an
// error. A condition with a non-nil Func bypasses coercion and yields the
// custom-function variant. New never panics.
func New(cond Condition, logger *zap.Logger) Predicate {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cond.Func != nil {
		return &funcPredicate{cond: cond}
	}
	if !cond.Kind.IsStandard() {
		logger.Warn("unknown filter condition kind", zap.String("field", cond.Field), zap.String("kind", string(cond.Kind)))
		return nil
	}

	coerced, ok := field.Coerce(cond.Value, cond.Type)
	if !ok {
		return nil
	}
	cond.Value = coerced

	if cond.Type == field.TypeDate || cond.Type == field.TypeDateTime {
		return &datePredicate{cond: cond, logger: logger}
	}
	return &typedPredicate{cond: cond, logger: logger}
}

// typedPredicate is the generic evaluator for text, number and object fields.
type typedPredicate struct {
	cond   Condition
	logger *zap.Logger
}

func (p *typedPredicate) Execute(rowValue any, row dataset.Row) bool {
	switch p.cond.Kind {
	case KindEquals:
		return equalValues(rowValue, p.cond.Value)
	case KindNeq:
		return !equalValues(rowValue, p.cond.Value)
	case KindLike:
		return likeMatch(rowValue, p.cond.Value)
	case KindLt, KindLte, KindGt, KindGte:
		if rowValue == nil {
			return false
		}
		return orderMatch(p.cond.Kind, field.Compare(rowValue, p.cond.Value, p.cond.Type, field.DirectionAsc))
	case KindBetween:
		bounds, ok := field.ToSlice(p.cond.Value)
		if !ok || len(bounds) != 2 {
			p.logger.Warn("between condition requires a two-element range", zap.String("field", p.cond.Field))
			return false
		}
		if rowValue == nil {
			return false
		}
		return field.Compare(rowValue, bounds[0], p.cond.Type, field.DirectionAsc) >= 0 &&
			field.Compare(rowValue, bounds[1], p.cond.Type, field.DirectionAsc) <= 0
	case KindIn:
		items, ok := field.ToSlice(p.cond.Value)
		if !ok {
			p.logger.Warn("in condition requires a list value", zap.String("field", p.cond.Field))
			return false
		}
		if len(items) == 0 {
			return true
		}
		for _, item := range items {
			if equalValues(rowValue, item) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// datePredicate evaluates conditions on date and datetime fields. Equality is
// by calendar date rather than timestamp; ordering compares midnight-normalized
// times. A row value that is absent or not date-shaped never matches.
type datePredicate struct {
	cond   Condition
	logger *zap.Logger
}

func (p *datePredicate) Execute(rowValue any, row dataset.Row) bool {
	rowTime, ok := field.ParseTime(rowValue)
	if !ok {
		return false
	}

	switch p.cond.Kind {
	case KindEquals, KindNeq:
		condTime, ok := field.ParseTime(p.cond.Value)
		if !ok {
			return false
		}
		same := sameCalendarDay(rowTime, condTime)
		if p.cond.Kind == KindNeq {
			return !same
		}
		return same
	case KindLt, KindLte, KindGt, KindGte:
		condTime, ok := field.ParseTime(p.cond.Value)
		if !ok {
			return false
		}
		return orderMatch(p.cond.Kind, compareMidnight(rowTime, condTime))
	case KindBetween:
		bounds, ok := field.ToSlice(p.cond.Value)
		if !ok || len(bounds) != 2 {
			p.logger.Warn("between condition requires a two-element range", zap.String("field", p.cond.Field))
			return false
		}
		lo, loOK := field.ParseTime(bounds[0])
		hi, hiOK := field.ParseTime(bounds[1])
		if !loOK || !hiOK {
			return false
		}
		return compareMidnight(rowTime, lo) >= 0 && compareMidnight(rowTime, hi) <= 0
	case KindIn:
		items, ok := field.ToSlice(p.cond.Value)
		if !ok {
			p.logger.Warn("in condition requires a list value", zap.String("field", p.cond.Field))
			return false
		}
		if len(items) == 0 {
			return true
		}
		for _, item := range items {
			if itemTime, ok := field.ParseTime(item); ok && sameCalendarDay(rowTime, itemTime) {
				return true
			}
		}
		return false
	case KindLike:
		return likeMatch(rowValue, p.cond.Value)
	default:
		return false
	}
}

// funcPredicate delegates to a user-supplied function.
type funcPredicate struct {
	cond Condition
}

func (p *funcPredicate) Execute(rowValue any, row dataset.Row) bool {
	return p.cond.Func(p.cond.Value, rowValue, row, p.cond.Params)
}

func sameCalendarDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func compareMidnight(a, b time.Time) int {
	am, bm := field.Midnight(a), field.Midnight(b)
	switch {
	case am.Before(bm):
		return -1
	case am.After(bm):
		return 1
	}
	return 0
}

func orderMatch(kind Kind, cmp int) bool {
	switch kind {
	case KindLt:
		return cmp < 0
	case KindLte:
		return cmp <= 0
	case KindGt:
		return cmp > 0
	case KindGte:
		return cmp >= 0
	default:
		return false
	}
}

// equalValues is strict equality with a numeric widening path, so a row's
// int64 cell matches a coerced float64 condition value.
func equalValues(a, b any) bool {
	if aNum, ok := field.ToFloat64(a); ok {
		if bNum, ok := field.ToFloat64(b); ok {
			return aNum == bNum
		}
	}
	return reflect.DeepEqual(a, b)
}

// likeMatch is case-insensitive substring containment. An empty or absent row
// value never matches.
func likeMatch(rowValue, condValue any) bool {
	if rowValue == nil {
		return false
	}
	rowStr := stringify(rowValue)
	if rowStr == "" {
		return false
	}
	return strings.Contains(strings.ToLower(rowStr), strings.ToLower(stringify(condValue)))
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
