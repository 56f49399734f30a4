// Package filter implements the grid's typed filter conditions and the
// predicates built from them. A condition carries an already-coerced value
// for every standard kind; custom-function conditions bypass coercion
// entirely and delegate evaluation to the supplied function.
package filter

import (
	"github.com/asaidimu/go-datagrid/core/dataset"
	"github.com/asaidimu/go-datagrid/core/field"
)

// Kind identifies a standard filter condition.
type Kind string

// Supported condition kinds.
const (
	KindEquals  Kind = "eq"
	KindLike    Kind = "like"
	KindLt      Kind = "lt"
	KindLte     Kind = "lte"
	KindGt      Kind = "gt"
	KindGte     Kind = "gte"
	KindNeq     Kind = "neq"
	KindBetween Kind = "between"
	KindIn      Kind = "in"
)

// standardKinds is the closed set of built-in condition kinds.
var standardKinds = map[Kind]struct{}{
	KindEquals:  {},
	KindLike:    {},
	KindLt:      {},
	KindLte:     {},
	KindGt:      {},
	KindGte:     {},
	KindNeq:     {},
	KindBetween: {},
	KindIn:      {},
}

// IsStandard checks if a kind is one of the built-in condition kinds.
func (k Kind) IsStandard() bool {
	_, ok := standardKinds[k]
	return ok
}

// Func is a user-supplied predicate. It receives the condition's configured
// value, the row's cell value, the full row, and the condition's optional
// parameters. No coercion is applied to either value.
type Func func(condValue, rowValue any, row dataset.Row, params map[string]any) bool

// Condition describes a single filter to apply to a field. A non-nil Func
// marks the condition as custom; Kind is ignored in that case.
type Condition struct {
	Field  string
	Type   field.Type
	Kind   Kind
	Value  any
	Func   Func
	Params map[string]any
}
