package grid

import (
	"context"
	"fmt"
	"sync"

	"github.com/asaidimu/go-datagrid/core/bus"
	"github.com/asaidimu/go-datagrid/core/dataset"
	"github.com/asaidimu/go-datagrid/core/field"
	"github.com/asaidimu/go-datagrid/core/filter"
	"go.uber.org/zap"
)

// FilterCoordinator resolves which rows survive filtering on each refresh.
// Its mode is fixed at construction: in local mode it subscribes to the
// refresh event and recomputes the working dataset from the snapshot; in
// remote mode it subscribes to the parameter chain and contributes one bag
// key per active condition, performing no local work.
type FilterCoordinator struct {
	mu      sync.RWMutex
	mode    Mode
	cache   *dataset.Cache
	columns map[string]Column
	inputs  map[string]any
	adhoc   map[string]filter.Condition
	logger  *zap.Logger
}

// NewFilterCoordinator creates the coordinator and wires it to the event the
// given mode requires.
func NewFilterCoordinator(mode Mode, cache *dataset.Cache, b *bus.Bus, columns []Column, logger *zap.Logger) *FilterCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &FilterCoordinator{
		mode:    mode,
		cache:   cache,
		columns: make(map[string]Column, len(columns)),
		inputs:  make(map[string]any),
		adhoc:   make(map[string]filter.Condition),
		logger:  logger,
	}
	for _, col := range columns {
		c.columns[col.Field] = col
	}

	switch mode {
	case ModeRemote:
		b.SubscribeChain(EventBuildParams, c.contributeParams, PriorityFilter)
	default:
		b.Subscribe(EventRefresh, c.applyLocal, PriorityFilter)
	}
	return c
}

// SetColumnInput records the current value of a column's bound filter input.
// A nil or empty-string value clears the input.
func (c *FilterCoordinator) SetColumnInput(fieldName string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isBlank(value) {
		delete(c.inputs, fieldName)
		return
	}
	c.inputs[fieldName] = value
}

// SetFilter upserts an ad-hoc condition by field, replacing any existing
// condition for the same field.
func (c *FilterCoordinator) SetFilter(fieldName string, value any, kind filter.Kind, t field.Type, params map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adhoc[fieldName] = filter.Condition{
		Field:  fieldName,
		Type:   t,
		Kind:   kind,
		Value:  value,
		Params: params,
	}
}

// SetFilterFunc upserts an ad-hoc custom-function condition by field. No
// coercion is applied to the condition value.
func (c *FilterCoordinator) SetFilterFunc(fieldName string, value any, fn filter.Func, params map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adhoc[fieldName] = filter.Condition{
		Field:  fieldName,
		Value:  value,
		Func:   fn,
		Params: params,
	}
}

// RemoveFilter deletes the ad-hoc condition for a field, if any.
func (c *FilterCoordinator) RemoveFilter(fieldName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.adhoc, fieldName)
}

// conditions gathers every column-bound condition with a non-empty input,
// followed by the ad-hoc conditions.
func (c *FilterCoordinator) conditions() []filter.Condition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var conds []filter.Condition
	for fieldName, value := range c.inputs {
		col, ok := c.columns[fieldName]
		if !ok {
			continue
		}
		conds = append(conds, filter.Condition{
			Field:  col.Field,
			Type:   col.Type,
			Kind:   col.boundKind(),
			Value:  value,
			Func:   col.Func,
			Params: col.Params,
		})
	}
	for _, cond := range c.adhoc {
		conds = append(conds, cond)
	}
	return conds
}

// applyLocal recomputes the working dataset as the subset of the snapshot for
// which every predicate evaluates true. Conditions whose value fails coercion
// are dropped rather than matching nothing. When no predicates remain the
// working dataset is restored verbatim from the snapshot, fully undoing any
// prior filtering.
func (c *FilterCoordinator) applyLocal(ctx context.Context, args ...any) error {
	type bound struct {
		field string
		pred  filter.Predicate
	}

	var preds []bound
	for _, cond := range c.conditions() {
		if p := filter.New(cond, c.logger); p != nil {
			preds = append(preds, bound{field: cond.Field, pred: p})
		}
	}

	if len(preds) == 0 {
		c.cache.Restore()
		return nil
	}

	filtered := []dataset.Row{}
	for _, row := range c.cache.Snapshot() {
		passes := true
		for _, b := range preds {
			if !b.pred.Execute(row[b.field], row) {
				passes = false
				break
			}
		}
		if passes {
			filtered = append(filtered, row)
		}
	}
	c.cache.SetWorking(filtered)
	c.logger.Debug("rows remaining after filtering", zap.Int("count", len(filtered)))
	return nil
}

// contributeParams appends one parameter per active condition, keyed by field
// name with the raw configured value.
func (c *FilterCoordinator) contributeParams(value any) (any, error) {
	bag, ok := value.(ParameterBag)
	if !ok {
		return nil, fmt.Errorf("parameter chain carries %T, expected ParameterBag", value)
	}
	for _, cond := range c.conditions() {
		bag.Set(cond.Field, cond.Value)
	}
	return bag, nil
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
