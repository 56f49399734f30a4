package grid

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/asaidimu/go-datagrid/core/bus"
	"github.com/asaidimu/go-datagrid/core/dataset"
	"github.com/asaidimu/go-datagrid/core/field"
	"go.uber.org/zap"
)

// Sort names a column and direction to order by.
type Sort struct {
	Field     string
	Direction field.Direction
}

// SortCoordinator tracks which single column is actively sorted and applies
// that ordering on each refresh. Like the filter coordinator its mode is
// fixed at construction: local mode reorders the working dataset in place,
// remote mode contributes the sort field and direction to the parameter
// chain.
type SortCoordinator struct {
	mu        sync.RWMutex
	mode      Mode
	cache     *dataset.Cache
	types     map[string]field.Type
	active    string
	direction field.Direction
	next      map[string]field.Direction
	logger    *zap.Logger
}

// NewSortCoordinator creates the coordinator and wires it to the event the
// given mode requires. defaultSort, when non-nil, seeds the initial ordering
// for remote-mode grids.
func NewSortCoordinator(mode Mode, cache *dataset.Cache, b *bus.Bus, columns []Column, defaultSort *Sort, logger *zap.Logger) *SortCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &SortCoordinator{
		mode:   mode,
		cache:  cache,
		types:  make(map[string]field.Type, len(columns)),
		next:   make(map[string]field.Direction),
		logger: logger,
	}
	for _, col := range columns {
		c.types[col.Field] = col.Type
	}
	if defaultSort != nil {
		c.active = defaultSort.Field
		c.direction = defaultSort.Direction
		c.next[defaultSort.Field] = defaultSort.Direction.Toggle()
	}

	switch mode {
	case ModeRemote:
		b.SubscribeChain(EventBuildParams, c.contributeParams, PrioritySort)
	default:
		b.Subscribe(EventRefresh, c.applyLocal, PrioritySort)
	}
	return c
}

// Activate marks a column as the active sort column. Each column remembers
// its own next direction, starting descending and alternating on every
// activation; activating a new column deactivates whichever was previously
// active, so at most one column is ever active.
func (c *SortCoordinator) Activate(fieldName string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dir, ok := c.next[fieldName]
	if !ok {
		dir = field.DirectionDesc
	}
	c.next[fieldName] = dir.Toggle()
	c.active = fieldName
	c.direction = dir
}

// Active returns the active sort column and direction. The column is empty
// when no sort is active.
func (c *SortCoordinator) Active() (string, field.Direction) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active, c.direction
}

// applyLocal reorders the working dataset in place by the active column. The
// dataset order is untouched when no column is active. The sort is stable, so
// re-sorting an already-sorted sequence with the same column and direction is
// a no-op.
func (c *SortCoordinator) applyLocal(ctx context.Context, args ...any) error {
	active, direction := c.Active()
	if active == "" {
		return nil
	}
	fieldType, ok := c.types[active]
	if !ok {
		fieldType = field.TypeText
	}

	rows := c.cache.Working()
	sort.SliceStable(rows, func(i, j int) bool {
		return field.Compare(rows[i][active], rows[j][active], fieldType, direction) < 0
	})
	return nil
}

// contributeParams adds the active sort column and direction to the bag.
func (c *SortCoordinator) contributeParams(value any) (any, error) {
	bag, ok := value.(ParameterBag)
	if !ok {
		return nil, fmt.Errorf("parameter chain carries %T, expected ParameterBag", value)
	}
	active, direction := c.Active()
	if active != "" {
		bag.Set(ParamSort, active)
		bag.Set(ParamDirection, string(direction))
	}
	return bag, nil
}
