// Package dataset owns the canonical row sequence of a grid and the mutable
// working copy derived from it. Filtering and sorting operate on the working
// view; the snapshot view is written exactly once per wholesale replacement
// and is never mutated afterwards.
package dataset

import "go.uber.org/zap"

// Row is an ordered mapping from field name to a primitive or object value.
// Row identity is positional within its containing sequence.
type Row map[string]any

// Cache holds the two views of a grid's dataset.
type Cache struct {
	working  []Row
	snapshot []Row
	logger   *zap.Logger
}

// NewCache creates an empty Cache.
func NewCache(logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{logger: logger}
}

// Replace installs rows as the new dataset: the working view takes the rows
// as given and the snapshot becomes a deep copy of them. A nil input yields
// two empty views.
func (c *Cache) Replace(rows []Row) {
	if rows == nil {
		rows = []Row{}
	}
	c.working = rows
	c.snapshot = copyRows(rows)
	c.logger.Debug("dataset replaced", zap.Int("rows", len(rows)))
}

// Restore resets the working view to a deep copy of the snapshot, reproducing
// the state immediately following the last Replace regardless of how many
// times the working view was filtered or sorted since.
func (c *Cache) Restore() {
	c.working = copyRows(c.snapshot)
}

// Working returns the current working view.
func (c *Cache) Working() []Row {
	return c.working
}

// SetWorking installs a derived row sequence as the working view.
func (c *Cache) SetWorking(rows []Row) {
	if rows == nil {
		rows = []Row{}
	}
	c.working = rows
}

// Snapshot returns a deep copy of the snapshot view.
func (c *Cache) Snapshot() []Row {
	return copyRows(c.snapshot)
}

// RowCount returns the length of the working view.
func (c *Cache) RowCount() int {
	return len(c.working)
}

func copyRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = copyRow(row)
	}
	return out
}

func copyRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = copyValue(item)
		}
		return out
	case Row:
		return map[string]any(copyRow(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
