// Package page provides the pure arithmetic behind the grid's pagination:
// page counts, request validation, and the sliding display window shown in
// the pager control. Invalid inputs are normalized rather than rejected.
package page

import (
	"math"

	"github.com/asaidimu/go-datagrid/core/dataset"
	"github.com/asaidimu/go-datagrid/core/field"
)

// State captures one refresh cycle's paging resolution. It is rebuilt on
// every refresh and never persisted.
type State struct {
	CurrentPage int
	PageSize    int
	TotalRows   int
	WindowSize  int
}

// TotalPages returns the number of pages needed for rowCount rows at the
// given page size. A non-positive page size yields a single page, and an
// invalid row count is treated as one row. The result is always at least 1.
func TotalPages(rowCount, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	if rowCount <= 0 {
		rowCount = 1
	}
	return int(math.Ceil(float64(rowCount) / float64(pageSize)))
}

// Validate normalizes a requested page to the range [1, totalPages].
// Non-integer input is parsed first; anything non-numeric or non-positive
// maps to 1. Validate is idempotent.
func Validate(requested any, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	page := 1
	if n, ok := field.ToFloat64(requested); ok {
		page = int(n)
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// FirstDisplayPage returns the first page number of the pager's display
// window, keeping the current page centered where possible and never letting
// the window run past either end. The result is always within
// [1, totalPages].
func FirstDisplayPage(current, windowSize, totalPages int) int {
	if windowSize < 1 || totalPages < 1 {
		return 1
	}
	middle := windowSize/2 + windowSize%2
	if current < middle {
		return 1
	}
	first := current - middle + 1
	if first+windowSize-1 > totalPages {
		first = totalPages - windowSize + 1
		if first < 1 {
			first = 1
		}
	}
	return first
}

// Slice returns the rows visible on the given page, clamped to the bounds of
// the input sequence.
func Slice(rows []dataset.Row, page, pageSize int) []dataset.Row {
	if pageSize <= 0 || page < 1 {
		return rows
	}
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return []dataset.Row{}
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
