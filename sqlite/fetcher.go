// Package sqlite implements the grid's retrieval capability on top of a
// SQLite database, translating a refresh's parameter bag into SQL. The
// locator names the table to query. It serves remote-mode grids and pipeline
// steps the same way an HTTP source would, reporting rows and an
// authoritative total.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/asaidimu/go-datagrid/core/dataset"
	"github.com/asaidimu/go-datagrid/core/field"
	"github.com/asaidimu/go-datagrid/core/grid"
	"go.uber.org/zap"
)

// Fetcher resolves table locators against a SQLite database.
type Fetcher struct {
	db       *sql.DB
	pageSize int
	logger   *zap.Logger
}

// NewFetcher creates a Fetcher. pageSize bounds each page of results; a
// non-positive value falls back to 10.
func NewFetcher(db *sql.DB, pageSize int, logger *zap.Logger) *Fetcher {
	if pageSize <= 0 {
		pageSize = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{db: db, pageSize: pageSize, logger: logger}
}

// Get queries the table named by locator. Filter parameters become WHERE
// clauses (scalar values compare with "=", list values with IN), the sort and
// direction parameters become ORDER BY, and the page parameter becomes
// LIMIT/OFFSET. The result carries the page's rows under "data" and the
// unpaged match count under "total".
func (f *Fetcher) Get(ctx context.Context, locator string, params grid.ParameterBag) (any, error) {
	if locator == "" {
		return nil, fmt.Errorf("locator must name a table")
	}
	table := quoteIdentifier(locator)
	where, args := buildWhere(params)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", table, where)
	if err := f.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting rows in %s: %w", locator, err)
	}

	query := fmt.Sprintf("SELECT * FROM %s%s%s LIMIT ? OFFSET ?", table, where, buildOrder(params))
	page := currentPage(params)
	queryArgs := append(append([]any{}, args...), f.pageSize, (page-1)*f.pageSize)

	f.logger.Debug("executing grid query", zap.String("query", query), zap.Int("page", page))

	rows, err := f.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", locator, err)
	}
	defer rows.Close()

	records, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("reading rows from %s: %w", locator, err)
	}

	return map[string]any{"data": records, "total": total}, nil
}

func currentPage(params grid.ParameterBag) int {
	if n, ok := field.ToFloat64(params[grid.ParamPage]); ok && n >= 1 {
		return int(n)
	}
	return 1
}

// buildWhere turns every non-reserved bag key into a clause. How a server
// interprets range-shaped values is its own contract; this one treats every
// list as set membership.
func buildWhere(params grid.ParameterBag) (string, []any) {
	var clauses []string
	var args []any

	for _, key := range sortedKeys(params) {
		switch key {
		case grid.ParamPage, grid.ParamSort, grid.ParamDirection:
			continue
		}
		if items, ok := field.ToSlice(params[key]); ok {
			if len(items) == 0 {
				continue
			}
			placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(items)), ", ")
			clauses = append(clauses, fmt.Sprintf("%s IN (%s)", quoteIdentifier(key), placeholders))
			args = append(args, items...)
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s = ?", quoteIdentifier(key)))
		args = append(args, params[key])
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func buildOrder(params grid.ParameterBag) string {
	sortField, ok := params[grid.ParamSort].(string)
	if !ok || sortField == "" {
		return ""
	}
	direction := "ASC"
	if dir, ok := params[grid.ParamDirection].(string); ok && strings.EqualFold(dir, string(field.DirectionDesc)) {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", quoteIdentifier(sortField), direction)
}

func sortedKeys(params grid.ParameterBag) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func scanRows(rows *sql.Rows) ([]dataset.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := []dataset.Row{}
	values := make([]any, len(cols))
	scanArgs := make([]any, len(cols))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}
		row := make(dataset.Row, len(cols))
		for i, col := range cols {
			switch v := values[i].(type) {
			case []byte:
				row[col] = string(v)
			default:
				row[col] = v
			}
		}
		records = append(records, row)
	}
	return records, rows.Err()
}

// quoteIdentifier properly quotes an identifier for SQLite.
func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
