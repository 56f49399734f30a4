package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/asaidimu/go-datagrid/core/dataset"
	"github.com/asaidimu/go-datagrid/core/grid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE items (name TEXT, amount INTEGER, status TEXT)`)
	assert.NoError(t, err)

	seed := []struct {
		name   string
		amount int
		status string
	}{
		{"ant", 1, "active"},
		{"bee", 2, "active"},
		{"cat", 3, "inactive"},
		{"dog", 4, "active"},
		{"eel", 5, "inactive"},
	}
	for _, s := range seed {
		_, err = db.Exec(`INSERT INTO items (name, amount, status) VALUES (?, ?, ?)`, s.name, s.amount, s.status)
		assert.NoError(t, err)
	}
	return db
}

func fetch(t *testing.T, f *Fetcher, params grid.ParameterBag) ([]dataset.Row, int) {
	t.Helper()
	result, err := f.Get(context.Background(), "items", params)
	assert.NoError(t, err)

	envelope, ok := result.(map[string]any)
	assert.True(t, ok)
	rows, ok := envelope["data"].([]dataset.Row)
	assert.True(t, ok)
	total, ok := envelope["total"].(int)
	assert.True(t, ok)
	return rows, total
}

func TestFetcher_UnfilteredFirstPage(t *testing.T) {
	f := NewFetcher(setupDB(t), 2, nil)

	rows, total := fetch(t, f, grid.ParameterBag{})
	assert.Equal(t, 5, total, "total counts all matches, not the page")
	assert.Len(t, rows, 2)
}

func TestFetcher_ScalarFilter(t *testing.T) {
	f := NewFetcher(setupDB(t), 10, nil)

	rows, total := fetch(t, f, grid.ParameterBag{"status": "active"})
	assert.Equal(t, 3, total)
	assert.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, "active", row["status"])
	}
}

func TestFetcher_ListFilterIsMembership(t *testing.T) {
	f := NewFetcher(setupDB(t), 10, nil)

	rows, total := fetch(t, f, grid.ParameterBag{"name": []any{"ant", "eel"}})
	assert.Equal(t, 2, total)
	assert.Len(t, rows, 2)
}

func TestFetcher_SortAndDirection(t *testing.T) {
	f := NewFetcher(setupDB(t), 10, nil)

	rows, _ := fetch(t, f, grid.ParameterBag{
		grid.ParamSort:      "amount",
		grid.ParamDirection: "desc",
	})
	assert.Equal(t, "eel", rows[0]["name"])
	assert.Equal(t, "ant", rows[len(rows)-1]["name"])

	rows, _ = fetch(t, f, grid.ParameterBag{grid.ParamSort: "amount"})
	assert.Equal(t, "ant", rows[0]["name"], "direction defaults ascending")
}

func TestFetcher_Paging(t *testing.T) {
	f := NewFetcher(setupDB(t), 2, nil)

	rows, total := fetch(t, f, grid.ParameterBag{
		grid.ParamPage: 3,
		grid.ParamSort: "amount",
	})
	assert.Equal(t, 5, total)
	assert.Len(t, rows, 1)
	assert.Equal(t, "eel", rows[0]["name"])
}

func TestFetcher_FilterSortAndPageCombined(t *testing.T) {
	f := NewFetcher(setupDB(t), 2, nil)

	rows, total := fetch(t, f, grid.ParameterBag{
		"status":            "active",
		grid.ParamSort:      "amount",
		grid.ParamDirection: "desc",
		grid.ParamPage:      2,
	})
	assert.Equal(t, 3, total)
	assert.Len(t, rows, 1)
	assert.Equal(t, "ant", rows[0]["name"])
}

func TestFetcher_EmptyLocator(t *testing.T) {
	f := NewFetcher(setupDB(t), 10, nil)
	_, err := f.Get(context.Background(), "", grid.ParameterBag{})
	assert.Error(t, err)
}

func TestFetcher_MissingTable(t *testing.T) {
	f := NewFetcher(setupDB(t), 10, nil)
	_, err := f.Get(context.Background(), "no_such_table", grid.ParameterBag{})
	assert.Error(t, err)
}
