package grid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/asaidimu/go-datagrid/core/dataset"
	"github.com/asaidimu/go-datagrid/core/field"
	"go.uber.org/zap"
)

// Fetcher is the abstract retrieval capability consumed by remote-mode
// refreshes and by pipeline steps. Get resolves a locator with the given
// parameters and returns the parsed result.
type Fetcher interface {
	Get(ctx context.Context, locator string, params ParameterBag) (any, error)
}

// HTTPFetcher resolves locators over HTTP, encoding the parameter bag into
// the query string and decoding the response body as JSON.
type HTTPFetcher struct {
	client *http.Client
	logger *zap.Logger
}

// NewHTTPFetcher creates an HTTPFetcher. A nil client falls back to
// http.DefaultClient.
func NewHTTPFetcher(client *http.Client, logger *zap.Logger) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPFetcher{client: client, logger: logger}
}

// Get performs a GET request against the locator with the encoded parameters
// appended and returns the decoded JSON body.
func (f *HTTPFetcher) Get(ctx context.Context, locator string, params ParameterBag) (any, error) {
	target := AppendQuery(locator, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", locator, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", locator, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", locator, resp.StatusCode)
	}

	var result any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", locator, err)
	}
	f.logger.Debug("fetched locator", zap.String("locator", target))
	return result, nil
}

// FetchResult is the decoded shape of a remote data source's response: the
// row slice to install and the authoritative total row count, which in paged
// mode is distinct from len(Rows).
type FetchResult struct {
	Rows  []dataset.Row
	Total int
}

// decodeFetchResult interprets a parsed retrieval result. It accepts either a
// bare list of rows, in which case the total is the list length, or an object
// carrying the rows under "data" and the total under "total" or "count".
func decodeFetchResult(result any) (*FetchResult, error) {
	switch val := result.(type) {
	case []dataset.Row:
		return &FetchResult{Rows: val, Total: len(val)}, nil
	case []any:
		rows, err := decodeRows(val)
		if err != nil {
			return nil, err
		}
		return &FetchResult{Rows: rows, Total: len(rows)}, nil
	case map[string]any:
		items, ok := field.ToSlice(val["data"])
		if !ok {
			if rows, isRows := val["data"].([]dataset.Row); isRows {
				total := reportedTotal(val, len(rows))
				return &FetchResult{Rows: rows, Total: total}, nil
			}
			return nil, fmt.Errorf("remote result carries no row list under %q", "data")
		}
		rows, err := decodeRows(items)
		if err != nil {
			return nil, err
		}
		return &FetchResult{Rows: rows, Total: reportedTotal(val, len(rows))}, nil
	default:
		return nil, fmt.Errorf("unsupported remote result shape %T", result)
	}
}

func decodeRows(items []any) ([]dataset.Row, error) {
	rows := make([]dataset.Row, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("remote row %d is %T, expected an object", i, item)
		}
		rows = append(rows, dataset.Row(m))
	}
	return rows, nil
}

func reportedTotal(val map[string]any, fallback int) int {
	for _, key := range []string{"total", "count"} {
		if n, ok := field.ToFloat64(val[key]); ok {
			return int(n)
		}
	}
	return fallback
}
