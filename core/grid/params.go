// Package grid ties the grid's leaf components together: the filter and sort
// coordinators, the page-window arithmetic, the auxiliary retrieval pipeline,
// and the refresh orchestrator that decides, on every refresh, which rows to
// show and in what order.
//
// A grid runs in one of two mutually exclusive acquisition modes fixed at
// construction. In local mode the full dataset is held in memory and every
// refresh derives the visible rows from it directly. In remote mode each
// refresh assembles one parameter bag — every coordinator contributing only
// its own keys — and sends it to a remote source, rendering whatever rows and
// total the source reports.
package grid

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/asaidimu/go-datagrid/core/field"
)

// ParameterBag is the request parameter mapping built once per remote refresh
// cycle. Each coordinator writes only the keys it owns; the bag is discarded
// after the request it serves.
type ParameterBag map[string]any

// Reserved bag keys written by the orchestrator and sort coordinator. Filter
// contributions use the field name as key.
const (
	ParamPage      = "page"
	ParamSort      = "sort"
	ParamDirection = "direction"
)

// Set stores a value under key, overwriting any prior value.
func (b ParameterBag) Set(key string, value any) {
	b[key] = value
}

// Encode serializes the bag as repeated key=value pairs, one pair per element
// for list-valued parameters. Keys are emitted in sorted order so the
// encoding is deterministic.
func (b ParameterBag) Encode() string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []string
	for _, k := range keys {
		if items, ok := field.ToSlice(b[k]); ok {
			for _, item := range items {
				pairs = append(pairs, encodePair(k, item))
			}
			continue
		}
		pairs = append(pairs, encodePair(k, b[k]))
	}
	return strings.Join(pairs, "&")
}

func encodePair(key string, value any) string {
	return url.QueryEscape(key) + "=" + url.QueryEscape(fmt.Sprintf("%v", value))
}

// AppendQuery attaches an encoded query string to a locator, using "?" or "&"
// depending on whether the locator already carries a query string.
func AppendQuery(locator, query string) string {
	if query == "" {
		return locator
	}
	if strings.Contains(locator, "?") {
		return locator + "&" + query
	}
	return locator + "?" + query
}
