package grid

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/asaidimu/go-datagrid/core/bus"
	"github.com/asaidimu/go-datagrid/core/dataset"
	"github.com/asaidimu/go-datagrid/core/field"
	"github.com/asaidimu/go-datagrid/core/filter"
	"github.com/asaidimu/go-datagrid/core/page"
	"github.com/asaidimu/go-events"
	"go.uber.org/zap"
)

// Mode selects how a grid acquires its rows.
type Mode string

// Supported acquisition modes.
const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// Internal bus events and coordinator priorities. Filtering must settle
// before sorting on every refresh, which the priorities encode.
const (
	EventRefresh     = "grid:refresh"
	EventBuildParams = "grid:parameters"

	PriorityFilter = 10
	PrioritySort   = 20
)

// Column declares one filterable, sortable field of the grid.
type Column struct {
	Field string
	Type  field.Type
	// Kind is the condition kind applied to the column's bound filter input.
	// When empty, text columns match by substring and all others by equality.
	Kind   filter.Kind
	Func   filter.Func
	Params map[string]any
}

func (c Column) boundKind() filter.Kind {
	if c.Kind != "" {
		return c.Kind
	}
	if c.Type == field.TypeText || c.Type == "" {
		return filter.KindLike
	}
	return filter.KindEquals
}

// Renderer is the external presentation sink. RenderRows is called once per
// completed refresh with the row slice to display and the authoritative total
// row count, which in paged or remote mode differs from len(rows).
type Renderer interface {
	RenderRows(rows []dataset.Row, total int)
}

// Config carries everything a grid needs at construction. The shared context
// is passed explicitly; the grid keeps no global state.
type Config struct {
	Mode              Mode
	Columns           []Column
	PageSize          int
	DisplayWindowSize int
	// DefaultSort seeds the initial ordering for remote-mode grids.
	DefaultSort *Sort
	// Locator identifies the remote data source; required in remote mode.
	Locator string
	// Fetcher is required in remote mode and for pipeline steps.
	Fetcher  Fetcher
	Renderer Renderer
	Logger   *zap.Logger
}

// Grid orchestrates one data grid's refresh cycle. On each refresh it either
// derives the working dataset locally through the coordinators, or lets each
// coordinator contribute to one shared parameter bag sent to the remote
// source, then hands the resulting row slice to the renderer.
type Grid struct {
	mode       Mode
	cache      *dataset.Cache
	bus        *bus.Bus
	filters    *FilterCoordinator
	sorter     *SortCoordinator
	pipeline   *Pipeline
	fetcher    Fetcher
	renderer   Renderer
	locator    string
	pageSize   int
	windowSize int

	stateMu sync.RWMutex
	state   page.State

	// refreshSeq hands a monotonically increasing token to every refresh so a
	// slow remote response can never overwrite the result of a newer one.
	refreshSeq atomic.Uint64

	events        *events.TypedEventBus[GridEvent]
	subscriptions map[string]*SubscriptionInfo
	subMu         sync.RWMutex

	logger *zap.Logger
}

// New creates a Grid from the given configuration.
func New(cfg Config) (*Grid, error) {
	if cfg.Renderer == nil {
		return nil, fmt.Errorf("a renderer is required")
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeLocal
	}
	if cfg.Mode == ModeRemote {
		if cfg.Fetcher == nil {
			return nil, fmt.Errorf("remote mode requires a fetcher")
		}
		if cfg.Locator == "" {
			return nil, fmt.Errorf("remote mode requires a locator")
		}
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.DisplayWindowSize <= 0 {
		cfg.DisplayWindowSize = 5
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	evbus, err := events.NewTypedEventBus[GridEvent](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}

	b := bus.New(logger)
	cache := dataset.NewCache(logger)

	g := &Grid{
		mode:          cfg.Mode,
		cache:         cache,
		bus:           b,
		filters:       NewFilterCoordinator(cfg.Mode, cache, b, cfg.Columns, logger),
		sorter:        NewSortCoordinator(cfg.Mode, cache, b, cfg.Columns, cfg.DefaultSort, logger),
		pipeline:      NewPipeline(cfg.Fetcher, logger),
		fetcher:       cfg.Fetcher,
		renderer:      cfg.Renderer,
		locator:       cfg.Locator,
		pageSize:      cfg.PageSize,
		windowSize:    cfg.DisplayWindowSize,
		events:        evbus,
		subscriptions: make(map[string]*SubscriptionInfo),
		logger:        logger,
	}
	g.state = page.State{CurrentPage: 1, PageSize: cfg.PageSize, WindowSize: cfg.DisplayWindowSize}
	return g, nil
}

// Cache exposes the grid's dataset, letting pipeline steps replace it
// wholesale.
func (g *Grid) Cache() *dataset.Cache {
	return g.cache
}

// Pipeline exposes the grid's auxiliary retrieval pipeline.
func (g *Grid) Pipeline() *Pipeline {
	return g.pipeline
}

// State returns the paging resolution of the most recent refresh.
func (g *Grid) State() page.State {
	g.stateMu.RLock()
	defer g.stateMu.RUnlock()
	return g.state
}

// FirstDisplayPage returns the first page of the pager's display window for
// the most recent refresh.
func (g *Grid) FirstDisplayPage() int {
	s := g.State()
	return page.FirstDisplayPage(s.CurrentPage, s.WindowSize, page.TotalPages(s.TotalRows, s.PageSize))
}

// SetColumnInput records the current value of a column's bound filter input.
func (g *Grid) SetColumnInput(fieldName string, value any) {
	g.filters.SetColumnInput(fieldName, value)
	g.emit(FilterChanged, fieldName, nil, 0)
}

// SetFilter upserts an ad-hoc condition by field.
func (g *Grid) SetFilter(fieldName string, value any, kind filter.Kind, t field.Type, params map[string]any) {
	g.filters.SetFilter(fieldName, value, kind, t, params)
	g.emit(FilterChanged, fieldName, nil, 0)
}

// SetFilterFunc upserts an ad-hoc custom-function condition by field.
func (g *Grid) SetFilterFunc(fieldName string, value any, fn filter.Func, params map[string]any) {
	g.filters.SetFilterFunc(fieldName, value, fn, params)
	g.emit(FilterChanged, fieldName, nil, 0)
}

// RemoveFilter deletes the ad-hoc condition for a field.
func (g *Grid) RemoveFilter(fieldName string) {
	g.filters.RemoveFilter(fieldName)
	g.emit(FilterChanged, fieldName, nil, 0)
}

// ActivateColumn is the sort entry point: it toggles the column's sort state
// and refreshes on the current page.
func (g *Grid) ActivateColumn(ctx context.Context, fieldName string) error {
	g.sorter.Activate(fieldName)
	g.emit(SortChanged, fieldName, nil, 0)
	return g.Refresh(ctx, g.State().CurrentPage)
}

// Refresh runs one full filter/sort/page resolution for the requested page
// and hands the outcome to the renderer. In remote mode a failure of the
// retrieval propagates to the caller; nothing is rendered in that case.
func (g *Grid) Refresh(ctx context.Context, requestedPage any) error {
	token := g.refreshSeq.Add(1)
	start := time.Now()
	g.emit(RefreshStart, requestedPage, nil, 0)

	var err error
	if g.mode == ModeRemote {
		err = g.refreshRemote(ctx, requestedPage, token)
	} else {
		err = g.refreshLocal(ctx, requestedPage)
	}

	if err != nil {
		g.emit(RefreshFailed, requestedPage, err, time.Since(start))
		return err
	}
	g.emit(RefreshSuccess, requestedPage, nil, time.Since(start))
	return nil
}

// refreshLocal mutates the working dataset through the coordinators, then
// slices out the visible page. The total reported to the renderer is the
// working length after filtering, before slicing.
func (g *Grid) refreshLocal(ctx context.Context, requestedPage any) error {
	if err := g.bus.Trigger(ctx, EventRefresh); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	total := g.cache.RowCount()
	totalPages := page.TotalPages(total, g.pageSize)
	current := page.Validate(requestedPage, totalPages)

	g.setState(page.State{
		CurrentPage: current,
		PageSize:    g.pageSize,
		TotalRows:   total,
		WindowSize:  g.windowSize,
	})

	rows := page.Slice(g.cache.Working(), current, g.pageSize)
	g.renderer.RenderRows(rows, total)
	return nil
}

// refreshRemote assembles one parameter bag through the chain, sends it to
// the remote source, and renders whatever the source reports. Responses that
// lost the race against a newer refresh are discarded.
func (g *Grid) refreshRemote(ctx context.Context, requestedPage any, token uint64) error {
	current := page.Validate(requestedPage, math.MaxInt)

	bag := ParameterBag{ParamPage: current}
	chained, err := g.bus.Chain(EventBuildParams, bag)
	if err != nil {
		return fmt.Errorf("building request parameters: %w", err)
	}
	bag = chained.(ParameterBag)

	result, err := g.fetcher.Get(ctx, g.locator, bag)
	if err != nil {
		return fmt.Errorf("remote refresh: %w", err)
	}

	if token != g.refreshSeq.Load() {
		g.logger.Debug("discarding stale remote response", zap.Uint64("token", token))
		return nil
	}

	res, err := decodeFetchResult(result)
	if err != nil {
		return fmt.Errorf("remote refresh: %w", err)
	}

	g.cache.Replace(res.Rows)

	totalPages := page.TotalPages(res.Total, g.pageSize)
	g.setState(page.State{
		CurrentPage: page.Validate(current, totalPages),
		PageSize:    g.pageSize,
		TotalRows:   res.Total,
		WindowSize:  g.windowSize,
	})

	g.renderer.RenderRows(res.Rows, res.Total)
	return nil
}

func (g *Grid) setState(s page.State) {
	g.stateMu.Lock()
	defer g.stateMu.Unlock()
	g.state = s
}
