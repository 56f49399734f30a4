// Package bus implements the priority-ordered notification channel the grid's
// coordinators communicate through. Handlers for one event never reference
// each other; ordering between them is expressed solely through priorities.
//
// Two invocation modes exist. Trigger is fire-and-forget: every handler runs
// strictly in priority order and a handler that performs blocking work
// completes before the next one starts, so side effects across handlers of a
// single trigger are totally ordered. Chain is a synchronous left fold used to
// let independent subscribers cooperatively build a single value, such as one
// request's parameter set.
package bus

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Handler receives the arguments passed to Trigger. Returning an error aborts
// the remaining handlers for that call and propagates to the caller.
type Handler func(ctx context.Context, args ...any) error

// ChainHandler receives the previous handler's return value and returns the
// value handed to the next one.
type ChainHandler func(value any) (any, error)

type entry struct {
	priority int
	seq      uint64
	handler  Handler
}

type chainEntry struct {
	priority int
	seq      uint64
	handler  ChainHandler
}

// Bus is a priority-ordered publish/subscribe channel.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]entry
	chains   map[string][]chainEntry
	seq      uint64
	logger   *zap.Logger
}

// New creates an empty Bus.
func New(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[string][]entry),
		chains:   make(map[string][]chainEntry),
		logger:   logger,
	}
}

// Subscribe registers a handler for the named event. Handlers are invoked in
// ascending priority order; ties preserve insertion order. The returned
// function removes the handler again.
func (b *Bus) Subscribe(name string, handler Handler, priority int) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	seq := b.seq
	b.handlers[name] = append(b.handlers[name], entry{priority: priority, seq: seq, handler: handler})
	sort.SliceStable(b.handlers[name], func(i, j int) bool {
		return b.handlers[name][i].priority < b.handlers[name][j].priority
	})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		entries := b.handlers[name]
		for i := range entries {
			if entries[i].seq == seq {
				b.handlers[name] = append(entries[:i], entries[i+1:]...)
				return
			}
		}
	}
}

// SubscribeChain registers a value-chaining handler for the named event, with
// the same ordering rules as Subscribe.
func (b *Bus) SubscribeChain(name string, handler ChainHandler, priority int) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	seq := b.seq
	b.chains[name] = append(b.chains[name], chainEntry{priority: priority, seq: seq, handler: handler})
	sort.SliceStable(b.chains[name], func(i, j int) bool {
		return b.chains[name][i].priority < b.chains[name][j].priority
	})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		entries := b.chains[name]
		for i := range entries {
			if entries[i].seq == seq {
				b.chains[name] = append(entries[:i], entries[i+1:]...)
				return
			}
		}
	}
}

// Trigger invokes every handler registered for name, strictly in priority
// order. Each handler finishes before the next begins. The first error aborts
// the remaining handlers and is returned. Triggering an unregistered name is
// a no-op.
func (b *Bus) Trigger(ctx context.Context, name string, args ...any) error {
	b.mu.RLock()
	entries := make([]entry, len(b.handlers[name]))
	copy(entries, b.handlers[name])
	b.mu.RUnlock()

	for _, e := range entries {
		if err := e.handler(ctx, args...); err != nil {
			b.logger.Debug("event handler failed", zap.String("event", name), zap.Error(err))
			return err
		}
	}
	return nil
}

// Chain folds the registered chain handlers for name over the initial value,
// left to right in priority order. The first error aborts the fold and is
// returned. Chaining an unregistered name returns initial unchanged.
func (b *Bus) Chain(name string, initial any) (any, error) {
	b.mu.RLock()
	entries := make([]chainEntry, len(b.chains[name]))
	copy(entries, b.chains[name])
	b.mu.RUnlock()

	value := initial
	for _, e := range entries {
		next, err := e.handler(value)
		if err != nil {
			b.logger.Debug("chain handler failed", zap.String("event", name), zap.Error(err))
			return nil, err
		}
		value = next
	}
	return value, nil
}
