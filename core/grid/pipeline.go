package grid

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// StepFunc consumes the parsed result of a pipeline step's retrieval.
type StepFunc func(result any) error

type step struct {
	locator string
	fn      StepFunc
	key     uintptr
}

// Pipeline runs ordered asynchronous retrieval steps grouped under named
// events, independently of the main refresh cycle. Typical steps populate
// filter option lists or replace the dataset wholesale.
type Pipeline struct {
	mu      sync.RWMutex
	steps   map[string][]step
	fetcher Fetcher
	logger  *zap.Logger
}

// NewPipeline creates a Pipeline that retrieves through the given fetcher.
func NewPipeline(fetcher Fetcher, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		steps:   make(map[string][]step),
		fetcher: fetcher,
		logger:  logger,
	}
}

// AddStep appends a step under the named event. Re-registering an identical
// callback under the same name is a no-op with a diagnostic.
func (p *Pipeline) AddStep(event string, fn StepFunc, locator string) {
	if fn == nil {
		p.logger.Warn("ignoring pipeline step with nil callback", zap.String("event", event))
		return
	}
	key := reflect.ValueOf(fn).Pointer()

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.steps[event] {
		if s.key == key {
			p.logger.Warn("pipeline step already registered",
				zap.String("event", event),
				zap.String("locator", locator))
			return
		}
	}
	p.steps[event] = append(p.steps[event], step{locator: locator, fn: fn, key: key})
}

// HasSteps reports whether any steps are registered under the named event.
func (p *Pipeline) HasSteps(event string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.steps[event]) > 0
}

// Execute runs every step registered under the named event sequentially in
// registration order, retrieving each step's locator and handing the parsed
// result to its callback. A failure halts the remaining steps and is
// returned; already-executed steps are not rolled back.
func (p *Pipeline) Execute(ctx context.Context, event string) error {
	p.mu.RLock()
	steps := make([]step, len(p.steps[event]))
	copy(steps, p.steps[event])
	p.mu.RUnlock()

	if len(steps) > 0 && p.fetcher == nil {
		return fmt.Errorf("pipeline event %q: no fetcher configured", event)
	}

	for i, s := range steps {
		result, err := p.fetcher.Get(ctx, s.locator, nil)
		if err != nil {
			return fmt.Errorf("pipeline event %q step %d (%s): %w", event, i, s.locator, err)
		}
		if err := s.fn(result); err != nil {
			return fmt.Errorf("pipeline event %q step %d callback: %w", event, i, err)
		}
	}
	return nil
}
