package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_TriggerPriorityOrder(t *testing.T) {
	b := New(nil)
	var order []string

	record := func(label string) Handler {
		return func(ctx context.Context, args ...any) error {
			order = append(order, label)
			return nil
		}
	}

	b.Subscribe("evt", record("p5"), 5)
	b.Subscribe("evt", record("p1"), 1)
	b.Subscribe("evt", record("p10"), 10)

	err := b.Trigger(context.Background(), "evt")
	assert.NoError(t, err)
	assert.Equal(t, []string{"p1", "p5", "p10"}, order)
}

func TestBus_TriggerTiesPreserveInsertionOrder(t *testing.T) {
	b := New(nil)
	var order []string

	for _, label := range []string{"first", "second", "third"} {
		label := label
		b.Subscribe("evt", func(ctx context.Context, args ...any) error {
			order = append(order, label)
			return nil
		}, 0)
	}

	assert.NoError(t, b.Trigger(context.Background(), "evt"))
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestBus_TriggerUnknownNameIsNoop(t *testing.T) {
	b := New(nil)
	assert.NoError(t, b.Trigger(context.Background(), "nobody-home", 1, 2))
}

func TestBus_TriggerAbortsOnError(t *testing.T) {
	b := New(nil)
	boom := errors.New("boom")
	var reached bool

	b.Subscribe("evt", func(ctx context.Context, args ...any) error { return boom }, 1)
	b.Subscribe("evt", func(ctx context.Context, args ...any) error {
		reached = true
		return nil
	}, 2)

	err := b.Trigger(context.Background(), "evt")
	assert.ErrorIs(t, err, boom)
	assert.False(t, reached, "handlers after a failure must not run")
}

func TestBus_Unsubscribe(t *testing.T) {
	b := New(nil)
	calls := 0
	unsubscribe := b.Subscribe("evt", func(ctx context.Context, args ...any) error {
		calls++
		return nil
	}, 0)

	assert.NoError(t, b.Trigger(context.Background(), "evt"))
	unsubscribe()
	assert.NoError(t, b.Trigger(context.Background(), "evt"))
	assert.Equal(t, 1, calls)
}

func TestBus_ChainFoldsInPriorityOrder(t *testing.T) {
	b := New(nil)

	appendKey := func(key string) ChainHandler {
		return func(value any) (any, error) {
			return append(value.([]string), key), nil
		}
	}

	// Priorities 5, 1, 10 must invoke as 1, then 5, then 10.
	b.SubscribeChain("params", appendKey("five"), 5)
	b.SubscribeChain("params", appendKey("one"), 1)
	b.SubscribeChain("params", appendKey("ten"), 10)

	result, err := b.Chain("params", []string{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"one", "five", "ten"}, result)
}

func TestBus_ChainUnknownNameReturnsInitial(t *testing.T) {
	b := New(nil)
	result, err := b.Chain("nothing", 42)
	assert.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestBus_ChainAbortsOnError(t *testing.T) {
	b := New(nil)
	boom := errors.New("boom")

	b.SubscribeChain("params", func(value any) (any, error) { return nil, boom }, 1)
	b.SubscribeChain("params", func(value any) (any, error) {
		t.Fatal("must not run")
		return value, nil
	}, 2)

	_, err := b.Chain("params", "seed")
	assert.ErrorIs(t, err, boom)
}
