package grid

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a grid lifecycle event.
type EventType string

// Emitted lifecycle events.
const (
	RefreshStart   EventType = "refresh.start"
	RefreshSuccess EventType = "refresh.success"
	RefreshFailed  EventType = "refresh.failed"
	FilterChanged  EventType = "filter.changed"
	SortChanged    EventType = "sort.changed"
)

// GridEvent is the payload delivered to lifecycle subscribers.
type GridEvent struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   any            `json:",omitempty"`
	Error     *string        `json:",omitempty"`
	Duration  *time.Duration `json:",omitempty"`
}

// RegisterSubscriptionOptions configures a lifecycle subscription.
type RegisterSubscriptionOptions struct {
	Event       EventType
	Callback    func(ctx context.Context, event GridEvent) error
	Label       *string
	Description *string
}

// SubscriptionInfo describes an active lifecycle subscription.
type SubscriptionInfo struct {
	Id          *string
	Event       EventType
	Unsubscribe func()
	Label       *string
	Description *string
}

// emit publishes a lifecycle event on the typed event bus.
func (g *Grid) emit(t EventType, payload any, err error, duration time.Duration) {
	if g.events == nil {
		return
	}
	event := GridEvent{
		Type:      t,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	if err != nil {
		errStr := err.Error()
		event.Error = &errStr
	}
	if duration > 0 {
		event.Duration = &duration
	}
	g.events.Emit(string(t), event)
}

// RegisterSubscription registers a callback for a lifecycle event. It returns
// a unique ID that can be used to unregister the subscription later.
func (g *Grid) RegisterSubscription(options RegisterSubscriptionOptions) string {
	g.subMu.Lock()
	defer g.subMu.Unlock()

	unsubscribe := g.events.Subscribe(string(options.Event), func(ctx context.Context, event GridEvent) error {
		return options.Callback(ctx, event)
	})
	id := uuid.New().String()

	g.subscriptions[id] = &SubscriptionInfo{
		Id:          &id,
		Event:       options.Event,
		Unsubscribe: unsubscribe,
		Label:       options.Label,
		Description: options.Description,
	}
	return id
}

// UnregisterSubscription removes a subscription by its ID.
func (g *Grid) UnregisterSubscription(id string) {
	g.subMu.Lock()
	defer g.subMu.Unlock()

	if info, ok := g.subscriptions[id]; ok {
		info.Unsubscribe()
		delete(g.subscriptions, id)
	}
}

// Subscriptions returns a list of all currently active subscriptions.
func (g *Grid) Subscriptions() []SubscriptionInfo {
	g.subMu.RLock()
	defer g.subMu.RUnlock()

	subs := make([]SubscriptionInfo, 0, len(g.subscriptions))
	for _, sub := range g.subscriptions {
		subs = append(subs, *sub)
	}
	return subs
}
