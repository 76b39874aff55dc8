package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Handler receives events from a [Bus].
type Handler func(ev Event)

type subscription struct {
	handler Handler
	filter  func(Event) bool
}

// Bus delivers events synchronously to in-process subscribers, in
// subscription order.
//
// The zero value is not usable - use NewBus.
type Bus struct {
	mu    sync.RWMutex
	subs  map[string]subscription
	order []string
}

// NewBus returns a bus without subscribers.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]subscription)}
}

// Subscribe registers h for every event and returns the subscription id.
func (b *Bus) Subscribe(h Handler) string {
	return b.SubscribeWithFilter(h, nil)
}

// SubscribeWithFilter registers h for the events accepted by filter. A nil
// filter accepts everything.
func (b *Bus) SubscribeWithFilter(h Handler, filter func(Event) bool) string {
	id := uuid.NewString()
	b.mu.Lock()
	b.subs[id] = subscription{handler: h, filter: filter}
	b.order = append(b.order, id)
	b.mu.Unlock()
	return id
}

// SubscribeNames registers h for the given event names only.
func (b *Bus) SubscribeNames(h Handler, names ...Name) string {
	set := make(map[Name]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return b.SubscribeWithFilter(h, func(ev Event) bool { return set[ev.Name] })
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[id]; !ok {
		return
	}
	delete(b.subs, id)
	for i, s := range b.order {
		if s == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// SubscriptionCount returns the number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers ev to every matching subscriber. Handlers run without the
// bus lock held, so they may subscribe or unsubscribe.
func (b *Bus) Publish(_ context.Context, ev Event) error {
	b.mu.RLock()
	subs := make([]subscription, 0, len(b.order))
	for _, id := range b.order {
		subs = append(subs, b.subs[id])
	}
	b.mu.RUnlock()

	for _, s := range subs {
		if s.filter == nil || s.filter(ev) {
			s.handler(ev)
		}
	}
	return nil
}
