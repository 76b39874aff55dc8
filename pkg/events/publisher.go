package events

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
)

// Multi publishes to every publisher in order and joins their errors.
type Multi []Publisher

// Publish implements [Publisher].
func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogPublisher writes every event to a logger at debug level.
type LogPublisher struct {
	Logger *log.Logger
}

// Publish implements [Publisher].
func (p LogPublisher) Publish(_ context.Context, ev Event) error {
	if p.Logger == nil {
		return nil
	}
	kv := []any{"event", ev.Name}
	if ev.Data.NodeID != "" {
		kv = append(kv, "node", ev.Data.NodeID)
	}
	if ev.Data.Class != "" {
		kv = append(kv, "class", ev.Data.Class)
	}
	if ev.Data.Mode != "" {
		kv = append(kv, "mode", ev.Data.Mode)
	}
	if n := len(ev.Data.Batch); n > 0 {
		kv = append(kv, "batch", n)
	}
	p.Logger.Debug("interaction", kv...)
	return nil
}

// Recorder keeps every published event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements [Publisher].
func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names returns the names of the recorded events.
func (r *Recorder) Names() []Name {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Name, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Name
	}
	return out
}

// Reset forgets the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
