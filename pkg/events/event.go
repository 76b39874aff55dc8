// Package events describes the notifications emitted by interaction changes
// and delivers them to subscribers.
//
// An [Event] is a plain value naming what happened and to which node. A
// [Publisher] delivers events somewhere: the in-memory [Bus] for local
// subscribers, [RedisPublisher] for other processes, [LogPublisher] for the
// debug log. [Multi] fans out to several publishers.
package events

import "context"

// Name identifies the kind of an event.
type Name string

const (
	NodeEnter   Name = "node.enter"
	NodeLeave   Name = "node.leave"
	NodeLock    Name = "node.lock"
	NodeUnlock  Name = "node.unlock"
	NodeRoot    Name = "node.root"
	NodeUnroot  Name = "node.unroot"
	NodeQuery   Name = "node.query"
	NodeUnquery Name = "node.unquery"
	QueryBatch  Name = "query.batch"
)

// Data is the payload of an event. Fields that do not apply are empty.
type Data struct {
	NodeID string  `json:"id,omitempty"`
	Class  string  `json:"class,omitempty"`
	Mode   string  `json:"mode,omitempty"`
	Batch  []Event `json:"batch,omitempty"`
}

// Event is one interaction notification.
type Event struct {
	Name Name `json:"name"`
	Data Data `json:"data"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// PublisherFunc adapts a function to [Publisher].
type PublisherFunc func(ctx context.Context, ev Event) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, ev Event) error { return f(ctx, ev) }
