// Package eventbus is an in-memory publish/subscribe bus used to fan tool
// call outcomes out to observers such as the execution history recorder.
//
// Design:
//   - Buffered channel per subscriber (buffer=100).
//   - Publish never blocks a tool call: a full subscriber buffer drops the event.
//   - Close ends every subscription so consumer loops can return.
//   - No persistence; observers that need durability store events themselves.
package eventbus

import "sync"

// Topic names an event stream.
type Topic string

const (
	// TopicCommandExecuted carries a tool.ExecutionEvent for every call that reached the executor.
	TopicCommandExecuted Topic = "command.executed"
	// TopicCommandRejected carries a tool.RejectionEvent for calls refused by validation.
	TopicCommandRejected Topic = "command.rejected"
)

// Event is a single published message.
type Event struct {
	Topic   Topic
	Payload any
}

// EventBus is the interface for publishing and subscribing to topics.
type EventBus interface {
	Publish(topic Topic, payload any)
	Subscribe(topic Topic) <-chan Event
}

const defaultBufferSize = 100

// Bus is the in-memory implementation of EventBus.
type Bus struct {
	mu          sync.RWMutex
	closed      bool
	subscribers map[Topic][]chan Event
}

// New returns a new in-memory Bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[Topic][]chan Event),
	}
}

// Subscribe registers a new subscriber for topic and returns a read-only channel.
// Subscribing to a closed bus yields an already closed channel.
func (b *Bus) Subscribe(topic Topic) <-chan Event {
	ch := make(chan Event, defaultBufferSize)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	return ch
}

// Publish sends an Event to all subscribers of topic.
// If a subscriber's buffer is full the event is dropped (non-blocking).
func (b *Bus) Publish(topic Topic, payload any) {
	evt := Event{Topic: topic, Payload: payload}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subscribers[topic] {
		select {
		case ch <- evt:
		default:
			// buffer full, drop
		}
	}
}

// Close closes every subscriber channel. Later Publish calls are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for topic, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
		delete(b.subscribers, topic)
	}
}
