package canvas

import (
	"context"
	"sync"
	"time"

	"github.com/soochol/agentcanvas/internal/flow"
)

type EventType string

const (
	EventNodeAdded   EventType = "node.added"
	EventNodeUpdated EventType = "node.updated"
	EventNodeMoved   EventType = "node.moved"
	EventNodeRemoved EventType = "node.removed"
	EventEdgeAdded   EventType = "edge.added"
	EventEdgeRemoved EventType = "edge.removed"
)

// Event describes one accepted mutation of a canvas.
type Event struct {
	CanvasID  string     `json:"canvas_id"`
	Type      EventType  `json:"type"`
	Node      *flow.Node `json:"node,omitempty"`
	Edge      *flow.Edge `json:"edge,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

type EventHandler func(Event)

// EventBus fans canvas events out to subscribers synchronously.
type EventBus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[int]EventHandler)}
}

// Subscribe registers handler and returns a function that removes it.
func (b *EventBus) Subscribe(handler EventHandler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()
	for _, h := range handlers {
		h(event)
	}
}

// Channel delivers the events of one canvas until ctx is done. Events are
// dropped when the buffer is full.
func (b *EventBus) Channel(ctx context.Context, canvasID string, bufSize int) <-chan Event {
	ch := make(chan Event, bufSize)
	var mu sync.Mutex
	closed := false
	unsubscribe := b.Subscribe(func(e Event) {
		if e.CanvasID != canvasID {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- e:
		default:
		}
	})
	go func() {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()
	return ch
}
