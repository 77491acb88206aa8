package canvas

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/soochol/agentcanvas/internal/flow"
)

func TestEventBus_SubscribeUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	var mu sync.Mutex
	count := 0
	unsubscribe := bus.Subscribe(func(e Event) { mu.Lock(); count++; mu.Unlock() })

	bus.Publish(Event{CanvasID: "c1", Type: EventNodeAdded})
	unsubscribe()
	bus.Publish(Event{CanvasID: "c1", Type: EventNodeAdded})

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Errorf("count: got %d, want 1", count)
	}
}

func TestEventBus_ChannelFiltersCanvas(t *testing.T) {
	bus := NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := bus.Channel(ctx, "c1", 10)

	bus.Publish(Event{CanvasID: "other", Type: EventNodeAdded})
	bus.Publish(Event{CanvasID: "c1", Type: EventEdgeAdded})

	select {
	case ev := <-ch:
		if ev.Type != EventEdgeAdded {
			t.Errorf("type: got %q, want %q", ev.Type, EventEdgeAdded)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestEventBus_ChannelClosesOnCancel(t *testing.T) {
	bus := NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	ch := bus.Channel(ctx, "c1", 1)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	bus.Publish(Event{CanvasID: "c1", Type: EventNodeAdded})
}

func TestCanvas_PublishesMutations(t *testing.T) {
	bus := NewEventBus()
	var got []EventType
	bus.Subscribe(func(e Event) { got = append(got, e.Type) })

	c := NewBuilder("c1", WithEventBus(bus), WithIDFunc(seqIDs()))
	p, _ := c.AddNode(flow.NodeTypePersona, "")
	_, _ = c.Connect(flow.Edge{Source: p.ID, Target: RootID, TargetHandle: "persona"})
	_, _ = c.MoveNode(p.ID, flow.Position{X: 1})
	_ = c.DeleteNode(p.ID)

	want := []EventType{EventNodeAdded, EventEdgeAdded, EventNodeMoved, EventNodeRemoved, EventEdgeRemoved}
	if len(got) != len(want) {
		t.Fatalf("events: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got %s, want %s", i, got[i], want[i])
		}
	}
}
