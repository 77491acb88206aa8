// Package canvas is the in-process node/edge model behind the workflow
// builder. Every mutation is applied immediately under the canvas lock,
// followed by the registered reconcilers, and then announced on the event bus.
package canvas

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/soochol/agentcanvas/internal/flow"
)

// RootID is the id of the fixed agent node of a builder canvas.
const RootID = "agent-core"

type Kind string

const (
	KindBuilder   Kind = "builder"
	KindAgent     Kind = "agent"
	KindOrchestra Kind = "orchestra"
)

// Reconciler inspects the current graph and returns edges that should exist
// but do not. It must not modify its arguments.
type Reconciler func(nodes []flow.Node, edges []flow.Edge) []flow.Edge

type Option func(*Canvas)

// WithEventBus publishes every accepted mutation on bus.
func WithEventBus(bus *EventBus) Option {
	return func(c *Canvas) { c.bus = bus }
}

func WithReconciler(r Reconciler) Option {
	return func(c *Canvas) { c.reconcilers = append(c.reconcilers, r) }
}

// WithAgentID binds the canvas to a remote agent.
func WithAgentID(id string) Option {
	return func(c *Canvas) { c.agentID = id }
}

// WithIDFunc replaces the node id generator.
func WithIDFunc(fn func(prefix string) string) Option {
	return func(c *Canvas) { c.newID = fn }
}

// WithPlacement replaces the position chooser for nodes added from the palette.
func WithPlacement(fn func() flow.Position) Option {
	return func(c *Canvas) { c.place = fn }
}

type Canvas struct {
	mu          sync.Mutex
	id          string
	kind        Kind
	agentID     string
	nodes       []flow.Node
	edges       []flow.Edge
	reconcilers []Reconciler
	bus         *EventBus
	newID       func(prefix string) string
	place       func() flow.Position
}

// New builds a canvas over the given nodes and edges. The slices are copied.
func New(id string, kind Kind, nodes []flow.Node, edges []flow.Edge, opts ...Option) *Canvas {
	c := &Canvas{
		id:    id,
		kind:  kind,
		newID: flow.GenerateID,
		place: randomPosition,
	}
	for _, n := range nodes {
		c.nodes = append(c.nodes, n.Clone())
	}
	c.edges = append(c.edges, edges...)
	for _, opt := range opts {
		opt(c)
	}
	c.reconcile()
	return c
}

// NewBuilder returns a blank builder canvas holding only the fixed agent node.
func NewBuilder(id string, opts ...Option) *Canvas {
	return New(id, KindBuilder, []flow.Node{RootNode()}, nil, opts...)
}

// RootNode returns the non-deletable, non-draggable agent node.
func RootNode() flow.Node {
	no := false
	return flow.Node{
		ID:        RootID,
		Type:      flow.NodeTypeAgent,
		Position:  flow.Position{X: 400, Y: 300},
		Data:      flow.Data{},
		Deletable: &no,
		Draggable: &no,
	}
}

func randomPosition() flow.Position {
	return flow.Position{X: rand.Float64() * 500, Y: rand.Float64() * 500}
}

func (c *Canvas) ID() string { return c.id }
func (c *Canvas) Kind() Kind { return c.kind }

func (c *Canvas) AgentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agentID
}

// SetAgentID records the remote agent the canvas was saved as.
func (c *Canvas) SetAgentID(id string) {
	c.mu.Lock()
	c.agentID = id
	c.mu.Unlock()
}

// AddNode appends a node of type t with its default data. A task needs a
// free subtype; without one a *SubtypeRequiredError lists the choices.
func (c *Canvas) AddNode(t flow.NodeType, subtype string) (flow.Node, error) {
	if !paletteTypes[t] {
		return flow.Node{}, fmt.Errorf("%w: %q", ErrUnsupportedNodeType, t)
	}
	if t == flow.NodeTypeTask {
		if subtype == "" {
			return flow.Node{}, &SubtypeRequiredError{Choices: TaskChoices()}
		}
		if isLocked(subtype) {
			return flow.Node{}, fmt.Errorf("%w: %s", ErrSubtypeLocked, subtype)
		}
		tt, ok := flow.ParseTaskType(subtype)
		if !ok {
			return flow.Node{}, fmt.Errorf("%w: %s", ErrUnknownSubtype, subtype)
		}
		subtype = tt.Subtype()
	} else {
		subtype = ""
	}

	c.mu.Lock()
	n := flow.Node{
		ID:       c.newID(string(t)),
		Type:     t,
		Position: c.place(),
		Data:     defaultData(t, subtype),
	}
	c.nodes = append(c.nodes, n)
	added := n.Clone()
	events := []Event{c.event(EventNodeAdded, &added, nil)}
	events = append(events, c.reconcile()...)
	c.mu.Unlock()

	c.publish(events)
	return n.Clone(), nil
}

// UpdateNodeData shallow-merges patch into the node's data. label,
// description and role never end up nil; any other key patched to nil is
// removed. A patch that changes nothing publishes no event.
func (c *Canvas) UpdateNodeData(id string, patch flow.Data) (flow.Node, error) {
	return c.update(id, func(flow.Data) flow.Data { return patch })
}

// AppendToList appends items to the list stored under key and merges extra
// into the same node, reading the current list under the canvas lock.
func (c *Canvas) AppendToList(id, key string, items []string, extra flow.Data) (flow.Node, error) {
	return c.update(id, func(cur flow.Data) flow.Data {
		patch := flow.Data{}
		for k, v := range extra {
			patch[k] = v
		}
		patch[key] = append(cur.Strings(key), items...)
		return patch
	})
}

// update merges the patch built from the node's current data.
func (c *Canvas) update(id string, build func(cur flow.Data) flow.Data) (flow.Node, error) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return flow.Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	before := c.nodes[i].Data
	patch := build(before)
	merged := before.Clone()
	if merged == nil {
		merged = flow.Data{}
	}
	for k, v := range patch {
		switch {
		case v != nil:
			merged[k] = v
		case blankOnNil(k):
			merged[k] = ""
		default:
			delete(merged, k)
		}
	}
	if merged.Equal(before) {
		n := c.nodes[i].Clone()
		c.mu.Unlock()
		return n, nil
	}
	c.nodes[i].Data = merged
	n := c.nodes[i].Clone()
	events := []Event{c.event(EventNodeUpdated, &n, nil)}
	events = append(events, c.reconcile()...)
	c.mu.Unlock()

	c.publish(events)
	return n, nil
}

func blankOnNil(key string) bool {
	return key == "label" || key == "description" || key == "role"
}

// DeleteNode removes the node and every edge touching it. The root agent
// node and any node marked non-deletable are refused.
func (c *Canvas) DeleteNode(id string) error {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	n := c.nodes[i]
	if n.ID == RootID || !n.IsDeletable() {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRootNode, id)
	}
	c.nodes = slices.Delete(c.nodes, i, i+1)

	events := []Event{c.event(EventNodeRemoved, &n, nil)}
	kept := c.edges[:0]
	for _, e := range c.edges {
		if e.Touches(id) {
			removed := e
			events = append(events, c.event(EventEdgeRemoved, nil, &removed))
			continue
		}
		kept = append(kept, e)
	}
	c.edges = kept
	events = append(events, c.reconcile()...)
	c.mu.Unlock()

	c.publish(events)
	return nil
}

// Connect validates e against the connection rules and adds it. An empty id
// becomes e-<source>-<target>. Connecting the same endpoints and handles
// twice returns the existing edge.
func (c *Canvas) Connect(e flow.Edge) (flow.Edge, error) {
	c.mu.Lock()
	si, ti := c.indexOf(e.Source), c.indexOf(e.Target)
	if si < 0 || ti < 0 {
		c.mu.Unlock()
		return flow.Edge{}, rejected("unknown endpoint %s -> %s", e.Source, e.Target)
	}
	if err := checkConnection(c.nodes[si], c.nodes[ti], e); err != nil {
		c.mu.Unlock()
		slog.Debug("canvas: connection rejected", "canvas", c.id, "source", e.Source, "target", e.Target, "err", err)
		return flow.Edge{}, err
	}
	for _, existing := range c.edges {
		if existing.SameConnection(e) {
			c.mu.Unlock()
			return existing, nil
		}
	}
	if e.ID == "" {
		e.ID = EdgeID(e.Source, e.Target)
	}
	c.edges = append(c.edges, e)
	added := e
	events := []Event{c.event(EventEdgeAdded, nil, &added)}
	events = append(events, c.reconcile()...)
	c.mu.Unlock()

	c.publish(events)
	return e, nil
}

// RemoveEdge deletes the edge with the given id.
func (c *Canvas) RemoveEdge(id string) error {
	c.mu.Lock()
	i := slices.IndexFunc(c.edges, func(e flow.Edge) bool { return e.ID == id })
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
	}
	removed := c.edges[i]
	c.edges = slices.Delete(c.edges, i, i+1)
	events := []Event{c.event(EventEdgeRemoved, nil, &removed)}
	events = append(events, c.reconcile()...)
	c.mu.Unlock()

	c.publish(events)
	return nil
}

// MoveNode repositions a draggable node.
func (c *Canvas) MoveNode(id string, pos flow.Position) (flow.Node, error) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return flow.Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if !c.nodes[i].IsDraggable() {
		c.mu.Unlock()
		return flow.Node{}, fmt.Errorf("%w: %s", ErrNotDraggable, id)
	}
	c.nodes[i].Position = pos
	n := c.nodes[i].Clone()
	events := []Event{c.event(EventNodeMoved, &n, nil)}
	events = append(events, c.reconcile()...)
	c.mu.Unlock()

	c.publish(events)
	return n, nil
}

// Node returns a copy of the node with the given id.
func (c *Canvas) Node(id string) (flow.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return flow.Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return c.nodes[i].Clone(), nil
}

func (c *Canvas) Nodes() []flow.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]flow.Node, len(c.nodes))
	for i, n := range c.nodes {
		out[i] = n.Clone()
	}
	return out
}

func (c *Canvas) Edges() []flow.Edge {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.edges)
}

// Snapshot returns a deep copy of the canvas as a save payload.
func (c *Canvas) Snapshot() flow.Workflow {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := flow.Workflow{
		Nodes:   make([]flow.Node, len(c.nodes)),
		Edges:   slices.Clone(c.edges),
		AgentID: c.agentID,
	}
	for i, n := range c.nodes {
		w.Nodes[i] = n.Clone()
	}
	if w.Edges == nil {
		w.Edges = []flow.Edge{}
	}
	return w
}

// EdgeID is the conventional id of an edge between two nodes.
func EdgeID(source, target string) string {
	return "e-" + source + "-" + target
}

func (c *Canvas) indexOf(id string) int {
	return slices.IndexFunc(c.nodes, func(n flow.Node) bool { return n.ID == id })
}

// reconcile runs every reconciler once and appends the edges they report.
// Callers hold c.mu.
func (c *Canvas) reconcile() []Event {
	var events []Event
	for _, r := range c.reconcilers {
		for _, e := range r(c.nodes, c.edges) {
			if slices.ContainsFunc(c.edges, e.SameConnection) {
				continue
			}
			c.edges = append(c.edges, e)
			added := e
			events = append(events, c.event(EventEdgeAdded, nil, &added))
			slog.Info("canvas: reconciled missing edge", "canvas", c.id, "edge", e.ID)
		}
	}
	return events
}

func (c *Canvas) event(t EventType, n *flow.Node, e *flow.Edge) Event {
	return Event{CanvasID: c.id, Type: t, Node: n, Edge: e, Timestamp: time.Now()}
}

func (c *Canvas) publish(events []Event) {
	if c.bus == nil {
		return
	}
	for _, e := range events {
		c.bus.Publish(e)
	}
}
