// Package flow holds the canvas and agent domain types shared by every
// other package: nodes, edges, workflow snapshots and the remote agent
// resource.
package flow

import (
	"encoding/json"
	"time"
)

type NodeType string

const (
	NodeTypePersona      NodeType = "persona"
	NodeTypeDocuments    NodeType = "documents"
	NodeTypeTask         NodeType = "task"
	NodeTypeUpdates      NodeType = "updates"
	NodeTypeAgent        NodeType = "agent"
	NodeTypeOrchestrator NodeType = "orchestrator"
)

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypePersona, NodeTypeDocuments, NodeTypeTask, NodeTypeUpdates, NodeTypeAgent, NodeTypeOrchestrator:
		return true
	}
	return false
}

// Handle names on the agent root node and on orchestra cards.
const (
	HandlePersona      = "persona"
	HandleDocuments    = "documents"
	HandleTaskWorkflow = "task-workflow"
	HandleTaskLeft     = "task-left"
	HandleTaskRight    = "task-right"
	HandleUpdates      = "updates"

	HandleTop    = "top"
	HandleBottom = "bottom"
	HandleLeft   = "left"
	HandleRight  = "right"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Node struct {
	ID        string   `json:"id"`
	Type      NodeType `json:"type"`
	Position  Position `json:"position"`
	Data      Data     `json:"data"`
	Deletable *bool    `json:"deletable,omitempty"`
	Draggable *bool    `json:"draggable,omitempty"`
}

// IsDeletable reports whether the renderer may offer deletion of n.
func (n Node) IsDeletable() bool { return n.Deletable == nil || *n.Deletable }

// IsDraggable reports whether n may be repositioned.
func (n Node) IsDraggable() bool { return n.Draggable == nil || *n.Draggable }

// Clone returns a copy of n whose data bag can be mutated independently.
func (n Node) Clone() Node {
	n.Data = n.Data.Clone()
	return n
}

type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Animated     bool   `json:"animated,omitempty"`
}

// SameConnection reports whether e and o join the same endpoints through the
// same handles, ignoring ids.
func (e Edge) SameConnection(o Edge) bool {
	return e.Source == o.Source && e.Target == o.Target &&
		e.SourceHandle == o.SourceHandle && e.TargetHandle == o.TargetHandle
}

// Touches reports whether nodeID is either end of e.
func (e Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// Workflow is the save snapshot of a canvas.
type Workflow struct {
	Nodes   []Node `json:"nodes"`
	Edges   []Edge `json:"edges"`
	AgentID string `json:"agentId,omitempty"`
}

// NodesOfType returns the nodes of type t in canvas order.
func (w *Workflow) NodesOfType(t NodeType) []Node {
	var out []Node
	for _, n := range w.Nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// CanvasRecord is a saved canvas as kept by the repository.
type CanvasRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Workflow  Workflow  `json:"workflow"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Data is the free-form key/value bag carried by a node.
type Data map[string]any

// String returns the string stored under key, or "".
func (d Data) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Strings returns the list stored under key. Both []string and the []any
// produced by JSON decoding are accepted; non-string items are skipped.
func (d Data) Strings(key string) []string {
	switch v := d[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Bool returns the boolean stored under key, or false.
func (d Data) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}

// Int returns the number stored under key, accepting the float64 of JSON
// decoding. ok is false when the key holds no number.
func (d Data) Int(key string) (int, bool) {
	switch v := d[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

// Clone copies the bag, including nested slices and maps.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

// Equal compares two bags by their JSON encoding, so []string and the
// equivalent []any compare equal.
func (d Data) Equal(o Data) bool {
	a, errA := json.Marshal(d)
	b, errB := json.Marshal(o)
	if errA != nil || errB != nil {
		return false
	}
	return string(a) == string(b)
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case Data:
		return val.Clone()
	default:
		return v
	}
}
