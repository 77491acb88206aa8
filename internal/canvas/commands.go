package canvas

import (
	"fmt"

	"github.com/soochol/agentcanvas/internal/flow"
)

// Command is a mutation request flowing from a form adapter or the HTTP
// layer to a canvas. Commands are plain values and can be serialized.
type Command interface {
	apply(c *Canvas) (Result, error)
}

// Result reports what a command changed. Only the fields relevant to the
// command are set.
type Result struct {
	Node *flow.Node `json:"node,omitempty"`
	Edge *flow.Edge `json:"edge,omitempty"`
}

type AddNode struct {
	Type    flow.NodeType `json:"type"`
	Subtype string        `json:"subtype,omitempty"`
}

type UpdateNodeData struct {
	NodeID string    `json:"node_id"`
	Patch  flow.Data `json:"patch"`
}

// AppendToList adds Items to the list under Key and merges Patch, in one
// step.
type AppendToList struct {
	NodeID string    `json:"node_id"`
	Key    string    `json:"key"`
	Items  []string  `json:"items"`
	Patch  flow.Data `json:"patch,omitempty"`
}

type DeleteNode struct {
	NodeID string `json:"node_id"`
}

type Connect struct {
	Edge flow.Edge `json:"edge"`
}

type RemoveEdge struct {
	EdgeID string `json:"edge_id"`
}

type MoveNode struct {
	NodeID   string        `json:"node_id"`
	Position flow.Position `json:"position"`
}

// Apply executes cmd against the canvas.
func (c *Canvas) Apply(cmd Command) (Result, error) {
	if cmd == nil {
		return Result{}, fmt.Errorf("canvas %s: nil command", c.id)
	}
	return cmd.apply(c)
}

func (a AddNode) apply(c *Canvas) (Result, error) {
	n, err := c.AddNode(a.Type, a.Subtype)
	if err != nil {
		return Result{}, err
	}
	return Result{Node: &n}, nil
}

func (u UpdateNodeData) apply(c *Canvas) (Result, error) {
	n, err := c.UpdateNodeData(u.NodeID, u.Patch)
	if err != nil {
		return Result{}, err
	}
	return Result{Node: &n}, nil
}

func (a AppendToList) apply(c *Canvas) (Result, error) {
	n, err := c.AppendToList(a.NodeID, a.Key, a.Items, a.Patch)
	if err != nil {
		return Result{}, err
	}
	return Result{Node: &n}, nil
}

func (d DeleteNode) apply(c *Canvas) (Result, error) {
	return Result{}, c.DeleteNode(d.NodeID)
}

func (cn Connect) apply(c *Canvas) (Result, error) {
	e, err := c.Connect(cn.Edge)
	if err != nil {
		return Result{}, err
	}
	return Result{Edge: &e}, nil
}

func (r RemoveEdge) apply(c *Canvas) (Result, error) {
	return Result{}, c.RemoveEdge(r.EdgeID)
}

func (m MoveNode) apply(c *Canvas) (Result, error) {
	n, err := c.MoveNode(m.NodeID, m.Position)
	if err != nil {
		return Result{}, err
	}
	return Result{Node: &n}, nil
}
