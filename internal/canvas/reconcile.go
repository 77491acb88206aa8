package canvas

import (
	"math"

	"github.com/soochol/agentcanvas/internal/flow"
)

// OrchestratorID is the id of the hub node of an orchestra canvas.
const OrchestratorID = "orchestrator"

// OrchestratorEdges restores a missing orchestrator -> agent edge for every
// agent node. Handles follow the dominant axis of the agent's offset from
// the orchestrator.
func OrchestratorEdges(nodes []flow.Node, edges []flow.Edge) []flow.Edge {
	var hub *flow.Node
	for i := range nodes {
		if nodes[i].ID == OrchestratorID {
			hub = &nodes[i]
			break
		}
	}
	if hub == nil {
		return nil
	}

	linked := make(map[string]bool, len(edges))
	for _, e := range edges {
		if e.Source == hub.ID {
			linked[e.Target] = true
		}
	}

	var missing []flow.Edge
	for _, n := range nodes {
		if n.Type != flow.NodeTypeAgent || linked[n.ID] {
			continue
		}
		src, tgt := AxisHandles(n.Position.X-hub.Position.X, n.Position.Y-hub.Position.Y)
		missing = append(missing, flow.Edge{
			ID:           EdgeID(hub.ID, n.ID),
			Source:       hub.ID,
			Target:       n.ID,
			SourceHandle: src,
			TargetHandle: tgt,
			Animated:     true,
		})
	}
	return missing
}

// AxisHandles picks source and target handles for an edge whose target sits
// at offset (dx, dy) from its source.
func AxisHandles(dx, dy float64) (source, target string) {
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return flow.HandleRight, flow.HandleLeft
		}
		return flow.HandleLeft, flow.HandleRight
	}
	if dy > 0 {
		return flow.HandleBottom, flow.HandleTop
	}
	return flow.HandleTop, flow.HandleBottom
}
