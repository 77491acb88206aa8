package layout

import (
	"math"

	"github.com/soochol/agentcanvas/internal/canvas"
	"github.com/soochol/agentcanvas/internal/flow"
)

var orchestraCenter = flow.Position{X: 500, Y: 300}

const orchestraRadius = 200

// Orchestra places the orchestrator in the centre and the agents evenly on a
// circle around it, each fed by one animated edge from the orchestrator.
func Orchestra(agents []flow.Agent) ([]flow.Node, []flow.Edge) {
	nodes := []flow.Node{{
		ID:       canvas.OrchestratorID,
		Type:     flow.NodeTypeOrchestrator,
		Position: orchestraCenter,
		Data:     flow.Data{"label": "Orchestrator"},
	}}
	edges := []flow.Edge{}

	for i, a := range agents {
		angle := 2 * math.Pi * float64(i) / float64(len(agents))
		pos := flow.Position{
			X: orchestraCenter.X + orchestraRadius*math.Cos(angle),
			Y: orchestraCenter.Y + orchestraRadius*math.Sin(angle),
		}
		nodes = append(nodes, flow.Node{
			ID:       a.ID,
			Type:     flow.NodeTypeAgent,
			Position: pos,
			Data:     flow.Data{"personaName": a.Persona.Name},
		})
		src, tgt := quadrantHandles(pos)
		edges = append(edges, flow.Edge{
			ID:           canvas.EdgeID(canvas.OrchestratorID, a.ID),
			Source:       canvas.OrchestratorID,
			Target:       a.ID,
			SourceHandle: src,
			TargetHandle: tgt,
			Animated:     true,
		})
	}
	return nodes, edges
}

// quadrantHandles picks handles from the quadrant pos falls in around the
// centre. Screen y grows downwards, so "top" means y <= centre.
func quadrantHandles(pos flow.Position) (source, target string) {
	right := pos.X >= orchestraCenter.X
	top := pos.Y <= orchestraCenter.Y
	switch {
	case top && right:
		return flow.HandleRight, flow.HandleLeft
	case top:
		return flow.HandleLeft, flow.HandleRight
	default:
		return flow.HandleBottom, flow.HandleTop
	}
}
