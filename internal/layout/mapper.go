// Package layout converts between remote agent resources and canvas
// graphs. Positions are fixed functions of list indexes, so mapping the
// same agent twice yields the same graph.
package layout

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/soochol/agentcanvas/internal/canvas"
	"github.com/soochol/agentcanvas/internal/flow"
)

const (
	personaX, personaY = 100, 100
	documentsX         = 500
	tasksX             = 800
	columnWidth        = 300
	rowTop, rowHeight  = 200, 200
	tasksPerColumn     = 3
)

// FromAgent lays an agent out as a chain: persona, then one documents node
// per document (each fed by the persona), then the tasks in order (the first
// fed by the last document), then one updates node per update (each fed by
// the last task). The result has one edge fewer than nodes.
func FromAgent(a flow.Agent) ([]flow.Node, []flow.Edge) {
	var (
		nodes []flow.Node
		edges []flow.Edge
		index int
	)
	link := func(from, to string) {
		edges = append(edges, flow.Edge{ID: canvas.EdgeID(from, to), Source: from, Target: to})
	}

	personaID := fmt.Sprintf("persona-%d", index)
	nodes = append(nodes, flow.Node{
		ID:       personaID,
		Type:     flow.NodeTypePersona,
		Position: flow.Position{X: personaX, Y: personaY},
		Data: flow.Data{
			"label":       orDefault(a.Persona.Name, "Agent Persona"),
			"description": a.Persona.Description,
			"role":        a.Persona.Qualities,
		},
	})
	index++
	last := personaID

	for i, doc := range a.Documents {
		id := fmt.Sprintf("documents-%d", index)
		nodes = append(nodes, flow.Node{
			ID:       id,
			Type:     flow.NodeTypeDocuments,
			Position: flow.Position{X: documentsX, Y: float64(rowTop + i*rowHeight)},
			Data: flow.Data{
				"label":   orDefault(doc.Name, fmt.Sprintf("Document %d", i+1)),
				"sources": []string{doc.Path},
			},
		})
		link(personaID, id)
		index++
	}
	if len(a.Documents) > 0 {
		last = nodes[len(nodes)-1].ID
	}

	for i, task := range a.Tasks {
		id := fmt.Sprintf("task-%s-%d", task.Type, index)
		nodes = append(nodes, flow.Node{
			ID:   id,
			Type: flow.NodeTypeTask,
			Position: flow.Position{
				X: float64(tasksX + (i/tasksPerColumn)*columnWidth),
				Y: float64(rowTop + (i%tasksPerColumn)*rowHeight),
			},
			Data: taskData(task),
		})
		link(last, id)
		last = id
		index++
	}

	updatesX := tasksX + int(math.Ceil(float64(len(a.Tasks))/tasksPerColumn))*columnWidth
	for i, u := range a.Updates {
		id := fmt.Sprintf("updates-%s-%d", u.Type, index)
		data := flow.Data{
			"label":     updateLabel(u.Type),
			"frequency": "daily",
		}
		if u.Type == flow.UpdateAPI {
			data["endpoint"] = u.Endpoint
		} else {
			data["recipient"] = u.To
		}
		nodes = append(nodes, flow.Node{
			ID:       id,
			Type:     flow.NodeTypeUpdates,
			Position: flow.Position{X: float64(updatesX), Y: float64(rowTop + i*rowHeight)},
			Data:     data,
		})
		link(last, id)
		index++
	}

	if edges == nil {
		edges = []flow.Edge{}
	}
	return nodes, edges
}

// taskData copies every task field into the data bag under its camelCase
// name, plus the display label and canvas subtype.
func taskData(t flow.Task) flow.Data {
	d := flow.Data{}
	fields, err := t.Fields()
	if err != nil {
		slog.Warn("layout: task fields unavailable", "type", t.Type, "err", err)
	}
	for k, v := range fields {
		d[flow.SnakeToCamel(k)] = v
	}
	if t.Type.Valid() {
		d["label"] = t.Type.Label()
		d["subtype"] = t.Type.Subtype()
	} else {
		d["label"] = flow.TitleCase(string(t.Type))
		d["subtype"] = flow.SnakeToCamel(string(t.Type))
	}
	return d
}

func updateLabel(t flow.UpdateType) string {
	s := string(t)
	if s == "" {
		return "Updates"
	}
	return strings.ToUpper(s[:1]) + s[1:] + " Updates"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
