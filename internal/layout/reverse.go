package layout

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/soochol/agentcanvas/internal/dag"
	"github.com/soochol/agentcanvas/internal/flow"
)

// display keys that are not task fields; role is one for the smart email
// manager
var nonTaskKeys = map[string]bool{
	"label":       true,
	"subtype":     true,
	"description": true,
	"role":        true,
	"type":        true,
}

// ToAgent rebuilds an agent resource from a canvas. The persona comes from
// the first persona node, one document per documents-node source, the tasks
// from task nodes in chain order, and one update per updates node. Nodes
// that cannot be read are skipped and logged.
func ToAgent(w flow.Workflow) flow.Agent {
	a := flow.Agent{
		ID:        w.AgentID,
		Documents: []flow.Document{},
		Tasks:     []flow.Task{},
		Updates:   []flow.Update{},
	}

	if personas := w.NodesOfType(flow.NodeTypePersona); len(personas) > 0 {
		d := personas[0].Data
		a.Persona = flow.Persona{
			Name:        d.String("label"),
			Qualities:   d.String("role"),
			Description: d.String("description"),
		}
	}

	for _, n := range w.NodesOfType(flow.NodeTypeDocuments) {
		for _, src := range n.Data.Strings("sources") {
			a.Documents = append(a.Documents, flow.Document{Name: n.Data.String("label"), Path: src})
		}
	}

	for _, n := range taskChain(w) {
		t, err := nodeTask(n)
		if err != nil {
			slog.Warn("layout: skipping task node", "node", n.ID, "err", err)
			continue
		}
		a.Tasks = append(a.Tasks, t)
	}

	for _, n := range w.NodesOfType(flow.NodeTypeUpdates) {
		if to := n.Data.String("recipient"); to != "" {
			a.Updates = append(a.Updates, flow.Update{Type: flow.UpdateMail, To: to})
			continue
		}
		if strings.HasPrefix(n.Data.String("label"), "Mail") {
			a.Updates = append(a.Updates, flow.Update{Type: flow.UpdateMail})
			continue
		}
		a.Updates = append(a.Updates, flow.Update{Type: flow.UpdateAPI, Endpoint: n.Data.String("endpoint")})
	}
	return a
}

// taskChain orders task nodes along their task -> task edges. Unlinked tasks
// keep canvas order; a cycle falls back to canvas order entirely.
func taskChain(w flow.Workflow) []flow.Node {
	tasks := w.NodesOfType(flow.NodeTypeTask)
	ids := make(map[string]bool, len(tasks))
	for _, n := range tasks {
		ids[n.ID] = true
	}
	var links []flow.Edge
	for _, e := range w.Edges {
		if ids[e.Source] && ids[e.Target] {
			links = append(links, e)
		}
	}

	d, err := dag.Build(tasks, links)
	if err != nil {
		if !errors.Is(err, dag.ErrCycle) {
			slog.Warn("layout: task graph unreadable, using canvas order", "err", err)
		}
		return tasks
	}
	out := make([]flow.Node, 0, len(tasks))
	for _, id := range d.TopologicalOrder() {
		n, _ := d.Node(id)
		out = append(out, n)
	}
	return out
}

func nodeTask(n flow.Node) (flow.Task, error) {
	tt, ok := flow.ParseTaskType(n.Data.String("subtype"))
	if !ok {
		tt = flow.TaskType(n.Data.String("type"))
	}
	if tt == "" {
		return flow.Task{}, errors.New("task node has no subtype")
	}

	fields := map[string]any{}
	for k, v := range n.Data {
		if nonTaskKeys[k] && !(k == "role" && tt == flow.TaskSmartEmailManager) {
			continue
		}
		fields[flow.CamelToSnake(k)] = v
	}
	if tt == flow.TaskSmartEmailManager {
		if action, ok := fields["action"].(string); ok {
			fields["action"] = flow.NormalizeEmailAction(action)
		}
	}
	fields["type"] = string(tt)
	if _, ok := fields["frequency"]; !ok {
		fields["frequency"] = "daily"
	}

	b, err := json.Marshal(fields)
	if err != nil {
		return flow.Task{}, err
	}
	var t flow.Task
	if err := json.Unmarshal(b, &t); err != nil {
		return flow.Task{}, err
	}
	return t, nil
}
