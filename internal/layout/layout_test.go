package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/soochol/agentcanvas/internal/canvas"
	"github.com/soochol/agentcanvas/internal/flow"
)

func sampleAgent() flow.Agent {
	return flow.Agent{
		ID:      "a1",
		Persona: flow.Persona{Name: "Mia", Qualities: "calm", Description: "assistant"},
		Documents: []flow.Document{
			{Name: "Brand", Path: "/files/brand.pdf"},
			{Name: "", Path: "/files/faq.docx"},
		},
		Tasks: []flow.Task{
			flow.NewTask(&flow.SEOOptimizer{Keywords: []string{"go"}, Content: "c"}, "daily"),
			flow.NewTask(&flow.PostCreator{Topic: "launch", Platform: "LinkedIn"}, "weekly"),
			flow.NewTask(&flow.SmartEmailManager{Action: "Send", To: []string{"a@x.io"}, Role: "sales", WordLimit: 250}, "hourly"),
			flow.NewTask(&flow.CompetitorWatchdog{Websites: []string{"rival.io"}}, "monthly"),
		},
		Updates: []flow.Update{
			{Type: flow.UpdateAPI, Endpoint: "https://hook"},
			{Type: flow.UpdateMail, To: "ops@x.io"},
		},
	}
}

func TestFromAgent_Layout(t *testing.T) {
	nodes, edges := FromAgent(sampleAgent())
	require.Len(t, nodes, 1+2+4+2)
	require.Len(t, edges, len(nodes)-1)

	byID := map[string]flow.Node{}
	for _, n := range nodes {
		byID[n.ID] = n
	}

	persona := byID["persona-0"]
	assert.Equal(t, flow.Position{X: 100, Y: 100}, persona.Position)
	assert.Equal(t, "Mia", persona.Data.String("label"))
	assert.Equal(t, "calm", persona.Data.String("role"))

	doc2 := byID["documents-2"]
	assert.Equal(t, flow.Position{X: 500, Y: 400}, doc2.Position)
	assert.Equal(t, "Document 2", doc2.Data.String("label"))
	assert.Equal(t, []string{"/files/faq.docx"}, doc2.Data.Strings("sources"))

	first := byID["task-seo_optimizer-3"]
	assert.Equal(t, flow.Position{X: 800, Y: 200}, first.Position)
	assert.Equal(t, "Seo Optimizer", first.Data.String("label"))
	assert.Equal(t, "seoOptimizer", first.Data.String("subtype"))
	assert.Equal(t, []string{"go"}, first.Data.Strings("keywords"))

	fourth := byID["task-competitor_watchdog-6"]
	assert.Equal(t, flow.Position{X: 1100, Y: 200}, fourth.Position, "fourth task starts a new column")

	email := byID["task-smart_email_manager-5"]
	limit, ok := email.Data.Int("wordLimit")
	assert.True(t, ok)
	assert.Equal(t, 250, limit)

	api := byID["updates-api-7"]
	assert.Equal(t, flow.Position{X: 1400, Y: 200}, api.Position)
	assert.Equal(t, "Api Updates", api.Data.String("label"))
	assert.Equal(t, "https://hook", api.Data.String("endpoint"))
	mail := byID["updates-mail-8"]
	assert.Equal(t, "Mail Updates", mail.Data.String("label"))
	assert.Equal(t, "ops@x.io", mail.Data.String("recipient"))

	wantEdges := []string{
		"e-persona-0-documents-1",
		"e-persona-0-documents-2",
		"e-documents-2-task-seo_optimizer-3",
		"e-task-seo_optimizer-3-task-post_creator-4",
		"e-task-post_creator-4-task-smart_email_manager-5",
		"e-task-smart_email_manager-5-task-competitor_watchdog-6",
		"e-task-competitor_watchdog-6-updates-api-7",
		"e-task-competitor_watchdog-6-updates-mail-8",
	}
	for i, want := range wantEdges {
		assert.Equal(t, want, edges[i].ID)
	}
}

func TestFromAgent_PersonaOnly(t *testing.T) {
	var a flow.Agent
	require.NoError(t, a.UnmarshalJSON([]byte(`{"id": "a1", "persona": {}, "documents": null, "tasks": "bad"}`)))

	nodes, edges := FromAgent(a)
	require.Len(t, nodes, 1)
	assert.Empty(t, edges)
	assert.Equal(t, "Agent Persona", nodes[0].Data.String("label"))
}

func TestFromAgent_UpdatesWithoutTasksFollowDocuments(t *testing.T) {
	a := flow.Agent{
		Documents: []flow.Document{{Name: "d", Path: "/p"}},
		Updates:   []flow.Update{{Type: flow.UpdateMail, To: "x@y.z"}},
	}
	nodes, edges := FromAgent(a)
	require.Len(t, nodes, 3)
	require.Len(t, edges, 2)
	assert.Equal(t, "documents-1", edges[1].Source)
	assert.Equal(t, float64(800), nodes[2].Position.X)
}

func genAgent(rt *rapid.T) flow.Agent {
	a := flow.Agent{ID: "a", Persona: flow.Persona{Name: rapid.StringMatching(`[A-Za-z ]{0,10}`).Draw(rt, "name")}}
	for i, n := 0, rapid.IntRange(0, 5).Draw(rt, "docs"); i < n; i++ {
		a.Documents = append(a.Documents, flow.Document{Name: fmt.Sprintf("doc%d", i), Path: fmt.Sprintf("/files/%d.pdf", i)})
	}
	for i, n := 0, rapid.IntRange(0, 8).Draw(rt, "tasks"); i < n; i++ {
		tt := rapid.SampledFrom(flow.TaskTypes()).Draw(rt, "type")
		a.Tasks = append(a.Tasks, flow.NewTask(flow.NewTaskSpec(tt), "daily"))
	}
	for i, n := 0, rapid.IntRange(0, 3).Draw(rt, "updates"); i < n; i++ {
		if rapid.Bool().Draw(rt, "api") {
			a.Updates = append(a.Updates, flow.Update{Type: flow.UpdateAPI, Endpoint: "https://e"})
		} else {
			a.Updates = append(a.Updates, flow.Update{Type: flow.UpdateMail, To: "m@x.io"})
		}
	}
	return a
}

func TestProperty_FromAgentCountsAndChain(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := genAgent(rt)
		nodes, edges := FromAgent(a)

		count := map[flow.NodeType]int{}
		for _, n := range nodes {
			count[n.Type]++
		}
		if count[flow.NodeTypePersona] != 1 ||
			count[flow.NodeTypeDocuments] != len(a.Documents) ||
			count[flow.NodeTypeTask] != len(a.Tasks) ||
			count[flow.NodeTypeUpdates] != len(a.Updates) {
			rt.Fatalf("node counts %v for agent with %d/%d/%d", count, len(a.Documents), len(a.Tasks), len(a.Updates))
		}
		if len(edges) != len(nodes)-1 {
			rt.Fatalf("edges: got %d, want %d", len(edges), len(nodes)-1)
		}

		// every node but the persona has exactly one incoming edge from an
		// earlier node, so the edges span the nodes in fetch order
		pos := map[string]int{}
		for i, n := range nodes {
			pos[n.ID] = i
		}
		incoming := map[string]int{}
		for _, e := range edges {
			if pos[e.Source] >= pos[e.Target] {
				rt.Fatalf("edge %s runs backwards", e.ID)
			}
			incoming[e.Target]++
		}
		for _, n := range nodes[1:] {
			if incoming[n.ID] != 1 {
				rt.Fatalf("node %s has %d incoming edges", n.ID, incoming[n.ID])
			}
		}
	})
}

func TestToAgent_RoundTrip(t *testing.T) {
	a := sampleAgent()
	nodes, edges := FromAgent(a)
	back := ToAgent(flow.Workflow{Nodes: nodes, Edges: edges, AgentID: a.ID})

	assert.Equal(t, a.ID, back.ID)
	assert.Equal(t, a.Persona, back.Persona)
	require.Len(t, back.Documents, 2)
	assert.Equal(t, "/files/brand.pdf", back.Documents[0].Path)
	assert.Equal(t, "Document 2", back.Documents[1].Name)

	require.Len(t, back.Tasks, len(a.Tasks))
	for i := range a.Tasks {
		assert.Equal(t, a.Tasks[i].Type, back.Tasks[i].Type)
		assert.Equal(t, a.Tasks[i].Frequency, back.Tasks[i].Frequency)
		assert.Equal(t, a.Tasks[i].Spec, back.Tasks[i].Spec)
	}
	assert.Equal(t, a.Updates, back.Updates)
}

func TestToAgent_ChainOrderBeatsCanvasOrder(t *testing.T) {
	c := canvas.NewBuilder("c1")
	t1, _ := c.AddNode(flow.NodeTypeTask, "postCreator")
	t2, _ := c.AddNode(flow.NodeTypeTask, "seoOptimizer")
	_, err := c.Connect(flow.Edge{Source: t2.ID, Target: t1.ID})
	require.NoError(t, err)

	a := ToAgent(c.Snapshot())
	require.Len(t, a.Tasks, 2)
	assert.Equal(t, flow.TaskSEOOptimizer, a.Tasks[0].Type)
	assert.Equal(t, flow.TaskPostCreator, a.Tasks[1].Type)
}

func TestToAgent_CanonicalEmailAction(t *testing.T) {
	c := canvas.NewBuilder("c1")
	n, err := c.AddNode(flow.NodeTypeTask, "smartEmailManager")
	require.NoError(t, err)
	_, err = c.UpdateNodeData(n.ID, flow.Data{"action": "send"})
	require.NoError(t, err)

	a := ToAgent(c.Snapshot())
	require.Len(t, a.Tasks, 1)
	spec, ok := a.Tasks[0].Spec.(*flow.SmartEmailManager)
	require.True(t, ok, "spec: %T", a.Tasks[0].Spec)
	assert.Equal(t, "Send", spec.Action)
}

func TestOrchestra(t *testing.T) {
	agents := []flow.Agent{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	nodes, edges := Orchestra(agents)
	require.Len(t, nodes, 5)
	require.Len(t, edges, 4)

	for i, n := range nodes[1:] {
		dist := math.Hypot(n.Position.X-500, n.Position.Y-300)
		assert.InDelta(t, 200, dist, 1e-9, "agent %d off the circle", i)
		assert.True(t, edges[i].Animated)
		assert.Equal(t, "e-orchestrator-"+n.ID, edges[i].ID)
	}
	// angle 0 sits right of centre, angle pi/2 below it
	assert.Equal(t, "right", edges[0].SourceHandle)
	assert.Equal(t, "bottom", edges[1].SourceHandle)
	assert.Equal(t, "top", edges[1].TargetHandle)

	c := canvas.New("o", canvas.KindOrchestra, nodes, edges, canvas.WithReconciler(canvas.OrchestratorEdges))
	assert.Len(t, c.Edges(), 4, "a complete layout needs no reconciliation")

	nodes, edges = Orchestra(nil)
	assert.Len(t, nodes, 1)
	assert.Empty(t, edges)
}
