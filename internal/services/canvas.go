package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soochol/agentcanvas/internal/canvas"
	"github.com/soochol/agentcanvas/internal/flow"
	"github.com/soochol/agentcanvas/internal/forms"
	"github.com/soochol/agentcanvas/internal/layout"
	"github.com/soochol/agentcanvas/internal/repository"
	memstore "github.com/soochol/agentcanvas/internal/repository/memory"
	"github.com/soochol/agentcanvas/internal/storage"
	"github.com/soochol/agentcanvas/internal/templates"
)

// CanvasSummary is one row of the canvas list.
type CanvasSummary struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Kind      canvas.Kind `json:"kind"`
	AgentID   string      `json:"agent_id,omitempty"`
	Nodes     int         `json:"nodes"`
	Edges     int         `json:"edges"`
	Open      bool        `json:"open"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

// CanvasService owns the open canvases. A canvas is opened blank, from a
// remote agent, from a template, or from a saved record, and stays in
// memory until it is closed.
type CanvasService struct {
	sessions *memstore.Store[*canvas.Canvas]
	names    *memstore.Store[namedCanvas]
	repo     repository.CanvasRepository
	api      AgentAPI
	bus      *canvas.EventBus
	catalog  *templates.Catalog
	uploads  storage.Storage
	now      func() time.Time
	preview  int

	reopen sync.Mutex
}

type namedCanvas struct {
	id, name string
}

type CanvasOption func(*CanvasService)

// WithUploads enables document uploads, keeping local copies in st.
func WithUploads(st storage.Storage) CanvasOption {
	return func(s *CanvasService) { s.uploads = st }
}

// WithPreviewLimit caps the text preview stored on a documents node.
func WithPreviewLimit(runes int) CanvasOption {
	return func(s *CanvasService) { s.preview = runes }
}

func WithClock(now func() time.Time) CanvasOption {
	return func(s *CanvasService) { s.now = now }
}

func NewCanvasService(repo repository.CanvasRepository, api AgentAPI, bus *canvas.EventBus, catalog *templates.Catalog, opts ...CanvasOption) *CanvasService {
	s := &CanvasService{
		sessions: memstore.New(func(c *canvas.Canvas) string { return c.ID() }),
		names:    memstore.New(func(n namedCanvas) string { return n.id }),
		repo:     repo,
		api:      api,
		bus:      bus,
		catalog:  catalog,
		now:      time.Now,
		preview:  500,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CanvasService) options(kind canvas.Kind, agentID string) []canvas.Option {
	opts := []canvas.Option{canvas.WithEventBus(s.bus), canvas.WithAgentID(agentID)}
	if kind == canvas.KindOrchestra {
		opts = append(opts, canvas.WithReconciler(canvas.OrchestratorEdges))
	}
	return opts
}

func (s *CanvasService) open(ctx context.Context, c *canvas.Canvas, name string) *canvas.Canvas {
	_ = s.sessions.Set(ctx, c)
	_ = s.names.Set(ctx, namedCanvas{id: c.ID(), name: name})
	slog.Info("canvas opened", "id", c.ID(), "kind", c.Kind(), "agent", c.AgentID())
	return c
}

// CreateBlank opens a builder canvas holding only the agent node.
func (s *CanvasService) CreateBlank(ctx context.Context, name string) *canvas.Canvas {
	c := canvas.NewBuilder(flow.GenerateID("canvas"), s.options(canvas.KindBuilder, "")...)
	return s.open(ctx, c, name)
}

// OpenAgent fetches a remote agent and lays it out as a chain.
func (s *CanvasService) OpenAgent(ctx context.Context, agentID string) (*canvas.Canvas, error) {
	if agentID == "" {
		return nil, ErrMissingAgentID
	}
	a, err := s.api.GetAgent(ctx, agentID)
	if err != nil {
		return nil, remoteErr(err)
	}
	nodes, edges := layout.FromAgent(a)
	c := canvas.New(flow.GenerateID("canvas"), canvas.KindAgent, nodes, edges, s.options(canvas.KindAgent, a.ID)...)
	return s.open(ctx, c, a.Persona.Name), nil
}

// OpenTemplate lays out a built-in template. The canvas has no agent id
// until it is saved.
func (s *CanvasService) OpenTemplate(ctx context.Context, templateID string) (*canvas.Canvas, error) {
	t, err := s.catalog.Get(templateID)
	if err != nil {
		return nil, err
	}
	nodes, edges := layout.FromAgent(t.Agent)
	c := canvas.New(flow.GenerateID("canvas"), canvas.KindAgent, nodes, edges, s.options(canvas.KindAgent, "")...)
	return s.open(ctx, c, t.Title), nil
}

// OpenOrchestra lays out every remote agent around the orchestrator. The
// canvas restores a missing orchestrator edge after each mutation.
func (s *CanvasService) OpenOrchestra(ctx context.Context) (*canvas.Canvas, error) {
	agents, err := s.api.ListAgents(ctx)
	if err != nil {
		return nil, remoteErr(err)
	}
	nodes, edges := layout.Orchestra(agents)
	c := canvas.New(flow.GenerateID("orchestra"), canvas.KindOrchestra, nodes, edges, s.options(canvas.KindOrchestra, "")...)
	return s.open(ctx, c, "Orchestra"), nil
}

// Get returns an open canvas, reopening a saved one when needed.
func (s *CanvasService) Get(ctx context.Context, id string) (*canvas.Canvas, error) {
	if c, err := s.sessions.Get(ctx, id); err == nil {
		return c, nil
	}
	s.reopen.Lock()
	defer s.reopen.Unlock()
	if c, err := s.sessions.Get(ctx, id); err == nil {
		return c, nil
	}
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCanvasNotFound, id)
		}
		return nil, err
	}
	kind := canvas.Kind(rec.Kind)
	c := canvas.New(rec.ID, kind, rec.Workflow.Nodes, rec.Workflow.Edges, s.options(kind, rec.Workflow.AgentID)...)
	return s.open(ctx, c, rec.Name), nil
}

// List merges open canvases with saved ones, open first.
func (s *CanvasService) List(ctx context.Context) ([]CanvasSummary, error) {
	open := s.sessions.Sorted(ctx, func(a, b *canvas.Canvas) int { return cmp.Compare(a.ID(), b.ID()) })
	out := make([]CanvasSummary, 0, len(open))
	for _, c := range open {
		snap := c.Snapshot()
		out = append(out, CanvasSummary{
			ID:      c.ID(),
			Name:    s.name(ctx, c.ID()),
			Kind:    c.Kind(),
			AgentID: snap.AgentID,
			Nodes:   len(snap.Nodes),
			Edges:   len(snap.Edges),
			Open:    true,
		})
	}

	saved, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range saved {
		if s.sessions.Has(ctx, rec.ID) {
			continue
		}
		updated := rec.UpdatedAt
		out = append(out, CanvasSummary{
			ID:        rec.ID,
			Name:      rec.Name,
			Kind:      canvas.Kind(rec.Kind),
			AgentID:   rec.Workflow.AgentID,
			Nodes:     len(rec.Workflow.Nodes),
			Edges:     len(rec.Workflow.Edges),
			UpdatedAt: &updated,
		})
	}
	return out, nil
}

func (s *CanvasService) name(ctx context.Context, id string) string {
	n, _ := s.names.Get(ctx, id)
	return n.name
}

// Delete closes the canvas and removes any saved copy.
func (s *CanvasService) Delete(ctx context.Context, id string) error {
	closed := s.sessions.Delete(ctx, id) == nil
	_ = s.names.Delete(ctx, id)
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		if closed {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrCanvasNotFound, id)
	}
	return err
}

// Apply runs one command against an open canvas. Deleting a documents node
// also drops its local uploads.
func (s *CanvasService) Apply(ctx context.Context, id string, cmd canvas.Command) (canvas.Result, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return canvas.Result{}, err
	}
	var doomed flow.Node
	if d, ok := cmd.(canvas.DeleteNode); ok {
		doomed, _ = c.Node(d.NodeID)
	}
	res, err := c.Apply(cmd)
	if err != nil {
		return res, err
	}
	if doomed.Type == flow.NodeTypeDocuments {
		s.dropUploads(ctx, id, doomed.ID)
	}
	return res, nil
}

// Form renders the edit form of one node.
func (s *CanvasService) Form(ctx context.Context, id, nodeID string) (forms.Form, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return forms.Form{}, err
	}
	n, err := c.Node(nodeID)
	if err != nil {
		return forms.Form{}, err
	}
	return forms.Render(n, s.now())
}

// EditField applies one form field change and returns the re-rendered form.
func (s *CanvasService) EditField(ctx context.Context, id, nodeID, key string, raw any) (forms.Form, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return forms.Form{}, err
	}
	n, err := c.Node(nodeID)
	if err != nil {
		return forms.Form{}, err
	}
	cmd, err := forms.Edit(n, key, raw)
	if err != nil {
		return forms.Form{}, err
	}
	res, err := c.Apply(cmd)
	if err != nil {
		return forms.Form{}, err
	}
	return forms.Render(*res.Node, s.now())
}

// SaveResult reports where a save landed.
type SaveResult struct {
	Record  *flow.CanvasRecord `json:"record"`
	AgentID string             `json:"agent_id,omitempty"`
}

// Save keeps a local copy of the canvas and then posts the snapshot to the
// agent API. A remote failure is returned after the local copy is written;
// there is no retry.
func (s *CanvasService) Save(ctx context.Context, id string) (SaveResult, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return SaveResult{}, err
	}
	now := s.now()
	rec := &flow.CanvasRecord{
		ID:        c.ID(),
		Name:      s.name(ctx, c.ID()),
		Kind:      string(c.Kind()),
		Workflow:  c.Snapshot(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		slog.Warn("local canvas save failed", "id", id, "err", err)
	}

	saved, err := s.api.SaveWorkflow(ctx, rec.Workflow)
	if err != nil {
		slog.Error("workflow save failed", "id", id, "err", err)
		return SaveResult{Record: rec}, remoteErr(err)
	}
	if saved.AgentID != "" && c.AgentID() == "" {
		c.SetAgentID(saved.AgentID)
		linked := *rec
		linked.Workflow.AgentID = saved.AgentID
		_ = s.repo.Save(ctx, &linked)
		rec = &linked
	}
	slog.Info("workflow saved", "id", id, "agent", c.AgentID(), "nodes", len(rec.Workflow.Nodes))
	return SaveResult{Record: rec, AgentID: c.AgentID()}, nil
}

// Publish maps a builder canvas back to an agent resource and creates or
// updates it on the agent API. A canvas opened from an agent keeps its id.
func (s *CanvasService) Publish(ctx context.Context, id string) (flow.Agent, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return flow.Agent{}, err
	}
	if c.Kind() == canvas.KindOrchestra {
		return flow.Agent{}, ErrNotPublishable
	}
	a := layout.ToAgent(c.Snapshot())

	var out flow.Agent
	if a.ID == "" {
		out, err = s.api.CreateAgent(ctx, a)
	} else {
		out, err = s.api.UpdateAgent(ctx, a)
	}
	if err != nil {
		slog.Error("agent publish failed", "id", id, "agent", a.ID, "err", err)
		return flow.Agent{}, remoteErr(err)
	}
	if c.AgentID() == "" && out.ID != "" {
		c.SetAgentID(out.ID)
	}
	slog.Info("agent published", "id", id, "agent", out.ID, "tasks", len(out.Tasks))
	return out, nil
}

// Events streams the changes of one canvas until ctx ends.
func (s *CanvasService) Events(ctx context.Context, id string) (<-chan canvas.Event, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.bus.Channel(ctx, id, 64), nil
}
