package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soochol/agentcanvas/internal/flow"
)

func TestMemoryCanvasRepo_CRUD(t *testing.T) {
	repo := NewMemoryCanvasRepository()
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rec := &flow.CanvasRecord{
		ID:        "canvas-1",
		Name:      "Mia",
		Kind:      "builder",
		Workflow:  flow.Workflow{Nodes: []flow.Node{{ID: "agent-core", Type: flow.NodeTypeAgent}}},
		CreatedAt: t0,
		UpdatedAt: t0,
	}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Get(ctx, "canvas-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Mia" || len(got.Workflow.Nodes) != 1 {
		t.Errorf("got %+v", got)
	}

	again := &flow.CanvasRecord{ID: "canvas-1", Name: "Mia 2", CreatedAt: t0.Add(time.Hour), UpdatedAt: t0.Add(time.Hour)}
	if err := repo.Save(ctx, again); err != nil {
		t.Fatalf("resave: %v", err)
	}
	if !again.CreatedAt.Equal(t0) {
		t.Errorf("created_at should survive a resave, got %v", again.CreatedAt)
	}

	if err := repo.Delete(ctx, "canvas-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "canvas-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: got %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, "canvas-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestMemoryCanvasRepo_ListNewestFirst(t *testing.T) {
	repo := NewMemoryCanvasRepository()
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		_ = repo.Save(ctx, &flow.CanvasRecord{ID: id, UpdatedAt: t0.Add(time.Duration(i) * time.Minute)})
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var ids []string
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	if len(ids) != 3 || ids[0] != "c" || ids[2] != "a" {
		t.Errorf("order: got %v, want [c b a]", ids)
	}
}

func TestMemoryCanvasRepo_SaveStoresCopy(t *testing.T) {
	repo := NewMemoryCanvasRepository()
	ctx := context.Background()

	rec := &flow.CanvasRecord{ID: "canvas-1", Name: "Mia"}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	rec.Workflow.AgentID = "agent-9"

	got, err := repo.Get(ctx, "canvas-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Workflow.AgentID != "" {
		t.Errorf("stored record changed with the caller's copy: agent %q", got.Workflow.AgentID)
	}
}
