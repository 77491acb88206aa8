package repository

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"github.com/soochol/agentcanvas/internal/flow"
	memstore "github.com/soochol/agentcanvas/internal/repository/memory"
)

type MemoryCanvasRepository struct {
	store *memstore.Store[*flow.CanvasRecord]
}

func NewMemoryCanvasRepository() *MemoryCanvasRepository {
	return &MemoryCanvasRepository{
		store: memstore.New(func(r *flow.CanvasRecord) string { return r.ID }),
	}
}

// Save stores a copy of rec. A record saved again keeps its original
// CreatedAt.
func (r *MemoryCanvasRepository) Save(ctx context.Context, rec *flow.CanvasRecord) error {
	if prev, err := r.store.Get(ctx, rec.ID); err == nil && !prev.CreatedAt.IsZero() {
		rec.CreatedAt = prev.CreatedAt
	}
	stored := *rec
	return r.store.Set(ctx, &stored)
}

func (r *MemoryCanvasRepository) Get(ctx context.Context, id string) (*flow.CanvasRecord, error) {
	rec, err := r.store.Get(ctx, id)
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, err
}

// List returns records most recently updated first.
func (r *MemoryCanvasRepository) List(ctx context.Context) ([]*flow.CanvasRecord, error) {
	return r.store.Sorted(ctx, func(a, b *flow.CanvasRecord) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}), nil
}

func (r *MemoryCanvasRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
