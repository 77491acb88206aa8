package repository

import (
	"context"
	"log/slog"

	"github.com/soochol/agentcanvas/internal/flow"
)

// CanvasDB is the slice of *db.DB the persistent repository needs.
type CanvasDB interface {
	SaveCanvas(ctx context.Context, rec *flow.CanvasRecord) error
	GetCanvas(ctx context.Context, id string) (*flow.CanvasRecord, error)
	ListCanvases(ctx context.Context) ([]*flow.CanvasRecord, error)
	DeleteCanvas(ctx context.Context, id string) error
}

// PersistentCanvasRepository writes to memory and the database. A database
// failure is logged and the memory copy still serves reads. Reads try
// memory first and fall back to the database.
type PersistentCanvasRepository struct {
	mem *MemoryCanvasRepository
	db  CanvasDB
}

func NewPersistentCanvasRepository(mem *MemoryCanvasRepository, db CanvasDB) *PersistentCanvasRepository {
	return &PersistentCanvasRepository{mem: mem, db: db}
}

func (r *PersistentCanvasRepository) Save(ctx context.Context, rec *flow.CanvasRecord) error {
	_ = r.mem.Save(ctx, rec)
	if err := r.db.SaveCanvas(ctx, rec); err != nil {
		slog.Warn("db save canvas failed, in-memory only", "id", rec.ID, "err", err)
	}
	return nil
}

func (r *PersistentCanvasRepository) Get(ctx context.Context, id string) (*flow.CanvasRecord, error) {
	rec, err := r.mem.Get(ctx, id)
	if err == nil {
		return rec, nil
	}
	row, dbErr := r.db.GetCanvas(ctx, id)
	if dbErr != nil {
		return nil, err
	}
	_ = r.mem.Save(ctx, row)
	return row, nil
}

// List prefers the database, which survives restarts.
func (r *PersistentCanvasRepository) List(ctx context.Context) ([]*flow.CanvasRecord, error) {
	rows, err := r.db.ListCanvases(ctx)
	if err == nil {
		return rows, nil
	}
	slog.Warn("db list canvases failed, falling back to in-memory", "err", err)
	return r.mem.List(ctx)
}

// Delete reports ErrNotFound only when neither store had the record.
func (r *PersistentCanvasRepository) Delete(ctx context.Context, id string) error {
	memErr := r.mem.Delete(ctx, id)
	if err := r.db.DeleteCanvas(ctx, id); err != nil {
		slog.Warn("db delete canvas failed", "id", id, "err", err)
		return memErr
	}
	return nil
}
