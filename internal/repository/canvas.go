// Package repository keeps saved canvases, in memory or written through to
// PostgreSQL.
package repository

import (
	"context"
	"errors"

	"github.com/soochol/agentcanvas/internal/flow"
)

var ErrNotFound = errors.New("canvas not found")

// CanvasRepository abstracts where saved canvases live.
type CanvasRepository interface {
	Save(ctx context.Context, rec *flow.CanvasRecord) error
	Get(ctx context.Context, id string) (*flow.CanvasRecord, error)
	List(ctx context.Context) ([]*flow.CanvasRecord, error)
	Delete(ctx context.Context, id string) error
}
