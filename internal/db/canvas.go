package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/soochol/agentcanvas/internal/flow"
)

const canvasColumns = `id, name, kind, workflow, created_at, updated_at`

// SaveCanvas inserts rec or replaces the stored row with the same id.
func (d *DB) SaveCanvas(ctx context.Context, rec *flow.CanvasRecord) error {
	wfJSON, err := json.Marshal(rec.Workflow)
	if err != nil {
		return fmt.Errorf("marshal workflow: %w", err)
	}
	_, err = d.Pool.ExecContext(ctx,
		`INSERT INTO canvases (id, name, kind, agent_id, workflow, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, kind = EXCLUDED.kind,
		   agent_id = EXCLUDED.agent_id, workflow = EXCLUDED.workflow, updated_at = EXCLUDED.updated_at`,
		rec.ID, rec.Name, rec.Kind, rec.Workflow.AgentID, wfJSON, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save canvas: %w", err)
	}
	return nil
}

func (d *DB) GetCanvas(ctx context.Context, id string) (*flow.CanvasRecord, error) {
	row := d.Pool.QueryRowContext(ctx, `SELECT `+canvasColumns+` FROM canvases WHERE id = $1`, id)
	rec, err := scanCanvas(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("canvas %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get canvas: %w", err)
	}
	return rec, nil
}

// ListCanvases returns every saved canvas, most recently updated first.
func (d *DB) ListCanvases(ctx context.Context) ([]*flow.CanvasRecord, error) {
	rows, err := d.Pool.QueryContext(ctx, `SELECT `+canvasColumns+` FROM canvases ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list canvases: %w", err)
	}
	defer rows.Close()

	var out []*flow.CanvasRecord
	for rows.Next() {
		rec, err := scanCanvas(rows)
		if err != nil {
			return nil, fmt.Errorf("scan canvas: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (d *DB) DeleteCanvas(ctx context.Context, id string) error {
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM canvases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete canvas: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("canvas %s: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCanvas(s scanner) (*flow.CanvasRecord, error) {
	var (
		rec    flow.CanvasRecord
		wfJSON []byte
	)
	if err := s.Scan(&rec.ID, &rec.Name, &rec.Kind, &wfJSON, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(wfJSON, &rec.Workflow); err != nil {
		return nil, fmt.Errorf("unmarshal workflow: %w", err)
	}
	return &rec, nil
}
