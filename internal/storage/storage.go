// Package storage keeps local copies of files uploaded to documents nodes,
// together with the remote path the agent API assigned and a text preview.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrNotFound = errors.New("upload not found")

// Upload describes one stored file.
type Upload struct {
	ID          string    `json:"id"`
	CanvasID    string    `json:"canvas_id"`
	NodeID      string    `json:"node_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Path        string    `json:"path"`
	RemotePath  string    `json:"remote_path,omitempty"`
	Preview     string    `json:"preview,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Storage is implemented by Local. The upload flow depends on this rather
// than on the filesystem.
type Storage interface {
	Save(ctx context.Context, canvasID, nodeID, filename, contentType string, r io.Reader) (*Upload, error)
	Open(ctx context.Context, id string) (*Upload, io.ReadCloser, error)
	Attach(ctx context.Context, id, remotePath, preview string) error
	ForNode(ctx context.Context, canvasID, nodeID string) ([]Upload, error)
	Delete(ctx context.Context, id string) error
}
