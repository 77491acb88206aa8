package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/soochol/agentcanvas/internal/flow"
)

// Local stores uploads under a base directory. Metadata lives in memory.
type Local struct {
	baseDir string
	mu      sync.RWMutex
	files   map[string]*Upload
}

func NewLocal(baseDir string) (*Local, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Local{baseDir: baseDir, files: make(map[string]*Upload)}, nil
}

func (s *Local) Save(_ context.Context, canvasID, nodeID, filename, contentType string, r io.Reader) (*Upload, error) {
	id := flow.GenerateID("upload")
	stored := id + strings.ToLower(filepath.Ext(filename))
	full := filepath.Join(s.baseDir, stored)

	f, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(full)
		return nil, fmt.Errorf("write file: %w", err)
	}

	u := &Upload{
		ID:          id,
		CanvasID:    canvasID,
		NodeID:      nodeID,
		Filename:    filepath.Base(filename),
		ContentType: contentType,
		Size:        n,
		Path:        stored,
		CreatedAt:   time.Now(),
	}
	s.mu.Lock()
	s.files[id] = u
	s.mu.Unlock()

	out := *u
	return &out, nil
}

// Open returns the upload and a reader over its content. The caller closes it.
func (s *Local) Open(_ context.Context, id string) (*Upload, io.ReadCloser, error) {
	s.mu.RLock()
	u, ok := s.files[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	f, err := os.Open(filepath.Join(s.baseDir, u.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	out := *u
	return &out, f, nil
}

// Attach records where the agent API keeps the file and its text preview.
func (s *Local) Attach(_ context.Context, id, remotePath, preview string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.files[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	u.RemotePath = remotePath
	u.Preview = preview
	return nil
}

// ForNode lists the uploads of one documents node, oldest first.
func (s *Local) ForNode(_ context.Context, canvasID, nodeID string) ([]Upload, error) {
	s.mu.RLock()
	out := []Upload{}
	for _, u := range s.files {
		if u.CanvasID == canvasID && u.NodeID == nodeID {
			out = append(out, *u)
		}
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b Upload) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (s *Local) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	u, ok := s.files[id]
	delete(s.files, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err := os.Remove(filepath.Join(s.baseDir, u.Path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
