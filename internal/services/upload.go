package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/soochol/agentcanvas/internal/canvas"
	"github.com/soochol/agentcanvas/internal/extract"
	"github.com/soochol/agentcanvas/internal/flow"
	"github.com/soochol/agentcanvas/internal/storage"
)

var ErrUploadsDisabled = errors.New("uploads are not configured")

// UploadResult is the stored file and the documents node after the upload.
type UploadResult struct {
	Upload storage.Upload `json:"upload"`
	Node   flow.Node      `json:"node"`
}

// Upload stores a file for a documents node, forwards it to the agent API
// and appends the remote path to the node's sources. The text preview is
// best effort: a file that cannot be read still uploads.
func (s *CanvasService) Upload(ctx context.Context, id, nodeID, filename, contentType string, r io.Reader) (UploadResult, error) {
	if s.uploads == nil {
		return UploadResult{}, ErrUploadsDisabled
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return UploadResult{}, err
	}
	n, err := c.Node(nodeID)
	if err != nil {
		return UploadResult{}, err
	}
	if n.Type != flow.NodeTypeDocuments {
		return UploadResult{}, fmt.Errorf("%w: %s is a %s node", ErrNotDocumentsNode, nodeID, n.Type)
	}

	up, err := s.uploads.Save(ctx, id, nodeID, filename, contentType, r)
	if err != nil {
		return UploadResult{}, fmt.Errorf("store upload: %w", err)
	}
	preview := s.previewOf(ctx, up)

	_, content, err := s.uploads.Open(ctx, up.ID)
	if err != nil {
		return UploadResult{}, fmt.Errorf("reopen upload: %w", err)
	}
	remote, err := s.api.UploadFile(ctx, up.Filename, content)
	content.Close()
	if err != nil {
		slog.Error("document upload failed", "canvas", id, "node", nodeID, "file", up.Filename, "err", err)
		_ = s.uploads.Delete(ctx, up.ID)
		return UploadResult{}, remoteErr(err)
	}
	if err := s.uploads.Attach(ctx, up.ID, remote.Path, preview); err != nil {
		return UploadResult{}, err
	}
	up.RemotePath, up.Preview = remote.Path, preview

	// sources may have been edited while the file was in flight
	res, err := c.Apply(canvas.AppendToList{
		NodeID: nodeID,
		Key:    "sources",
		Items:  []string{remote.Path},
		Patch:  flow.Data{"preview": preview},
	})
	if err != nil {
		return UploadResult{}, err
	}
	slog.Info("document uploaded", "canvas", id, "node", nodeID, "path", remote.Path, "bytes", up.Size)
	return UploadResult{Upload: *up, Node: *res.Node}, nil
}

func (s *CanvasService) previewOf(ctx context.Context, up *storage.Upload) string {
	_, content, err := s.uploads.Open(ctx, up.ID)
	if err != nil {
		return ""
	}
	defer content.Close()
	text, err := extract.Preview(up.Filename, up.ContentType, content, s.preview)
	if err != nil {
		slog.Debug("no preview for upload", "file", up.Filename, "err", err)
		return ""
	}
	return text
}

// Uploads lists the files stored for a documents node.
func (s *CanvasService) Uploads(ctx context.Context, id, nodeID string) ([]storage.Upload, error) {
	if s.uploads == nil {
		return []storage.Upload{}, nil
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.uploads.ForNode(ctx, id, nodeID)
}

func (s *CanvasService) dropUploads(ctx context.Context, id, nodeID string) {
	if s.uploads == nil {
		return
	}
	ups, err := s.uploads.ForNode(ctx, id, nodeID)
	if err != nil {
		return
	}
	for _, u := range ups {
		if err := s.uploads.Delete(ctx, u.ID); err != nil {
			slog.Warn("drop upload failed", "upload", u.ID, "err", err)
		}
	}
}
