// Package services holds the screen-level operations: canvas sessions,
// dashboard, marketplace, chatbot and creator. Each talks to the remote
// agent API through AgentAPI.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/soochol/agentcanvas/internal/agentapi"
	"github.com/soochol/agentcanvas/internal/flow"
)

var (
	ErrEmptyPrompt      = errors.New("prompt is required")
	ErrCanvasNotFound   = errors.New("canvas not found")
	ErrNotDocumentsNode = errors.New("uploads go to documents nodes")
	ErrMissingAgentID   = errors.New("agent id is required")
	ErrNotPublishable   = errors.New("only agent canvases can be published")
	ErrRemote           = errors.New("agent API request failed")
)

// AgentAPI is the part of *agentapi.Client the services call.
type AgentAPI interface {
	GetAgent(ctx context.Context, id string) (flow.Agent, error)
	ListAgents(ctx context.Context) ([]flow.Agent, error)
	CreateAgent(ctx context.Context, a flow.Agent) (flow.Agent, error)
	UpdateAgent(ctx context.Context, a flow.Agent) (flow.Agent, error)
	SaveWorkflow(ctx context.Context, w flow.Workflow) (agentapi.SavedWorkflow, error)
	RunAgent(ctx context.Context, id string) (agentapi.Message, error)
	Interrupt(ctx context.Context, id, prompt string) (agentapi.Message, error)
	Status(ctx context.Context, id string) (flow.AgentStatus, error)
	Generate(ctx context.Context, prompt string) (json.RawMessage, error)
	Call(ctx context.Context, agentID, phoneNumber, name string) (agentapi.Message, error)
	UploadFile(ctx context.Context, filename string, content io.Reader) (agentapi.UploadedFile, error)
}

var _ AgentAPI = (*agentapi.Client)(nil)

// remoteErr marks err as a remote failure while keeping it matchable, so a
// 404 from the API still satisfies agentapi.IsNotFound.
func remoteErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRemote, err)
}
