package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/soochol/agentcanvas/internal/agentapi"
	"github.com/soochol/agentcanvas/internal/flow"
)

var errDown = errors.New("connection refused")

// fakeAPI is an in-memory AgentAPI. A nil error field means success.
type fakeAPI struct {
	mu        sync.Mutex
	agents    map[string]flow.Agent
	statuses  map[string]flow.AgentStatus
	statusErr map[string]error
	saved     []flow.Workflow
	published []flow.Agent
	uploaded  map[string]string

	listErr      error
	saveErr      error
	interruptErr error
	uploadErr    error
	savedID      string
	publishErr   error

	// when set, UploadFile signals uploadStarted and waits for uploadGate
	uploadStarted chan struct{}
	uploadGate    chan struct{}
	lastPrompt   string
}

func newFakeAPI(agents ...flow.Agent) *fakeAPI {
	f := &fakeAPI{
		agents:    map[string]flow.Agent{},
		statuses:  map[string]flow.AgentStatus{},
		statusErr: map[string]error{},
		uploaded:  map[string]string{},
	}
	for _, a := range agents {
		f.agents[a.ID] = a
	}
	return f
}

func (f *fakeAPI) GetAgent(_ context.Context, id string) (flow.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.agents[id]
	if !ok {
		return flow.Agent{}, &agentapi.APIError{StatusCode: 404, Method: "GET", Path: "/agents/" + id}
	}
	return a, nil
}

func (f *fakeAPI) ListAgents(context.Context) ([]flow.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []flow.Agent{}
	for _, id := range []string{"a1", "a2", "a3", "a4"} {
		if a, ok := f.agents[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateAgent(_ context.Context, a flow.Agent) (flow.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return flow.Agent{}, f.publishErr
	}
	a.ID = "created-1"
	f.agents[a.ID] = a
	f.published = append(f.published, a)
	return a, nil
}

func (f *fakeAPI) UpdateAgent(_ context.Context, a flow.Agent) (flow.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return flow.Agent{}, f.publishErr
	}
	if _, ok := f.agents[a.ID]; !ok {
		return flow.Agent{}, &agentapi.APIError{StatusCode: 404, Method: "PUT", Path: "/agents/" + a.ID}
	}
	f.agents[a.ID] = a
	f.published = append(f.published, a)
	return a, nil
}

func (f *fakeAPI) SaveWorkflow(_ context.Context, w flow.Workflow) (agentapi.SavedWorkflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return agentapi.SavedWorkflow{}, f.saveErr
	}
	f.saved = append(f.saved, w)
	return agentapi.SavedWorkflow{AgentID: f.savedID}, nil
}

func (f *fakeAPI) RunAgent(_ context.Context, id string) (agentapi.Message, error) {
	return agentapi.Message{Message: "Agent " + id + " started"}, nil
}

func (f *fakeAPI) Interrupt(_ context.Context, _ string, prompt string) (agentapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPrompt = prompt
	if f.interruptErr != nil {
		return agentapi.Message{}, f.interruptErr
	}
	return agentapi.Message{Message: "echo: " + prompt}, nil
}

func (f *fakeAPI) Status(_ context.Context, id string) (flow.AgentStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.statusErr[id]; err != nil {
		return flow.AgentStatus{}, err
	}
	return f.statuses[id], nil
}

func (f *fakeAPI) Generate(_ context.Context, prompt string) (json.RawMessage, error) {
	b, _ := json.Marshal(map[string]any{"persona": map[string]string{"name": prompt}})
	return b, nil
}

func (f *fakeAPI) Call(_ context.Context, agentID, phone, name string) (agentapi.Message, error) {
	return agentapi.Message{Message: "calling " + phone + " for " + agentID + " as " + name}, nil
}

func (f *fakeAPI) UploadFile(_ context.Context, filename string, content io.Reader) (agentapi.UploadedFile, error) {
	if f.uploadErr != nil {
		return agentapi.UploadedFile{}, f.uploadErr
	}
	b, _ := io.ReadAll(content)
	if f.uploadGate != nil {
		close(f.uploadStarted)
		<-f.uploadGate
	}
	f.mu.Lock()
	f.uploaded[filename] = string(b)
	f.mu.Unlock()
	return agentapi.UploadedFile{Path: "uploads/" + filename, Size: int64(len(b))}, nil
}
