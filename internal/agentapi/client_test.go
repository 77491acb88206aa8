package agentapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/soochol/agentcanvas/internal/flow"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL+"/"), WithRateLimit(0, 0))
}

func TestGetAgent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/agents/a1" {
			t.Errorf("request: got %s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, `{"id": "a1", "persona": {"name": "Mia"}, "tasks": [{"type": "post_creator", "frequency": "daily", "topic": "t"}], "documents": "broken"}`)
	})
	a, err := c.GetAgent(context.Background(), "a1")
	if err != nil {
		t.Fatalf("GetAgent: %v", err)
	}
	if a.Persona.Name != "Mia" || len(a.Tasks) != 1 {
		t.Errorf("agent: got %+v", a)
	}
	if a.Documents == nil || len(a.Documents) != 0 {
		t.Errorf("malformed documents should default to empty, got %#v", a.Documents)
	}
}

func TestGetAgent_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "Agent not found"}`, http.StatusNotFound)
	})
	_, err := c.GetAgent(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Fatalf("err: got %v, want not found", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 404 {
		t.Fatalf("err: got %v, want *APIError 404", err)
	}
	if !strings.Contains(apiErr.Body, "Agent not found") {
		t.Errorf("body: got %q", apiErr.Body)
	}
}

func TestListAgents_NonListBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"unexpected": true}`)
	})
	agents, err := c.ListAgents(context.Background())
	if err != nil {
		t.Fatalf("ListAgents: %v", err)
	}
	if agents == nil || len(agents) != 0 {
		t.Errorf("agents: got %#v, want empty list", agents)
	}
}

func TestSaveWorkflow(t *testing.T) {
	var got flow.Workflow
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/agents/" {
			t.Errorf("request: got %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type: got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		io.WriteString(w, `{"id": "new-agent"}`)
	})
	wf := flow.Workflow{
		Nodes:   []flow.Node{{ID: "n1", Type: flow.NodeTypePersona, Data: flow.Data{"label": "x"}}},
		Edges:   []flow.Edge{},
		AgentID: "a1",
	}
	saved, err := c.SaveWorkflow(context.Background(), wf)
	if err != nil {
		t.Fatalf("SaveWorkflow: %v", err)
	}
	if saved.AgentID != "new-agent" {
		t.Errorf("agent id: got %q", saved.AgentID)
	}
	if got.AgentID != "a1" || len(got.Nodes) != 1 {
		t.Errorf("posted workflow: got %+v", got)
	}
}

func TestSaveWorkflow_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})
	_, err := c.SaveWorkflow(context.Background(), flow.Workflow{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 422 {
		t.Fatalf("err: got %v, want *APIError 422", err)
	}
}

func TestInterruptAndStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/agents/a1/interrupt":
			if r.Method != http.MethodPost {
				t.Errorf("interrupt method: got %s", r.Method)
			}
			if p := r.URL.Query().Get("prompt"); p != "how are things?" {
				t.Errorf("prompt: got %q", p)
			}
			io.WriteString(w, `{"message": "All good."}`)
		case "/agents/a1/status":
			io.WriteString(w, `{"agent_id": "a1", "is_running": true, "current_task": "seo_optimizer", "upcoming_tasks": null}`)
		default:
			http.NotFound(w, r)
		}
	})
	m, err := c.Interrupt(context.Background(), "a1", "how are things?")
	if err != nil || m.Message != "All good." {
		t.Fatalf("Interrupt: got %+v, %v", m, err)
	}
	s, err := c.Status(context.Background(), "a1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !s.IsRunning || s.CurrentTask == nil || *s.CurrentTask != "seo_optimizer" {
		t.Errorf("status: got %+v", s)
	}
	if s.UpcomingTasks == nil {
		t.Error("upcoming tasks should default to an empty list")
	}
}

func TestCallAndGenerate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case "/call/":
			if q.Get("agent_id") != "a1" || q.Get("phone_number") != "+100" || q.Get("name") != "Ann" {
				t.Errorf("call query: got %v", q)
			}
			io.WriteString(w, `{"message": "Call has been scheduled."}`)
		case "/generate/":
			io.WriteString(w, `{"persona": {"name": "`+q.Get("prompt")+`"}}`)
		}
	})
	m, err := c.Call(context.Background(), "a1", "+100", "Ann")
	if err != nil || m.Message != "Call has been scheduled." {
		t.Fatalf("Call: got %+v, %v", m, err)
	}
	raw, err := c.Generate(context.Background(), "Bot")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(string(raw), `"Bot"`) {
		t.Errorf("generate: got %s", raw)
	}
}

func TestUploadFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		if hdr.Filename != "notes.txt" || string(b) != "hello" {
			t.Errorf("upload: got %s %q", hdr.Filename, b)
		}
		io.WriteString(w, `{"path": "uploads/notes.txt", "size": 5}`)
	})
	up, err := c.UploadFile(context.Background(), "notes.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if up.Path != "uploads/notes.txt" || up.Size != 5 {
		t.Errorf("uploaded: got %+v", up)
	}
	if _, err := c.UploadFile(context.Background(), "", nil); !errors.Is(err, ErrMissingFile) {
		t.Errorf("missing file: got %v", err)
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	c.httpClient.Timeout = 50 * time.Millisecond

	if _, err := c.RunAgent(context.Background(), "a1"); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestRateLimiterHonoursContext(t *testing.T) {
	c := NewClient(WithRateLimit(0.001, 1))
	c.limiter.Allow()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.ListAgents(ctx); err == nil {
		t.Fatal("expected rate limiter error on cancelled context")
	}
}
