package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soochol/agentcanvas/internal/canvas"
	"github.com/soochol/agentcanvas/internal/flow"
)

const saveNotice = "Failed to save workflow. Please try again."

type canvasResponse struct {
	ID   string      `json:"id"`
	Kind canvas.Kind `json:"kind"`
	flow.Workflow
}

func canvasView(c *canvas.Canvas) canvasResponse {
	return canvasResponse{ID: c.ID(), Kind: c.Kind(), Workflow: c.Snapshot()}
}

type createCanvasRequest struct {
	Name     string `json:"name"`
	AgentID  string `json:"agentId"`
	Template string `json:"template"`
}

func (s *Server) createCanvas(w http.ResponseWriter, r *http.Request) {
	var req createCanvasRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid request body")
			return
		}
	}

	var (
		c   *canvas.Canvas
		err error
	)
	switch {
	case req.AgentID != "" && req.Template != "":
		badRequest(w, "agentId and template are exclusive")
		return
	case req.AgentID != "":
		c, err = s.canvases.OpenAgent(r.Context(), req.AgentID)
	case req.Template != "":
		c, err = s.canvases.OpenTemplate(r.Context(), req.Template)
	default:
		c = s.canvases.CreateBlank(r.Context(), req.Name)
	}
	if err != nil {
		writeError(w, err, "Could not load the agent.")
		return
	}
	writeJSON(w, http.StatusCreated, canvasView(c))
}

func (s *Server) listCanvases(w http.ResponseWriter, r *http.Request) {
	list, err := s.canvases.List(r.Context())
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getCanvas(w http.ResponseWriter, r *http.Request) {
	c, err := s.canvases.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, canvasView(c))
}

func (s *Server) deleteCanvas(w http.ResponseWriter, r *http.Request) {
	if err := s.canvases.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) saveCanvas(w http.ResponseWriter, r *http.Request) {
	res, err := s.canvases.Save(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, saveNotice)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) publishCanvas(w http.ResponseWriter, r *http.Request) {
	a, err := s.canvases.Publish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "Failed to publish agent. Please try again.")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// apply runs cmd and writes the result with status on success.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, cmd canvas.Command, status int) {
	res, err := s.canvases.Apply(r.Context(), chi.URLParam(r, "id"), cmd)
	if err != nil {
		writeError(w, err, "")
		return
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, res)
}

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	var cmd canvas.AddNode
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	s.apply(w, r, cmd, http.StatusCreated)
}

func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	var patch flow.Data
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	s.apply(w, r, canvas.UpdateNodeData{NodeID: chi.URLParam(r, "nodeId"), Patch: patch}, http.StatusOK)
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, canvas.DeleteNode{NodeID: chi.URLParam(r, "nodeId")}, http.StatusNoContent)
}

func (s *Server) moveNode(w http.ResponseWriter, r *http.Request) {
	var pos flow.Position
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	s.apply(w, r, canvas.MoveNode{NodeID: chi.URLParam(r, "nodeId"), Position: pos}, http.StatusOK)
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	var e flow.Edge
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if e.Source == "" || e.Target == "" {
		badRequest(w, "source and target are required")
		return
	}
	s.apply(w, r, canvas.Connect{Edge: e}, http.StatusCreated)
}

func (s *Server) removeEdge(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, canvas.RemoveEdge{EdgeID: chi.URLParam(r, "edgeId")}, http.StatusNoContent)
}

func (s *Server) getForm(w http.ResponseWriter, r *http.Request) {
	f, err := s.canvases.Form(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "nodeId"))
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

type editFormRequest struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func (s *Server) editForm(w http.ResponseWriter, r *http.Request) {
	var req editFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Key == "" {
		badRequest(w, "key is required")
		return
	}
	f, err := s.canvases.EditField(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "nodeId"), req.Key, req.Value)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// streamCanvasEvents sends every change of the canvas as an SSE frame
// until the client goes away.
func (s *Server) streamCanvasEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	events, err := s.canvases.Events(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range events {
		writeSSEEvent(w, ev)
		flusher.Flush()
	}
}

func writeSSEEvent(w http.ResponseWriter, ev canvas.Event) {
	data, _ := json.Marshal(ev)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
}
