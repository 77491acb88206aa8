package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soochol/agentcanvas/internal/canvas"
)

const loadNotice = "Could not reach the agent service. Please try again."

func (s *Server) openOrchestra(w http.ResponseWriter, r *http.Request) {
	c, err := s.canvases.OpenOrchestra(r.Context())
	if err != nil {
		writeError(w, err, loadNotice)
		return
	}
	writeJSON(w, http.StatusOK, canvasView(c))
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	cards, err := s.dashboard.Agents(r.Context())
	if err != nil {
		writeError(w, err, loadNotice)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) getMarketplace(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.marketplace.Listing(r.Context()))
}

func (s *Server) listTaskTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, canvas.TaskChoices())
}

func (s *Server) runAgent(w http.ResponseWriter, r *http.Request) {
	msg, err := s.agents.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "Failed to start the agent.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (s *Server) agentStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.agents.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, loadNotice)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	reply, err := s.agents.Chat(r.Context(), chi.URLParam(r, "id"), req.Prompt)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

type callRequest struct {
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name"`
}

func (s *Server) call(w http.ResponseWriter, r *http.Request) {
	var req callRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid request body")
			return
		}
	}
	msg, err := s.agents.Call(r.Context(), chi.URLParam(r, "id"), req.PhoneNumber, req.Name)
	if err != nil {
		writeError(w, err, "Failed to place the call.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	raw, err := s.agents.Generate(r.Context(), req.Prompt)
	if err != nil {
		writeError(w, err, "The creator is unavailable right now.")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}
