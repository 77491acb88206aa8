package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/soochol/agentcanvas/internal/agentapi"
	"github.com/soochol/agentcanvas/internal/canvas"
	"github.com/soochol/agentcanvas/internal/forms"
	"github.com/soochol/agentcanvas/internal/services"
	"github.com/soochol/agentcanvas/internal/templates"
)

// errorBody is the JSON shape of every error response. Notice is a short
// message the renderer shows to the user as is.
type errorBody struct {
	Error   string          `json:"error"`
	Notice  string          `json:"notice,omitempty"`
	Choices []canvas.Choice `json:"choices,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// writeError maps domain errors to status codes. notice is shown to the
// user when the failure came from the remote agent API.
func writeError(w http.ResponseWriter, err error, notice string) {
	body := errorBody{Error: err.Error()}
	status := statusFor(err)

	var required *canvas.SubtypeRequiredError
	if errors.As(err, &required) {
		body.Choices = required.Choices
	}
	if status == http.StatusBadGateway {
		body.Notice = notice
	}
	if status >= 500 {
		slog.Error("request failed", "status", status, "err", err)
	}
	writeJSON(w, status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrCanvasNotFound),
		errors.Is(err, canvas.ErrNodeNotFound),
		errors.Is(err, canvas.ErrEdgeNotFound),
		errors.Is(err, templates.ErrNotFound),
		agentapi.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, canvas.ErrConnectionRejected),
		errors.Is(err, canvas.ErrRootNode),
		errors.Is(err, canvas.ErrNotDraggable),
		errors.Is(err, canvas.ErrSubtypeLocked),
		errors.Is(err, services.ErrNotPublishable):
		return http.StatusConflict
	case errors.Is(err, canvas.ErrSubtypeRequired),
		errors.Is(err, canvas.ErrUnknownSubtype),
		errors.Is(err, canvas.ErrUnsupportedNodeType),
		errors.Is(err, forms.ErrUnknownField),
		errors.Is(err, forms.ErrInvalidValue),
		errors.Is(err, forms.ErrUnknownSubtype),
		errors.Is(err, forms.ErrUnknownNodeType),
		errors.Is(err, services.ErrNotDocumentsNode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrEmptyPrompt),
		errors.Is(err, services.ErrMissingAgentID),
		errors.Is(err, agentapi.ErrMissingFile):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUploadsDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrRemote):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
