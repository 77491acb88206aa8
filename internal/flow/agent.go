package flow

import (
	"encoding/json"
	"log/slog"
)

// Agent is the remote resource the canvas is built from: a persona plus
// documents, tasks and update channels.
type Agent struct {
	ID        string     `json:"id"`
	Persona   Persona    `json:"persona"`
	Documents []Document `json:"documents"`
	Tasks     []Task     `json:"tasks"`
	Updates   []Update   `json:"updates"`
}

type Persona struct {
	Name        string `json:"name"`
	Qualities   string `json:"qualities"`
	Description string `json:"description"`
}

type Document struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type UpdateType string

const (
	UpdateAPI  UpdateType = "api"
	UpdateMail UpdateType = "mail"
)

type Update struct {
	Type     UpdateType `json:"type"`
	Endpoint string     `json:"endpoint,omitempty"`
	To       string     `json:"to,omitempty"`
}

// AgentStatus is the body of GET /agents/{id}/status.
type AgentStatus struct {
	AgentID       string         `json:"agent_id"`
	IsRunning     bool           `json:"is_running"`
	CurrentTask   *string        `json:"current_task"`
	UpcomingTasks []UpcomingTask `json:"upcoming_tasks"`
}

type UpcomingTask struct {
	TaskType string `json:"task_type"`
	DueIn    string `json:"due_in"`
}

// UnmarshalJSON decodes each section of the agent independently. A missing,
// null or malformed section becomes its empty value; a malformed item inside
// a list is dropped. Only a body that is not a JSON object is an error.
func (a *Agent) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Agent{}

	a.ID = decodeSection[string](raw, "id")
	a.Persona = decodeSection[Persona](raw, "persona")
	a.Documents = decodeList[Document](raw, "documents")
	a.Tasks = decodeList[Task](raw, "tasks")
	a.Updates = decodeList[Update](raw, "updates")
	return nil
}

func decodeSection[T any](raw map[string]json.RawMessage, key string) T {
	var zero T
	msg, ok := raw[key]
	if !ok || string(msg) == "null" {
		return zero
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		slog.Warn("agent: malformed section, using empty value", "section", key, "err", err)
		return zero
	}
	return v
}

func decodeList[T any](raw map[string]json.RawMessage, key string) []T {
	msg, ok := raw[key]
	if !ok || string(msg) == "null" {
		return []T{}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(msg, &items); err != nil {
		slog.Warn("agent: malformed list, using empty list", "section", key, "err", err)
		return []T{}
	}
	out := make([]T, 0, len(items))
	for i, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			slog.Warn("agent: dropping malformed item", "section", key, "index", i, "err", err)
			continue
		}
		out = append(out, v)
	}
	return out
}
