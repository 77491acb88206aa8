package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/soochol/agentcanvas/internal/flow"
)

// ChatApology is the bot's reply when the agent could not be reached.
const ChatApology = "Sorry, I encountered an error processing your request."

// ChatReply is one bot turn.
type ChatReply struct {
	Message string `json:"message"`
	Failed  bool   `json:"failed,omitempty"`
}

// AgentService covers the per-agent actions of the chatbot, creator and
// call screens.
type AgentService struct {
	api AgentAPI
}

func NewAgentService(api AgentAPI) *AgentService {
	return &AgentService{api: api}
}

func (s *AgentService) Run(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrMissingAgentID
	}
	m, err := s.api.RunAgent(ctx, id)
	if err != nil {
		return "", remoteErr(err)
	}
	return m.Message, nil
}

func (s *AgentService) Status(ctx context.Context, id string) (flow.AgentStatus, error) {
	if id == "" {
		return flow.AgentStatus{}, ErrMissingAgentID
	}
	st, err := s.api.Status(ctx, id)
	return st, remoteErr(err)
}

// Chat sends prompt to the agent. A remote failure becomes the apology
// reply rather than an error.
func (s *AgentService) Chat(ctx context.Context, id, prompt string) (ChatReply, error) {
	if id == "" {
		return ChatReply{}, ErrMissingAgentID
	}
	if strings.TrimSpace(prompt) == "" {
		return ChatReply{}, ErrEmptyPrompt
	}
	m, err := s.api.Interrupt(ctx, id, prompt)
	if err != nil {
		slog.Warn("chat interrupt failed", "agent", id, "err", err)
		return ChatReply{Message: ChatApology, Failed: true}, nil
	}
	return ChatReply{Message: m.Message}, nil
}

// Generate asks the creation assistant for an agent draft.
func (s *AgentService) Generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	raw, err := s.api.Generate(ctx, prompt)
	return raw, remoteErr(err)
}

// Call has the agent phone someone. Phone number and name are optional.
func (s *AgentService) Call(ctx context.Context, id, phoneNumber, name string) (string, error) {
	if id == "" {
		return "", ErrMissingAgentID
	}
	m, err := s.api.Call(ctx, id, strings.TrimSpace(phoneNumber), strings.TrimSpace(name))
	if err != nil {
		return "", remoteErr(err)
	}
	return m.Message, nil
}
