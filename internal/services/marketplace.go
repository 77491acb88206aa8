package services

import (
	"context"
	"log/slog"

	"github.com/soochol/agentcanvas/internal/flow"
	"github.com/soochol/agentcanvas/internal/templates"
)

type TemplateCard struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tasks       []string `json:"tasks"`
}

// CommunityCard is a remote agent offered as a starting point.
type CommunityCard struct {
	AgentID     string   `json:"agent_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tasks       []string `json:"tasks"`
}

type Marketplace struct {
	Templates []TemplateCard  `json:"templates"`
	Community []CommunityCard `json:"community"`
	Notice    string          `json:"notice,omitempty"`
}

type MarketplaceService struct {
	catalog *templates.Catalog
	api     AgentAPI
}

func NewMarketplaceService(catalog *templates.Catalog, api AgentAPI) *MarketplaceService {
	return &MarketplaceService{catalog: catalog, api: api}
}

// Listing returns the built-in templates and the remote agents. When the
// agent list cannot be fetched the templates are still returned with a
// notice.
func (s *MarketplaceService) Listing(ctx context.Context) Marketplace {
	m := Marketplace{Templates: []TemplateCard{}, Community: []CommunityCard{}}
	for _, t := range s.catalog.List() {
		m.Templates = append(m.Templates, TemplateCard{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Tasks:       t.TaskNames(),
		})
	}

	agents, err := s.api.ListAgents(ctx)
	if err != nil {
		slog.Warn("community workflows unavailable", "err", err)
		m.Notice = "Community workflows are unavailable right now."
		return m
	}
	for _, a := range agents {
		m.Community = append(m.Community, CommunityCard{
			AgentID:     a.ID,
			Title:       a.Persona.Name,
			Description: a.Persona.Description,
			Tasks:       taskLabels(a.Tasks),
		})
	}
	return m
}

func taskLabels(tasks []flow.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Type.Label())
	}
	return out
}
