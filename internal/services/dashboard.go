package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/soochol/agentcanvas/internal/flow"
	"github.com/soochol/agentcanvas/internal/schedule"
)

const (
	StatusActive = "Active"
	StatusDraft  = "Draft"
)

// AgentCard is one dashboard row.
type AgentCard struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Status      string              `json:"status"`
	Tasks       int                 `json:"tasks"`
	IsRunning   bool                `json:"is_running"`
	CurrentTask string              `json:"current_task,omitempty"`
	Upcoming    []flow.UpcomingTask `json:"upcoming_tasks"`
}

type DashboardService struct {
	api   AgentAPI
	limit int
	now   func() time.Time
}

// NewDashboardService fetches at most limit statuses at a time.
func NewDashboardService(api AgentAPI, limit int) *DashboardService {
	if limit <= 0 {
		limit = 4
	}
	return &DashboardService{api: api, limit: limit, now: time.Now}
}

// Agents lists every agent with its status. Statuses are fetched
// concurrently; when one cannot be fetched the upcoming tasks are computed
// locally from the task frequencies.
func (s *DashboardService) Agents(ctx context.Context) ([]AgentCard, error) {
	agents, err := s.api.ListAgents(ctx)
	if err != nil {
		return nil, remoteErr(err)
	}

	cards := make([]AgentCard, len(agents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, a := range agents {
		cards[i] = AgentCard{
			ID:          a.ID,
			Name:        a.Persona.Name,
			Description: a.Persona.Description,
			Status:      StatusDraft,
			Tasks:       len(a.Tasks),
		}
		if len(a.Tasks) > 0 {
			cards[i].Status = StatusActive
		}
		g.Go(func() error {
			st, err := s.api.Status(gctx, a.ID)
			if err != nil {
				slog.Warn("agent status unavailable, using local schedule", "agent", a.ID, "err", err)
				cards[i].Upcoming = schedule.Upcoming(a, s.now())
				return nil
			}
			cards[i].IsRunning = st.IsRunning
			if st.CurrentTask != nil {
				cards[i].CurrentTask = *st.CurrentTask
			}
			cards[i].Upcoming = st.UpcomingTasks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cards, nil
}
