package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soochol/agentcanvas/internal/flow"
	"github.com/soochol/agentcanvas/internal/templates"
)

func TestMarketplace_Listing(t *testing.T) {
	catalog, err := templates.Load()
	require.NoError(t, err)
	api := newFakeAPI(flow.Agent{
		ID:      "a1",
		Persona: flow.Persona{Name: "Support Bot", Description: "answers tickets"},
		Tasks:   []flow.Task{flow.NewTask(&flow.SmartEmailManager{}, "hourly")},
	})

	m := NewMarketplaceService(catalog, api).Listing(context.Background())
	assert.Len(t, m.Templates, 3)
	require.Len(t, m.Community, 1)
	assert.Equal(t, "Support Bot", m.Community[0].Title)
	assert.Equal(t, []string{"Smart Email Manager"}, m.Community[0].Tasks)
	assert.Empty(t, m.Notice)
}

func TestMarketplace_RemoteDown(t *testing.T) {
	catalog, _ := templates.Load()
	api := newFakeAPI()
	api.listErr = errDown

	m := NewMarketplaceService(catalog, api).Listing(context.Background())
	assert.Len(t, m.Templates, 3, "templates are local and always listed")
	assert.NotNil(t, m.Community)
	assert.Empty(t, m.Community)
	assert.NotEmpty(t, m.Notice)
}
