package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soochol/agentcanvas/internal/config"
	"github.com/soochol/agentcanvas/internal/flow"
	"github.com/soochol/agentcanvas/internal/layout"
)

var layoutCmd = &cobra.Command{
	Use:   "layout <agent-id>",
	Short: "Print the canvas of a remote agent as JSON",
	Long: `Fetch an agent from the agent API and print the nodes and edges the
builder would open for it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadDefault()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		a, err := newClient(cfg).GetAgent(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("fetching agent %s: %w", args[0], err)
		}
		nodes, edges := layout.FromAgent(a)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(flow.Workflow{Nodes: nodes, Edges: edges, AgentID: a.ID})
	},
}
