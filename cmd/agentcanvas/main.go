package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "agentcanvas",
	Short:   "Visual builder back-end for AI agent workflows",
	Version: version,
	Long: `agentcanvas serves the canvas API used by the browser renderer:
agent canvases, node forms, document uploads, the orchestra view, the
dashboard and the marketplace. Agents themselves live in the remote
agent-management API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, layoutCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
