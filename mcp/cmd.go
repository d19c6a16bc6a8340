package mcp

import (
	"github.com/ka2n/firms/api"
	"github.com/ka2n/firms/config"
	"github.com/morikuni/failure/v2"
	"github.com/spf13/cobra"
)

// Command returns the MCP server command
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long:  "Serve the firms tools over the Model Context Protocol on stdin and stdout",
		RunE:  runMCP,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return failure.Wrap(err)
	}
	server := NewServer(api.NewSession(cfg))
	return server.Run()
}
