package mcp

import (
	"github.com/ka2n/firms/api"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server represents the MCP server for firms
type Server struct {
	server *server.MCPServer
}

// NewServer creates a new MCP server instance backed by session
func NewServer(session *api.Session) *Server {
	s := server.NewMCPServer("firms", api.Version)

	registerTools(s, session)

	return &Server{
		server: s,
	}
}

// Run starts the MCP server
func (s *Server) Run() error {
	return server.ServeStdio(s.server)
}

// registerTools registers all available tools with the MCP server
func registerTools(s *server.MCPServer, session *api.Session) {
	tools := InitTools(session)
	s.AddTools(tools...)
}

func newServerTool(tool mcp.Tool, handler server.ToolHandlerFunc) server.ServerTool {
	return server.ServerTool{
		Tool:    tool,
		Handler: handler,
	}
}
