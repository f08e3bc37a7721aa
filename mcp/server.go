// Package mcp exposes the wrapper API operations as MCP tools over stdio,
// so MCP-capable agents can chat through the wrapper without speaking its
// HTTP contract.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/fathindifa26/ai-wrapper-client/client"
)

// Server wraps an MCP stdio server around one API client.
type Server struct {
	api *client.Client
	mcp *server.MCPServer
}

// NewServer creates an MCP server exposing chat, status, list_projects
// and reload_engine tools backed by api.
func NewServer(api *client.Client, version string) *Server {
	s := server.NewMCPServer(
		"ai-wrapper-client",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	srv := &Server{api: api, mcp: s}
	srv.registerTools()
	return srv
}

// ServeStdio blocks serving MCP over stdin/stdout until the stream closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	chatTool := mcp.NewTool("chat",
		mcp.WithDescription("Send a prompt to the AI wrapper backend and return the reply text"),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("The prompt to send"),
		),
		mcp.WithString("project_url",
			mcp.Description("Project URL to route the prompt to; omit to use the server's default project"),
		),
	)
	s.mcp.AddTool(chatTool, s.handleChat)

	statusTool := mcp.NewTool("status",
		mcp.WithDescription("Fetch the wrapper API health snapshot as JSON"),
	)
	s.mcp.AddTool(statusTool, s.handleStatus)

	projectsTool := mcp.NewTool("list_projects",
		mcp.WithDescription("List the wrapper API's active project contexts as JSON"),
	)
	s.mcp.AddTool(projectsTool, s.handleProjects)

	reloadTool := mcp.NewTool("reload_engine",
		mcp.WithDescription("Restart the wrapper API's browser engine to recover a wedged session"),
	)
	s.mcp.AddTool(reloadTool, s.handleReload)
}

// handleChat runs one chat exchange. Failed chats come back as MCP tool
// errors so agents see a single failure channel.
func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	projectURL := request.GetString("project_url", "")

	res, err := s.api.Send(ctx, client.ChatRequest{Prompt: prompt, ProjectURL: projectURL})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !res.Success {
		return mcp.NewToolResultError(fmt.Sprintf("chat failed: %s", res.Error)), nil
	}

	return mcp.NewToolResultText(res.Response), nil
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.api.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.Marshal(info.Details)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.api.Projects(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.Marshal(projects)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode projects: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleReload(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.api.Reload(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if info.Status == "" {
		return mcp.NewToolResultText("reload requested"), nil
	}
	return mcp.NewToolResultText(info.Status), nil
}
