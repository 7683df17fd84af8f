package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lucky-aeon/agentx/mcp-manager/service"
	"github.com/lucky-aeon/agentx/mcp-manager/types"
	"github.com/lucky-aeon/agentx/mcp-manager/xlog"
)

const (
	ServerName   = "mcp-manager"
	EndpointPath = "/mcp"
)

// Server exposes fragment and agent operations as MCP tools.
type Server struct {
	mgr       service.ServiceManagerI
	mcpServer *server.MCPServer
	xl        xlog.Logger
}

func NewServer(mgr service.ServiceManagerI, version string) *Server {
	s := &Server{
		mgr: mgr,
		mcpServer: server.NewMCPServer(
			ServerName,
			version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
		xl: xlog.NewLogger("[MCPTools]"),
	}
	s.setupTools()
	return s
}

func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// HTTPHandler serves the tools over streamable HTTP at EndpointPath.
func (s *Server) HTTPHandler() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s.mcpServer, server.WithEndpointPath(EndpointPath))
}

// ServeStdio blocks serving the tools on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) setupTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_fragments",
		mcp.WithDescription("List stored MCP config fragments with the servers each declares"),
	), s.handleListFragments)

	s.mcpServer.AddTool(mcp.NewTool("list_agents",
		mcp.WithDescription("List saved agents (pre-merged fragment bundles)"),
	), s.handleListAgents)

	s.mcpServer.AddTool(mcp.NewTool("merge_fragments",
		mcp.WithDescription("Merge fragments in order and return the composite; later fragments win on server name clashes"),
		mcp.WithString("fragments",
			mcp.Required(),
			mcp.Description("Comma separated fragment names, in merge order"),
		),
	), s.handleMergeFragments)

	s.mcpServer.AddTool(mcp.NewTool("apply_fragments",
		mcp.WithDescription("Merge fragments and write the result to the target config files"),
		mcp.WithString("fragments",
			mcp.Required(),
			mcp.Description("Comma separated fragment names, in merge order"),
		),
		mcp.WithString("targets",
			mcp.Description("Comma separated target names (default: all)"),
		),
	), s.handleApplyFragments)

	s.mcpServer.AddTool(mcp.NewTool("apply_agent",
		mcp.WithDescription("Write a saved agent to the target config files"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Agent name"),
		),
		mcp.WithString("targets",
			mcp.Description("Comma separated target names (default: all)"),
		),
	), s.handleApplyAgent)

	s.mcpServer.AddTool(mcp.NewTool("save_agent",
		mcp.WithDescription("Merge fragments and save the result as an agent"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Agent name"),
		),
		mcp.WithString("description",
			mcp.Description("Free text description"),
		),
		mcp.WithString("fragments",
			mcp.Description("Comma separated fragment names; empty creates a blank agent"),
		),
	), s.handleSaveAgent)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleListFragments(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.mgr.ListFragments(s.xl)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(list)
}

func (s *Server) handleListAgents(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agents, err := s.mgr.ListAgents(s.xl)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(agents)
}

func (s *Server) handleMergeFragments(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := request.RequireString("fragments")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	composite, err := s.mgr.MergeFragments(s.xl, splitList(names))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(composite)
}

func (s *Server) handleApplyFragments(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := request.RequireString("fragments")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targets := splitList(request.GetString("targets", ""))
	_, res, err := s.mgr.ApplyFragments(s.xl, splitList(names), targets)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res.Err() != nil && !res.Partial() {
		return mcp.NewToolResultError(res.Err().Error()), nil
	}
	return jsonResult(res.Report())
}

func (s *Server) handleApplyAgent(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targets := splitList(request.GetString("targets", ""))
	_, res, err := s.mgr.ApplyAgent(s.xl, name, targets)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res.Err() != nil && !res.Partial() {
		return mcp.NewToolResultError(res.Err().Error()), nil
	}
	return jsonResult(res.Report())
}

func (s *Server) handleSaveAgent(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	agent, err := s.mgr.SaveAgent(s.xl, name, types.SaveAgentRequest{
		Description: request.GetString("description", ""),
		Fragments:   splitList(request.GetString("fragments", "")),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(agent)
}
