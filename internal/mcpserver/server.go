// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Vizdeck tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nordvik/vizdeck/internal/diagram"
	"github.com/nordvik/vizdeck/internal/store"
	"github.com/nordvik/vizdeck/internal/workspace"
)

// Server wraps the MCP server with Vizdeck tools.
type Server struct {
	mcp *server.MCPServer
	svc *workspace.Service
	db  *store.DB

	// userID acts as the caller identity for mutating tools. When empty,
	// mutations act as the target workspace's owner (local trusted mode).
	userID string
}

// New creates a new MCP server with all Vizdeck tools registered.
func New(svc *workspace.Service, db *store.DB, userID string) *Server {
	s := &Server{svc: svc, db: db, userID: userID}

	s.mcp = server.NewMCPServer(
		"Vizdeck",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_workspaces",
		mcp.WithDescription("List workspaces, optionally filtered by owner."),
		mcp.WithString("user_id", mcp.Description("Optional owner id to filter by")),
	), s.listWorkspaces)

	s.mcp.AddTool(mcp.NewTool("get_workspace",
		mcp.WithDescription("Read a workspace with its flow diagram and the reports assigned to each node."),
		mcp.WithString("workspace_id", mcp.Required(), mcp.Description("Workspace id")),
	), s.getWorkspace)

	s.mcp.AddTool(mcp.NewTool("assign_reports",
		mcp.WithDescription("Assign reports to a flow-diagram node. Each report belongs to "+
			"at most one node: reports already assigned elsewhere are moved to the target node."),
		mcp.WithString("workspace_id", mcp.Required(), mcp.Description("Workspace id")),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Target node id")),
		mcp.WithString("report_ids", mcp.Required(), mcp.Description("Comma-separated report ids")),
	), s.assignReports)

	s.mcp.AddTool(mcp.NewTool("list_reports",
		mcp.WithDescription("List the reports in a workspace, newest first."),
		mcp.WithString("workspace_id", mcp.Required(), mcp.Description("Workspace id")),
	), s.listReports)

	s.mcp.AddTool(mcp.NewTool("search_reports",
		mcp.WithDescription("Search reports by name (case-insensitive substring match)."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithString("workspace_id", mcp.Description("Optional workspace id to scope the search")),
	), s.searchReports)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listWorkspaces(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	workspaces, err := s.svc.List(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(workspaces, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getWorkspace(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("workspace_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	w, err := s.svc.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(w, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) assignReports(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspaceID, err := req.RequireString("workspace_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	nodeID, err := req.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawIDs, err := req.RequireString("report_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	items := []diagram.ItemID{}
	for _, id := range strings.Split(rawIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			items = append(items, diagram.ItemID(id))
		}
	}

	actor, err := s.actorFor(ctx, workspaceID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.AssignItems(ctx, actor, workspaceID, nodeID, items)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listReports(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspaceID, err := req.RequireString("workspace_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reports, err := s.db.ListReportsByWorkspace(ctx, workspaceID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(reports, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchReports(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	workspaceID := req.GetString("workspace_id", "")
	reports, err := s.db.SearchReports(ctx, workspaceID, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(reports) == 0 {
		return mcp.NewToolResultText("no reports found"), nil
	}
	out, _ := json.MarshalIndent(reports, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

// actorFor resolves the identity used for mutating tools.
func (s *Server) actorFor(ctx context.Context, workspaceID string) (string, error) {
	if s.userID != "" {
		return s.userID, nil
	}
	w, err := s.db.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return "", fmt.Errorf("resolve workspace owner: %w", err)
	}
	return w.UserID, nil
}
