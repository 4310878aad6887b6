// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/workpulse/workpulse/internal/contract"
)

// NewMCPServer initializes and configures the Workpulse MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Workpulse Metrics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_workspace_metrics ---
	s.AddTool(mcp.NewTool("get_workspace_metrics",
		mcp.WithDescription("Aggregate contributor and repository metrics for a workspace over a time range."),
		mcp.WithString("workspace_id", mcp.Description("The workspace identifier."), mcp.Required()),
		mcp.WithString("range", mcp.Description("Time range (7d, 30d, 90d, 1y, all). Defaults to '30d'."), mcp.Enum("7d", "30d", "90d", "1y", "all")),
		mcp.WithBoolean("force_refresh", mcp.Description("Bypass the cache and recompute.")),
		mcp.WithBoolean("repo_stats", mcp.Description("Include per-repository statistics.")),
	), h.handleGetWorkspaceMetrics)

	// --- 2. Tool: refresh_workspace_metrics ---
	s.AddTool(mcp.NewTool("refresh_workspace_metrics",
		mcp.WithDescription("Recompute the cached metrics snapshot for one workspace and time range."),
		mcp.WithString("workspace_id", mcp.Description("The workspace identifier."), mcp.Required()),
		mcp.WithString("range", mcp.Description("Time range (7d, 30d, 90d, 1y, all)."), mcp.Enum("7d", "30d", "90d", "1y", "all")),
	), h.handleRefreshWorkspaceMetrics)

	// --- 3. Tool: invalidate_workspace_cache ---
	s.AddTool(mcp.NewTool("invalidate_workspace_cache",
		mcp.WithDescription("Mark every cached metrics snapshot for a workspace as stale."),
		mcp.WithString("workspace_id", mcp.Description("The workspace identifier."), mcp.Required()),
	), h.handleInvalidateWorkspaceCache)

	return s
}

// StartMCPServer starts the Workpulse MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
