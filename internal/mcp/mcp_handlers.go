package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/workpulse/workpulse/core"
	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// service builds an aggregation service from the managed stores.
func (h *toolHandler) service() *core.AggregationService {
	svc := core.NewAggregationService(h.mgr.GetSourceStore(), h.mgr.GetCacheStore(), h.mgr.GetHistoryStore())
	svc.SetBatchSize(h.baseCfg.BatchSize)
	return svc
}

func (h *toolHandler) handleGetWorkspaceMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	workspaceID := request.GetString("workspace_id", "")
	if err := contract.ValidateWorkspaceID(workspaceID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid workspace: %v", err)), nil
	}
	if r := request.GetString("range", ""); r != "" {
		cfg.TimeRange = schema.TimeRange(r)
	}

	metrics, err := h.service().AggregateWorkspaceMetrics(ctx, workspaceID, core.Options{
		TimeRange:              cfg.TimeRange,
		ForceRefresh:           request.GetBool("force_refresh", false),
		IncludeRepositoryStats: request.GetBool("repo_stats", false),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("aggregation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(metrics, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRefreshWorkspaceMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	workspaceID := request.GetString("workspace_id", "")
	if err := contract.ValidateWorkspaceID(workspaceID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid workspace: %v", err)), nil
	}
	if r := request.GetString("range", ""); r != "" {
		cfg.TimeRange = schema.TimeRange(r)
	}

	metrics, err := h.service().ForceRefresh(ctx, workspaceID, cfg.TimeRange)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("refresh failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(metrics, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleInvalidateWorkspaceCache(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspaceID := request.GetString("workspace_id", "")
	if err := contract.ValidateWorkspaceID(workspaceID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid workspace: %v", err)), nil
	}

	if err := h.service().InvalidateCache(ctx, workspaceID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalidation failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Cache invalidated for workspace %s", workspaceID)), nil
}
