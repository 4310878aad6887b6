package mcp_test

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpulse/workpulse/internal/contract"
	mcp_internal "github.com/workpulse/workpulse/internal/mcp"
	"github.com/workpulse/workpulse/schema"
)

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	baseCfg := &contract.Config{
		TimeRange: schema.Range30d,
		BatchSize: contract.DefaultBatchSize,
	}

	// Create a dummy manager, though we shouldn't hit it because we test validation errors
	var mgr contract.StoreManager
	s := mcp_internal.NewMCPServer(baseCfg, mgr)

	ctx := context.Background()

	t.Run("get_workspace_metrics missing workspace_id", func(t *testing.T) {
		tool := s.GetTool("get_workspace_metrics")
		require.NotNil(t, tool, "Tool get_workspace_metrics should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "get_workspace_metrics",
				Arguments: map[string]any{
					"workspace_id": "", // Missing required
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "workspace id is required")
	})

	t.Run("refresh_workspace_metrics whitespace workspace_id", func(t *testing.T) {
		tool := s.GetTool("refresh_workspace_metrics")
		require.NotNil(t, tool, "Tool refresh_workspace_metrics should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "refresh_workspace_metrics",
				Arguments: map[string]any{
					"workspace_id": "   ", // Whitespace only
					"range":        "7d",
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "workspace id is required")
	})

	t.Run("invalidate_workspace_cache missing workspace_id", func(t *testing.T) {
		tool := s.GetTool("invalidate_workspace_cache")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name:      "invalidate_workspace_cache",
				Arguments: map[string]any{},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "workspace id is required")
	})
}
