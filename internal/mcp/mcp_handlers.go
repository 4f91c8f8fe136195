package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/hoc/core"
	"github.com/huangsam/hoc/internal/contract"
	"github.com/huangsam/hoc/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.GitClient
	mgr     contract.StoreManager
}

func (h *toolHandler) handleGetHitsOfCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		cfg.RepoPath = p
	}
	opts := schema.HistoryOptions{
		FindRenamesAndCopies: request.GetBool("find_renames_and_copies", false),
	}

	result, _, err := core.AnalyzeHistory(ctx, h.client, cfg.RepoPath, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute hits-of-code: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetRunHistory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := h.baseCfg.ResultLimit
	if l := request.GetInt("limit", 0); l != 0 {
		limit = l
	}
	if limit < 1 || limit > contract.MaxResultLimit {
		return mcp.NewToolResultError(fmt.Sprintf("limit must be between 1 and %d", contract.MaxResultLimit)), nil
	}

	var store contract.RunStore
	if h.mgr != nil {
		store = h.mgr.GetRunStore()
	}
	if store == nil {
		return mcp.NewToolResultError("run history is not configured: set analysis-backend"), nil
	}

	runs, err := store.GetRecentRuns(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load run history: %v", err)), nil
	}
	if runs == nil {
		runs = []schema.RunRecord{}
	}

	jsonData, _ := json.MarshalIndent(runs, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
