package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/huangsam/hoc/internal/contract"
	"github.com/huangsam/hoc/internal/iocache"
	mcp_internal "github.com/huangsam/hoc/internal/mcp"
	"github.com/huangsam/hoc/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const headHash = "2222222222222222222222222222222222222222"

func callTool(t *testing.T, cfg *contract.Config, client contract.GitClient, mgr contract.StoreManager, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(cfg, client, mgr)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestGetHitsOfCode(t *testing.T) {
	baseCfg := &contract.Config{RepoPath: ".", ResultLimit: contract.DefaultResultLimit}
	log := []byte("--" + headHash + "|\n\n3\t0\ta.txt\n2\t0\tb.txt\n")

	client := new(contract.MockGitClient)
	client.On("OpenRepo", mock.Anything, "/work/repo").
		Return(contract.RepoInfo{Root: "/work/repo", Head: headHash}, nil)
	client.On("StreamHistory", mock.Anything, "/work/repo", schema.HistoryOptions{FindRenamesAndCopies: true}).
		Return(log, nil)
	client.On("StreamCommits", mock.Anything, "/work/repo").
		Return([]byte(headHash+"\n"), nil)

	res := callTool(t, baseCfg, client, nil, "get_hits_of_code", map[string]any{
		"repo_path":               "/work/repo",
		"find_renames_and_copies": true,
	})
	require.False(t, res.IsError, resultText(t, res))

	var result schema.HocResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &result))
	assert.Equal(t, uint64(7), result.Total)
	assert.Equal(t, headHash, result.Head)
	assert.True(t, result.FindRenamesAndCopies)
	assert.Equal(t, ".", baseCfg.RepoPath, "base config must not be mutated")
	client.AssertExpectations(t)
}

func TestGetHitsOfCode_NotARepository(t *testing.T) {
	baseCfg := &contract.Config{RepoPath: "."}

	client := new(contract.MockGitClient)
	client.On("OpenRepo", mock.Anything, ".").Return(contract.RepoInfo{}, contract.ErrRepositoryNotFound)

	res := callTool(t, baseCfg, client, nil, "get_hits_of_code", map[string]any{})
	assert.True(t, res.IsError, "The response should indicate an error state")
	assert.Contains(t, resultText(t, res), "failed to compute hits-of-code")
	assert.Contains(t, resultText(t, res), "repository not found")
}

func TestGetRunHistory(t *testing.T) {
	baseCfg := &contract.Config{ResultLimit: contract.DefaultResultLimit}
	total := int64(42)
	runs := []schema.RunRecord{{RunID: 3, RepoPath: "/work/repo", TotalHits: &total}}

	store := new(iocache.MockRunStore)
	store.On("GetRecentRuns", 5).Return(runs, nil)
	mgr := new(iocache.MockStoreManager)
	mgr.On("GetRunStore").Return(store)

	res := callTool(t, baseCfg, nil, mgr, "get_run_history", map[string]any{"limit": 5.0})
	require.False(t, res.IsError, resultText(t, res))

	var decoded []schema.RunRecord
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, int64(3), decoded[0].RunID)
	require.NotNil(t, decoded[0].TotalHits)
	assert.Equal(t, int64(42), *decoded[0].TotalHits)
	store.AssertExpectations(t)
}

func TestGetRunHistory_Errors(t *testing.T) {
	baseCfg := &contract.Config{ResultLimit: contract.DefaultResultLimit}

	t.Run("no store configured", func(t *testing.T) {
		mgr := new(iocache.MockStoreManager)
		mgr.On("GetRunStore").Return(nil)

		res := callTool(t, baseCfg, nil, mgr, "get_run_history", map[string]any{})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "run history is not configured")
	})

	t.Run("limit out of range", func(t *testing.T) {
		res := callTool(t, baseCfg, nil, nil, "get_run_history", map[string]any{"limit": 5000.0})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "limit must be between 1 and")
	})

	t.Run("store failure", func(t *testing.T) {
		store := new(iocache.MockRunStore)
		store.On("GetRecentRuns", contract.DefaultResultLimit).Return(nil, errors.New("connection refused"))
		mgr := new(iocache.MockStoreManager)
		mgr.On("GetRunStore").Return(store)

		res := callTool(t, baseCfg, nil, mgr, "get_run_history", map[string]any{})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "connection refused")
	})
}
