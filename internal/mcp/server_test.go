package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/unisearch/internal/config"
	"github.com/dshills/unisearch/internal/storage"
)

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func setupTestServer(t *testing.T, yaml string) *Server {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "unisearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	cfg, err := config.Load(path)
	require.NoError(t, err)

	store, err := storage.Open(ctx, storage.Options{DSN: ":memory:", Migrate: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	_, err = store.Seed(ctx)
	require.NoError(t, err)

	server, err := NewServer(cfg, store, nil)
	require.NoError(t, err)
	return server
}

func callTool(t *testing.T, handler toolHandler, args map[string]interface{}) (map[string]interface{}, error) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	res, err := handler(context.Background(), req)
	if err != nil {
		return nil, err
	}
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out, nil
}

func requireMCPError(t *testing.T, err error, code int) {
	t.Helper()
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, code, mcpErr.Code, mcpErr.Message)
}

func TestNewServer(t *testing.T) {
	server := setupTestServer(t, "cache:\n  size: 8\n")

	assert.NotNil(t, server.mcp, "MCP server should be initialized")
	assert.NotNil(t, server.catalog, "Catalog should be initialized")
	assert.NotNil(t, server.cache, "Cache should be enabled by default")

	_, err := NewServer(nil, nil, nil)
	assert.Error(t, err)
}

func TestCacheDisabled(t *testing.T) {
	server := setupTestServer(t, "cache:\n  enabled: false\n")
	assert.Nil(t, server.cache)

	_, err := callTool(t, server.handleSearchRecords, map[string]interface{}{"query": "go"})
	require.NoError(t, err)
	assert.Zero(t, server.cache.Len())
}

func TestSearchRecords(t *testing.T) {
	server := setupTestServer(t, "search:\n  order: desc\n")

	out, err := callTool(t, server.handleSearchRecords, map[string]interface{}{
		"query":        "go",
		"include_type": "type",
	})
	require.NoError(t, err)

	assert.EqualValues(t, 2, out["count"])
	items := out["items"].([]interface{})
	require.Len(t, items, 2)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "Article", first["type"])
	assert.Equal(t, "Go concurrency patterns", first["title"])
	assert.Equal(t, "Clip", items[1].(map[string]interface{})["type"])

	pagination := out["pagination"].(map[string]interface{})
	assert.EqualValues(t, 1, pagination["page"])
	assert.EqualValues(t, 2, pagination["total"])
	assert.EqualValues(t, 1, pagination["last_page"])
	assert.Equal(t, false, pagination["has_more"])
	assert.Equal(t, "page", pagination["page_name"])
}

func TestSearchRecordsPaginationAndOptions(t *testing.T) {
	server := setupTestServer(t, "")

	out, err := callTool(t, server.handleSearchRecords, map[string]interface{}{
		"query":               "o",
		"begin_with_wildcard": true,
		"models":              []interface{}{"clips"},
		"per_page":            float64(2),
		"page":                float64(1),
		"simple":              true,
	})
	require.NoError(t, err)

	assert.EqualValues(t, 2, out["count"])
	pagination := out["pagination"].(map[string]interface{})
	assert.Equal(t, true, pagination["has_more"])
	assert.NotContains(t, pagination, "total")

	out, err = callTool(t, server.handleSearchRecords, map[string]interface{}{
		"query":          "o",
		"exact_match":    false,
		"order_by_model": []interface{}{"Clip"},
		"order":          "desc",
		"ignore_case":    true,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, out["count"])
	items := out["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "SQL union tricks", items[0].(map[string]interface{})["title"])
}

func TestSearchRecordsErrors(t *testing.T) {
	server := setupTestServer(t, "")

	_, err := callTool(t, server.handleSearchRecords, map[string]interface{}{"query": "  "})
	requireMCPError(t, err, ErrorCodeEmptyQuery)

	_, err = callTool(t, server.handleSearchRecords, map[string]interface{}{})
	requireMCPError(t, err, ErrorCodeInvalidParams)

	_, err = callTool(t, server.handleSearchRecords, map[string]interface{}{"query": "go", "per_page": float64(500)})
	requireMCPError(t, err, ErrorCodeInvalidParams)

	_, err = callTool(t, server.handleSearchRecords, map[string]interface{}{"query": "go", "page": float64(0)})
	requireMCPError(t, err, ErrorCodeInvalidParams)

	_, err = callTool(t, server.handleSearchRecords, map[string]interface{}{"query": "go", "order": "sideways"})
	requireMCPError(t, err, ErrorCodeInvalidParams)

	_, err = callTool(t, server.handleSearchRecords, map[string]interface{}{"query": "go", "models": []interface{}{"videos"}})
	requireMCPError(t, err, ErrorCodeUnknownModel)

	// Relevance cannot score columns reached through relations
	_, err = callTool(t, server.handleSearchRecords, map[string]interface{}{"query": "go", "order": "relevance"})
	requireMCPError(t, err, ErrorCodeUnsupported)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = "not an object"
	_, err = server.handleSearchRecords(context.Background(), req)
	requireMCPError(t, err, ErrorCodeInvalidParams)
}

func TestSearchRecordsCache(t *testing.T) {
	server := setupTestServer(t, "")
	args := map[string]interface{}{"query": "go"}

	first, err := callTool(t, server.handleSearchRecords, args)
	require.NoError(t, err)
	assert.Equal(t, 1, server.cache.Len())

	// Rows deleted after the first call stay hidden behind the cached response
	_, err = server.store.DB().Exec("DELETE FROM clips")
	require.NoError(t, err)

	second, err := callTool(t, server.handleSearchRecords, map[string]interface{}{"query": "go"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, server.cache.Len())

	third, err := callTool(t, server.handleSearchRecords, map[string]interface{}{"query": "go", "page": float64(1)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, third["count"])
	assert.Equal(t, 2, server.cache.Len())
}

func TestCacheKey(t *testing.T) {
	a := cacheKey("search_records", map[string]interface{}{"query": "go", "page": 1})
	b := cacheKey("search_records", map[string]interface{}{"page": 1, "query": "go"})
	c := cacheKey("count_records", map[string]interface{}{"query": "go", "page": 1})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestCountRecords(t *testing.T) {
	server := setupTestServer(t, "")

	out, err := callTool(t, server.handleCountRecords, map[string]interface{}{"query": "go"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, out["count"])

	out, err = callTool(t, server.handleCountRecords, map[string]interface{}{"query": "go", "models": []interface{}{"articles"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, out["count"])
}

func TestParseTerms(t *testing.T) {
	server := setupTestServer(t, "")

	out, err := callTool(t, server.handleParseTerms, map[string]interface{}{"query": `foo "bar baz"`})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"foo", "bar baz"}, out["terms"])

	out, err = callTool(t, server.handleParseTerms, map[string]interface{}{"query": ""})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{}, out["terms"])
}

func TestExplainSearch(t *testing.T) {
	server := setupTestServer(t, "")

	out, err := callTool(t, server.handleExplainSearch, map[string]interface{}{"query": "go", "order": "desc"})
	require.NoError(t, err)

	assert.Equal(t, "sqlite", out["engine"])
	sql := out["sql"].(string)
	assert.Contains(t, sql, "union")
	assert.Contains(t, sql, `"union_query" order by coalesce("0_article_order", "1_clip_order") desc`)
	assert.Len(t, out["bindings"], 5)
}
