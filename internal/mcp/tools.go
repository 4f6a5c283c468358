package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/dshills/unisearch/internal/config"
	"github.com/dshills/unisearch/internal/searcher"
	"github.com/dshills/unisearch/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery    = -32004 // Query parameter is empty
	ErrorCodeUnsupported   = -32005 // The engine cannot run the requested search
	ErrorCodeUnknownModel  = -32006 // A requested model has no configured source
)

const maxPerPage = 100

// handleSearchRecords handles the search_records tool invocation
func (s *Server) handleSearchRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, query, err := queryArguments(request)
	if err != nil {
		return nil, err
	}

	// Parse optional parameters
	perPage := getIntDefault(args, "per_page", s.config.Search.PerPage)
	if perPage < 1 || perPage > maxPerPage {
		return nil, newMCPError(ErrorCodeInvalidParams, "per_page must be between 1 and 100", map[string]interface{}{
			"param": "per_page",
			"value": perPage,
		})
	}
	page := getIntDefault(args, "page", 1)
	if page < 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "page must be at least 1", map[string]interface{}{
			"param": "page",
			"value": page,
		})
	}

	key := cacheKey("search_records", args)
	if text, ok := s.cache.get(key); ok {
		return mcp.NewToolResultText(text), nil
	}

	srch, err := s.searcher(args)
	if err != nil {
		return nil, err
	}
	if getBoolDefault(args, "simple", false) {
		srch = srch.SimplePaginate(perPage, page)
	} else {
		srch = srch.Paginate(perPage, page)
	}
	if s.config.Search.PageName != "" {
		srch = srch.PageName(s.config.Search.PageName)
	}
	if typeKey := getStringDefault(args, "include_type", ""); typeKey != "" {
		srch = srch.IncludeModelType(typeKey)
	}

	result, err := srch.Search(ctx, query)
	if err != nil {
		return nil, mapSearchError(err)
	}

	// Format response
	response := map[string]interface{}{
		"items": result.Items,
		"count": result.Len(),
	}
	if p := result.Pagination; p != nil {
		pagination := map[string]interface{}{
			"page":      p.Page,
			"per_page":  p.PerPage,
			"page_name": p.PageName,
			"has_more":  p.HasMore,
		}
		if !p.Simple {
			pagination["total"] = p.Total
			pagination["last_page"] = p.LastPage
		}
		response["pagination"] = pagination
	}

	text := formatJSON(response)
	s.cache.add(key, text)
	s.logger.Debug("search_records", zap.String("query", query), zap.Int("results", result.Len()))
	return mcp.NewToolResultText(text), nil
}

// handleCountRecords handles the count_records tool invocation
func (s *Server) handleCountRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, query, err := queryArguments(request)
	if err != nil {
		return nil, err
	}

	key := cacheKey("count_records", args)
	if text, ok := s.cache.get(key); ok {
		return mcp.NewToolResultText(text), nil
	}

	srch, err := s.searcher(args)
	if err != nil {
		return nil, err
	}
	count, err := srch.Count(ctx, query)
	if err != nil {
		return nil, mapSearchError(err)
	}

	text := formatJSON(map[string]interface{}{
		"query": query,
		"count": count,
	})
	s.cache.add(key, text)
	return mcp.NewToolResultText(text), nil
}

// handleParseTerms handles the parse_terms tool invocation
func (s *Server) handleParseTerms(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, query, err := queryArguments(request)
	if err != nil {
		return nil, err
	}

	terms := searcher.ParseTerms(query)
	if terms == nil {
		terms = []string{}
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query": query,
		"terms": terms,
	})), nil
}

// handleExplainSearch handles the explain_search tool invocation
func (s *Server) handleExplainSearch(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, query, err := queryArguments(request)
	if err != nil {
		return nil, err
	}

	srch, err := s.searcher(args)
	if err != nil {
		return nil, err
	}
	sql, bindings, err := srch.ToSQL(query)
	if err != nil {
		return nil, mapSearchError(err)
	}
	if bindings == nil {
		bindings = []any{}
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"engine":   s.store.Engine(),
		"sql":      sql,
		"bindings": bindings,
	})), nil
}

// searcher builds the configured searcher and applies per-request options
func (s *Server) searcher(args map[string]interface{}) (searcher.Searcher, error) {
	srch, err := s.config.Searcher(s.catalog, s.logger, getStringSlice(args, "models")...)
	if err != nil {
		return srch, mapSearchError(err)
	}

	if v, ok := args["ignore_case"].(bool); ok {
		srch = srch.IgnoreCase(v)
	}
	if v, ok := args["sounds_like"].(bool); ok {
		srch = srch.SoundsLike(v)
	}
	if v, ok := args["begin_with_wildcard"].(bool); ok {
		srch = srch.BeginWithWildcard(v)
	}
	if getBoolDefault(args, "exact_match", false) {
		srch = srch.ExactMatch()
	}

	if order, ok := args["order"].(string); ok {
		direction, err := searcher.ParseDirection(order)
		if err != nil {
			return srch, newMCPError(ErrorCodeInvalidParams, "invalid order", map[string]interface{}{
				"param":   "order",
				"value":   order,
				"allowed": []string{"asc", "desc", "relevance"},
			})
		}
		srch = srch.OrderBy(direction)
	}
	if names := getStringSlice(args, "order_by_model"); len(names) > 0 {
		srch = srch.OrderByModel(names...)
	}

	return srch, nil
}

// Helper functions

// queryArguments extracts the arguments and the required query parameter
func queryArguments(request mcp.CallToolRequest) (map[string]interface{}, string, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, "", newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok {
		return nil, "", newMCPError(ErrorCodeInvalidParams, "query parameter is required", map[string]interface{}{
			"param":  "query",
			"reason": "missing or not a string",
		})
	}
	return args, query, nil
}

// mapSearchError converts search errors into MCP errors
func mapSearchError(err error) error {
	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return err
	}

	data := map[string]interface{}{"error": err.Error()}
	switch {
	case errors.Is(err, types.ErrEmptySearchQuery):
		return newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", data)
	case errors.Is(err, config.ErrUnknownSource):
		return newMCPError(ErrorCodeUnknownModel, "unknown model", data)
	case errors.Is(err, types.ErrUnsupportedOperation), errors.Is(err, types.ErrOrderByRelevanceUnsupported):
		return newMCPError(ErrorCodeUnsupported, "search not supported by this engine", data)
	case errors.Is(err, types.ErrPaginationConflict):
		return newMCPError(ErrorCodeInvalidParams, "invalid pagination", data)
	default:
		return newMCPError(ErrorCodeInternalError, "search failed", data)
	}
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts an array of strings, skipping other values
func getStringSlice(args map[string]interface{}, key string) []string {
	switch val := args[key].(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
