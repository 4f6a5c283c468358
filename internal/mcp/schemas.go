package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// matchingProperties are the search options shared by every search tool
func matchingProperties() map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"type":        "string",
			"description": "Search terms separated by spaces; double quotes keep phrases together",
		},
		"models": map[string]interface{}{
			"type":        "array",
			"description": "Restrict the search to these configured models (default: all)",
			"items": map[string]interface{}{
				"type": "string",
			},
		},
		"ignore_case": map[string]interface{}{
			"type":        "boolean",
			"description": "Compare lower-cased columns with lower-cased terms",
		},
		"sounds_like": map[string]interface{}{
			"type":        "boolean",
			"description": "Match terms that sound alike instead of using LIKE",
		},
		"begin_with_wildcard": map[string]interface{}{
			"type":        "boolean",
			"description": "Match terms anywhere in a column instead of at its start",
		},
		"exact_match": map[string]interface{}{
			"type":        "boolean",
			"description": "Disable all wildcards",
		},
	}
}

// orderingProperties select the order of the union
func orderingProperties() map[string]interface{} {
	return map[string]interface{}{
		"order": map[string]interface{}{
			"type":        "string",
			"description": "asc/desc by each model's order column, or relevance by term occurrences",
			"enum":        []string{"asc", "desc", "relevance"},
		},
		"order_by_model": map[string]interface{}{
			"type":        "array",
			"description": "Model names whose rows come first, in this order",
			"items": map[string]interface{}{
				"type": "string",
			},
		},
	}
}

func merge(sets ...map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}

// searchRecordsTool returns the tool definition for search_records
func searchRecordsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_records",
		Description: "Search several record types at once and return one ordered, paginated list",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: merge(matchingProperties(), orderingProperties(), map[string]interface{}{
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number, starting at 1",
					"default":     1,
					"minimum":     1,
				},
				"per_page": map[string]interface{}{
					"type":        "integer",
					"description": "Results per page (1-100)",
					"minimum":     1,
					"maximum":     100,
				},
				"simple": map[string]interface{}{
					"type":        "boolean",
					"description": "Skip the total count and only report whether more results exist",
					"default":     false,
				},
				"include_type": map[string]interface{}{
					"type":        "string",
					"description": "Add the model name of each result under this key",
				},
			}),
			Required: []string{"query"},
		},
	}
}

// countRecordsTool returns the tool definition for count_records
func countRecordsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "count_records",
		Description: "Count the records of all configured models matching a query",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: matchingProperties(),
			Required:   []string{"query"},
		},
	}
}

// parseTermsTool returns the tool definition for parse_terms
func parseTermsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "parse_terms",
		Description: "Show how a query is split into search terms",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Raw search input",
				},
			},
			Required: []string{"query"},
		},
	}
}

// explainSearchTool returns the tool definition for explain_search
func explainSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "explain_search",
		Description: "Return the SQL and bindings a search would run, without running it",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: merge(matchingProperties(), orderingProperties()),
			Required:   []string{"query"},
		},
	}
}
