// Package mcp implements the Model Context Protocol (MCP) server for unisearch.
//
// The MCP server exposes four tools to AI assistants:
//   - search_records: Search all configured models with one union query
//   - count_records: Count the matches of a query
//   - parse_terms: Show how a query is split into terms
//   - explain_search: Return the compiled SQL and bindings without running it
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout carries the protocol only; logs are written to stderr.
//
// # Basic Usage
//
// The MCP server is typically started via the serve command:
//
//	unisearch serve --config unisearch.yaml
//
// # Tool: search_records
//
//	Request:
//	{
//	  "name": "search_records",
//	  "arguments": {
//	    "query": "go union",
//	    "models": ["articles", "clips"],
//	    "order": "desc",
//	    "page": 1,
//	    "per_page": 10,
//	    "include_type": "type"
//	  }
//	}
//
//	Response:
//	{
//	  "count": 2,
//	  "items": [
//	    {"id": 5, "title": "Go concurrency patterns", "type": "Article"},
//	    {"id": 1, "title": "Go in five minutes", "type": "Clip"}
//	  ],
//	  "pagination": {"page": 1, "per_page": 10, "total": 2, "last_page": 1, "has_more": false}
//	}
//
// # Caching
//
// search_records and count_records responses are kept in an expiring LRU
// cache keyed by a SHA-256 of the tool name and arguments. Size and TTL come
// from the cache section of the configuration.
//
// # Error Codes
//
//	-32602  Invalid parameters
//	-32603  Internal error
//	-32004  Empty query
//	-32005  Search not supported by the engine
//	-32006  Unknown model
package mcp
