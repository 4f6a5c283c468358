package mcp

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/dshills/unisearch/internal/config"
	"github.com/dshills/unisearch/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "unisearch"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	config  *config.Config
	store   *storage.Store
	catalog *storage.Catalog
	cache   *responseCache
	logger  *zap.Logger
}

// NewServer creates a new MCP server instance. The caller keeps ownership of
// store.
func NewServer(cfg *config.Config, store *storage.Store, logger *zap.Logger) (*Server, error) {
	if cfg == nil || store == nil {
		return nil, fmt.Errorf("config and store are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var cache *responseCache
	if cfg.Cache.Enabled {
		cache = newResponseCache(cfg.Cache.Size, cfg.Cache.TTL)
	}

	s := &Server{
		mcp:     server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		config:  cfg,
		store:   store,
		catalog: store.Catalog(),
		cache:   cache,
		logger:  logger,
	}

	// Register tools
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve runs the MCP protocol on stdio until ctx is cancelled or stdin closes
func (s *Server) Serve(ctx context.Context) error {
	return s.Listen(ctx, os.Stdin, os.Stdout)
}

// Listen runs the MCP protocol over the given streams
func (s *Server) Listen(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))
	return stdio.Listen(ctx, in, out)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(searchRecordsTool(), s.handleSearchRecords)
	s.mcp.AddTool(countRecordsTool(), s.handleCountRecords)
	s.mcp.AddTool(parseTermsTool(), s.handleParseTerms)
	s.mcp.AddTool(explainSearchTool(), s.handleExplainSearch)
	return nil
}
