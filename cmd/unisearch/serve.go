package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/unisearch/internal/mcp"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Starts the Model Context Protocol server. It reads JSON-RPC requests
from stdin and writes responses to stdout; logs go to stderr.

Tools: search_records, count_records, parse_terms, explain_search.

MCP client configuration:
  {
    "mcpServers": {
      "unisearch": {
        "command": "/path/to/unisearch",
        "args": ["serve", "--config", "/path/to/unisearch.yaml"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			server, err := mcp.NewServer(a.config, store, a.logger)
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				// stdin closing ends the server as well as a signal
				defer stop()
				a.logger.Info("MCP server ready, listening on stdio",
					zap.String("version", version),
					zap.String("engine", store.Engine()))
				return server.Serve(gctx)
			})
			g.Go(func() error {
				<-gctx.Done()
				a.logger.Info("shutting down")
				return nil
			})

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			a.logger.Info("server stopped")
			return nil
		},
	}
}
