package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCountCommand(a *app) *cobra.Command {
	f := &matchFlags{}

	cmd := &cobra.Command{
		Use:   "count [query]",
		Short: "Count matches across all configured models",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			s, err := f.searcher(cmd, a, store.Catalog())
			if err != nil {
				return err
			}

			count, err := s.Count(ctx, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("count failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), count)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}
