package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSeedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo catalog and fill it with sample rows",
		Long: `Applies the schema migrations and replaces the rows of the authors,
articles, clips and comments tables with a small sample data set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a.config.Database.Migrate = true
			store, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Seed(ctx)
			if err != nil {
				return err
			}
			a.logger.Info("seeded demo catalog", zap.String("engine", store.Engine()), zap.Int("rows", stats.Total()))

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d authors, %d articles, %d clips, %d comments\n",
				stats.Authors, stats.Articles, stats.Clips, stats.Comments)
			return nil
		},
	}
}
