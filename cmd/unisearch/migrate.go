package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(a *app) *cobra.Command {
	var rollback bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a.config.Database.Migrate = false
			store, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if rollback {
				err = store.Rollback(ctx)
			} else {
				err = store.Migrate(ctx)
			}
			if err != nil {
				return err
			}

			v, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %s\n", v)
			return nil
		},
	}

	cmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the most recent migration instead")
	return cmd
}
