package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/unisearch/internal/searcher"
)

func newTermsCommand(_ *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "terms [query]",
		Short: "Show how a query is split into search terms",
		RunE: func(cmd *cobra.Command, args []string) error {
			terms := searcher.ParseTerms(strings.Join(args, " "))
			out := cmd.OutOrStdout()

			if asJSON {
				if terms == nil {
					terms = []string{}
				}
				data, err := json.Marshal(terms)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			for _, term := range terms {
				fmt.Fprintln(out, term)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output terms as a JSON array")
	return cmd
}
