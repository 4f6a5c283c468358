package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/unisearch/internal/config"
	"github.com/dshills/unisearch/internal/searcher"
	"github.com/dshills/unisearch/pkg/types"
)

// matchFlags are the options shared by search and count
type matchFlags struct {
	models        []string
	ignoreCase    bool
	soundsLike    bool
	beginWildcard bool
	exact         bool
}

func (f *matchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.models, "models", "m", nil, "only search these configured models")
	cmd.Flags().BoolVarP(&f.ignoreCase, "ignore-case", "i", false, "compare lower-cased columns and terms")
	cmd.Flags().BoolVar(&f.soundsLike, "sounds-like", false, "match terms that sound alike")
	cmd.Flags().BoolVar(&f.beginWildcard, "begin-wildcard", false, "match terms anywhere in a column")
	cmd.Flags().BoolVar(&f.exact, "exact", false, "disable all wildcards")
}

// searcher builds the configured searcher and applies the flags the user set
func (f *matchFlags) searcher(cmd *cobra.Command, a *app, catalog config.ModelResolver) (searcher.Searcher, error) {
	s, err := a.config.Searcher(catalog, a.logger, f.models...)
	if err != nil {
		return s, err
	}

	flags := cmd.Flags()
	if flags.Changed("ignore-case") {
		s = s.IgnoreCase(f.ignoreCase)
	}
	if flags.Changed("sounds-like") {
		s = s.SoundsLike(f.soundsLike)
	}
	if flags.Changed("begin-wildcard") {
		s = s.BeginWithWildcard(f.beginWildcard)
	}
	if f.exact {
		s = s.ExactMatch()
	}
	return s, nil
}

type searchFlags struct {
	matchFlags
	order        string
	orderByModel []string
	page         int
	perPage      int
	simple       bool
	typeKey      string
	json         bool
	sql          bool
}

func newSearchCommand(a *app) *cobra.Command {
	f := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search all configured models",
		Long: `Searches every configured model with one UNION query and prints the
results in union order. Arguments are joined into one query; double quotes
keep phrases together.

Examples:
  unisearch search go
  unisearch search --order desc --page 2 --per-page 10 "union queries"
  unisearch search --models articles,clips --order-by-model Clip go
  unisearch search --sql go`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, a, f, strings.Join(args, " "))
		},
	}

	f.register(cmd)
	cmd.Flags().StringVarP(&f.order, "order", "o", "", "asc, desc or relevance (default from config)")
	cmd.Flags().StringSliceVar(&f.orderByModel, "order-by-model", nil, "model names whose rows come first")
	cmd.Flags().IntVarP(&f.page, "page", "p", 0, "page number; enables pagination")
	cmd.Flags().IntVarP(&f.perPage, "per-page", "n", 0, "results per page (default from config)")
	cmd.Flags().BoolVar(&f.simple, "simple", false, "paginate without counting the total")
	cmd.Flags().StringVar(&f.typeKey, "type-key", searcher.DefaultTypeKey, "key holding the model name in JSON output")
	cmd.Flags().BoolVar(&f.json, "json", false, "output results as JSON")
	cmd.Flags().BoolVar(&f.sql, "sql", false, "print the compiled SQL and bindings instead of searching")
	return cmd
}

func runSearch(cmd *cobra.Command, a *app, f *searchFlags, query string) error {
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

	if f.order != "" {
		direction, err := searcher.ParseDirection(f.order)
		if err != nil {
			return err
		}
		s = s.OrderBy(direction)
	}
	if len(f.orderByModel) > 0 {
		s = s.OrderByModel(f.orderByModel...)
	}

	if f.page > 0 || f.perPage > 0 || f.simple {
		perPage := f.perPage
		if perPage <= 0 {
			perPage = a.config.Search.PerPage
		}
		if f.simple {
			s = s.SimplePaginate(perPage, f.page)
		} else {
			s = s.Paginate(perPage, f.page)
		}
		s = s.PageName(a.config.Search.PageName)
	}

	out := cmd.OutOrStdout()
	if f.sql {
		sql, bindings, err := s.ToSQL(query)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, sql)
		fmt.Fprintf(out, "-- bindings: %v\n", bindings)
		return nil
	}

	s = s.IncludeModelType(f.typeKey)
	result, err := s.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if f.json {
		return outputSearchJSON(out, result)
	}
	return outputSearchTable(out, result)
}

func outputSearchJSON(out io.Writer, result *types.SearchResult) error {
	data, err := json.MarshalIndent(map[string]interface{}{
		"items":      result.Items,
		"pagination": result.Pagination,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func outputSearchTable(out io.Writer, result *types.SearchResult) error {
	if result.Len() == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	fmt.Fprintf(out, "Results (%d of %d):\n", result.Len(), result.Total())
	for i, item := range result.Items {
		entity, err := json.Marshal(item.Entity)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", item.Type, err)
		}
		fmt.Fprintf(out, "  [%d] %s %s\n", i+1, item.Type, entity)
	}

	if p := result.Pagination; p != nil {
		if p.Simple {
			fmt.Fprintf(out, "Page %d, more: %v\n", p.Page, p.HasMore)
		} else {
			fmt.Fprintf(out, "Page %d of %d\n", p.Page, p.LastPage)
		}
	}
	return nil
}
