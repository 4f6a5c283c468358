package config

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/unisearch/internal/dialect"
	"github.com/dshills/unisearch/internal/query"
	"github.com/dshills/unisearch/internal/searcher"
	"github.com/dshills/unisearch/internal/storage"
)

// ErrUnknownSource is returned when a requested model has no configured source
var ErrUnknownSource = errors.New("unknown source")

// ModelResolver looks models up by name
type ModelResolver interface {
	Model(name string) (*query.Model, error)
}

// DefaultSources searches the demo catalog when no sources are configured
func DefaultSources() []Source {
	return []Source{
		{Model: "articles", Columns: []string{"title", "body", "comments.body"}},
		{Model: "clips", Columns: []string{"title", "description"}},
	}
}

// StoreOptions converts the database section into storage options
func (c *Config) StoreOptions() storage.Options {
	return storage.Options{
		Engine:          c.Database.Engine,
		DSN:             c.Database.DSN,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		Migrate:         c.Database.Migrate,
	}
}

// SearchSources returns the configured sources, or DefaultSources when none
// are configured
func (c *Config) SearchSources() []Source {
	if len(c.Sources) == 0 {
		return DefaultSources()
	}
	return c.Sources
}

// Searcher builds a searcher from the configured sources and search
// defaults. When models is not empty only the sources of those models are
// registered, in the requested order.
func (c *Config) Searcher(resolver ModelResolver, logger *zap.Logger, models ...string) (searcher.Searcher, error) {
	sources, err := c.selectSources(models)
	if err != nil {
		return searcher.Searcher{}, err
	}

	direction, err := searcher.ParseDirection(c.Search.Order)
	if err != nil {
		return searcher.Searcher{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	s := searcher.New().
		WithLogger(logger).
		OrderBy(direction).
		BeginWithWildcard(c.Search.BeginWildcard).
		EndWithWildcard(c.Search.EndWildcard).
		IgnoreCase(c.Search.IgnoreCase).
		SoundsLike(c.Search.SoundsLike).
		ParseTerm(c.Search.ParseTerm).
		AllowEmptySearchQuery(c.Search.AllowEmpty).
		PhoneticFallback(c.Search.PhoneticFallback)

	if len(c.Search.OrderByModel) > 0 {
		s = s.OrderByModel(c.Search.OrderByModel...)
	}
	if c.Search.TypeKey != "" {
		s = s.IncludeModelType(c.Search.TypeKey)
	}

	for _, src := range sources {
		model, err := resolver.Model(src.Model)
		if err != nil {
			return searcher.Searcher{}, err
		}
		if src.FullText {
			s = s.AddFullText(model, src.Columns, dialect.FullTextOptions{
				Mode:     src.Mode,
				Language: src.Language,
				Relation: src.Relation,
			}, src.OrderColumn)
			continue
		}
		s = s.Add(model, src.Columns, src.OrderColumn)
	}

	return s, s.Err()
}

func (c *Config) selectSources(models []string) ([]Source, error) {
	all := c.SearchSources()
	if len(models) == 0 {
		return all, nil
	}

	var selected []Source
	for _, name := range models {
		found := false
		for _, src := range all {
			if strings.EqualFold(src.Model, strings.TrimSpace(name)) {
				selected = append(selected, src)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
		}
	}
	return selected, nil
}
