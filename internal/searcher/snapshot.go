package searcher

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/dshills/unisearch/internal/dialect"
	"github.com/dshills/unisearch/internal/query"
	"github.com/dshills/unisearch/internal/terms"
	"github.com/dshills/unisearch/pkg/types"
)

// snapshot is the frozen state of one terminal call
type snapshot struct {
	config  Configuration
	sources []ModelSource
	grammar dialect.Grammar
	conn    *query.Conn
	terms   terms.Terms
	logger  *zap.Logger
}

// freeze validates the configuration and parses raw. Nothing touches the
// database before it succeeds.
func (s Searcher) freeze(raw string) (*snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.sources) == 0 {
		return nil, types.ErrNoModelsAdded
	}

	config := s.Config()
	conn := s.sources[0].model.Conn()

	g, err := conn.Grammar()
	if err != nil {
		return nil, err
	}
	if config.PhoneticFallback {
		g = g.UseSoundsLike()
	} else {
		g = g.AvoidSoundsLike()
	}
	if config.SoundsLike && !g.SupportsSoundsLike() && !config.PhoneticFallback {
		return nil, fmt.Errorf("%w: %s has no sounds-like operator", types.ErrUnsupportedOperation, g.Name())
	}

	t := terms.Parse(raw, terms.Options{
		ParseTerm:     config.ParseTerm,
		IgnoreCase:    config.IgnoreCase,
		BeginWildcard: config.BeginWildcard,
		EndWildcard:   config.EndWildcard,
		SoundsLike:    config.SoundsLike,
	})
	if t.Empty() && !config.AllowEmpty {
		return nil, types.ErrEmptySearchQuery
	}

	logger := s.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &snapshot{
		config:  config,
		sources: slices.Clone(s.sources),
		grammar: g,
		conn:    conn,
		terms:   t,
		logger:  logger,
	}, nil
}

func (sn *snapshot) layout() layout {
	relevance := sn.config.Direction == Relevance && len(sn.terms.WithoutWildcards) > 0
	return newLayout(len(sn.sources), sn.config.orderByModel(), relevance)
}

// plans builds one select per source with its synthetic columns, relevance
// projection and search condition.
func (sn *snapshot) plans() ([]*query.Query, error) {
	predicates := predicateBuilder{grammar: sn.grammar, config: sn.config}
	projections := projectionBuilder{grammar: sn.grammar, config: sn.config}

	plans := make([]*query.Query, 0, len(sn.sources))
	for _, src := range sn.sources {
		q := src.model.NewQuery().Select(projections.columns(src, sn.sources)...)

		relevance, ok, err := predicates.relevance(src, sn.terms)
		if err != nil {
			return nil, err
		}
		if ok {
			q.Select(relevance)
		}

		cond, err := predicates.searchCondition(src, sn.terms)
		if err != nil {
			return nil, err
		}
		if cond != nil {
			q.Where(cond)
		}

		plans = append(plans, q)
	}
	return plans, nil
}

func (sn *snapshot) compiler() compiler {
	return compiler{grammar: sn.grammar, config: sn.config, sources: sn.sources}
}

// compile returns the ordered union without limit or offset
func (sn *snapshot) compile() (*query.Query, error) {
	plans, err := sn.plans()
	if err != nil {
		return nil, err
	}
	c := sn.compiler()
	return c.ordered(c.union(plans), sn.terms), nil
}

// execute runs the union and decodes its rows
func (sn *snapshot) execute(ctx context.Context, q *query.Query) ([]hit, error) {
	sql, args := q.ToSQL(sn.grammar)
	sn.logger.Debug("executing union query",
		zap.String("dialect", sn.grammar.Name()),
		zap.String("sql", sql),
		zap.Int("bindings", len(args)))

	rows, err := sn.conn.Query(ctx, sn.grammar, sql, args)
	if err != nil {
		return nil, fmt.Errorf("union query failed: %w", err)
	}
	return decodeRows(rows, sn.layout())
}

// count runs the union wrapped in an aggregate
func (sn *snapshot) count(ctx context.Context) (int, error) {
	plans, err := sn.plans()
	if err != nil {
		return 0, err
	}
	c := sn.compiler()
	sql, args := c.count(c.union(plans)).ToSQL(sn.grammar)
	sn.logger.Debug("executing count query",
		zap.String("dialect", sn.grammar.Name()),
		zap.String("sql", sql),
		zap.Int("bindings", len(args)))

	rows, err := sn.conn.Query(ctx, sn.grammar, sql, args)
	if err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}
	defer rows.Close()

	var total int
	if rows.Next() {
		if err := rows.Scan(&total); err != nil {
			return 0, fmt.Errorf("failed to scan count: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read count: %w", err)
	}
	return total, nil
}
