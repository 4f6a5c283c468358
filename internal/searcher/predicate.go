package searcher

import (
	"fmt"
	"strings"

	"github.com/dshills/unisearch/internal/dialect"
	"github.com/dshills/unisearch/internal/query"
	"github.com/dshills/unisearch/internal/terms"
	"github.com/dshills/unisearch/pkg/types"
)

const matchNothing = "1 = 0"

// predicateBuilder builds the WHERE condition and the relevance projection
// of one source.
type predicateBuilder struct {
	grammar dialect.Grammar
	config  Configuration
}

// searchCondition matches any searched column of the source against any term.
// It returns nil when there is nothing to match.
func (b predicateBuilder) searchCondition(src ModelSource, t terms.Terms) (query.Condition, error) {
	if t.Empty() {
		return nil, nil
	}

	if src.fullText {
		return b.fullTextCondition(src, t)
	}

	var conds []query.Condition
	local, nested := src.columnGroups()

	for _, column := range local {
		cond, err := b.columnCondition(src.model, column.Name, t)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}

	for _, group := range nested {
		cond, err := src.model.WhereHas(group[0].Path, func(related *query.Model) (query.Condition, error) {
			var inner []query.Condition
			for _, column := range group {
				cond, err := b.columnCondition(related, column.Name, t)
				if err != nil {
					return nil, err
				}
				inner = append(inner, cond)
			}
			return query.Or(inner...), nil
		})
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}

	return query.Or(conds...), nil
}

// columnCondition matches one column of model against every term
func (b predicateBuilder) columnCondition(model *query.Model, name string, t terms.Terms) (query.Condition, error) {
	column := b.grammar.Wrap(model.QualifyColumn(name))
	if b.config.IgnoreCase {
		column = b.grammar.Lower(column)
	}

	conds := make([]query.Condition, 0, len(t.WithWildcards))
	for _, term := range t.WithWildcards {
		if b.config.SoundsLike {
			sql, args, err := b.grammar.SoundsLike(column, term)
			if err != nil {
				return nil, err
			}
			conds = append(conds, query.Raw(sql, args...))
			continue
		}
		conds = append(conds, query.Raw(column+" like ?", term))
	}
	return query.Or(conds...), nil
}

// fullTextCondition hands the raw input to the grammar's full-text matcher,
// once for the local columns and once per relation.
func (b predicateBuilder) fullTextCondition(src ModelSource, t terms.Terms) (query.Condition, error) {
	opts := src.fullTextOptions

	match := func(model *query.Model, columns []Column) (query.Condition, error) {
		wrapped := make([]string, len(columns))
		for i, column := range columns {
			wrapped[i] = b.grammar.Wrap(model.QualifyColumn(column.Name))
		}
		sql, args, err := b.grammar.FullText(wrapped, t.Raw, opts)
		if err != nil {
			return nil, err
		}
		if sql == "" {
			// operators without words match nothing
			return query.Raw(matchNothing), nil
		}
		return query.Raw(sql, args...), nil
	}

	if opts.Relation != "" {
		return src.model.WhereHas(strings.Split(opts.Relation, "."), func(related *query.Model) (query.Condition, error) {
			return match(related, src.columns)
		})
	}

	var conds []query.Condition
	local, nested := src.columnGroups()

	if len(local) > 0 {
		cond, err := match(src.model, local)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}

	for _, group := range nested {
		cond, err := src.model.WhereHas(group[0].Path, func(related *query.Model) (query.Condition, error) {
			return match(related, group)
		})
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}

	return query.Or(conds...), nil
}

// relevance builds the terms_count projection. It returns false when the
// searcher does not order by relevance or there are no terms.
func (b predicateBuilder) relevance(src ModelSource, t terms.Terms) (query.Expr, bool, error) {
	if b.config.Direction != Relevance || len(t.WithoutWildcards) == 0 {
		return query.Expr{}, false, nil
	}

	if src.fullText && src.fullTextOptions.Relation != "" {
		return query.Expr{}, false, fmt.Errorf("%w: %s", types.ErrOrderByRelevanceUnsupported, src.fullTextOptions.Relation)
	}
	for _, column := range src.columns {
		if column.Nested() {
			return query.Expr{}, false, fmt.Errorf("%w: %s", types.ErrOrderByRelevanceUnsupported, column)
		}
	}

	g := b.grammar
	var (
		parts []string
		args  []any
	)
	for _, column := range src.columns {
		lowered := g.Lower(g.Wrap(src.model.QualifyColumn(column.Name)))
		for _, term := range t.WithoutWildcards {
			term = strings.ToLower(term)
			delta := g.CharLength(lowered) + " - " + g.CharLength(g.Replace(lowered, "?", "?"))
			parts = append(parts, g.Coalesce([]string{delta, "0"}))
			args = append(args, term, string([]rune(term)[1:]))
		}
	}

	if len(parts) == 0 {
		return query.Raw("0 as terms_count"), true, nil
	}
	return query.Raw(strings.Join(parts, " + ")+" as terms_count", args...), true, nil
}
