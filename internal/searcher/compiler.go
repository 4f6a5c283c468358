package searcher

import (
	"strconv"

	"github.com/dshills/unisearch/internal/dialect"
	"github.com/dshills/unisearch/internal/query"
	"github.com/dshills/unisearch/internal/terms"
)

const (
	unionAlias     = "union_query"
	aggregateAlias = "aggregate_table"
	relevanceAlias = "terms_count"
)

// compiler turns the per-source plans into one statement
type compiler struct {
	grammar dialect.Grammar
	config  Configuration
	sources []ModelSource
}

// union combines the plans in registration order
func (c compiler) union(plans []*query.Query) *query.Query {
	base := plans[0]
	for _, plan := range plans[1:] {
		base.Union(plan)
	}
	return base
}

// ordered wraps the union when the engine cannot order it directly, then
// applies model order, relevance and order column ordering.
func (c compiler) ordered(union *query.Query, t terms.Terms) *query.Query {
	target := union
	if len(c.sources) > 1 && !c.grammar.SupportsUnionOrdering() {
		sql, args := union.ToSQL(c.grammar)
		body, bodyArgs := c.grammar.WrapUnionQuery(sql, args)
		target = query.FromRaw(query.Raw(body, bodyArgs...), unionAlias)
	}

	direction := c.config.Direction

	if c.config.orderByModel() {
		target.OrderBy(query.Raw(c.grammar.Coalesce(c.modelOrderColumns())), direction.sql())
	}

	if direction == Relevance && len(t.WithoutWildcards) > 0 {
		target.OrderBy(query.Raw(relevanceAlias), "desc")
	}

	target.OrderBy(query.Raw(c.grammar.Coalesce(c.orderColumns())), direction.sql())

	return target
}

// count wraps the union in an aggregate
func (c compiler) count(union *query.Query) *query.Query {
	return query.FromSub(union, aggregateAlias).Select(query.Raw("count(*) as aggregate"))
}

// orderColumns references the order value of every source. A single source
// is ordered by its own column since Postgres rejects output aliases inside
// ORDER BY expressions.
func (c compiler) orderColumns() []string {
	if len(c.sources) == 1 {
		return []string{c.grammar.Wrap(c.sources[0].qualifiedOrderColumn())}
	}
	columns := make([]string, len(c.sources))
	for i, src := range c.sources {
		columns[i] = c.grammar.Wrap(src.OrderAlias())
	}
	return columns
}

func (c compiler) modelOrderColumns() []string {
	if len(c.sources) == 1 {
		src := c.sources[0]
		return []string{strconv.Itoa(c.config.modelPosition(src.model.Name()))}
	}
	columns := make([]string, len(c.sources))
	for i, src := range c.sources {
		columns[i] = c.grammar.Wrap(src.ModelOrderAlias())
	}
	return columns
}
