package searcher

import (
	"strconv"

	"github.com/dshills/unisearch/internal/dialect"
	"github.com/dshills/unisearch/internal/query"
)

// layout describes where the synthetic columns of each source sit in a
// union row. Every source owns a block of stride columns starting at
// index*stride: key, order and, with model ordering, model order.
type layout struct {
	sources   int
	stride    int
	relevance bool
}

func newLayout(sources int, orderByModel, relevance bool) layout {
	stride := 2
	if orderByModel {
		stride = 3
	}
	return layout{sources: sources, stride: stride, relevance: relevance}
}

func (l layout) keyIndex(source int) int {
	return source * l.stride
}

// width is the number of columns of a union row
func (l layout) width() int {
	w := l.sources * l.stride
	if l.relevance {
		w++
	}
	return w
}

// projectionBuilder selects the synthetic columns of one union member
type projectionBuilder struct {
	grammar dialect.Grammar
	config  Configuration
}

// columns projects the key/order/model order block of every source; only
// the block belonging to member carries values.
func (b projectionBuilder) columns(member ModelSource, sources []ModelSource) []query.Expr {
	g := b.grammar
	exprs := make([]query.Expr, 0, len(sources)*3)

	for _, src := range sources {
		own := src.key == member.key

		key, order := g.Wrap(src.qualifiedKey()), g.Wrap(src.qualifiedOrderColumn())
		if !own {
			table := g.Wrap(src.model.Table())
			key, order = g.TypedNull(key, table), g.TypedNull(order, table)
		}
		exprs = append(exprs,
			query.Raw(key+" as "+g.Wrap(src.KeyAlias())),
			query.Raw(order+" as "+g.Wrap(src.OrderAlias())),
		)

		if b.config.orderByModel() {
			position := g.TypedNull("0", "")
			if own {
				position = strconv.Itoa(b.config.modelPosition(src.model.Name()))
			}
			exprs = append(exprs, query.Raw(position+" as "+g.Wrap(src.ModelOrderAlias())))
		}
	}

	return exprs
}
