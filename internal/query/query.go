package query

import (
	"strconv"
	"strings"

	"github.com/dshills/unisearch/internal/dialect"
)

// maxLimit stands in for "no limit" when only an offset is set; MySQL and
// SQLite require a LIMIT before OFFSET.
const maxLimit = "9223372036854775807"

// Query is a SELECT statement under construction. Builder methods modify
// the query in place and return it for chaining.
type Query struct {
	raw      *Expr
	table    string
	sub      *Query
	subAlias string
	selects  []Expr
	wheres   []Condition
	unions   []*Query
	orders   []Expr
	limit    int
	offset   int
}

// Table starts a query selecting from table
func Table(table string) *Query {
	return &Query{table: table}
}

// FromSub starts a query selecting from a derived table
func FromSub(sub *Query, alias string) *Query {
	return &Query{sub: sub, subAlias: alias}
}

// FromRaw starts a query selecting from an already rendered derived table
// body such as the output of Grammar.WrapUnionQuery.
func FromRaw(body Expr, alias string) *Query {
	return &Query{sub: &Query{raw: &body}, subAlias: alias}
}

// Select appends projected expressions
func (q *Query) Select(exprs ...Expr) *Query {
	q.selects = append(q.selects, exprs...)
	return q
}

// Where appends conditions joined with AND
func (q *Query) Where(conds ...Condition) *Query {
	q.wheres = append(q.wheres, conds...)
	return q
}

// Union appends other as a UNION member
func (q *Query) Union(other *Query) *Query {
	q.unions = append(q.unions, other)
	return q
}

// OrderBy appends an ORDER BY term; direction is "asc" or "desc"
func (q *Query) OrderBy(expr Expr, direction string) *Query {
	q.orders = append(q.orders, Expr{SQL: expr.SQL + " " + direction, Args: expr.Args})
	return q
}

// Limit caps the number of rows; zero means no limit
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Offset skips n rows
func (q *Query) Offset(n int) *Query {
	q.offset = n
	return q
}

// HasUnions reports whether other queries were unioned into q
func (q *Query) HasUnions() bool {
	return len(q.unions) > 0
}

// ToSQL renders the query with "?" placeholders. Bindings follow the order
// in which they appear in the text.
func (q *Query) ToSQL(g dialect.Grammar) (string, []any) {
	if q.raw != nil {
		return q.raw.SQL, q.raw.Args
	}

	var b strings.Builder

	core, args := q.renderCore(g)
	if len(q.unions) == 0 {
		b.WriteString(core)
	} else {
		b.WriteString(g.WrapUnionMember(core))
		for _, u := range q.unions {
			sql, unionArgs := u.ToSQL(g)
			b.WriteString(" union ")
			b.WriteString(g.WrapUnionMember(sql))
			args = append(args, unionArgs...)
		}
	}

	if len(q.orders) > 0 {
		parts := make([]string, len(q.orders))
		for i, o := range q.orders {
			parts[i] = o.SQL
			args = append(args, o.Args...)
		}
		b.WriteString(" order by ")
		b.WriteString(strings.Join(parts, ", "))
	}

	if q.limit > 0 {
		b.WriteString(" limit ")
		b.WriteString(strconv.Itoa(q.limit))
	} else if q.offset > 0 {
		b.WriteString(" limit " + maxLimit)
	}
	if q.offset > 0 {
		b.WriteString(" offset ")
		b.WriteString(strconv.Itoa(q.offset))
	}

	return b.String(), args
}

// renderCore renders the select, from and where clauses
func (q *Query) renderCore(g dialect.Grammar) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)

	b.WriteString("select ")
	if len(q.selects) == 0 {
		b.WriteString("*")
	} else {
		parts := make([]string, len(q.selects))
		for i, s := range q.selects {
			parts[i] = s.SQL
			args = append(args, s.Args...)
		}
		b.WriteString(strings.Join(parts, ", "))
	}

	b.WriteString(" from ")
	if q.sub != nil {
		sql, subArgs := q.sub.ToSQL(g)
		if q.sub.raw == nil {
			sql = "(" + sql + ")"
		}
		b.WriteString(sql + " as " + g.Wrap(q.subAlias))
		args = append(args, subArgs...)
	} else {
		b.WriteString(g.Wrap(q.table))
	}

	var wheres []string
	for _, cond := range q.wheres {
		if cond == nil {
			continue
		}
		sql, condArgs := cond.Render(g)
		if sql == "" {
			continue
		}
		wheres = append(wheres, sql)
		args = append(args, condArgs...)
	}
	if len(wheres) > 0 {
		b.WriteString(" where ")
		b.WriteString(strings.Join(wheres, " and "))
	}

	return b.String(), args
}
