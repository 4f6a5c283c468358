package query

import (
	"strings"

	"github.com/dshills/unisearch/internal/dialect"
)

// Condition is a boolean SQL fragment with "?" bindings.
// An empty rendering means the condition does not constrain anything.
type Condition interface {
	Render(g dialect.Grammar) (string, []any)
}

// Expr is a raw SQL fragment and its bindings
type Expr struct {
	SQL  string
	Args []any
}

// Raw creates an expression from SQL text and bindings
func Raw(sql string, args ...any) Expr {
	return Expr{SQL: sql, Args: args}
}

// Render returns the expression unchanged; raw SQL is already dialect specific
func (e Expr) Render(dialect.Grammar) (string, []any) {
	return e.SQL, e.Args
}

type group struct {
	op    string
	conds []Condition
}

// And joins conditions with AND, skipping empty ones
func And(conds ...Condition) Condition {
	return group{op: "and", conds: conds}
}

// Or joins conditions with OR, skipping empty ones
func Or(conds ...Condition) Condition {
	return group{op: "or", conds: conds}
}

func (c group) Render(g dialect.Grammar) (string, []any) {
	var (
		parts []string
		args  []any
	)
	for _, cond := range c.conds {
		if cond == nil {
			continue
		}
		sql, condArgs := cond.Render(g)
		if sql == "" {
			continue
		}
		parts = append(parts, sql)
		args = append(args, condArgs...)
	}

	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], args
	}
	return "(" + strings.Join(parts, " "+c.op+" ") + ")", args
}

type not struct {
	cond Condition
}

// Not negates a condition
func Not(cond Condition) Condition {
	return not{cond: cond}
}

func (c not) Render(g dialect.Grammar) (string, []any) {
	sql, args := c.cond.Render(g)
	if sql == "" {
		return "", nil
	}
	return "not (" + sql + ")", args
}

type exists struct {
	query *Query
}

// Exists is true when the sub query returns at least one row
func Exists(q *Query) Condition {
	return exists{query: q}
}

func (c exists) Render(g dialect.Grammar) (string, []any) {
	sql, args := c.query.ToSQL(g)
	return "exists (" + sql + ")", args
}

type columnsEqual struct {
	left, right string
}

// ColumnsEqual compares two qualified columns
func ColumnsEqual(left, right string) Condition {
	return columnsEqual{left: left, right: right}
}

func (c columnsEqual) Render(g dialect.Grammar) (string, []any) {
	return g.Wrap(c.left) + " = " + g.Wrap(c.right), nil
}

type in struct {
	column string
	values []any
}

// In matches a qualified column against a set of values. An empty set
// matches nothing.
func In(column string, values []any) Condition {
	return in{column: column, values: values}
}

func (c in) Render(g dialect.Grammar) (string, []any) {
	if len(c.values) == 0 {
		return "1 = 0", nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(c.values)), ", ")
	return g.Wrap(c.column) + " in (" + placeholders + ")", c.values
}
