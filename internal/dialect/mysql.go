package dialect

import (
	"fmt"
	"strings"

	"github.com/dshills/unisearch/pkg/types"
)

// mysqlGrammar has native full text, a native SOUNDS LIKE operator and can
// order a UNION without wrapping it.
type mysqlGrammar struct {
	base
}

// NewMySQL returns the MySQL / MariaDB grammar
func NewMySQL() Grammar {
	return mysqlGrammar{base{name: "mysql", quote: "`"}}
}

func (g mysqlGrammar) SoundsLikeOperator() string {
	return "sounds like"
}

func (g mysqlGrammar) SupportsSoundsLike() bool {
	return true
}

func (g mysqlGrammar) SupportsFullText() bool {
	return true
}

func (g mysqlGrammar) SupportsUnionOrdering() bool {
	return true
}

func (g mysqlGrammar) SoundsLike(column, term string) (string, []any, error) {
	return column + " sounds like ?", []any{term}, nil
}

func (g mysqlGrammar) FullText(columns []string, raw string, opts FullTextOptions) (string, []any, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil, nil
	}

	var mode string
	switch strings.ToLower(opts.Mode) {
	case "", "boolean":
		mode = "in boolean mode"
	case "natural", "natural language":
		mode = "in natural language mode"
	case "expanded", "query expansion":
		mode = "in natural language mode with query expansion"
	default:
		return "", nil, fmt.Errorf("%w: mysql full-text mode %q", types.ErrUnsupportedOperation, opts.Mode)
	}

	sql := "match (" + strings.Join(columns, ", ") + ") against (? " + mode + ")"
	return sql, []any{raw}, nil
}

func (g mysqlGrammar) UseSoundsLike() Grammar {
	return g
}

func (g mysqlGrammar) AvoidSoundsLike() Grammar {
	return g
}
