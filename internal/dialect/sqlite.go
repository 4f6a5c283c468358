package dialect

import (
	"fmt"
	"strings"

	"github.com/dshills/unisearch/pkg/types"
)

// sqliteGrammar has neither full text nor a phonetic operator, so both are
// simulated with LIKE. A compound SELECT can only be ordered by result
// columns, which forces the union to be wrapped.
type sqliteGrammar struct {
	base
	phonetic bool
}

// NewSQLite returns the SQLite grammar with the LIKE based sounds-like
// approximation enabled.
func NewSQLite() Grammar {
	return sqliteGrammar{base: base{name: "sqlite", quote: `"`}, phonetic: true}
}

// coalesce() requires at least two arguments in SQLite
func (g sqliteGrammar) Coalesce(values []string) string {
	if len(values) < 2 {
		values = append(append([]string(nil), values...), "null")
	}
	return g.base.Coalesce(values)
}

func (g sqliteGrammar) CharLength(expr string) string {
	return "length(" + expr + ")"
}

func (g sqliteGrammar) CaseInsensitive(expr string) string {
	return expr + " collate nocase"
}

// Compound members may not be parenthesized
func (g sqliteGrammar) WrapUnionMember(sql string) string {
	return sql
}

func (g sqliteGrammar) SoundsLikeOperator() string {
	if g.phonetic {
		return "like"
	}
	return ""
}

func (g sqliteGrammar) SupportsSoundsLike() bool {
	return false
}

func (g sqliteGrammar) SupportsFullText() bool {
	return false
}

func (g sqliteGrammar) SupportsUnionOrdering() bool {
	return false
}

func (g sqliteGrammar) SoundsLike(column, term string) (string, []any, error) {
	if !g.phonetic {
		return "", nil, fmt.Errorf("%w: sqlite has no sounds-like operator", types.ErrUnsupportedOperation)
	}

	variants := PhoneticVariants(term)
	parts := make([]string, len(variants))
	args := make([]any, len(variants))
	for i, variant := range variants {
		parts[i] = g.Lower(column) + " like ?"
		args[i] = variant
	}
	return orGroup(parts), args, nil
}

// FullText simulates boolean-mode matching with substring comparisons
func (g sqliteGrammar) FullText(columns []string, raw string, _ FullTextOptions) (string, []any, error) {
	tokens := parseBoolean(raw)
	if len(tokens) == 0 {
		return "", nil, nil
	}

	var (
		parts    []string
		optional []string
		args     []any
		optArgs  []any
		required bool
	)

	for _, tok := range tokens {
		sql, tokArgs := g.matchAnyColumn(columns, tok.text)
		switch tok.op {
		case opRequired:
			required = true
			parts = append(parts, sql)
			args = append(args, tokArgs...)
		case opExcluded:
			parts = append(parts, "not "+sql)
			args = append(args, tokArgs...)
		default:
			optional = append(optional, sql)
			optArgs = append(optArgs, tokArgs...)
		}
	}

	// Bare words only constrain the match when nothing is required
	if !required && len(optional) > 0 {
		parts = append(parts, orGroup(optional))
		args = append(args, optArgs...)
	}

	switch len(parts) {
	case 0:
		return "", nil, nil
	case 1:
		return parts[0], args, nil
	}
	return "(" + strings.Join(parts, " and ") + ")", args, nil
}

func (g sqliteGrammar) matchAnyColumn(columns []string, text string) (string, []any) {
	pattern := "%" + strings.ToLower(text) + "%"
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		parts[i] = g.Lower(column) + " like ?"
		args[i] = pattern
	}
	return "(" + strings.Join(parts, " or ") + ")", args
}

func (g sqliteGrammar) UseSoundsLike() Grammar {
	g.phonetic = true
	return g
}

func (g sqliteGrammar) AvoidSoundsLike() Grammar {
	g.phonetic = false
	return g
}
