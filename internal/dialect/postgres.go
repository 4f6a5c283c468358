package dialect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dshills/unisearch/pkg/types"
)

var languagePattern = regexp.MustCompile(`^[a-z_]+$`)

// postgresGrammar uses tsvector matching for full text and falls back to
// ILIKE when asked for sounds-like matches. Unions are ordered through a
// wrapping subquery.
type postgresGrammar struct {
	base
	fallback bool
}

// NewPostgres returns the PostgreSQL grammar
func NewPostgres() Grammar {
	return postgresGrammar{base: base{name: "postgres", quote: `"`}, fallback: true}
}

func (g postgresGrammar) SoundsLikeOperator() string {
	if g.fallback {
		return "ilike"
	}
	return ""
}

func (g postgresGrammar) SupportsSoundsLike() bool {
	return false
}

func (g postgresGrammar) SupportsFullText() bool {
	return true
}

// ORDER BY on a UNION only accepts bare output column names
func (g postgresGrammar) SupportsUnionOrdering() bool {
	return false
}

func (g postgresGrammar) SoundsLike(column, term string) (string, []any, error) {
	if !g.fallback {
		return "", nil, fmt.Errorf("%w: postgres has no sounds-like operator", types.ErrUnsupportedOperation)
	}
	return column + " ilike ?", []any{term}, nil
}

func (g postgresGrammar) FullText(columns []string, raw string, opts FullTextOptions) (string, []any, error) {
	language := opts.Language
	if language == "" {
		language = "english"
	}
	if !languagePattern.MatchString(language) {
		return "", nil, fmt.Errorf("%w: text search configuration %q", types.ErrUnsupportedOperation, language)
	}

	var fn, arg string
	switch strings.ToLower(opts.Mode) {
	case "", "boolean":
		fn, arg = "to_tsquery", tsQuery(parseBoolean(raw))
	case "plain":
		fn, arg = "plainto_tsquery", strings.TrimSpace(raw)
	case "phrase":
		fn, arg = "phraseto_tsquery", strings.TrimSpace(raw)
	case "websearch":
		fn, arg = "websearch_to_tsquery", strings.TrimSpace(raw)
	default:
		return "", nil, fmt.Errorf("%w: postgres full-text mode %q", types.ErrUnsupportedOperation, opts.Mode)
	}
	if arg == "" {
		return "", nil, nil
	}

	vectors := make([]string, len(columns))
	for i, column := range columns {
		vectors[i] = "to_tsvector('" + language + "', " + column + ")"
	}

	sql := "(" + strings.Join(vectors, " || ") + ") @@ " + fn + "('" + language + "', ?)"
	return sql, []any{arg}, nil
}

// TypedNull borrows the type of expr through an empty subquery. Postgres
// resolves chained UNION columns pairwise, and two untyped nulls become text.
func (g postgresGrammar) TypedNull(expr, from string) string {
	if from == "" {
		return "(select " + expr + " where false)"
	}
	return "(select " + expr + " from " + from + " where false)"
}

// Placeholders numbers "?" bindings as $1, $2, ... skipping quoted text
func (g postgresGrammar) Placeholders(sql string) string {
	if !strings.Contains(sql, "?") {
		return sql
	}

	var (
		b     strings.Builder
		n     int
		quote byte
	)
	b.Grow(len(sql) + 8)

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func (g postgresGrammar) UseSoundsLike() Grammar {
	g.fallback = true
	return g
}

func (g postgresGrammar) AvoidSoundsLike() Grammar {
	g.fallback = false
	return g
}
