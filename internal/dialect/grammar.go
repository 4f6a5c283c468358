package dialect

import (
	"strings"
)

// FullTextOptions tunes a full-text predicate.
type FullTextOptions struct {
	// Mode selects the engine's matching mode. MySQL accepts boolean (default),
	// natural and expanded. Postgres accepts boolean (default), plain, phrase
	// and websearch. SQLite ignores it.
	Mode string
	// Language is the Postgres text search configuration, english by default.
	Language string
	// Relation routes every column through the named relation path.
	Relation string
}

// Grammar generates the SQL fragments that differ between engines.
//
// Grammars are immutable values; UseSoundsLike and AvoidSoundsLike return a
// modified copy.
type Grammar interface {
	// Name is the registry name of the grammar (mysql, sqlite, postgres)
	Name() string

	// Wrap quotes an identifier. Dotted names are quoted per segment and
	// "expr as alias" quotes both sides.
	Wrap(identifier string) string
	CaseInsensitive(expr string) string
	Coalesce(values []string) string
	CharLength(expr string) string
	Replace(expr, search, replace string) string
	Lower(expr string) string

	SoundsLikeOperator() string
	SupportsSoundsLike() bool
	SupportsFullText() bool
	SupportsUnionOrdering() bool

	// WrapUnionQuery turns a compiled union into a derived table body that
	// can be selected from and ordered.
	WrapUnionQuery(sql string, bindings []any) (string, []any)
	// WrapUnionMember formats one member of a UNION.
	WrapUnionMember(sql string) string
	// Placeholders rewrites "?" bindings into the engine's placeholder syntax.
	Placeholders(sql string) string
	// TypedNull is the null a union member projects for a column that another
	// member fills. expr is the value the null stands in for and from its
	// table, empty for a literal.
	TypedNull(expr, from string) string

	// SoundsLike builds a phonetic match of an already wrapped column.
	SoundsLike(column, term string) (string, []any, error)
	// FullText builds a full-text match of wrapped columns against the raw
	// user input. An empty SQL string means the input had no usable tokens.
	FullText(columns []string, raw string, opts FullTextOptions) (string, []any, error)

	UseSoundsLike() Grammar
	AvoidSoundsLike() Grammar
}

// base holds the fragment builders shared by all grammars.
type base struct {
	name  string
	quote string
}

func (b base) Name() string {
	return b.name
}

func (b base) Wrap(value string) string {
	if value == "" {
		return value
	}

	if i := strings.Index(strings.ToLower(value), " as "); i >= 0 {
		return b.Wrap(strings.TrimSpace(value[:i])) + " as " + b.wrapSegment(strings.TrimSpace(value[i+4:]))
	}

	segments := strings.Split(value, ".")
	for i, segment := range segments {
		segments[i] = b.wrapSegment(segment)
	}
	return strings.Join(segments, ".")
}

func (b base) wrapSegment(segment string) string {
	if segment == "*" {
		return segment
	}
	return b.quote + strings.ReplaceAll(segment, b.quote, b.quote+b.quote) + b.quote
}

func (b base) CaseInsensitive(expr string) string {
	return "lower(" + expr + ")"
}

func (b base) Coalesce(values []string) string {
	return "coalesce(" + strings.Join(values, ", ") + ")"
}

func (b base) CharLength(expr string) string {
	return "char_length(" + expr + ")"
}

func (b base) Replace(expr, search, replace string) string {
	return "replace(" + expr + ", " + search + ", " + replace + ")"
}

func (b base) Lower(expr string) string {
	return "lower(" + expr + ")"
}

func (b base) WrapUnionQuery(sql string, bindings []any) (string, []any) {
	return "(" + sql + ")", bindings
}

func (b base) WrapUnionMember(sql string) string {
	return "(" + sql + ")"
}

func (b base) Placeholders(sql string) string {
	return sql
}

func (b base) TypedNull(string, string) string {
	return "null"
}

// orGroup joins parts into one parenthesized disjunction
func orGroup(parts []string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, " or ") + ")"
}
