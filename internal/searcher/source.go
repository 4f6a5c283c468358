package searcher

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dshills/unisearch/internal/dialect"
	"github.com/dshills/unisearch/internal/query"
)

// Column is a searched column, optionally reached through relations.
// "comments.author.name" has Path [comments author] and Name name.
type Column struct {
	Path []string
	Name string
}

// ParseColumn parses a dotted column reference
func ParseColumn(ref string) Column {
	parts := strings.Split(ref, ".")
	return Column{Path: parts[:len(parts)-1], Name: parts[len(parts)-1]}
}

// Nested reports whether the column belongs to a related model
func (c Column) Nested() bool {
	return len(c.Path) > 0
}

// Relation returns the dotted relation path
func (c Column) Relation() string {
	return strings.Join(c.Path, ".")
}

func (c Column) String() string {
	if !c.Nested() {
		return c.Name
	}
	return c.Relation() + "." + c.Name
}

// ModelSource is one model registered with a searcher
type ModelSource struct {
	model           *query.Model
	columns         []Column
	orderColumn     string
	key             int
	fullText        bool
	fullTextOptions dialect.FullTextOptions
}

func newModelSource(model *query.Model, columns []string, orderColumn string, key int) ModelSource {
	parsed := make([]Column, 0, len(columns))
	for _, column := range columns {
		if column = strings.TrimSpace(column); column != "" {
			parsed = append(parsed, ParseColumn(column))
		}
	}

	return ModelSource{
		model:       model,
		columns:     parsed,
		orderColumn: orderColumn,
		key:         key,
	}
}

// Model returns the registered model
func (s ModelSource) Model() *query.Model {
	return s.model
}

// Columns returns the searched columns
func (s ModelSource) Columns() []Column {
	return s.columns
}

// FullText reports whether the source is matched with full-text search
func (s ModelSource) FullText() bool {
	return s.fullText
}

func (s ModelSource) aliasPrefix() string {
	return strconv.Itoa(s.key) + "_" + snake(s.model.Name())
}

// KeyAlias is the synthetic column carrying the source's primary key
func (s ModelSource) KeyAlias() string {
	return s.aliasPrefix() + "_key"
}

// OrderAlias is the synthetic column carrying the source's order value
func (s ModelSource) OrderAlias() string {
	return s.aliasPrefix() + "_order"
}

// ModelOrderAlias is the synthetic column carrying the source's type position
func (s ModelSource) ModelOrderAlias() string {
	return s.aliasPrefix() + "_model_order"
}

func (s ModelSource) qualifiedKey() string {
	return s.model.QualifiedKeyName()
}

func (s ModelSource) qualifiedOrderColumn() string {
	return s.model.QualifyColumn(s.orderColumn)
}

// columnGroups splits the columns into local ones and one group per relation
// path, keeping first-seen order.
func (s ModelSource) columnGroups() (local []Column, nested [][]Column) {
	index := make(map[string]int)
	for _, column := range s.columns {
		if !column.Nested() {
			local = append(local, column)
			continue
		}
		rel := column.Relation()
		i, ok := index[rel]
		if !ok {
			i = len(nested)
			index[rel] = i
			nested = append(nested, nil)
		}
		nested[i] = append(nested[i], column)
	}
	return local, nested
}

// snake converts a type name such as "BlogPost" to "blog_post"
func snake(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
