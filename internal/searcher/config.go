package searcher

import (
	"fmt"
	"strings"
)

// Direction is the ordering applied to the union
type Direction int

const (
	Ascending Direction = iota
	Descending
	// Relevance orders by terms_count, using the order column as tie-breaker
	Relevance
)

func (d Direction) String() string {
	switch d {
	case Descending:
		return "desc"
	case Relevance:
		return "relevance"
	default:
		return "asc"
	}
}

// sql returns the SQL keyword; relevance sorts its secondary terms ascending
func (d Direction) sql() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseDirection parses asc, desc or relevance
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	case "relevance":
		return Relevance, nil
	}
	return Ascending, fmt.Errorf("unknown order direction: %s", s)
}

const (
	DefaultOrderColumn = "updated_at"
	DefaultTypeKey     = "type"
	DefaultPerPage     = 15
	DefaultPageName    = "page"
)

// Pagination requests one page of the union
type Pagination struct {
	PerPage  int
	Page     int
	PageName string
	// Simple skips the count query and only reports whether more rows exist
	Simple bool
}

func (p Pagination) offset() int {
	return (p.Page - 1) * p.PerPage
}

// Configuration holds every option of a searcher
type Configuration struct {
	Direction  Direction
	ModelOrder []string

	BeginWildcard bool
	EndWildcard   bool
	IgnoreCase    bool
	SoundsLike    bool
	ParseTerm     bool
	AllowEmpty    bool
	// PhoneticFallback allows engines without a sounds-like operator to
	// approximate it
	PhoneticFallback bool

	Pagination *Pagination
	Limit      int
	Offset     int

	// TypeKey tags every result with its model name when set
	TypeKey string
}

// DefaultConfiguration returns the options of a new searcher
func DefaultConfiguration() Configuration {
	return Configuration{
		Direction:        Ascending,
		EndWildcard:      true,
		ParseTerm:        true,
		PhoneticFallback: true,
	}
}

// modelPosition returns the position of name in the model order, or the
// number of ordered models when it is not listed.
func (c Configuration) modelPosition(name string) int {
	for i, n := range c.ModelOrder {
		if n == name {
			return i
		}
	}
	return len(c.ModelOrder)
}

func (c Configuration) orderByModel() bool {
	return len(c.ModelOrder) > 0
}
