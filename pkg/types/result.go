package types

import (
	"encoding/json"
	"fmt"
)

// SearchResult is the ordered outcome of one cross-model search
type SearchResult struct {
	Items      []Item
	Pagination *Pagination // Nil unless the search was paginated
}

// Item is one resolved entity of a search result.
//
// Entity holds the value produced by the model's scan function, so callers
// recover the concrete type with a type switch.
type Item struct {
	Entity  any
	Type    string // Logical model name, set only when a type key is configured
	TypeKey string
}

// TypeStamper is implemented by entities that want the model type written onto them
type TypeStamper interface {
	StampType(key, name string)
}

// Pagination describes the page a paginated search returned
type Pagination struct {
	Page     int    `json:"page"`
	PerPage  int    `json:"per_page"`
	Total    int    `json:"total,omitempty"`     // Zero for simple pagination
	LastPage int    `json:"last_page,omitempty"` // Zero for simple pagination
	HasMore  bool   `json:"has_more"`
	PageName string `json:"page_name"`
	Simple   bool   `json:"simple"`
}

// Entities returns the bare entities in result order
func (r *SearchResult) Entities() []any {
	out := make([]any, len(r.Items))
	for i, item := range r.Items {
		out[i] = item.Entity
	}
	return out
}

// Len returns the number of items on this result
func (r *SearchResult) Len() int {
	return len(r.Items)
}

// Total returns the total number of matches across all pages.
// Without full pagination it is the number of returned items.
func (r *SearchResult) Total() int {
	if r.Pagination != nil && !r.Pagination.Simple {
		return r.Pagination.Total
	}
	return len(r.Items)
}

// MarshalJSON encodes the entity and, when a type key is set, merges the
// model type into the encoded object.
func (i Item) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(i.Entity)
	if err != nil {
		return nil, err
	}
	if i.TypeKey == "" {
		return raw, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		// Scalars and arrays cannot carry a tag, wrap them instead
		return json.Marshal(map[string]any{
			i.TypeKey: i.Type,
			"entity":  json.RawMessage(raw),
		})
	}

	tag, err := json.Marshal(i.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to encode type tag: %w", err)
	}
	fields[i.TypeKey] = tag
	return json.Marshal(fields)
}
