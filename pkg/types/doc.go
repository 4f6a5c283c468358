// Package types provides the public result and error types of unisearch.
//
// # Search Results
//
// A SearchResult holds items in the order the union query returned them.
// Each Item keeps the concrete entity produced by its model:
//
//	for _, item := range result.Items {
//	    switch e := item.Entity.(type) {
//	    case *Article:
//	        fmt.Println("article", e.Title)
//	    case *Clip:
//	        fmt.Println("clip", e.Title)
//	    }
//	}
//
// When the searcher is configured with IncludeModelType, every item also
// carries the model name and JSON encoding merges it into the entity:
//
//	{"id": 1, "title": "foo", "type": "Article"}
//
// # Pagination
//
// Paginated searches attach a Pagination value. Full pagination reports Total
// and LastPage; simple pagination only reports HasMore.
//
// # Errors
//
// All failure modes are sentinel errors matched with errors.Is:
//
//	result, err := s.Search(ctx, "foo")
//	if errors.Is(err, types.ErrEmptySearchQuery) {
//	    // nothing to search for
//	}
package types
