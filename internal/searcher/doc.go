// Package searcher searches several models at once by compiling one UNION
// query over all of them.
//
// # Basic Usage
//
//	s := searcher.New().
//	    Add(articles, []string{"title", "body"}, "published_at").
//	    Add(clips, []string{"title"}, "").
//	    OrderByDesc()
//
//	result, err := s.Search(ctx, "foo bar")
//	if err != nil {
//	    return err
//	}
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
// Builder methods return a new Searcher, so a base configuration can be
// shared and specialized per request.
//
// # How A Search Runs
//
// Every model contributes one SELECT to the union. Each SELECT projects a
// key and an order column for every registered model, namespaced as
// "{index}_{model}_key" and "{index}_{model}_order"; only the block of the
// model the row came from is non-null. The union is ordered by the coalesce
// of the order columns, then the transformer reads the single non-null key
// of each row, fetches the entities of each model with one IN query and
// returns them in union order.
//
// Engines that cannot order a UNION by expressions (SQLite, Postgres) get the
// union wrapped in "select * from (...) as union_query".
//
// # Ordering
//
//   - OrderByAsc / OrderByDesc: by the order column of each model
//   - OrderByRelevance: by terms_count, the number of term occurrences in
//     the searched columns, with the order column as tie-breaker
//   - OrderByModel: rows of the listed models first, in that order
//
// # Matching
//
// Terms are matched with LIKE, with a trailing wildcard by default. Columns
// of related models are referenced with a dotted path such as
// "comments.body" and matched through EXISTS. AddFullText hands the raw
// input to the engine's full-text search (MATCH AGAINST on MySQL, tsvector
// on Postgres, a LIKE simulation on SQLite). SoundsLike uses MySQL's
// SOUNDS LIKE and an approximation elsewhere.
package searcher
