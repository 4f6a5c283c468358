// Package query is the small query builder the union searcher compiles to.
//
// A Model binds a table to a connection and knows how to scan and key its
// entities:
//
//	articles := query.Define(conn, query.Schema[*Article]{
//	    Table:   "articles",
//	    Columns: []string{"id", "title", "updated_at"},
//	    Scan: func(s query.Scanner) (*Article, error) {
//	        var a Article
//	        err := s.Scan(&a.ID, &a.Title, &a.UpdatedAt)
//	        return &a, err
//	    },
//	    KeyOf: func(a *Article) any { return a.ID },
//	})
//
// Queries render to SQL text with "?" placeholders for a dialect.Grammar;
// Conn.Query rewrites them for the engine before execution.
package query
