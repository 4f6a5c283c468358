// Package storage opens the databases searched by unisearch and manages the
// demo catalog schema.
//
// Supported engines:
//   - mysql: github.com/go-sql-driver/mysql (DSN validated with ParseDSN)
//   - postgres: github.com/jackc/pgx/v5 through its database/sql adapter
//   - sqlite: modernc.org/sqlite, or github.com/mattn/go-sqlite3 when built
//     with the sqlite_cgo tag
//
// # Database Schema
//
// Tables:
//   - authors: article authors
//   - articles: posts with a title, body and published flag
//   - clips: videos with a title and description
//   - comments: comments on articles
//   - schema_version: applied migrations
//
// Migrations are versioned with semantic versions and may carry engine
// specific statements, such as the FULLTEXT indexes MySQL needs for
// MATCH ... AGAINST.
//
// # Basic Usage
//
//	store, err := storage.Open(ctx, storage.Options{
//	    Engine:  "sqlite",
//	    DSN:     "catalog.db",
//	    Migrate: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	if _, err := store.Seed(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	catalog := store.Catalog()
//	result, err := searcher.New().
//	    Add(catalog.Articles, []string{"title", "comments.body"}, "").
//	    Add(catalog.Clips, []string{"title"}, "").
//	    Search(ctx, "go")
package storage
