package searcher

import (
	"database/sql"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dshills/unisearch/internal/query"
)

type Article struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	UpdatedAt string `json:"updated_at"`
	Type      string `json:"-"`
}

func (a *Article) StampType(_, name string) {
	a.Type = name
}

type Clip struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	UpdatedAt string `json:"updated_at"`
}

type Comment struct {
	ID        int64
	ArticleID int64
	Body      string
}

const testSchema = `
CREATE TABLE articles (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	body TEXT NOT NULL DEFAULT '',
	published INTEGER NOT NULL DEFAULT 1,
	updated_at TEXT NOT NULL
);
CREATE TABLE clips (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE comments (
	id INTEGER PRIMARY KEY,
	article_id INTEGER NOT NULL,
	body TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT ''
);
`

func setupTestDB(t testing.TB) *sql.DB {
	// Use in-memory database for testing
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

func insertArticle(t testing.TB, db *sql.DB, id int64, title, body, updatedAt string) {
	_, err := db.Exec(`INSERT INTO articles (id, title, body, updated_at) VALUES (?, ?, ?, ?)`, id, title, body, updatedAt)
	require.NoError(t, err)
}

func insertClip(t testing.TB, db *sql.DB, id int64, title, updatedAt string) {
	_, err := db.Exec(`INSERT INTO clips (id, title, updated_at) VALUES (?, ?, ?)`, id, title, updatedAt)
	require.NoError(t, err)
}

func insertComment(t testing.TB, db *sql.DB, id, articleID int64, body string) {
	_, err := db.Exec(`INSERT INTO comments (id, article_id, body) VALUES (?, ?, ?)`, id, articleID, body)
	require.NoError(t, err)
}

func articleModel(conn *query.Conn) *query.Model {
	return query.Define(conn, query.Schema[*Article]{
		Table:   "articles",
		Columns: []string{"id", "title", "body", "updated_at"},
		Scan: func(s query.Scanner) (*Article, error) {
			var a Article
			err := s.Scan(&a.ID, &a.Title, &a.Body, &a.UpdatedAt)
			return &a, err
		},
		KeyOf: func(a *Article) any { return a.ID },
	})
}

func clipModel(conn *query.Conn) *query.Model {
	return query.Define(conn, query.Schema[*Clip]{
		Table:   "clips",
		Columns: []string{"id", "title", "updated_at"},
		Scan: func(s query.Scanner) (*Clip, error) {
			var c Clip
			err := s.Scan(&c.ID, &c.Title, &c.UpdatedAt)
			return &c, err
		},
		KeyOf: func(c *Clip) any { return c.ID },
	})
}

func commentModel(conn *query.Conn) *query.Model {
	return query.Define(conn, query.Schema[*Comment]{
		Table:   "comments",
		Columns: []string{"id", "article_id", "body"},
		Scan: func(s query.Scanner) (*Comment, error) {
			var c Comment
			err := s.Scan(&c.ID, &c.ArticleID, &c.Body)
			return &c, err
		},
		KeyOf: func(c *Comment) any { return c.ID },
	})
}

// setupModels returns sqlite backed article (with a comments relation) and clip models
func setupModels(t testing.TB) (*sql.DB, *query.Model, *query.Model) {
	db := setupTestDB(t)
	conn := query.NewConn(db)
	articles := articleModel(conn).HasMany("comments", commentModel(conn), "article_id", "")
	return db, articles, clipModel(conn)
}

// compileModels returns models bound to a named dialect without a database
func compileModels(dialect string) (*query.Model, *query.Model) {
	conn := &query.Conn{Dialect: dialect}
	articles := articleModel(conn).HasMany("comments", commentModel(conn), "article_id", "")
	return articles, clipModel(conn)
}

// ids returns "Type#id" labels in result order
func ids(items []any) []string {
	out := make([]string, len(items))
	for i, item := range items {
		switch e := item.(type) {
		case *Article:
			out[i] = "Article#" + strconv.FormatInt(e.ID, 10)
		case *Clip:
			out[i] = "Clip#" + strconv.FormatInt(e.ID, 10)
		}
	}
	return out
}
