package storage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/unisearch/internal/query"
)

// Author writes articles
type Author struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	UpdatedAt string `json:"updated_at"`
}

// Article is a written post
type Article struct {
	ID        int64  `json:"id"`
	AuthorID  int64  `json:"author_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Published bool   `json:"published"`
	UpdatedAt string `json:"updated_at"`
}

// Clip is a video with a description
type Clip struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	UpdatedAt   string `json:"updated_at"`
}

// Comment belongs to an article
type Comment struct {
	ID        int64  `json:"id"`
	ArticleID int64  `json:"article_id"`
	Body      string `json:"body"`
	UpdatedAt string `json:"updated_at"`
}

// Catalog holds the searchable models of the demo schema.
//
// Relations:
//   - Article: comments (has many), author (belongs to)
//   - Comment: article (belongs to)
type Catalog struct {
	Authors  *query.Model
	Articles *query.Model
	Clips    *query.Model
	Comments *query.Model
}

// NewCatalog defines the demo models on conn
func NewCatalog(conn *query.Conn) *Catalog {
	authors := query.Define(conn, query.Schema[*Author]{
		Table:   "authors",
		Columns: []string{"id", "name", "updated_at"},
		Scan: func(s query.Scanner) (*Author, error) {
			var a Author
			err := s.Scan(&a.ID, &a.Name, &a.UpdatedAt)
			return &a, err
		},
		KeyOf: func(a *Author) any { return a.ID },
	})

	articleSchema := query.Schema[*Article]{
		Table:   "articles",
		Columns: []string{"id", "author_id", "title", "body", "published", "updated_at"},
		Scan: func(s query.Scanner) (*Article, error) {
			var a Article
			var authorID *int64
			err := s.Scan(&a.ID, &authorID, &a.Title, &a.Body, &a.Published, &a.UpdatedAt)
			if authorID != nil {
				a.AuthorID = *authorID
			}
			return &a, err
		},
		KeyOf: func(a *Article) any { return a.ID },
	}

	comments := query.Define(conn, query.Schema[*Comment]{
		Table:   "comments",
		Columns: []string{"id", "article_id", "body", "updated_at"},
		Scan: func(s query.Scanner) (*Comment, error) {
			var c Comment
			err := s.Scan(&c.ID, &c.ArticleID, &c.Body, &c.UpdatedAt)
			return &c, err
		},
		KeyOf: func(c *Comment) any { return c.ID },
	}).BelongsTo("article", query.Define(conn, articleSchema), "article_id", "")

	articles := query.Define(conn, articleSchema).
		HasMany("comments", comments, "article_id", "").
		BelongsTo("author", authors, "author_id", "")

	clips := query.Define(conn, query.Schema[*Clip]{
		Table:   "clips",
		Columns: []string{"id", "title", "description", "updated_at"},
		Scan: func(s query.Scanner) (*Clip, error) {
			var c Clip
			err := s.Scan(&c.ID, &c.Title, &c.Description, &c.UpdatedAt)
			return &c, err
		},
		KeyOf: func(c *Clip) any { return c.ID },
	})

	return &Catalog{
		Authors:  authors,
		Articles: articles,
		Clips:    clips,
		Comments: comments,
	}
}

func (c *Catalog) models() map[string]*query.Model {
	return map[string]*query.Model{
		"authors":  c.Authors,
		"articles": c.Articles,
		"clips":    c.Clips,
		"comments": c.Comments,
	}
}

// Model looks a model up by table or type name, case-insensitively:
// "articles", "article" and "Article" all name the article model
func (c *Catalog) Model(name string) (*query.Model, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	models := c.models()
	if m, ok := models[key]; ok {
		return m, nil
	}
	for _, m := range models {
		if strings.EqualFold(m.Name(), key) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: model %q", ErrNotFound, name)
}

// Names returns the table names of the catalog, sorted
func (c *Catalog) Names() []string {
	names := make([]string, 0, 4)
	for name := range c.models() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
