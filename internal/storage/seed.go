package storage

import (
	"context"
	"fmt"
)

// SeedStats counts the rows written by Seed
type SeedStats struct {
	Authors  int `json:"authors"`
	Articles int `json:"articles"`
	Clips    int `json:"clips"`
	Comments int `json:"comments"`
}

// Total returns the number of rows written
func (s SeedStats) Total() int {
	return s.Authors + s.Articles + s.Clips + s.Comments
}

var seedAuthors = []Author{
	{ID: 1, Name: "Ada Stone", UpdatedAt: "2024-01-02T09:00:00Z"},
	{ID: 2, Name: "Felix Kuiper", UpdatedAt: "2024-01-05T09:00:00Z"},
}

var seedArticles = []Article{
	{ID: 1, AuthorID: 1, Title: "Getting started with Go", Body: "A tour of the toolchain, modules and testing.", Published: true, UpdatedAt: "2024-02-01T10:00:00Z"},
	{ID: 2, AuthorID: 2, Title: "Phone photography basics", Body: "Light, framing and the fone you already own.", Published: true, UpdatedAt: "2024-02-03T10:00:00Z"},
	{ID: 3, AuthorID: 1, Title: "Union queries explained", Body: "How a union combines the rows of several selects.", Published: true, UpdatedAt: "2024-02-07T10:00:00Z"},
	{ID: 4, AuthorID: 2, Title: "Draft: search relevance", Body: "Counting term occurrences to rank search results.", Published: false, UpdatedAt: "2024-02-09T10:00:00Z"},
	{ID: 5, AuthorID: 1, Title: "Go concurrency patterns", Body: "Pipelines, fan out and cancellation with context.", Published: true, UpdatedAt: "2024-02-11T10:00:00Z"},
}

var seedClips = []Clip{
	{ID: 1, Title: "Go in five minutes", Description: "A quick look at the Go toolchain.", UpdatedAt: "2024-02-02T12:00:00Z"},
	{ID: 2, Title: "Filming with a phone", Description: "Stabilize shots without extra gear.", UpdatedAt: "2024-02-06T12:00:00Z"},
	{ID: 3, Title: "SQL union tricks", Description: "Ordering and paginating union queries.", UpdatedAt: "2024-02-10T12:00:00Z"},
}

var seedComments = []Comment{
	{ID: 1, ArticleID: 1, Body: "Great intro, the testing section helped.", UpdatedAt: "2024-02-01T15:00:00Z"},
	{ID: 2, ArticleID: 3, Body: "Could you cover pagination next?", UpdatedAt: "2024-02-08T15:00:00Z"},
	{ID: 3, ArticleID: 5, Body: "The cancellation example is gold.", UpdatedAt: "2024-02-12T15:00:00Z"},
}

// Seed replaces the demo catalog rows with a fixed data set in one transaction
func (s *Store) Seed(ctx context.Context) (SeedStats, error) {
	var stats SeedStats

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"comments", "clips", "articles", "authors"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return stats, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, a := range seedAuthors {
		if err := s.exec(ctx, tx, "INSERT INTO authors (id, name, updated_at) VALUES (?, ?, ?)",
			a.ID, a.Name, a.UpdatedAt); err != nil {
			return stats, fmt.Errorf("failed to insert author %d: %w", a.ID, err)
		}
		stats.Authors++
	}

	for _, a := range seedArticles {
		published := 0
		if a.Published {
			published = 1
		}
		if err := s.exec(ctx, tx, "INSERT INTO articles (id, author_id, title, body, published, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			a.ID, a.AuthorID, a.Title, a.Body, published, a.UpdatedAt); err != nil {
			return stats, fmt.Errorf("failed to insert article %d: %w", a.ID, err)
		}
		stats.Articles++
	}

	for _, c := range seedClips {
		if err := s.exec(ctx, tx, "INSERT INTO clips (id, title, description, updated_at) VALUES (?, ?, ?, ?)",
			c.ID, c.Title, c.Description, c.UpdatedAt); err != nil {
			return stats, fmt.Errorf("failed to insert clip %d: %w", c.ID, err)
		}
		stats.Clips++
	}

	for _, c := range seedComments {
		if err := s.exec(ctx, tx, "INSERT INTO comments (id, article_id, body, updated_at) VALUES (?, ?, ?, ?)",
			c.ID, c.ArticleID, c.Body, c.UpdatedAt); err != nil {
			return stats, fmt.Errorf("failed to insert comment %d: %w", c.ID, err)
		}
		stats.Comments++
	}

	if err := tx.Commit(); err != nil {
		return SeedStats{}, fmt.Errorf("failed to commit seed: %w", err)
	}
	return stats, nil
}
