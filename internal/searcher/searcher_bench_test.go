package searcher

import (
	"context"
	"fmt"
	"testing"
)

// setupSearchBenchmark loads articles and clips into an in-memory database
func setupSearchBenchmark(b *testing.B) Searcher {
	db, articles, clips := setupModels(b)

	for i := int64(1); i <= 500; i++ {
		day := fmt.Sprintf("2024-01-%02d", i%28+1)
		insertArticle(b, db, i, fmt.Sprintf("order service %d", i), "business logic", day)
		insertClip(b, db, 1000+i, fmt.Sprintf("payment service %d", i), day)
	}

	return New().
		Add(articles, []string{"title", "body"}, "").
		Add(clips, []string{"title"}, "")
}

// BenchmarkCompile benchmarks building the union statement only
func BenchmarkCompile(b *testing.B) {
	articles, clips := compileModels("postgres")
	s := New().
		Add(articles, []string{"title", "body", "comments.body"}, "").
		Add(clips, []string{"title"}, "").
		OrderByModel("Clip")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, _, err := s.ToSQL("order service business logic"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSearch benchmarks a full search: union, decoding and entity fetch
func BenchmarkSearch(b *testing.B) {
	s := setupSearchBenchmark(b).Limit(20)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := s.Search(context.Background(), "service"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSearchRelevance benchmarks relevance ordering over both sources
func BenchmarkSearchRelevance(b *testing.B) {
	s := setupSearchBenchmark(b).BeginWithWildcard(true).OrderByRelevance().Paginate(20, 1)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := s.Search(context.Background(), "service logic"); err != nil {
			b.Fatal(err)
		}
	}
}
