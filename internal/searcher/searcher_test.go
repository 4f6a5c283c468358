package searcher

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/unisearch/internal/dialect"
	"github.com/dshills/unisearch/pkg/types"
)

func TestSearchArticlesAndClips(t *testing.T) {
	db, articles, clips := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")
	insertArticle(t, db, 2, "bar", "", "2024-01-03")
	insertClip(t, db, 3, "foo", "2024-01-02")

	s := New().
		Add(articles, []string{"title"}, "").
		Add(clips, []string{"title"}, "")

	result, err := s.Search(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Article#1", "Clip#3"}, ids(result.Entities()))
	assert.Nil(t, result.Pagination)
	assert.Equal(t, 2, result.Total())
}

func TestSearchMatchesOnlyOneSource(t *testing.T) {
	db, articles, clips := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")
	insertArticle(t, db, 2, "bar", "", "2024-01-02")
	insertClip(t, db, 3, "baz", "2024-01-03")
	insertClip(t, db, 4, "qux", "2024-01-04")

	s := New().
		Add(articles, []string{"title"}, "").
		Add(clips, []string{"title"}, "")

	result, err := s.Search(context.Background(), "baz")
	require.NoError(t, err)
	assert.Equal(t, []string{"Clip#3"}, ids(result.Entities()))

	result, err = s.Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

func TestSearchMultipleTerms(t *testing.T) {
	db, articles, clips := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")
	insertArticle(t, db, 2, "bar", "", "2024-01-02")
	insertClip(t, db, 3, "baz", "2024-01-03")

	s := New().
		Add(articles, []string{"title"}, "").
		Add(clips, []string{"title"}, "")

	result, err := s.Search(context.Background(), "foo baz")
	require.NoError(t, err)
	assert.Equal(t, []string{"Article#1", "Clip#3"}, ids(result.Entities()))

	// The whole input is one term
	result, err = s.ParseTerm(false).Search(context.Background(), "foo baz")
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

func TestEmptySearchQuery(t *testing.T) {
	db, articles, clips := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")
	insertArticle(t, db, 2, "bar", "", "2024-01-03")
	insertClip(t, db, 3, "baz", "2024-01-02")

	s := New().
		Add(articles, []string{"title"}, "").
		Add(clips, []string{"title"}, "")

	for _, input := range []string{"", "   ", `""`} {
		_, err := s.Search(context.Background(), input)
		assert.ErrorIs(t, err, types.ErrEmptySearchQuery, "input %q", input)
	}

	result, err := s.AllowEmptySearchQuery(true).Search(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Article#1", "Clip#3", "Article#2"}, ids(result.Entities()))
}

func TestOrderDirection(t *testing.T) {
	db, articles, clips := setupModels(t)
	insertArticle(t, db, 1, "foo one", "", "2024-01-01")
	insertClip(t, db, 2, "foo two", "2024-01-02")
	insertArticle(t, db, 3, "foo three", "", "2024-01-03")

	s := New().
		Add(articles, []string{"title"}, "").
		Add(clips, []string{"title"}, "")

	asc, err := s.OrderByAsc().Search(context.Background(), "foo")
	require.NoError(t, err)
	desc, err := s.OrderByDesc().Search(context.Background(), "foo")
	require.NoError(t, err)

	assert.Equal(t, []string{"Article#1", "Clip#2", "Article#3"}, ids(asc.Entities()))
	assert.Equal(t, []string{"Article#3", "Clip#2", "Article#1"}, ids(desc.Entities()))
}

func TestCustomOrderColumn(t *testing.T) {
	db, articles, clips := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")
	insertArticle(t, db, 2, "foo", "", "2024-01-02")
	insertClip(t, db, 3, "foo", "2024-01-03")

	result, err := New().
		Add(articles, []string{"title"}, "id").
		Add(clips, []string{"title"}, "id").
		OrderByDesc().
		Search(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Clip#3", "Article#2", "Article#1"}, ids(result.Entities()))
}

func TestPaginate(t *testing.T) {
	db, articles, clips := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")
	insertClip(t, db, 2, "foo", "2024-01-02")
	insertArticle(t, db, 3, "foo", "", "2024-01-03")
	insertClip(t, db, 4, "foo", "2024-01-04")
	insertArticle(t, db, 5, "foo", "", "2024-01-05")
	insertArticle(t, db, 6, "bar", "", "2024-01-06")

	s := New().
		Add(articles, []string{"title"}, "").
		Add(clips, []string{"title"}, "")

	var (
		seen  = make(map[string]bool)
		sizes []int
	)
	for page := 1; page <= 3; page++ {
		result, err := s.Paginate(2, page).Search(context.Background(), "foo")
		require.NoError(t, err)
		require.NotNil(t, result.Pagination)

		assert.Equal(t, 5, result.Total())
		assert.Equal(t, 3, result.Pagination.LastPage)
		assert.Equal(t, page, result.Pagination.Page)
		assert.Equal(t, "page", result.Pagination.PageName)
		assert.Equal(t, page < 3, result.Pagination.HasMore)

		sizes = append(sizes, result.Len())
		for _, id := range ids(result.Entities()) {
			assert.False(t, seen[id], "%s appears on two pages", id)
			seen[id] = true
		}
	}

	assert.Equal(t, []int{2, 2, 1}, sizes)
	assert.Len(t, seen, 5)

	result, err := s.Paginate(2, 4).Search(context.Background(), "foo")
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, 5, result.Total())
}

func TestSimplePaginate(t *testing.T) {
	db, articles, clips := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")
	insertClip(t, db, 2, "foo", "2024-01-02")
	insertArticle(t, db, 3, "foo", "", "2024-01-03")

	s := New().
		Add(articles, []string{"title"}, "").
		Add(clips, []string{"title"}, "").
		PageName("p")

	first, err := s.SimplePaginate(2, 1).Search(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Article#1", "Clip#2"}, ids(first.Entities()))
	assert.True(t, first.Pagination.HasMore)
	assert.True(t, first.Pagination.Simple)

	second, err := s.SimplePaginate(2, 2).Search(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Article#3"}, ids(second.Entities()))
	assert.False(t, second.Pagination.HasMore)
	assert.Equal(t, 1, second.Total())
}

func TestLimitAndOffset(t *testing.T) {
	db, articles, clips := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")
	insertClip(t, db, 2, "foo", "2024-01-02")
	insertArticle(t, db, 3, "foo", "", "2024-01-03")

	s := New().
		Add(articles, []string{"title"}, "").
		Add(clips, []string{"title"}, "")

	result, err := s.Limit(1).Offset(1).Search(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Clip#2"}, ids(result.Entities()))

	result, err = s.Offset(2).Search(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Article#3"}, ids(result.Entities()))
}

func TestPaginationConflict(t *testing.T) {
	assert.ErrorIs(t, New().Paginate(10, 1).Limit(5).Err(), types.ErrPaginationConflict)
	assert.ErrorIs(t, New().SimplePaginate(10, 1).Offset(5).Err(), types.ErrPaginationConflict)
	assert.ErrorIs(t, New().Limit(5).Paginate(10, 1).Err(), types.ErrPaginationConflict)
	assert.ErrorIs(t, New().Offset(5).SimplePaginate(10, 1).Err(), types.ErrPaginationConflict)
	assert.NoError(t, New().Limit(5).Offset(5).Err())

	db, articles, _ := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")

	_, err := New().Add(articles, []string{"title"}, "").Paginate(10, 1).Limit(5).Search(context.Background(), "foo")
	assert.ErrorIs(t, err, types.ErrPaginationConflict)
}

func TestNoModelsAdded(t *testing.T) {
	_, err := New().Search(context.Background(), "foo")
	assert.ErrorIs(t, err, types.ErrNoModelsAdded)

	_, err = New().Count(context.Background(), "foo")
	assert.ErrorIs(t, err, types.ErrNoModelsAdded)

	assert.Error(t, New().Add(nil, nil, "").Err())
}

func TestSourceWithoutColumns(t *testing.T) {
	db, articles, _ := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")

	s := New().Add(articles, []string{" ", ""}, "")
	require.Error(t, s.Err())

	_, err := s.Search(context.Background(), "zzz")
	assert.Error(t, err)
}

func TestOrderByRelevance(t *testing.T) {
	db, articles, clips := setupModels(t)
	insertArticle(t, db, 1, "the foo", "", "2024-01-01")
	insertArticle(t, db, 2, "foo foo", "", "2024-01-02")
	insertClip(t, db, 3, "a much longer title mentioning foo once", "2024-01-03")

	s := New().
		Add(articles, []string{"title"}, "").
		Add(clips, []string{"title"}, "").
		BeginWithWildcard(true)

	plain, err := s.Search(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Article#1", "Article#2", "Clip#3"}, ids(plain.Entities()))

	ranked, err := s.OrderByRelevance().Search(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Article#2", "Article#1", "Clip#3"}, ids(ranked.Entities()))
}

func TestOrderByRelevanceSingleSource(t *testing.T) {
	db, articles, _ := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")
	insertArticle(t, db, 2, "foo", "foo foo", "2024-01-02")

	result, err := New().
		Add(articles, []string{"title", "body"}, "").
		OrderByRelevance().
		Search(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Article#2", "Article#1"}, ids(result.Entities()))
}

func TestOrderByRelevanceRejectsNestedColumns(t *testing.T) {
	db, articles, _ := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")

	_, err := New().
		Add(articles, []string{"title", "comments.body"}, "").
		OrderByRelevance().
		Search(context.Background(), "foo")
	assert.ErrorIs(t, err, types.ErrOrderByRelevanceUnsupported)
}

func TestOrderByModel(t *testing.T) {
	db, articles, clips := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-05")
	insertArticle(t, db, 2, "foo", "", "2024-01-06")
	insertClip(t, db, 3, "foo", "2024-01-01")
	insertClip(t, db, 4, "foo", "2024-01-02")

	s := New().
		Add(articles, []string{"title"}, "").
		Add(clips, []string{"title"}, "")

	result, err := s.OrderByModel("Article", "Clip").Search(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Article#1", "Article#2", "Clip#3", "Clip#4"}, ids(result.Entities()))

	result, err = s.OrderByModel("Clip").Search(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Clip#3", "Clip#4", "Article#1", "Article#2"}, ids(result.Entities()))
}

func TestNestedColumnSearch(t *testing.T) {
	db, articles, clips := setupModels(t)
	insertArticle(t, db, 1, "alpha", "", "2024-01-01")
	insertArticle(t, db, 2, "beta", "", "2024-01-02")
	insertClip(t, db, 3, "foo", "2024-01-03")
	insertComment(t, db, 1, 1, "foo comment")
	insertComment(t, db, 2, 2, "unrelated")

	result, err := New().
		Add(articles, []string{"title", "comments.body"}, "").
		Add(clips, []string{"title"}, "").
		Search(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Article#1", "Clip#3"}, ids(result.Entities()))

	_, err = New().Add(articles, []string{"tags.name"}, "").Search(context.Background(), "foo")
	assert.Error(t, err)
}

func TestModelScopes(t *testing.T) {
	db, articles, _ := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")
	insertArticle(t, db, 2, "foo", "", "2024-01-02")
	_, err := db.Exec(`UPDATE articles SET published = 0 WHERE id = 2`)
	require.NoError(t, err)

	result, err := New().
		Add(articles.Where("published = ?", 1), []string{"title"}, "").
		Search(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Article#1"}, ids(result.Entities()))
}

func TestIncludeModelType(t *testing.T) {
	db, articles, clips := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")
	insertClip(t, db, 2, "foo", "2024-01-02")

	result, err := New().
		Add(articles, []string{"title"}, "").
		Add(clips.WithName("Video"), []string{"title"}, "").
		IncludeModelType("").
		Search(context.Background(), "foo")
	require.NoError(t, err)
	require.Len(t, result.Items, 2)

	assert.Equal(t, "Article", result.Items[0].Type)
	assert.Equal(t, "type", result.Items[0].TypeKey)
	assert.Equal(t, "Article", result.Items[0].Entity.(*Article).Type)
	assert.Equal(t, "Video", result.Items[1].Type)

	encoded, err := json.Marshal(result.Items[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 2, "title": "foo", "updated_at": "2024-01-02", "type": "Video"}`, string(encoded))
}

func TestFullTextSimulation(t *testing.T) {
	db, articles, clips := setupModels(t)
	insertArticle(t, db, 1, "foo bar", "", "2024-01-01")
	insertArticle(t, db, 2, "foo", "baz inside", "2024-01-02")
	insertArticle(t, db, 3, "qux", "", "2024-01-03")
	insertClip(t, db, 4, "foo", "2024-01-04")

	s := New().
		AddFullText(articles, []string{"title", "body"}, dialect.FullTextOptions{}, "").
		Add(clips, []string{"title"}, "")

	result, err := s.Search(context.Background(), "+foo -baz")
	require.NoError(t, err)
	assert.Equal(t, []string{"Article#1"}, ids(result.Entities()))

	result, err = s.Search(context.Background(), "qux baz")
	require.NoError(t, err)
	assert.Equal(t, []string{"Article#2", "Article#3"}, ids(result.Entities()))
}

func TestFullTextOperatorsOnly(t *testing.T) {
	db, articles, clips := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")
	insertArticle(t, db, 2, "bar", "", "2024-01-02")
	insertClip(t, db, 3, "-", "2024-01-03")

	s := New().AddFullText(articles, []string{"title"}, dialect.FullTextOptions{}, "")
	for _, raw := range []string{"-", "+", "*", "+ -"} {
		result, err := s.Search(context.Background(), raw)
		require.NoError(t, err, raw)
		assert.Empty(t, result.Items, raw)
	}

	// other sources still match with LIKE
	result, err := s.Add(clips, []string{"title"}, "").Search(context.Background(), "-")
	require.NoError(t, err)
	assert.Equal(t, []string{"Clip#3"}, ids(result.Entities()))
}

func TestFullTextThroughRelation(t *testing.T) {
	db, articles, _ := setupModels(t)
	insertArticle(t, db, 1, "alpha", "", "2024-01-01")
	insertArticle(t, db, 2, "beta", "", "2024-01-02")
	insertComment(t, db, 1, 2, "great read")

	result, err := New().
		AddFullText(articles, []string{"body"}, dialect.FullTextOptions{Relation: "comments"}, "").
		Search(context.Background(), "great")
	require.NoError(t, err)
	assert.Equal(t, []string{"Article#2"}, ids(result.Entities()))
}

func TestSoundsLike(t *testing.T) {
	db, _, clips := setupModels(t)
	insertClip(t, db, 1, "phone", "2024-01-01")
	insertClip(t, db, 2, "home", "2024-01-02")

	s := New().Add(clips, []string{"title"}, "").SoundsLike(true)

	result, err := s.Search(context.Background(), "fone")
	require.NoError(t, err)
	assert.Equal(t, []string{"Clip#1"}, ids(result.Entities()))

	_, err = s.PhoneticFallback(false).Search(context.Background(), "fone")
	assert.ErrorIs(t, err, types.ErrUnsupportedOperation)
}

func TestIgnoreCase(t *testing.T) {
	db, articles, _ := setupModels(t)
	insertArticle(t, db, 1, "Foo", "", "2024-01-01")

	result, err := New().
		Add(articles, []string{"title"}, "").
		IgnoreCase(true).
		Search(context.Background(), "FOO")
	require.NoError(t, err)
	assert.Equal(t, []string{"Article#1"}, ids(result.Entities()))
}

func TestExactMatch(t *testing.T) {
	db, articles, _ := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")
	insertArticle(t, db, 2, "foobar", "", "2024-01-02")

	result, err := New().
		Add(articles, []string{"title"}, "").
		ExactMatch().
		Search(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Article#1"}, ids(result.Entities()))
}

func TestCount(t *testing.T) {
	db, articles, clips := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")
	insertArticle(t, db, 2, "bar", "", "2024-01-03")
	insertClip(t, db, 3, "foo", "2024-01-02")

	s := New().
		Add(articles, []string{"title"}, "").
		Add(clips, []string{"title"}, "")

	count, err := s.Count(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = s.Count(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSearcherIsImmutable(t *testing.T) {
	_, articles, clips := setupModels(t)

	base := New().Add(articles, []string{"title"}, "")
	withClips := base.Add(clips, []string{"title"}, "")
	withArticles := base.Add(articles, []string{"body"}, "")
	_ = base.OrderByDesc().OrderByModel("Clip").Paginate(5, 2)

	assert.Len(t, base.Sources(), 1)
	assert.Equal(t, "Clip", withClips.Sources()[1].Model().Name())
	assert.Equal(t, "Article", withArticles.Sources()[1].Model().Name())
	assert.Equal(t, Ascending, base.Config().Direction)
	assert.Empty(t, base.Config().ModelOrder)
	assert.Nil(t, base.Config().Pagination)
}

func TestSearchReusable(t *testing.T) {
	db, articles, clips := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")
	insertClip(t, db, 2, "bar", "2024-01-02")

	s := New().
		Add(articles, []string{"title"}, "").
		Add(clips, []string{"title"}, "")

	first, err := s.Search(context.Background(), "foo")
	require.NoError(t, err)
	second, err := s.Search(context.Background(), "bar")
	require.NoError(t, err)
	again, err := s.Search(context.Background(), "foo")
	require.NoError(t, err)

	assert.Equal(t, []string{"Article#1"}, ids(first.Entities()))
	assert.Equal(t, []string{"Clip#2"}, ids(second.Entities()))
	assert.Equal(t, ids(first.Entities()), ids(again.Entities()))
}

func TestSearchContextCancellation(t *testing.T) {
	db, articles, _ := setupModels(t)
	insertArticle(t, db, 1, "foo", "", "2024-01-01")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Add(articles, []string{"title"}, "").Search(ctx, "foo")
	assert.Error(t, err)
}

func TestParseTerms(t *testing.T) {
	assert.Equal(t, []string{"foo", "bar baz"}, ParseTerms(`foo "bar baz"`))
	assert.Empty(t, ParseTerms("  "))
}

func TestProjectionInvariant(t *testing.T) {
	db := setupTestDB(t)
	l := newLayout(2, false, false)

	rows, err := db.Query(`SELECT 1, 'a', 2, 'b'`)
	require.NoError(t, err)
	_, err = decodeRows(rows, l)
	assert.ErrorIs(t, err, types.ErrProjectionInvariant)

	rows, err = db.Query(`SELECT NULL, 'a', NULL, 'b'`)
	require.NoError(t, err)
	_, err = decodeRows(rows, l)
	assert.ErrorIs(t, err, types.ErrProjectionInvariant)

	rows, err = db.Query(`SELECT NULL, 'a', 7, 'b'`)
	require.NoError(t, err)
	hits, err := decodeRows(rows, l)
	require.NoError(t, err)
	assert.Equal(t, []hit{{source: 1, key: int64(7)}}, hits)
}
