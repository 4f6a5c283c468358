package query

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dshills/unisearch/internal/dialect"
)

type post struct {
	ID    int64
	Title string
}

func setupTestDB(t *testing.T) *Conn {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE posts (id INTEGER PRIMARY KEY, title TEXT, published INTEGER);
		CREATE TABLE comments (id INTEGER PRIMARY KEY, post_id INTEGER, body TEXT);
		INSERT INTO posts (id, title, published) VALUES (1, 'foo', 1), (2, 'bar', 1), (3, 'baz', 0);
		INSERT INTO comments (id, post_id, body) VALUES (1, 2, 'nice foo');
	`)
	require.NoError(t, err)

	return &Conn{DB: db, Dialect: "sqlite"}
}

func postModel(conn *Conn) *Model {
	return Define(conn, Schema[*post]{
		Table:   "posts",
		Columns: []string{"id", "title"},
		Scan: func(s Scanner) (*post, error) {
			var p post
			err := s.Scan(&p.ID, &p.Title)
			return &p, err
		},
		KeyOf: func(p *post) any { return p.ID },
	})
}

func TestQueryToSQL(t *testing.T) {
	g := dialect.NewMySQL()

	q := Table("posts").
		Select(Raw("`id`"), Raw("? as `tag`", "x")).
		Where(Raw("`title` like ?", "foo%"), nil, Raw("")).
		OrderBy(Raw("`id`"), "desc").
		Limit(10).
		Offset(20)

	sql, args := q.ToSQL(g)
	assert.Equal(t, "select `id`, ? as `tag` from `posts` where `title` like ? order by `id` desc limit 10 offset 20", sql)
	assert.Equal(t, []any{"x", "foo%"}, args)
}

func TestQueryOffsetWithoutLimit(t *testing.T) {
	sql, _ := Table("posts").Offset(5).ToSQL(dialect.NewSQLite())
	assert.Equal(t, `select * from "posts" limit 9223372036854775807 offset 5`, sql)
}

func TestQueryUnion(t *testing.T) {
	a := Table("a").Select(Raw("1")).Where(Raw("x = ?", 1))
	b := Table("b").Select(Raw("2")).Where(Raw("y = ?", 2))
	a.Union(b).OrderBy(Raw("z"), "asc")

	sql, args := a.ToSQL(dialect.NewMySQL())
	assert.Equal(t, "(select 1 from `a` where x = ?) union (select 2 from `b` where y = ?) order by z asc", sql)
	assert.Equal(t, []any{1, 2}, args)

	sql, _ = a.ToSQL(dialect.NewSQLite())
	assert.Equal(t, `select 1 from "a" where x = ? union select 2 from "b" where y = ? order by z asc`, sql)
}

func TestQueryFromSub(t *testing.T) {
	inner := Table("posts").Where(Raw("id > ?", 1))
	sql, args := FromSub(inner, "t").Select(Raw("count(*)")).ToSQL(dialect.NewPostgres())
	assert.Equal(t, `select count(*) from (select * from "posts" where id > ?) as "t"`, sql)
	assert.Equal(t, []any{1}, args)

	sql, args = FromRaw(Raw("(select ?)", 5), "u").ToSQL(dialect.NewPostgres())
	assert.Equal(t, `select * from (select ?) as "u"`, sql)
	assert.Equal(t, []any{5}, args)
}

func TestConditions(t *testing.T) {
	g := dialect.NewSQLite()

	sql, args := Or(Raw("a = ?", 1), And(Raw("b = ?", 2), Raw("c = ?", 3))).Render(g)
	assert.Equal(t, "(a = ? or (b = ? and c = ?))", sql)
	assert.Equal(t, []any{1, 2, 3}, args)

	sql, _ = Or(Raw("a = 1")).Render(g)
	assert.Equal(t, "a = 1", sql)

	sql, _ = And().Render(g)
	assert.Empty(t, sql)

	sql, _ = Not(And()).Render(g)
	assert.Empty(t, sql)

	sql, _ = Not(Raw("a = 1")).Render(g)
	assert.Equal(t, "not (a = 1)", sql)

	sql, args = In("posts.id", []any{1, 2}).Render(g)
	assert.Equal(t, `"posts"."id" in (?, ?)`, sql)
	assert.Equal(t, []any{1, 2}, args)

	sql, _ = In("posts.id", nil).Render(g)
	assert.Equal(t, "1 = 0", sql)

	sql, _ = ColumnsEqual("a.x", "b.y").Render(g)
	assert.Equal(t, `"a"."x" = "b"."y"`, sql)
}

func TestModel(t *testing.T) {
	conn := &Conn{Prefix: "app_", Dialect: "mysql"}
	m := postModel(conn)

	assert.Equal(t, "post", m.Name())
	assert.Equal(t, "app_posts", m.Table())
	assert.Equal(t, "app_posts.id", m.QualifiedKeyName())
	assert.Equal(t, "app_posts.title", m.QualifyColumn("title"))
	assert.Equal(t, "other.title", m.QualifyColumn("other.title"))

	renamed := m.WithName("Article")
	assert.Equal(t, "Article", renamed.Name())
	assert.Equal(t, "post", m.Name())

	scoped := m.Where("published = ? or title = ?", 1, "x")
	sql, args := scoped.NewQuery().Where(Raw("id = ?", 2)).ToSQL(dialect.NewMySQL())
	assert.Equal(t, "select * from `app_posts` where (published = ? or title = ?) and id = ?", sql)
	assert.Equal(t, []any{1, "x", 2}, args)

	sql, _ = m.NewQuery().ToSQL(dialect.NewMySQL())
	assert.Equal(t, "select * from `app_posts`", sql)
}

func TestWhereHas(t *testing.T) {
	conn := &Conn{Dialect: "sqlite"}
	comments := Define(conn, Schema[*post]{Table: "comments"})
	authors := Define(conn, Schema[*post]{Table: "authors"})
	comments = comments.BelongsTo("author", authors, "author_id", "")
	posts := postModel(conn).HasMany("comments", comments, "post_id", "")

	cond, err := posts.WhereHas([]string{"comments", "author"}, func(related *Model) (Condition, error) {
		return Raw(related.QualifyColumn("name")+" like ?", "foo%"), nil
	})
	require.NoError(t, err)

	sql, args := cond.Render(dialect.NewSQLite())
	assert.Equal(t,
		`exists (select 1 from "comments" where "comments"."post_id" = "posts"."id" and `+
			`exists (select 1 from "authors" where "comments"."author_id" = "authors"."id" and authors.name like ?))`,
		sql)
	assert.Equal(t, []any{"foo%"}, args)

	_, err = posts.WhereHas([]string{"missing"}, nil)
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.DB.Close()

	g, err := conn.Grammar()
	require.NoError(t, err)

	ctx := context.Background()
	m := postModel(conn)

	entities, err := m.Fetch(ctx, g, []any{int64(1), int64(3), int64(99)})
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "foo", entities["1"].(*post).Title)
	assert.Equal(t, "baz", entities["3"].(*post).Title)

	entities, err = m.Fetch(ctx, g, nil)
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "1", KeyString(int64(1)))
	assert.Equal(t, "1", KeyString([]byte("1")))
	assert.Equal(t, "abc", KeyString("abc"))
	assert.Equal(t, "", KeyString(nil))
}
