package query

import (
	"context"
	"database/sql"

	"github.com/dshills/unisearch/internal/dialect"
)

// Conn is a database handle shared by the models of one database
type Conn struct {
	DB *sql.DB
	// Prefix is prepended to every table name
	Prefix string
	// Dialect names the grammar explicitly; when empty it is identified from
	// the driver behind DB.
	Dialect string
}

// NewConn wraps db, identifying its grammar from the driver
func NewConn(db *sql.DB) *Conn {
	return &Conn{DB: db}
}

// Grammar resolves the grammar of the connection
func (c *Conn) Grammar() (dialect.Grammar, error) {
	return dialect.Resolve(c.Dialect, c.DB)
}

// Query executes a query rendered with "?" placeholders
func (c *Conn) Query(ctx context.Context, g dialect.Grammar, query string, args []any) (*sql.Rows, error) {
	return c.DB.QueryContext(ctx, g.Placeholders(query), args...)
}
