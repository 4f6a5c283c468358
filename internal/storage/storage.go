package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/dshills/unisearch/internal/dialect"
	"github.com/dshills/unisearch/internal/query"
)

// Engine names accepted by Open
const (
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrUnknownEngine is returned when Options names no supported engine
	ErrUnknownEngine = errors.New("unknown database engine")
	// ErrInvalidDSN is returned when a connection string cannot be parsed
	ErrInvalidDSN = errors.New("invalid dsn")
)

// Options configures a database connection
type Options struct {
	Engine          string // mysql, postgres or sqlite (aliases such as mariadb are accepted)
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// Migrate applies pending schema migrations after connecting
	Migrate bool
}

// Store owns a database handle of one engine
type Store struct {
	db     *sql.DB
	engine string
}

// Open connects to the configured engine and verifies the connection
func Open(ctx context.Context, opts Options) (*Store, error) {
	engine, err := normalizeEngine(opts.Engine)
	if err != nil {
		return nil, err
	}

	db, err := openDatabase(engine, opts.DSN)
	if err != nil {
		return nil, err
	}

	if engine == EngineSQLite {
		// SQLite benefits from a single writer, and :memory: databases are
		// private to one connection
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		if opts.MaxOpenConns > 0 {
			db.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			db.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(opts.ConnMaxLifetime)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", engine, err)
	}

	if engine == EngineSQLite {
		if err := configureSQLite(ctx, db, opts.DSN); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	s := &Store{db: db, engine: engine}
	if opts.Migrate {
		if err := s.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}
	return s, nil
}

// normalizeEngine maps aliases onto the canonical engine name
func normalizeEngine(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return EngineSQLite, nil
	}
	g, err := dialect.Get(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownEngine, name)
	}
	return g.Name(), nil
}

func openDatabase(engine, dsn string) (*sql.DB, error) {
	switch engine {
	case EngineMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDSN, err)
		}
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDSN, err)
		}
		return sql.OpenDB(connector), nil

	case EnginePostgres:
		cfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDSN, err)
		}
		return stdlib.OpenDB(*cfg), nil

	default:
		if dsn == "" {
			dsn = ":memory:"
		}
		db, err := sql.Open(SQLiteDriverName, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return db, nil
	}
}

func configureSQLite(ctx context.Context, db *sql.DB, dsn string) error {
	if dsn != "" && !strings.Contains(dsn, ":memory:") {
		// Enable WAL mode for better concurrency
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return nil
}

// DB returns the underlying handle
func (s *Store) DB() *sql.DB {
	return s.db
}

// Engine returns the canonical engine name
func (s *Store) Engine() string {
	return s.engine
}

// Conn returns a query connection bound to the store's engine
func (s *Store) Conn() *query.Conn {
	return &query.Conn{DB: s.db, Dialect: s.engine}
}

// Catalog returns the demo catalog models bound to this store
func (s *Store) Catalog() *Catalog {
	return NewCatalog(s.Conn())
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// exec runs statements written with "?" placeholders in the engine's syntax
func (s *Store) exec(ctx context.Context, q execer, statement string, args ...any) error {
	g, err := dialect.Get(s.engine)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, g.Placeholders(statement), args...)
	return err
}

// execer is implemented by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
