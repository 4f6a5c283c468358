package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.1.0"

	// anyEngine keys statements shared by every engine
	anyEngine = "*"
)

// Migration represents a database schema migration. Up and Down map an engine
// name, or "*" for all engines, to ";" separated statements.
type Migration struct {
	Version string
	Up      map[string]string
	Down    map[string]string
}

// statementsFor returns the statements of set that run on engine
func statementsFor(set map[string]string, engine string) []string {
	script, ok := set[engine]
	if !ok {
		script = set[anyEngine]
	}
	return splitStatements(script)
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      map[string]string{anyEngine: migrationV1Up},
		Down:    map[string]string{anyEngine: migrationV1Down},
	},
	{
		Version: "1.1.0",
		Up: map[string]string{
			EngineMySQL:    migrationV11UpMySQL,
			EnginePostgres: migrationV11UpPostgres,
			EngineSQLite:   migrationV11UpSQLite,
		},
		Down: map[string]string{
			EngineMySQL:    migrationV11DownMySQL,
			EnginePostgres: migrationV11Down,
			EngineSQLite:   migrationV11Down,
		},
	},
}

const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
    version VARCHAR(32) PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// The demo catalog: articles written by authors with comments, and clips.
// Timestamps are stored as RFC 3339 text so they order the same everywhere.
const migrationV1Up = `
CREATE TABLE IF NOT EXISTS authors (
    id BIGINT PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    updated_at VARCHAR(32) NOT NULL
);

CREATE TABLE IF NOT EXISTS articles (
    id BIGINT PRIMARY KEY,
    author_id BIGINT,
    title VARCHAR(255) NOT NULL,
    body TEXT NOT NULL,
    published INTEGER NOT NULL DEFAULT 1,
    updated_at VARCHAR(32) NOT NULL
);

CREATE TABLE IF NOT EXISTS clips (
    id BIGINT PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL,
    updated_at VARCHAR(32) NOT NULL
);

CREATE TABLE IF NOT EXISTS comments (
    id BIGINT PRIMARY KEY,
    article_id BIGINT NOT NULL,
    body TEXT NOT NULL,
    updated_at VARCHAR(32) NOT NULL
);
`

const migrationV1Down = `
DROP TABLE IF EXISTS comments;
DROP TABLE IF EXISTS clips;
DROP TABLE IF EXISTS articles;
DROP TABLE IF EXISTS authors;
`

// MySQL needs FULLTEXT indexes before MATCH ... AGAINST can run
const migrationV11UpMySQL = `
CREATE INDEX comments_article_id ON comments (article_id);
CREATE FULLTEXT INDEX articles_fulltext ON articles (title, body);
CREATE FULLTEXT INDEX clips_fulltext ON clips (title, description);
`

const migrationV11DownMySQL = `
DROP INDEX clips_fulltext ON clips;
DROP INDEX articles_fulltext ON articles;
DROP INDEX comments_article_id ON comments;
`

// The expression matches what the postgres grammar renders for a full-text
// search over title and body with the english configuration
const migrationV11UpPostgres = `
CREATE INDEX IF NOT EXISTS comments_article_id ON comments (article_id);
CREATE INDEX IF NOT EXISTS articles_fulltext ON articles
    USING gin ((to_tsvector('english', title) || to_tsvector('english', body)));
`

const migrationV11UpSQLite = `
CREATE INDEX IF NOT EXISTS comments_article_id ON comments (article_id);
`

const migrationV11Down = `
DROP INDEX IF EXISTS articles_fulltext;
DROP INDEX IF EXISTS comments_article_id;
`

// splitStatements splits a script on ";". Migration scripts never contain
// semicolons inside literals.
func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// SchemaVersion returns the highest applied migration version, 0.0.0 when
// nothing has been applied
func (s *Store) SchemaVersion(ctx context.Context) (*semver.Version, error) {
	if _, err := s.db.ExecContext(ctx, schemaVersionTable); err != nil {
		return nil, fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return currentVersion(ctx, s.db)
}

func currentVersion(ctx context.Context, db *sql.DB) (*semver.Version, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}
	defer rows.Close()

	current := semver.MustParse("0.0.0")
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan schema_version: %w", err)
		}
		v, err := semver.NewVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid current schema version %s: %w", raw, err)
		}
		if v.GreaterThan(current) {
			current = v
		}
	}
	return current, rows.Err()
}

// Migrate runs all pending migrations
func (s *Store) Migrate(ctx context.Context) error {
	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	// Run migrations in order
	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		// Skip if already applied
		if !current.LessThan(migrationVersion) {
			continue
		}

		for _, stmt := range statementsFor(migration.Up, s.engine) {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
			}
		}

		if err := s.exec(ctx, s.db, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		current = migrationVersion
	}

	return nil
}

// Rollback rolls back the most recent migration
func (s *Store) Rollback(ctx context.Context) error {
	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	// Find migration
	var migration *Migration
	for i := range AllMigrations {
		v, err := semver.NewVersion(AllMigrations[i].Version)
		if err == nil && v.Equal(current) {
			migration = &AllMigrations[i]
			break
		}
	}

	if migration == nil {
		return fmt.Errorf("no migrations to rollback from %s", current)
	}

	for _, stmt := range statementsFor(migration.Down, s.engine) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", migration.Version, err)
		}
	}

	// Remove version record
	if err := s.exec(ctx, s.db, "DELETE FROM schema_version WHERE version = ?", migration.Version); err != nil {
		return fmt.Errorf("failed to remove migration record %s: %w", migration.Version, err)
	}

	return nil
}
