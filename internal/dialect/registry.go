package dialect

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/unisearch/pkg/types"
)

// Factory creates a fresh grammar
type Factory func() Grammar

var (
	grammarsMu sync.RWMutex
	grammars   = make(map[string]Factory)

	// driverIdentities maps the Go type of a database/sql driver to a grammar name
	driverIdentities = map[string]string{
		"*mysql.MySQLDriver":    "mysql",
		"mysql.MySQLDriver":     "mysql",
		"*sqlite.Driver":        "sqlite",
		"*sqlite3.SQLiteDriver": "sqlite",
		"*stdlib.Driver":        "postgres",
		"*pq.Driver":            "postgres",
	}

	aliases = map[string]string{
		"mariadb":    "mysql",
		"sqlite3":    "sqlite",
		"postgresql": "postgres",
		"pgx":        "postgres",
	}
)

func init() {
	Register("mysql", NewMySQL)
	Register("sqlite", NewSQLite)
	Register("postgres", NewPostgres)
}

// Register makes a grammar available by the provided name.
// It panics if called twice with the same name or if factory is nil.
func Register(name string, factory Factory) {
	grammarsMu.Lock()
	defer grammarsMu.Unlock()

	if factory == nil {
		panic("dialect: Register factory is nil")
	}
	if name == "" {
		panic("dialect: Register name is empty")
	}
	if _, exists := grammars[name]; exists {
		panic(fmt.Sprintf("dialect: Register called twice for grammar %s", name))
	}

	grammars[name] = factory
}

// RegisterDriverIdentity associates a database/sql driver type, as printed
// by %T, with a registered grammar name.
func RegisterDriverIdentity(driverType, name string) {
	grammarsMu.Lock()
	defer grammarsMu.Unlock()
	driverIdentities[driverType] = name
}

// Get returns a new grammar registered under name or one of its aliases
func Get(name string) (Grammar, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[name]; ok {
		name = alias
	}

	grammarsMu.RLock()
	factory, ok := grammars[name]
	grammarsMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidDialect, name)
	}
	return factory(), nil
}

// Registered returns the sorted names of all registered grammars
func Registered() []string {
	grammarsMu.RLock()
	defer grammarsMu.RUnlock()

	names := make([]string, 0, len(grammars))
	for name := range grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Identify returns the grammar name matching the driver behind db
func Identify(db *sql.DB) (string, error) {
	if db == nil {
		return "", fmt.Errorf("%w: no database handle", types.ErrInvalidDialect)
	}

	driverType := fmt.Sprintf("%T", db.Driver())

	grammarsMu.RLock()
	name, ok := driverIdentities[driverType]
	grammarsMu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: driver %s", types.ErrInvalidDialect, driverType)
	}
	return name, nil
}

// Resolve returns the grammar for an explicit name, or for the driver behind
// db when name is empty.
func Resolve(name string, db *sql.DB) (Grammar, error) {
	if name == "" {
		var err error
		if name, err = Identify(db); err != nil {
			return nil, err
		}
	}
	return Get(name)
}
