package query

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/dshills/unisearch/internal/dialect"
)

// Scanner is satisfied by *sql.Rows and *sql.Row
type Scanner interface {
	Scan(dest ...any) error
}

// Schema describes how entities of type T are stored
type Schema[T any] struct {
	Table string
	// Key is the primary key column, "id" by default
	Key string
	// Columns are selected when fetching entities, all columns by default.
	// Scan must read them in this order.
	Columns []string
	Scan    func(Scanner) (T, error)
	KeyOf   func(T) any
	// Name is the logical type name, the base name of T by default
	Name string
}

// Model is a searchable table bound to a connection. Modifiers return a
// copy so a base model can be shared between searches.
type Model struct {
	conn      *Conn
	table     string
	key       string
	name      string
	columns   []string
	scan      func(Scanner) (any, error)
	keyOf     func(any) any
	scopes    []Condition
	relations map[string]Relation
}

// Define creates a model for entities of type T
func Define[T any](conn *Conn, schema Schema[T]) *Model {
	m := &Model{
		conn:    conn,
		table:   schema.Table,
		key:     schema.Key,
		name:    schema.Name,
		columns: schema.Columns,
		scan: func(s Scanner) (any, error) {
			return schema.Scan(s)
		},
		keyOf: func(e any) any {
			return schema.KeyOf(e.(T))
		},
	}

	if m.key == "" {
		m.key = "id"
	}
	if m.name == "" {
		m.name = typeName[T]()
	}
	return m
}

func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

func (m *Model) clone() *Model {
	c := *m
	c.scopes = append([]Condition(nil), m.scopes...)
	c.relations = make(map[string]Relation, len(m.relations))
	for name, rel := range m.relations {
		c.relations[name] = rel
	}
	return &c
}

// Name is the logical type name used for type tags and model ordering
func (m *Model) Name() string {
	return m.name
}

// WithName returns a copy with another logical type name
func (m *Model) WithName(name string) *Model {
	c := m.clone()
	c.name = name
	return c
}

// Where returns a copy constrained by a raw SQL scope
func (m *Model) Where(sql string, args ...any) *Model {
	c := m.clone()
	c.scopes = append(c.scopes, Raw("("+sql+")", args...))
	return c
}

// Conn returns the connection the model is bound to
func (m *Model) Conn() *Conn {
	return m.conn
}

// Table returns the prefixed table name
func (m *Model) Table() string {
	return m.conn.Prefix + m.table
}

// KeyName is the primary key column
func (m *Model) KeyName() string {
	return m.key
}

// QualifyColumn prefixes column with the table name unless it already is qualified
func (m *Model) QualifyColumn(column string) string {
	if strings.Contains(column, ".") {
		return column
	}
	return m.Table() + "." + column
}

// QualifiedKeyName is the primary key prefixed with the table
func (m *Model) QualifiedKeyName() string {
	return m.QualifyColumn(m.key)
}

// NewQuery starts a query on the model's table with its scopes applied
func (m *Model) NewQuery() *Query {
	return Table(m.Table()).Where(m.scopes...)
}

// Fetch loads the entities with the given keys, indexed by KeyString
func (m *Model) Fetch(ctx context.Context, g dialect.Grammar, keys []any) (map[string]any, error) {
	entities := make(map[string]any, len(keys))
	if len(keys) == 0 {
		return entities, nil
	}

	q := Table(m.Table())
	if len(m.columns) == 0 {
		q.Select(Raw(g.Wrap(m.Table() + ".*")))
	} else {
		for _, column := range m.columns {
			q.Select(Raw(g.Wrap(m.QualifyColumn(column))))
		}
	}
	q.Where(In(m.QualifiedKeyName(), keys))

	sql, args := q.ToSQL(g)
	rows, err := m.conn.Query(ctx, g, sql, args)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s entities: %w", m.name, err)
	}
	defer rows.Close()

	for rows.Next() {
		entity, err := m.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s entity: %w", m.name, err)
		}
		entities[KeyString(m.keyOf(entity))] = entity
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s entities: %w", m.name, err)
	}

	return entities, nil
}

// KeyString normalizes a primary key value so keys read from a union row
// and keys read from an entity compare equal.
func KeyString(key any) string {
	switch k := key.(type) {
	case nil:
		return ""
	case []byte:
		return string(k)
	case string:
		return k
	default:
		return fmt.Sprint(k)
	}
}
