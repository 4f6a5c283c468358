package query

import (
	"fmt"
)

// RelationKind is the cardinality of a relation
type RelationKind int

const (
	HasMany RelationKind = iota
	HasOne
	BelongsTo
)

// Relation links a model to a related model.
//
// For HasMany and HasOne, ForeignKey is a column of the related table that
// references LocalKey of the parent. For BelongsTo, ForeignKey is a column of
// the parent referencing LocalKey (the owner key) of the related table.
type Relation struct {
	Kind       RelationKind
	Related    *Model
	ForeignKey string
	LocalKey   string
}

// join correlates rows of the related table with the parent row
func (r Relation) join(parent *Model) Condition {
	if r.Kind == BelongsTo {
		return ColumnsEqual(parent.QualifyColumn(r.ForeignKey), r.Related.QualifyColumn(r.LocalKey))
	}
	return ColumnsEqual(r.Related.QualifyColumn(r.ForeignKey), parent.QualifyColumn(r.LocalKey))
}

// HasMany returns a copy with a one-to-many relation. An empty localKey
// defaults to the model's primary key.
func (m *Model) HasMany(name string, related *Model, foreignKey, localKey string) *Model {
	return m.withRelation(name, HasMany, related, foreignKey, localKey)
}

// HasOne returns a copy with a one-to-one relation
func (m *Model) HasOne(name string, related *Model, foreignKey, localKey string) *Model {
	return m.withRelation(name, HasOne, related, foreignKey, localKey)
}

// BelongsTo returns a copy with an inverse relation. An empty ownerKey
// defaults to the related model's primary key.
func (m *Model) BelongsTo(name string, related *Model, foreignKey, ownerKey string) *Model {
	if ownerKey == "" {
		ownerKey = related.key
	}
	return m.withRelation(name, BelongsTo, related, foreignKey, ownerKey)
}

func (m *Model) withRelation(name string, kind RelationKind, related *Model, foreignKey, localKey string) *Model {
	if localKey == "" {
		localKey = m.key
	}
	c := m.clone()
	c.relations[name] = Relation{Kind: kind, Related: related, ForeignKey: foreignKey, LocalKey: localKey}
	return c
}

// Relation looks up a relation by name
func (m *Model) Relation(name string) (Relation, bool) {
	rel, ok := m.relations[name]
	return rel, ok
}

// WhereHas builds an EXISTS condition that follows path through nested
// relations and applies the condition returned by match to the last related
// model.
func (m *Model) WhereHas(path []string, match func(related *Model) (Condition, error)) (Condition, error) {
	if len(path) == 0 {
		return match(m)
	}

	rel, ok := m.Relation(path[0])
	if !ok {
		return nil, fmt.Errorf("relation %q is not defined on %s", path[0], m.name)
	}

	inner, err := rel.Related.WhereHas(path[1:], match)
	if err != nil {
		return nil, err
	}

	q := rel.Related.NewQuery().
		Select(Raw("1")).
		Where(rel.join(m), inner)
	return Exists(q), nil
}
