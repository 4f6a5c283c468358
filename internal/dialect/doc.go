// Package dialect generates the engine specific SQL fragments used by the
// union searcher.
//
// Three grammars are registered at init: mysql, sqlite and postgres. A grammar
// is picked by name or identified from the driver behind a *sql.DB:
//
//	g, err := dialect.Resolve("", db)
//	if err != nil {
//	    return err // wraps types.ErrInvalidDialect
//	}
//
// Engines without native full text (sqlite) or a phonetic operator (sqlite,
// postgres) get a LIKE based approximation. Sounds-like fallbacks can be
// switched off with AvoidSoundsLike, after which a sounds-like request fails
// with types.ErrUnsupportedOperation.
package dialect
