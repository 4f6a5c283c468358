package types

import "errors"

// Search errors. All of them except ErrProjectionInvariant are raised before any
// query is sent to the database.
var (
	// Configuration errors
	ErrEmptySearchQuery            = errors.New("search query is empty")
	ErrNoModelsAdded               = errors.New("no models added to search through")
	ErrInvalidDialect              = errors.New("unrecognized database engine")
	ErrUnsupportedOperation        = errors.New("operation not supported by database engine")
	ErrOrderByRelevanceUnsupported = errors.New("ordering by relevance is not supported for nested relation columns")
	ErrPaginationConflict          = errors.New("pagination cannot be combined with an explicit limit or offset")

	// Result errors
	ErrProjectionInvariant = errors.New("union row does not carry exactly one model key")
)
