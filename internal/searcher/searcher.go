package searcher

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/unisearch/internal/dialect"
	"github.com/dshills/unisearch/internal/query"
	"github.com/dshills/unisearch/internal/terms"
	"github.com/dshills/unisearch/pkg/types"
)

// Spec registers one model through AddMany
type Spec struct {
	Model       *query.Model
	Columns     []string
	OrderColumn string
	FullText    bool
	Options     dialect.FullTextOptions
}

// Searcher searches several models with one UNION query.
//
// Searcher is a value: every builder method returns a modified copy and
// leaves the receiver untouched, so a configured searcher can be reused and
// shared between goroutines. Configuration errors are recorded and returned
// by the terminal Search or Count call.
type Searcher struct {
	config  Configuration
	sources []ModelSource
	logger  *zap.Logger
	err     error
}

// New creates a searcher with the default configuration
func New() Searcher {
	return Searcher{
		config: DefaultConfiguration(),
		logger: zap.NewNop(),
	}
}

// WithLogger sets the logger used for compiled SQL and timings
func (s Searcher) WithLogger(logger *zap.Logger) Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger
	return s
}

// Err returns the first configuration error, if any
func (s Searcher) Err() error {
	return s.err
}

// Config returns a copy of the configuration
func (s Searcher) Config() Configuration {
	c := s.config
	c.ModelOrder = slices.Clone(s.config.ModelOrder)
	if s.config.Pagination != nil {
		p := *s.config.Pagination
		c.Pagination = &p
	}
	return c
}

// Sources returns the registered models in registration order
func (s Searcher) Sources() []ModelSource {
	return slices.Clone(s.sources)
}

func (s Searcher) fail(err error) Searcher {
	if s.err == nil {
		s.err = err
	}
	return s
}

// Add registers a model searched with LIKE over columns. Dotted columns
// such as "comments.body" are matched through relations. An empty
// orderColumn defaults to updated_at.
func (s Searcher) Add(model *query.Model, columns []string, orderColumn string) Searcher {
	return s.add(Spec{Model: model, Columns: columns, OrderColumn: orderColumn})
}

// AddFullText registers a model matched with the engine's full-text search
func (s Searcher) AddFullText(model *query.Model, columns []string, opts dialect.FullTextOptions, orderColumn string) Searcher {
	return s.add(Spec{Model: model, Columns: columns, OrderColumn: orderColumn, FullText: true, Options: opts})
}

// AddMany registers several models at once
func (s Searcher) AddMany(specs ...Spec) Searcher {
	for _, spec := range specs {
		s = s.add(spec)
	}
	return s
}

func (s Searcher) add(spec Spec) Searcher {
	if spec.Model == nil {
		return s.fail(fmt.Errorf("cannot add a nil model"))
	}
	if spec.OrderColumn == "" {
		spec.OrderColumn = DefaultOrderColumn
	}

	src := newModelSource(spec.Model, spec.Columns, spec.OrderColumn, len(s.sources))
	if len(src.columns) == 0 {
		return s.fail(fmt.Errorf("%s: no searchable columns", spec.Model.Name()))
	}
	src.fullText = spec.FullText
	src.fullTextOptions = spec.Options

	s.sources = append(slices.Clip(s.sources), src)
	return s
}

// OrderBy sets the direction of the order column
func (s Searcher) OrderBy(direction Direction) Searcher {
	s.config.Direction = direction
	return s
}

// OrderByAsc orders by the order column, oldest first
func (s Searcher) OrderByAsc() Searcher {
	return s.OrderBy(Ascending)
}

// OrderByDesc orders by the order column, newest first
func (s Searcher) OrderByDesc() Searcher {
	return s.OrderBy(Descending)
}

// OrderByRelevance ranks rows by how often the terms occur in the searched columns
func (s Searcher) OrderByRelevance() Searcher {
	return s.OrderBy(Relevance)
}

// OrderByModel puts the rows of the named models first, in the given order.
// Unlisted models follow.
func (s Searcher) OrderByModel(names ...string) Searcher {
	s.config.ModelOrder = slices.Clone(names)
	return s
}

// BeginWithWildcard lets terms match anywhere in a column, not only at its start
func (s Searcher) BeginWithWildcard(on bool) Searcher {
	s.config.BeginWildcard = on
	return s
}

// EndWithWildcard lets a column continue after the term; on by default
func (s Searcher) EndWithWildcard(on bool) Searcher {
	s.config.EndWildcard = on
	return s
}

// ExactMatch disables both wildcards
func (s Searcher) ExactMatch() Searcher {
	return s.BeginWithWildcard(false).EndWithWildcard(false)
}

// IgnoreCase compares lower-cased columns against lower-cased terms
func (s Searcher) IgnoreCase(on bool) Searcher {
	s.config.IgnoreCase = on
	return s
}

// SoundsLike matches terms phonetically instead of with LIKE
func (s Searcher) SoundsLike(on bool) Searcher {
	s.config.SoundsLike = on
	return s
}

// ParseTerm controls whether the input is split into several terms
func (s Searcher) ParseTerm(on bool) Searcher {
	s.config.ParseTerm = on
	return s
}

// AllowEmptySearchQuery makes an empty input return every row
func (s Searcher) AllowEmptySearchQuery(on bool) Searcher {
	s.config.AllowEmpty = on
	return s
}

// PhoneticFallback allows a LIKE based approximation of sounds-like matching
// on engines without a phonetic operator.
func (s Searcher) PhoneticFallback(on bool) Searcher {
	s.config.PhoneticFallback = on
	return s
}

// Paginate returns one page and reports the total number of matches
func (s Searcher) Paginate(perPage, page int) Searcher {
	return s.paginate(perPage, page, false)
}

// SimplePaginate returns one page and only reports whether more exist
func (s Searcher) SimplePaginate(perPage, page int) Searcher {
	return s.paginate(perPage, page, true)
}

func (s Searcher) paginate(perPage, page int, simple bool) Searcher {
	if s.config.Limit > 0 || s.config.Offset > 0 {
		return s.fail(types.ErrPaginationConflict)
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		page = 1
	}

	name := DefaultPageName
	if s.config.Pagination != nil {
		name = s.config.Pagination.PageName
	}
	s.config.Pagination = &Pagination{PerPage: perPage, Page: page, PageName: name, Simple: simple}
	return s
}

// PageName names the page parameter reported with paginated results
func (s Searcher) PageName(name string) Searcher {
	if s.config.Pagination == nil {
		s = s.Paginate(DefaultPerPage, 1)
	}
	p := *s.config.Pagination
	p.PageName = name
	s.config.Pagination = &p
	return s
}

// Limit caps the number of results. It conflicts with pagination.
func (s Searcher) Limit(n int) Searcher {
	if s.config.Pagination != nil {
		return s.fail(types.ErrPaginationConflict)
	}
	s.config.Limit = n
	return s
}

// Offset skips the first n results. It conflicts with pagination.
func (s Searcher) Offset(n int) Searcher {
	if s.config.Pagination != nil {
		return s.fail(types.ErrPaginationConflict)
	}
	s.config.Offset = n
	return s
}

// IncludeModelType tags every result with its model name under key,
// "type" when key is empty.
func (s Searcher) IncludeModelType(key string) Searcher {
	if key == "" {
		key = DefaultTypeKey
	}
	s.config.TypeKey = key
	return s
}

// ParseTerms splits raw input the way Search does, keeping quoted phrases
func ParseTerms(raw string) []string {
	return terms.Split(raw)
}

// Search runs the union query for raw and resolves the matching entities
func (s Searcher) Search(ctx context.Context, raw string) (*types.SearchResult, error) {
	startTime := time.Now()

	snap, err := s.freeze(raw)
	if err != nil {
		return nil, err
	}

	q, err := snap.compile()
	if err != nil {
		return nil, err
	}

	result := &types.SearchResult{}

	// Apply pagination or an explicit window
	p := snap.config.Pagination
	switch {
	case p == nil:
		q.Limit(snap.config.Limit).Offset(snap.config.Offset)
	case p.Simple:
		q.Limit(p.PerPage + 1).Offset(p.offset())
	default:
		total, err := snap.count(ctx)
		if err != nil {
			return nil, err
		}
		q.Limit(p.PerPage).Offset(p.offset())
		result.Pagination = &types.Pagination{
			Page:     p.Page,
			PerPage:  p.PerPage,
			Total:    total,
			LastPage: max(1, (total+p.PerPage-1)/p.PerPage),
			PageName: p.PageName,
		}
		result.Pagination.HasMore = p.Page < result.Pagination.LastPage
	}

	hits, err := snap.execute(ctx, q)
	if err != nil {
		return nil, err
	}

	if p != nil && p.Simple {
		hasMore := len(hits) > p.PerPage
		if hasMore {
			hits = hits[:p.PerPage]
		}
		result.Pagination = &types.Pagination{
			Page:     p.Page,
			PerPage:  p.PerPage,
			HasMore:  hasMore,
			PageName: p.PageName,
			Simple:   true,
		}
	}

	t := transformer{grammar: snap.grammar, config: snap.config, sources: snap.sources}
	result.Items, err = t.transform(ctx, hits)
	if err != nil {
		return nil, err
	}

	snap.logger.Debug("search completed",
		zap.String("terms", raw),
		zap.Int("sources", len(snap.sources)),
		zap.Int("rows", len(hits)),
		zap.Int("items", len(result.Items)),
		zap.Duration("duration", time.Since(startTime)))

	return result, nil
}

// Count returns the number of union rows matching raw
func (s Searcher) Count(ctx context.Context, raw string) (int, error) {
	snap, err := s.freeze(raw)
	if err != nil {
		return 0, err
	}
	return snap.count(ctx)
}

// ToSQL compiles the search statement for raw without executing it. The SQL
// uses the engine's placeholder syntax.
func (s Searcher) ToSQL(raw string) (string, []any, error) {
	snap, err := s.freeze(raw)
	if err != nil {
		return "", nil, err
	}

	q, err := snap.compile()
	if err != nil {
		return "", nil, err
	}
	if p := snap.config.Pagination; p != nil {
		q.Limit(p.PerPage).Offset(p.offset())
	} else {
		q.Limit(snap.config.Limit).Offset(snap.config.Offset)
	}

	sql, args := q.ToSQL(snap.grammar)
	return snap.grammar.Placeholders(sql), args, nil
}
