package searcher

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dshills/unisearch/internal/dialect"
	"github.com/dshills/unisearch/internal/query"
	"github.com/dshills/unisearch/pkg/types"
)

// hit is one union row: the source it came from and the entity key
type hit struct {
	source int
	key    any
}

// decodeRows reads every union row, locating the single non-null key by its
// fixed offset. The rows are fully consumed and closed.
func decodeRows(rows *sql.Rows, l layout) ([]hit, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read union columns: %w", err)
	}
	if len(columns) != l.width() {
		return nil, fmt.Errorf("%w: expected %d columns, got %d", types.ErrProjectionInvariant, l.width(), len(columns))
	}

	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	var hits []hit
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan union row: %w", err)
		}

		h := hit{source: -1}
		for i := 0; i < l.sources; i++ {
			key := values[l.keyIndex(i)]
			if key == nil {
				continue
			}
			if h.source >= 0 {
				return nil, fmt.Errorf("%w: keys of sources %d and %d are both set", types.ErrProjectionInvariant, h.source, i)
			}
			h = hit{source: i, key: copyKey(key)}
		}
		if h.source < 0 {
			return nil, fmt.Errorf("%w: no key is set", types.ErrProjectionInvariant)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read union rows: %w", err)
	}

	return hits, nil
}

// copyKey detaches byte slices from the driver's buffer
func copyKey(key any) any {
	if b, ok := key.([]byte); ok {
		return string(b)
	}
	return key
}

// transformer resolves union hits into entities
type transformer struct {
	grammar dialect.Grammar
	config  Configuration
	sources []ModelSource
}

// transform fetches the entities of every source with one query per source
// and returns them in union order. Keys whose entity vanished between the
// two queries are skipped.
func (t transformer) transform(ctx context.Context, hits []hit) ([]types.Item, error) {
	keys := make([][]any, len(t.sources))
	seen := make([]map[string]bool, len(t.sources))
	for _, h := range hits {
		if seen[h.source] == nil {
			seen[h.source] = make(map[string]bool)
		}
		k := query.KeyString(h.key)
		if !seen[h.source][k] {
			seen[h.source][k] = true
			keys[h.source] = append(keys[h.source], h.key)
		}
	}

	entities := make([]map[string]any, len(t.sources))
	for i, sourceKeys := range keys {
		if len(sourceKeys) == 0 {
			continue
		}
		fetched, err := t.sources[i].model.Fetch(ctx, t.grammar, sourceKeys)
		if err != nil {
			return nil, err
		}
		entities[i] = fetched
	}

	items := make([]types.Item, 0, len(hits))
	for _, h := range hits {
		entity, ok := entities[h.source][query.KeyString(h.key)]
		if !ok {
			continue
		}

		item := types.Item{Entity: entity}
		if t.config.TypeKey != "" {
			name := t.sources[h.source].model.Name()
			item.Type = name
			item.TypeKey = t.config.TypeKey
			if stamper, ok := entity.(types.TypeStamper); ok {
				stamper.StampType(t.config.TypeKey, name)
			}
		}
		items = append(items, item)
	}

	return items, nil
}
