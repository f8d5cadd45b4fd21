package search

import (
	"context"

	"github.com/kailas-cloud/lookdex/internal/domain/search/clause"
	"github.com/kailas-cloud/lookdex/internal/domain/search/query"
	"github.com/kailas-cloud/lookdex/internal/domain/search/ranking"
)

// Executor runs compiled queries against the engine.
type Executor interface {
	Execute(ctx context.Context, c *query.Compiled, limit int) (*ranking.Ranking, error)
	Scan(ctx context.Context, c *query.Compiled, fields []string, fn func(id string, fields map[string]string) error) error
	Fetch(ctx context.Context, ids, fields []string) ([]map[string]string, error)
}

// Preparer renders a clause tree into the active driver's native query.
type Preparer interface {
	Prepare(n clause.Node) (clause.Prepared, error)
}

// Highlighter builds the highlight snippet for a match's text.
type Highlighter interface {
	Highlight(text string) string
}

// DistanceLookup returns the distance of a radius survivor in the query's unit.
type DistanceLookup interface {
	Distance(id string) (float64, bool)
}
