package browse

import (
	"context"

	"github.com/kailas-cloud/lookdex/internal/domain/search/query"
	"github.com/kailas-cloud/lookdex/internal/usecase/search"
)

// Searcher runs queries and whole-result scans.
type Searcher interface {
	Query(ctx context.Context, q *query.Query) (*search.ResultSet, error)
	Scan(ctx context.Context, q *query.Query, fields []string, fn func(id string, fields map[string]string) error) error
}
