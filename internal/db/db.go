package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/lookdex/internal/domain/search/clause"
)

// Store is the search engine facade combining all sub-interfaces.
//
//nolint:interfacebloat // consumers depend on the narrow sub-interfaces below
type Store interface {
	Pinger
	IndexManager
	Searcher
	Writer
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks engine connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	// EnsureIndex creates the index when it does not exist yet.
	EnsureIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs prepared queries and fetches stored fields.
type Searcher interface {
	// Prepare renders a clause tree into the engine's native query. A raw clause the engine
	// cannot parse fails with a domain.ErrMalformedQuery error.
	Prepare(n clause.Node) (clause.Prepared, error)
	Search(ctx context.Context, req *SearchRequest) (*SearchResult, error)
	// Fetch returns the requested stored fields for each id, in input order.
	// A missing document yields an empty map.
	Fetch(ctx context.Context, ids, fields []string) ([]map[string]string, error)
}

// Record is one document as index fields.
type Record struct {
	ID     string
	Fields map[string]string
}

// Writer stores documents. Indexing proper belongs to the host pipeline; this is for seeding and tests.
type Writer interface {
	Put(ctx context.Context, records []Record) error
	Delete(ctx context.Context, ids ...string) error
}
