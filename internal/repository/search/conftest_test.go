package search

import (
	"context"
	"strconv"
	"testing"

	"github.com/kailas-cloud/lookdex/internal/db"
	"github.com/kailas-cloud/lookdex/internal/domain/field"
	"github.com/kailas-cloud/lookdex/internal/domain/geo"
	"github.com/kailas-cloud/lookdex/internal/domain/search/clause"
	"github.com/kailas-cloud/lookdex/internal/domain/search/query"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn func(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error)
	fetchFn  func(ctx context.Context, ids, fields []string) ([]map[string]string, error)

	requests []*db.SearchRequest
}

func (m *mockStore) Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
	m.requests = append(m.requests, req)
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Fetch(ctx context.Context, ids, fields []string) ([]map[string]string, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, ids, fields)
	}
	return make([]map[string]string, len(ids)), nil
}

func newTestRepo(t *testing.T, cfg Config) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, cfg), ms
}

// prepared is a driver-neutral stand-in for a rendered clause.
type prepared struct{ node clause.Node }

func (p prepared) Clause() clause.Node { return p.node }

func compiled(sort query.SortOn, filter *geo.Filter) *query.Compiled {
	return query.NewCompiled(query.Fingerprint{1}, clause.All{}, prepared{node: clause.All{}}, filter, sort)
}

// pagedEntries serves entries as a stable engine result, honoring offset and limit.
func pagedEntries(entries []db.SearchEntry) func(context.Context, *db.SearchRequest) (*db.SearchResult, error) {
	return func(_ context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
		res := &db.SearchResult{Total: len(entries)}
		if req.Offset >= len(entries) || req.Limit == 0 {
			return res, nil
		}
		end := min(req.Offset+req.Limit, len(entries))
		res.Entries = entries[req.Offset:end]
		return res, nil
	}
}

func locatedEntry(id int, score float64, loc geo.Location) db.SearchEntry {
	return db.SearchEntry{
		ID:    strconv.Itoa(id),
		Score: score,
		Fields: map[string]string{
			field.Latitude:  strconv.FormatFloat(loc.Latitude, 'f', -1, 64),
			field.Longitude: strconv.FormatFloat(loc.Longitude, 'f', -1, 64),
		},
	}
}
