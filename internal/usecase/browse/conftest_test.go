package browse

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/lookdex/internal/db"
	blevedb "github.com/kailas-cloud/lookdex/internal/db/bleve"
	"github.com/kailas-cloud/lookdex/internal/domain"
	"github.com/kailas-cloud/lookdex/internal/domain/document"
	"github.com/kailas-cloud/lookdex/internal/domain/geo"
	"github.com/kailas-cloud/lookdex/internal/domain/item"
	"github.com/kailas-cloud/lookdex/internal/domain/search/query"
	"github.com/kailas-cloud/lookdex/internal/domain/tag"
	searchrepo "github.com/kailas-cloud/lookdex/internal/repository/search"
	"github.com/kailas-cloud/lookdex/internal/usecase/search"
)

// --- Mocks ---

type mockSearcher struct {
	queryFn func(ctx context.Context, q *query.Query) (*search.ResultSet, error)
	scanFn  func(ctx context.Context, q *query.Query, fields []string, fn func(string, map[string]string) error) error
}

func (m *mockSearcher) Query(ctx context.Context, q *query.Query) (*search.ResultSet, error) {
	return m.queryFn(ctx, q)
}

func (m *mockSearcher) Scan(
	ctx context.Context, q *query.Query, fields []string, fn func(string, map[string]string) error,
) error {
	return m.scanFn(ctx, q, fields, fn)
}

// --- Fixtures ---

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func docs() []document.Document {
	return []document.Document{
		{
			NodeID: 1, Type: item.Content, Name: "Harbour Walk", Culture: "en-GB",
			Date:     day(2022, 4, 1),
			Location: &geo.Location{Latitude: 50.37, Longitude: -4.14},
			Tags:     tag.Make("season:spring", "area:coast"),
		},
		{
			NodeID: 2, Type: item.Content, Name: "Moor Trail", Culture: "en-GB",
			Date: day(2023, 9, 12),
			Tags: tag.Make("season:autumn", "area:moor"),
		},
		{
			NodeID: 3, Type: item.DetachedContent, HostID: 1, Name: "Rock Pools", Culture: "fr-FR",
			Date:     day(2021, 7, 3),
			Location: &geo.Location{Latitude: 50.36, Longitude: -4.15},
			Tags:     tag.Make("area:coast", "family"),
		},
		{
			NodeID: 4, Type: item.Media, Name: "Cliff Photo",
			Tags: tag.Make("season:spring"),
		},
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := blevedb.NewMemStoreForTest()
	if err != nil {
		t.Fatalf("NewMemStoreForTest: %v", err)
	}
	t.Cleanup(store.Close)

	all := docs()
	records := make([]db.Record, len(all))
	for i := range all {
		records[i] = db.Record{ID: all[i].ID(), Fields: all[i].Fields()}
	}
	if err := store.Put(context.Background(), records); err != nil {
		t.Fatalf("Put: %v", err)
	}

	cfg := domain.SearchConfig{FetchBatchSize: 2}
	repo := searchrepo.New(store, searchrepo.Config{GeoPageSize: 2, ScanPageSize: 2})
	return New(search.New(repo, search.NewCompiler(store, cfg), cfg, nil))
}

func ids(p *Page) []int {
	out := make([]int, len(p.Matches))
	for i, m := range p.Matches {
		out[i] = m.ID()
	}
	return out
}
