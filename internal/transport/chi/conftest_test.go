package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/lookdex/internal/db"
	blevedb "github.com/kailas-cloud/lookdex/internal/db/bleve"
	"github.com/kailas-cloud/lookdex/internal/domain"
	"github.com/kailas-cloud/lookdex/internal/domain/document"
	"github.com/kailas-cloud/lookdex/internal/domain/geo"
	"github.com/kailas-cloud/lookdex/internal/domain/item"
	"github.com/kailas-cloud/lookdex/internal/domain/tag"
	searchrepo "github.com/kailas-cloud/lookdex/internal/repository/search"
	browseuc "github.com/kailas-cloud/lookdex/internal/usecase/browse"
	healthuc "github.com/kailas-cloud/lookdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/lookdex/internal/usecase/search"
)

func fixtureDocs() []document.Document {
	published := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return []document.Document{
		{
			NodeID: 10, Type: item.Content, Name: "Lighthouse Tour", Culture: "en-GB", Alias: "event",
			Date:     &published,
			Location: &geo.Location{Latitude: 50.3644, Longitude: -4.1422},
			Tags:     tag.Make("venue:coast", "audience:family"),
			Text:     "A guided lighthouse tour along the coast path.",
		},
		{
			NodeID: 11, Type: item.Content, Name: "Gallery Night", Culture: "en-GB", Alias: "event",
			Tags: tag.Make("venue:city"),
			Text: "Late opening at the city gallery.",
		},
		{
			NodeID: 12, Type: item.DetachedMedia, HostID: 10, Name: "Lamp Room",
			Location: &geo.Location{Latitude: 50.3650, Longitude: -4.1430},
			Tags:     tag.Make("venue:coast"),
		},
	}
}

type testAPI struct {
	handler http.Handler
	store   *blevedb.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store, err := blevedb.NewMemStoreForTest()
	if err != nil {
		t.Fatalf("NewMemStoreForTest: %v", err)
	}
	t.Cleanup(store.Close)

	docs := fixtureDocs()
	records := make([]db.Record, len(docs))
	for i := range docs {
		records[i] = db.Record{ID: docs[i].ID(), Fields: docs[i].Fields()}
	}
	if err := store.Put(context.Background(), records); err != nil {
		t.Fatalf("Put: %v", err)
	}

	cfg := domain.SearchConfig{}
	search := searchuc.New(searchrepo.New(store, searchrepo.Config{}), searchuc.NewCompiler(store, cfg), cfg, nil)
	srv := NewServer(search, browseuc.New(search), healthuc.New(store, store, "look"), nil)

	r := chi.NewRouter()
	srv.Routes(r)
	return &testAPI{handler: r, store: store}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func matchIDs(ms []MatchResponse) []int {
	out := make([]int, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}
