package search

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/kailas-cloud/lookdex/internal/db"
	"github.com/kailas-cloud/lookdex/internal/domain"
	"github.com/kailas-cloud/lookdex/internal/domain/field"
	"github.com/kailas-cloud/lookdex/internal/domain/geo"
	"github.com/kailas-cloud/lookdex/internal/domain/search/query"
	"github.com/kailas-cloud/lookdex/internal/domain/search/ranking"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error)
	Fetch(ctx context.Context, ids, fields []string) ([]map[string]string, error)
}

// Default page sizes.
const (
	DefaultGeoPageSize  = 1000
	DefaultScanPageSize = 1000
)

// Config tunes engine paging.
type Config struct {
	// GeoPageSize is the page size when walking radius candidates.
	GeoPageSize int
	// ScanPageSize is the page size for uncapped scans.
	ScanPageSize int
}

// Repo executes compiled queries against the engine. It implements usecase/search.Executor.
type Repo struct {
	store        store
	geoPageSize  int
	scanPageSize int
}

// New creates a search repository.
func New(s store, cfg Config) *Repo {
	if cfg.GeoPageSize <= 0 {
		cfg.GeoPageSize = DefaultGeoPageSize
	}
	if cfg.ScanPageSize <= 0 {
		cfg.ScanPageSize = DefaultScanPageSize
	}
	return &Repo{store: s, geoPageSize: cfg.GeoPageSize, scanPageSize: cfg.ScanPageSize}
}

// Execute ranks the matches of c and keeps at most limit hits. Without a radius filter this is a
// single engine request. With one, every box candidate is paged in, tested against the radius,
// and the survivors are counted and ranked in memory before the cut.
func (r *Repo) Execute(ctx context.Context, c *query.Compiled, limit int) (*ranking.Ranking, error) {
	sortBy, err := sortFields(c)
	if err != nil {
		return nil, err
	}
	if c.Geo == nil {
		return r.execute(ctx, c, sortBy, limit)
	}
	return r.executeGeo(ctx, c, limit)
}

func (r *Repo) execute(ctx context.Context, c *query.Compiled, sortBy []db.SortField, limit int) (*ranking.Ranking, error) {
	res, err := r.store.Search(ctx, &db.SearchRequest{Query: c.Prepared, Sort: sortBy, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	hits := make([]ranking.Hit, 0, len(res.Entries))
	for _, e := range res.Entries {
		hits = append(hits, ranking.Hit{ID: e.ID, Score: e.Score})
	}
	return ranking.New(res.Total, hits), nil
}

type survivor struct {
	hit      ranking.Hit
	distance float64
	name     string
	ticks    int64
	dated    bool
}

func (r *Repo) executeGeo(ctx context.Context, c *query.Compiled, limit int) (*ranking.Ranking, error) {
	var survivors []survivor
	distances := make(map[string]float64)

	err := r.walk(ctx, c, r.geoPageSize, sortKeyFields(c.Sort), func(e db.SearchEntry, d float64) error {
		distances[e.ID] = d
		s := survivor{hit: ranking.Hit{ID: e.ID, Score: e.Score}, distance: d}
		s.name = strings.ToLower(e.Fields[field.Name])
		if ticks, err := strconv.ParseInt(e.Fields[field.Date], 10, 64); err == nil {
			s.ticks, s.dated = ticks, true
		}
		survivors = append(survivors, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	rankSurvivors(survivors, c.Sort)

	hits := make([]ranking.Hit, min(limit, len(survivors)))
	for i := range hits {
		hits[i] = survivors[i].hit
	}
	return ranking.NewWithDistances(len(survivors), hits, distances), nil
}

// sortKeyFields lists the stored fields a survivor needs to be ranked by s.
func sortKeyFields(s query.SortOn) []string {
	switch s {
	case query.SortName:
		return []string{field.Name}
	case query.SortDateDescending:
		return []string{field.Date}
	}
	return nil
}

// rankSurvivors orders survivors by s. Walk order (node id) breaks ties.
func rankSurvivors(survivors []survivor, s query.SortOn) {
	var less func(a, b survivor) bool
	switch s {
	case query.SortDistance:
		less = func(a, b survivor) bool { return a.distance < b.distance }
	case query.SortName:
		less = func(a, b survivor) bool { return a.name < b.name }
	case query.SortDateDescending:
		less = func(a, b survivor) bool {
			if a.dated != b.dated {
				return a.dated
			}
			return a.ticks > b.ticks
		}
	default:
		less = func(a, b survivor) bool { return a.hit.Score > b.hit.Score }
	}
	sort.SliceStable(survivors, func(i, j int) bool { return less(survivors[i], survivors[j]) })
}

// Scan visits every match of c, uncapped, with the requested stored fields. Radius queries visit
// survivors only.
func (r *Repo) Scan(ctx context.Context, c *query.Compiled, fields []string, fn func(id string, fields map[string]string) error) error {
	return r.walk(ctx, c, r.scanPageSize, fields, func(e db.SearchEntry, _ float64) error {
		return fn(e.ID, e.Fields)
	})
}

// Fetch loads stored fields for ids, in input order.
func (r *Repo) Fetch(ctx context.Context, ids, fields []string) ([]map[string]string, error) {
	out, err := r.store.Fetch(ctx, ids, fields)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	return out, nil
}

// pagingOrder is the order walk pages in. Node ids are unique, so offset pages never overlap or
// leave gaps, whichever engine serves them.
var pagingOrder = []db.SortField{{Field: field.NodeID}}

// walk pages through every match of c in node id order. With a radius filter, entries outside
// the radius are skipped and fn receives the distance in the query's unit.
func (r *Repo) walk(
	ctx context.Context, c *query.Compiled, pageSize int, fields []string,
	fn func(e db.SearchEntry, distance float64) error,
) error {
	if c.Geo != nil {
		fields = withLocation(fields)
	}
	seen := newIDSet()

	for offset := 0; ; offset += pageSize {
		res, err := r.store.Search(ctx, &db.SearchRequest{
			Query:  c.Prepared,
			Sort:   pagingOrder,
			Offset: offset,
			Limit:  pageSize,
			Fields: fields,
		})
		if err != nil {
			return fmt.Errorf("search page at %d: %w", offset, err)
		}

		for _, e := range res.Entries {
			if !seen.add(e.ID) {
				continue
			}
			var d float64
			if c.Geo != nil {
				loc, ok := entryLocation(e.Fields)
				if !ok {
					continue
				}
				if d, ok = c.Geo.Match(loc); !ok {
					continue
				}
			}
			if err := fn(e, d); err != nil {
				return err
			}
		}

		if len(res.Entries) < pageSize || offset+pageSize >= res.Total {
			return nil
		}
	}
}

func sortFields(c *query.Compiled) ([]db.SortField, error) {
	switch c.Sort {
	case query.SortName:
		return []db.SortField{{Field: field.SortName}}, nil
	case query.SortDateDescending:
		return []db.SortField{{Field: field.SortDate, Desc: true}}, nil
	case query.SortDistance:
		if c.Geo == nil {
			return nil, domain.ErrDistanceSortWithoutLocation
		}
	}
	return nil, nil
}

func withLocation(fields []string) []string {
	out := make([]string, 0, len(fields)+2)
	out = append(out, fields...)
	for _, f := range []string{field.Latitude, field.Longitude} {
		if !contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func entryLocation(fields map[string]string) (geo.Location, bool) {
	lat, err := strconv.ParseFloat(fields[field.Latitude], 64)
	if err != nil {
		return geo.Location{}, false
	}
	lng, err := strconv.ParseFloat(fields[field.Longitude], 64)
	if err != nil {
		return geo.Location{}, false
	}
	return geo.Location{Latitude: lat, Longitude: lng}, true
}

// idSet tracks visited documents across pages. Node ids go into a roaring bitmap.
type idSet struct {
	ids   *roaring.Bitmap
	other map[string]struct{}
}

func newIDSet() *idSet {
	return &idSet{ids: roaring.New()}
}

// add records id and reports whether it was new.
func (s *idSet) add(id string) bool {
	if n, err := strconv.ParseUint(id, 10, 32); err == nil {
		return s.ids.CheckedAdd(uint32(n))
	}
	if s.other == nil {
		s.other = make(map[string]struct{})
	}
	if _, ok := s.other[id]; ok {
		return false
	}
	s.other[id] = struct{}{}
	return true
}
