package lookdex

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/lookdex/internal/domain/geo"
	"github.com/kailas-cloud/lookdex/internal/domain/search/query"
	"github.com/kailas-cloud/lookdex/internal/domain/tag"
)

// DefaultTake is the page size of a SearchBuilder without Take.
const DefaultTake = 10

// SearchBuilder is a fluent builder for one query. Build errors are reported by Do.
type SearchBuilder struct {
	client *Client
	q      Query
	skip   int
	take   int
	err    error
}

func (b *SearchBuilder) textQuery() *TextQuery {
	if b.q.TextQuery == nil {
		b.q.TextQuery = &TextQuery{}
	}
	return b.q.TextQuery
}

func (b *SearchBuilder) tagQuery() *TagQuery {
	if b.q.TagQuery == nil {
		b.q.TagQuery = &TagQuery{}
	}
	return b.q.TagQuery
}

func (b *SearchBuilder) nodeQuery() *NodeQuery {
	if b.q.NodeQuery == nil {
		b.q.NodeQuery = &NodeQuery{}
	}
	return b.q.NodeQuery
}

func (b *SearchBuilder) locationQuery() *LocationQuery {
	if b.q.LocationQuery == nil {
		b.q.LocationQuery = &LocationQuery{}
	}
	return b.q.LocationQuery
}

func (b *SearchBuilder) fail(err error) *SearchBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Text sets the full-text search and loads each match's text.
func (b *SearchBuilder) Text(s string) *SearchBuilder {
	t := b.textQuery()
	t.SearchText = s
	t.GetText = true
	return b
}

// Fuzzy allows approximate term matches. similarity is in (0,1); lower is looser.
func (b *SearchBuilder) Fuzzy(similarity float64) *SearchBuilder {
	if similarity < 0 || similarity >= 1 {
		return b.fail(fmt.Errorf("%w: fuzziness %v out of range", ErrMalformedQuery, similarity))
	}
	b.textQuery().Fuzziness = similarity
	return b
}

// Highlight returns up to fragments highlighted snippets per match.
func (b *SearchBuilder) Highlight(fragments int) *SearchBuilder {
	b.textQuery().HighlightFragments = fragments
	return b
}

// AllTags requires every tag. Tokens are "group:name", "name" or "group:" for any tag of a group.
func (b *SearchBuilder) AllTags(tokens ...string) *SearchBuilder {
	t := b.tagQuery()
	t.All = append(t.All, tag.Make(tokens...)...)
	t.GetTags = true
	return b
}

// AnyTags requires at least one of the tags.
func (b *SearchBuilder) AnyTags(tokens ...string) *SearchBuilder {
	t := b.tagQuery()
	t.Any = append(t.Any, tag.Make(tokens...)...)
	t.GetTags = true
	return b
}

// NotTags excludes items carrying any of the tags.
func (b *SearchBuilder) NotTags(tokens ...string) *SearchBuilder {
	t := b.tagQuery()
	t.Not = append(t.Not, tag.Make(tokens...)...)
	return b
}

// Facets requests tag counts for groups.
func (b *SearchBuilder) Facets(groups ...string) *SearchBuilder {
	t := b.tagQuery()
	t.GetFacets = append(t.GetFacets, groups...)
	return b
}

// Types restricts matches to the published types.
func (b *SearchBuilder) Types(types ...PublishedType) *SearchBuilder {
	n := b.nodeQuery()
	n.Types = append(n.Types, types...)
	return b
}

// Detached selects how detached items take part.
func (b *SearchBuilder) Detached(mode DetachedMode) *SearchBuilder {
	b.nodeQuery().Detached = mode
	return b
}

// Cultures restricts matches to the cultures.
func (b *SearchBuilder) Cultures(cultures ...string) *SearchBuilder {
	n := b.nodeQuery()
	n.Cultures = append(n.Cultures, cultures...)
	return b
}

// Aliases restricts matches to the type aliases.
func (b *SearchBuilder) Aliases(aliases ...string) *SearchBuilder {
	n := b.nodeQuery()
	n.Aliases = append(n.Aliases, aliases...)
	return b
}

// Exclude drops the node ids from the matches.
func (b *SearchBuilder) Exclude(nodeIDs ...int) *SearchBuilder {
	n := b.nodeQuery()
	n.NotIDs = append(n.NotIDs, nodeIDs...)
	return b
}

// Raw adds a query in the engine's native syntax.
func (b *SearchBuilder) Raw(q string) *SearchBuilder {
	b.q.RawQuery = q
	return b
}

// Near centers a location query on lat, lng.
func (b *SearchBuilder) Near(lat, lng float64) *SearchBuilder {
	loc, err := geo.NewLocation(lat, lng)
	if err != nil {
		return b.fail(fmt.Errorf("%w: %w", ErrMalformedQuery, err))
	}
	b.locationQuery().Location = &loc
	return b
}

// Miles limits a location query to radius miles and reports distances in miles.
func (b *SearchBuilder) Miles(radius float64) *SearchBuilder {
	d := geo.NewDistance(radius, Miles)
	b.locationQuery().MaxDistance = &d
	return b
}

// Km limits a location query to radius kilometres and reports distances in kilometres.
func (b *SearchBuilder) Km(radius float64) *SearchBuilder {
	d := geo.NewDistance(radius, Kilometres)
	b.locationQuery().MaxDistance = &d
	return b
}

// SortBy orders matches: score, name, date or distance.
func (b *SearchBuilder) SortBy(name string) *SearchBuilder {
	s, err := query.ParseSort(name)
	if err != nil {
		return b.fail(fmt.Errorf("%w: %w", ErrInvalidSort, err))
	}
	b.q.SortOn = s
	return b
}

// Skip skips the first n matches.
func (b *SearchBuilder) Skip(n int) *SearchBuilder {
	b.skip = max(n, 0)
	return b
}

// Take returns at most n matches. n <= 0 returns every match.
func (b *SearchBuilder) Take(n int) *SearchBuilder {
	b.take = n
	return b
}

// Query returns the query built so far.
func (b *SearchBuilder) Query() *Query { return &b.q }

// Do runs the query and loads one page. A query that cannot compile is returned as an error.
func (b *SearchBuilder) Do(ctx context.Context) (*Page, error) {
	if b.err != nil {
		return nil, fmt.Errorf("search: %w", b.err)
	}
	if b.q.SortOn == SortDistance && (b.q.LocationQuery == nil || b.q.LocationQuery.Location == nil) {
		return nil, fmt.Errorf("search: %w", ErrDistanceSortWithoutLocation)
	}

	rs, err := b.client.Query(ctx, &b.q)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if rs.CompileFailed() {
		return nil, fmt.Errorf("search: %w", rs.CompileErr())
	}

	matches, err := rs.Collect(ctx, b.skip, b.take)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	page := &Page{Total: rs.Total(), Hits: make([]Hit, len(matches)), Facets: rs.Facets()}
	for i, m := range matches {
		page.Hits[i] = toHit(m)
	}
	return page, nil
}

// IsMalformed reports whether err is caused by query input the engine cannot compile.
func IsMalformed(err error) bool { return errors.Is(err, ErrMalformedQuery) }
