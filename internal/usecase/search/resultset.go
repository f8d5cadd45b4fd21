package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/lookdex/internal/domain/field"
	"github.com/kailas-cloud/lookdex/internal/domain/geo"
	"github.com/kailas-cloud/lookdex/internal/domain/search/match"
	"github.com/kailas-cloud/lookdex/internal/domain/search/ranking"
	"github.com/kailas-cloud/lookdex/internal/domain/tag"
)

// ResultSet is a forward-only, lazily fetched sequence of matches. Stored fields are loaded
// in batches as the caller advances. A ResultSet is not safe for concurrent use.
type ResultSet struct {
	fetcher     fetcher
	hits        []ranking.Hit
	total       int
	fields      []string
	highlighter Highlighter
	distances   DistanceLookup
	getText     bool
	getTags     bool
	batchSize   int

	pos      int // index of the next hit
	buf      []match.Match
	bufStart int
	cur      match.Match
	err      error

	compileErr error
	facets     map[string]map[string]int
}

type fetcher interface {
	Fetch(ctx context.Context, ids, fields []string) ([]map[string]string, error)
}

// resultOptions selects what each match carries.
type resultOptions struct {
	getText     bool
	getTags     bool
	highlighter Highlighter
	distances   DistanceLookup
	batchSize   int
}

func newResultSet(f fetcher, r *ranking.Ranking, opts resultOptions) *ResultSet {
	rs := &ResultSet{
		fetcher:     f,
		hits:        r.Hits,
		total:       r.Total,
		highlighter: opts.highlighter,
		distances:   opts.distances,
		getText:     opts.getText,
		getTags:     opts.getTags,
		batchSize:   max(opts.batchSize, 1),
	}
	rs.fields = []string{field.NodeID, field.Date, field.Name, field.Location}
	if opts.getText || opts.highlighter != nil {
		rs.fields = append(rs.fields, field.Text)
	}
	if opts.getTags {
		rs.fields = append(rs.fields, field.Tags)
	}
	return rs
}

// emptyResultSet has no matches. compileErr, when set, records why the query could not run.
func emptyResultSet(compileErr error) *ResultSet {
	return &ResultSet{compileErr: compileErr, batchSize: 1}
}

// Total returns the exact number of matches, which may exceed the hits retrievable.
func (rs *ResultSet) Total() int { return rs.total }

// Len returns the number of retrievable hits.
func (rs *ResultSet) Len() int { return len(rs.hits) }

// CompileFailed reports whether the query failed to compile, as opposed to matching nothing.
func (rs *ResultSet) CompileFailed() bool { return rs.compileErr != nil }

// CompileErr returns the compile failure, if any.
func (rs *ResultSet) CompileErr() error { return rs.compileErr }

// Facets returns the tag counts requested with TagQuery.GetFacets, keyed by group then name.
func (rs *ResultSet) Facets() map[string]map[string]int { return rs.facets }

// Err returns the error that stopped iteration.
func (rs *ResultSet) Err() error { return rs.err }

// Match returns the current match. Valid after Next returned true.
func (rs *ResultSet) Match() match.Match { return rs.cur }

// Skip advances past n hits without fetching them.
func (rs *ResultSet) Skip(n int) {
	if n <= 0 {
		return
	}
	rs.pos = min(rs.pos+n, len(rs.hits))
}

// Next advances to the next match, fetching the next batch of stored fields when needed.
func (rs *ResultSet) Next(ctx context.Context) bool {
	if rs.err != nil || rs.pos >= len(rs.hits) {
		return false
	}
	if rs.pos < rs.bufStart || rs.pos >= rs.bufStart+len(rs.buf) {
		if err := rs.fill(ctx); err != nil {
			rs.err = err
			return false
		}
	}
	rs.cur = rs.buf[rs.pos-rs.bufStart]
	rs.pos++
	return true
}

// Collect skips skip hits and returns up to take matches. take <= 0 returns every remaining match.
func (rs *ResultSet) Collect(ctx context.Context, skip, take int) ([]match.Match, error) {
	rs.Skip(skip)
	remaining := len(rs.hits) - rs.pos
	if take <= 0 || take > remaining {
		take = remaining
	}
	out := make([]match.Match, 0, max(take, 0))
	for len(out) < take && rs.Next(ctx) {
		out = append(out, rs.Match())
	}
	if rs.err != nil {
		return nil, rs.err
	}
	return out, nil
}

func (rs *ResultSet) fill(ctx context.Context) error {
	end := min(rs.pos+rs.batchSize, len(rs.hits))
	batch := rs.hits[rs.pos:end]
	ids := make([]string, len(batch))
	for i, h := range batch {
		ids[i] = h.ID
	}

	docs, err := rs.fetcher.Fetch(ctx, ids, rs.fields)
	if err != nil {
		return fmt.Errorf("fetch matches: %w", err)
	}

	buf := make([]match.Match, len(batch))
	for i, h := range batch {
		var doc map[string]string
		if i < len(docs) {
			doc = docs[i]
		}
		buf[i] = rs.toMatch(h, doc)
	}
	rs.buf = buf
	rs.bufStart = rs.pos
	return nil
}

func (rs *ResultSet) toMatch(h ranking.Hit, doc map[string]string) match.Match {
	id, err := strconv.Atoi(doc[field.NodeID])
	if err != nil {
		id, _ = strconv.Atoi(h.ID)
	}
	m := match.New(id, doc[field.Name], h.Score)

	if s := doc[field.Date]; s != "" {
		if d, err := field.ParseDate(s); err == nil {
			m = m.WithDate(d)
		}
	}
	if s := doc[field.Location]; s != "" {
		if loc, err := geo.ParseLocation(s); err == nil {
			m = m.WithLocation(loc)
		}
	}
	if rs.distances != nil {
		if d, ok := rs.distances.Distance(h.ID); ok {
			m = m.WithDistance(d)
		}
	}
	if rs.getText {
		m = m.WithText(doc[field.Text])
	}
	if rs.highlighter != nil {
		m = m.WithHighlight(rs.highlighter.Highlight(doc[field.Text]))
	}
	if rs.getTags {
		m = m.WithTags(tag.Split(doc[field.Tags]))
	}
	return m
}
