// Package match holds the typed record produced for each search hit.
package match

import (
	"time"

	"github.com/kailas-cloud/lookdex/internal/domain/geo"
	"github.com/kailas-cloud/lookdex/internal/domain/tag"
)

// Match is a single search hit. It is immutable; the With methods return modified copies.
type Match struct {
	id        int
	name      string
	score     float64
	date      *time.Time
	location  *geo.Location
	distance  *float64
	text      *string
	highlight *string
	tags      []tag.Tag
}

// New creates a match with the fields every hit carries.
func New(id int, name string, score float64) Match {
	return Match{id: id, name: name, score: score}
}

// ID returns the item's node id.
func (m Match) ID() int { return m.id }

// Name returns the item name.
func (m Match) Name() string { return m.name }

// Score returns the relevance score.
func (m Match) Score() float64 { return m.score }

// Date returns the item date, nil when the item has none.
func (m Match) Date() *time.Time { return m.date }

// Location returns the item location, nil when the item has none.
func (m Match) Location() *geo.Location { return m.location }

// Distance returns the distance from the query location in the query's unit.
func (m Match) Distance() *float64 { return m.distance }

// Text returns the stored text when it was requested.
func (m Match) Text() *string { return m.text }

// Highlight returns the highlighted fragments when highlighting was requested.
func (m Match) Highlight() *string { return m.highlight }

// Tags returns the item tags when they were requested.
func (m Match) Tags() []tag.Tag { return m.tags }

// WithDate returns a copy with the date set.
func (m Match) WithDate(d time.Time) Match {
	m.date = &d
	return m
}

// WithLocation returns a copy with the location set.
func (m Match) WithLocation(l geo.Location) Match {
	m.location = &l
	return m
}

// WithDistance returns a copy with the distance set.
func (m Match) WithDistance(d float64) Match {
	m.distance = &d
	return m
}

// WithText returns a copy with the text set.
func (m Match) WithText(s string) Match {
	m.text = &s
	return m
}

// WithHighlight returns a copy with the highlight set.
func (m Match) WithHighlight(s string) Match {
	m.highlight = &s
	return m
}

// WithTags returns a copy with the tags set. A nil slice is stored as empty so requested tags are never nil.
func (m Match) WithTags(tags []tag.Tag) Match {
	m.tags = append(make([]tag.Tag, 0, len(tags)), tags...)
	return m
}
