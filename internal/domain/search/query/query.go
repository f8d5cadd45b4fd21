// Package query is the structured search request model and its compiled form.
package query

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/lookdex/internal/domain/geo"
	"github.com/kailas-cloud/lookdex/internal/domain/item"
	"github.com/kailas-cloud/lookdex/internal/domain/tag"
)

// SortOn is the ordering of matches.
type SortOn string

// Sort orders. The zero value sorts by score.
const (
	SortScore          SortOn = "score"
	SortName           SortOn = "name"
	SortDateDescending SortOn = "date"
	SortDistance       SortOn = "distance"
)

// IsValid checks if the sort is one of the supported values.
func (s SortOn) IsValid() bool {
	switch s {
	case "", SortScore, SortName, SortDateDescending, SortDistance:
		return true
	}
	return false
}

// Normalize maps the zero value to SortScore.
func (s SortOn) Normalize() SortOn {
	if s == "" {
		return SortScore
	}
	return s
}

// ParseSort reads a sort name: Score, Name, Date or Distance, case-insensitive. Empty means Score.
func ParseSort(s string) (SortOn, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "score":
		return SortScore, nil
	case "name":
		return SortName, nil
	case "date", "datedescending":
		return SortDateDescending, nil
	case "distance":
		return SortDistance, nil
	}
	return "", fmt.Errorf("unknown sort %q", s)
}

// NodeQuery restricts matches by item kind and identity.
type NodeQuery struct {
	Types    []item.PublishedType
	Detached item.DetachedMode
	Cultures []string
	Aliases  []string
	Keys     []string
	NotIDs   []int
	NotKeys  []string
}

// TextQuery is a full-text constraint plus text retrieval options.
type TextQuery struct {
	SearchText string
	// Fuzziness is a similarity in (0,1); 0 means exact.
	Fuzziness          float64
	GetText            bool
	HighlightFragments int
	HighlightSeparator string
}

// TagQuery holds tag constraints and facet requests.
type TagQuery struct {
	All       []tag.Tag
	Any       []tag.Tag
	Not       []tag.Tag
	GetFacets []string
	GetTags   bool
}

// HasConstraints reports whether any non-blank tag constrains matches.
func (t *TagQuery) HasConstraints() bool {
	if t == nil {
		return false
	}
	return len(tag.NonBlank(t.All))+len(tag.NonBlank(t.Any))+len(tag.NonBlank(t.Not)) > 0
}

// DateQuery bounds the item date, both ends inclusive.
type DateQuery struct {
	After  *time.Time
	Before *time.Time
}

// NameQuery matches the item name case-insensitively.
type NameQuery struct {
	Is         string
	StartsWith string
	EndsWith   string
	Contains   string
}

// LocationQuery is a radius constraint. A missing MaxDistance uses the configured maximum.
type LocationQuery struct {
	Location    *geo.Location
	MaxDistance *geo.Distance
}

// Query is a search request. Every slot is optional; an all-empty query matches every item.
// A Query memoizes its compiled form until any slot changes value.
type Query struct {
	NodeQuery     *NodeQuery
	TextQuery     *TextQuery
	TagQuery      *TagQuery
	DateQuery     *DateQuery
	NameQuery     *NameQuery
	LocationQuery *LocationQuery
	RawQuery      string
	SortOn        SortOn

	mu   sync.Mutex
	memo *Compiled
}

// New returns an empty query.
func New() *Query { return &Query{} }

// Compiler turns a query into its executable form. fp is the query's fingerprint at the time of the call.
type Compiler interface {
	Compile(q *Query, fp Fingerprint) (*Compiled, error)
}

// Compile returns the memoized compiled form when the slots still hold the values it was built from,
// otherwise compiles afresh through c and memoizes the result.
func (q *Query) Compile(c Compiler) (*Compiled, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	fp := q.Fingerprint()
	if q.memo != nil && q.memo.fingerprint.Equal(fp) {
		return q.memo, nil
	}
	q.memo = nil

	compiled, err := c.Compile(q, fp)
	if err != nil {
		return nil, err
	}
	if compiled.fingerprint == nil {
		compiled.fingerprint = fp
	}
	q.memo = compiled
	return compiled, nil
}

// Compiled returns the memoized compiled form, or nil when there is none or it is stale.
func (q *Query) Compiled() *Compiled {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.memo == nil || !q.memo.fingerprint.Equal(q.Fingerprint()) {
		return nil
	}
	return q.memo
}

// WithoutTagConstraints returns a copy of q with All, Any and Not cleared. The copy has no memo.
func (q *Query) WithoutTagConstraints() *Query {
	out := &Query{
		NodeQuery:     q.NodeQuery,
		TextQuery:     q.TextQuery,
		DateQuery:     q.DateQuery,
		NameQuery:     q.NameQuery,
		LocationQuery: q.LocationQuery,
		RawQuery:      q.RawQuery,
		SortOn:        q.SortOn,
	}
	if q.TagQuery != nil {
		out.TagQuery = &TagQuery{GetFacets: q.TagQuery.GetFacets, GetTags: q.TagQuery.GetTags}
	}
	return out
}

// SearchText returns the trimmed search text, or "" when there is none.
func (q *Query) SearchText() string {
	if q.TextQuery == nil {
		return ""
	}
	return strings.TrimSpace(q.TextQuery.SearchText)
}
