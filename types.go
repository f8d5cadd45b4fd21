package lookdex

import (
	"time"

	"github.com/kailas-cloud/lookdex/internal/domain"
	"github.com/kailas-cloud/lookdex/internal/domain/document"
	"github.com/kailas-cloud/lookdex/internal/domain/geo"
	"github.com/kailas-cloud/lookdex/internal/domain/item"
	"github.com/kailas-cloud/lookdex/internal/domain/search/match"
	"github.com/kailas-cloud/lookdex/internal/domain/search/query"
	"github.com/kailas-cloud/lookdex/internal/domain/tag"
	searchuc "github.com/kailas-cloud/lookdex/internal/usecase/search"
)

// Query model.
type (
	Query         = query.Query
	NodeQuery     = query.NodeQuery
	TextQuery     = query.TextQuery
	TagQuery      = query.TagQuery
	DateQuery     = query.DateQuery
	NameQuery     = query.NameQuery
	LocationQuery = query.LocationQuery
	SortOn        = query.SortOn
)

// Sort orders.
const (
	SortScore          = query.SortScore
	SortName           = query.SortName
	SortDateDescending = query.SortDateDescending
	SortDistance       = query.SortDistance
)

// Items, tags and locations.
type (
	Document      = document.Document
	ItemType      = item.Type
	PublishedType = item.PublishedType
	DetachedMode  = item.DetachedMode
	Tag           = tag.Tag
	Location      = geo.Location
	Distance      = geo.Distance
	Unit          = geo.Unit
)

// Item types.
const (
	Content         = item.Content
	Media           = item.Media
	Member          = item.Member
	DetachedContent = item.DetachedContent
	DetachedMedia   = item.DetachedMedia
	DetachedMember  = item.DetachedMember

	PublishedContent = item.PublishedContent
	PublishedMedia   = item.PublishedMedia
	PublishedMember  = item.PublishedMember

	IncludeDetached = item.IncludeDetached
	ExcludeDetached = item.ExcludeDetached
	OnlyDetached    = item.OnlyDetached
)

// Distance units.
const (
	Miles      = geo.Miles
	Kilometres = geo.Kilometres
)

// Results.
type (
	// ResultSet is a forward-only, lazily fetched sequence of matches.
	ResultSet = searchuc.ResultSet
	// Match is one ranked item as read from a ResultSet.
	Match = match.Match
	// SearchConfig holds engine-side limits.
	SearchConfig = domain.SearchConfig
)

// Errors returned by the client. Test with errors.Is.
var (
	ErrMalformedQuery              = domain.ErrMalformedQuery
	ErrUnexpectedItemType          = domain.ErrUnexpectedItemType
	ErrInvalidSort                 = domain.ErrInvalidSort
	ErrInvalidDocument             = domain.ErrInvalidDocument
	ErrDistanceSortWithoutLocation = domain.ErrDistanceSortWithoutLocation
)

// Tags parses tag tokens of the form "group:name" or "name".
func Tags(tokens ...string) []Tag { return tag.Make(tokens...) }

// Hit is a search result with its stored fields loaded.
type Hit struct {
	NodeID    int
	Name      string
	Score     float64
	Date      *time.Time
	Location  *Location
	Distance  *float64 // in the query's unit, location queries only
	Text      string
	Highlight string
	Tags      []Tag
}

// Page is one window of a search.
type Page struct {
	Total  int
	Hits   []Hit
	Facets map[string]map[string]int
}

// BatchResult reports the outcome for one node of Index or Remove.
type BatchResult struct {
	NodeID int
	Err    error
}

func toHit(m Match) Hit {
	h := Hit{
		NodeID:   m.ID(),
		Name:     m.Name(),
		Score:    m.Score(),
		Date:     m.Date(),
		Location: m.Location(),
		Distance: m.Distance(),
		Tags:     m.Tags(),
	}
	if t := m.Text(); t != nil {
		h.Text = *t
	}
	if hl := m.Highlight(); hl != nil {
		h.Highlight = *hl
	}
	return h
}
