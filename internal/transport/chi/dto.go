package chi

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/lookdex/internal/domain"
	"github.com/kailas-cloud/lookdex/internal/domain/geo"
	"github.com/kailas-cloud/lookdex/internal/domain/item"
	"github.com/kailas-cloud/lookdex/internal/domain/search/match"
	"github.com/kailas-cloud/lookdex/internal/domain/search/query"
	"github.com/kailas-cloud/lookdex/internal/domain/tag"
	browseuc "github.com/kailas-cloud/lookdex/internal/usecase/browse"
	"github.com/kailas-cloud/lookdex/internal/version"
)

// QueryRequest is the body of POST /api/v1/query.
type QueryRequest struct {
	Node     *NodeFilter     `json:"node,omitempty"`
	Text     *TextFilter     `json:"text,omitempty"`
	Tags     *TagFilter      `json:"tags,omitempty"`
	Date     *DateFilter     `json:"date,omitempty"`
	Name     *NameFilter     `json:"name,omitempty"`
	Location *LocationFilter `json:"location,omitempty"`
	RawQuery string          `json:"raw_query,omitempty"`
	Sort     string          `json:"sort,omitempty"`
	Skip     int             `json:"skip,omitempty"`
	Take     int             `json:"take,omitempty"`
}

// NodeFilter restricts matches by item kind and identity.
type NodeFilter struct {
	Types    []string `json:"types,omitempty"`
	Detached string   `json:"detached,omitempty"` // include, exclude, only
	Cultures []string `json:"cultures,omitempty"`
	Aliases  []string `json:"aliases,omitempty"`
	Keys     []string `json:"keys,omitempty"`
	NotIDs   []int    `json:"not_ids,omitempty"`
	NotKeys  []string `json:"not_keys,omitempty"`
}

// TextFilter is a full-text constraint.
type TextFilter struct {
	SearchText         string  `json:"search_text"`
	Fuzziness          float64 `json:"fuzziness,omitempty"`
	GetText            bool    `json:"get_text,omitempty"`
	HighlightFragments int     `json:"highlight_fragments,omitempty"`
	HighlightSeparator string  `json:"highlight_separator,omitempty"`
}

// TagFilter holds "group:name" tag tokens; a token ending in ":" names a whole group.
type TagFilter struct {
	All     []string `json:"all,omitempty"`
	Any     []string `json:"any,omitempty"`
	Not     []string `json:"not,omitempty"`
	Facets  []string `json:"facets,omitempty"`
	GetTags bool     `json:"get_tags,omitempty"`
}

// DateFilter bounds the item date, both ends inclusive.
type DateFilter struct {
	After  *time.Time `json:"after,omitempty"`
	Before *time.Time `json:"before,omitempty"`
}

// NameFilter matches the item name case-insensitively.
type NameFilter struct {
	Is         string `json:"is,omitempty"`
	StartsWith string `json:"starts_with,omitempty"`
	EndsWith   string `json:"ends_with,omitempty"`
	Contains   string `json:"contains,omitempty"`
}

// LocationFilter is a radius around Center. Without a center it matches any located item.
type LocationFilter struct {
	Center      *Point   `json:"center,omitempty"`
	MaxDistance *float64 `json:"max_distance,omitempty"`
	Unit        string   `json:"unit,omitempty"` // miles (default), km
}

// Point is a coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// toQuery converts the request. Unknown sort and unit names are rejected here; unknown item
// types flow through to compilation.
func (req *QueryRequest) toQuery() (*query.Query, error) {
	q := query.New()

	sort, err := query.ParseSort(req.Sort)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSort, err)
	}
	q.SortOn = sort
	q.RawQuery = req.RawQuery

	if n := req.Node; n != nil {
		mode, err := item.ParseDetachedMode(n.Detached)
		if err != nil {
			return nil, err
		}
		types := make([]item.PublishedType, len(n.Types))
		for i, t := range n.Types {
			types[i] = item.PublishedType(t)
		}
		q.NodeQuery = &query.NodeQuery{
			Types:    types,
			Detached: mode,
			Cultures: n.Cultures,
			Aliases:  n.Aliases,
			Keys:     n.Keys,
			NotIDs:   n.NotIDs,
			NotKeys:  n.NotKeys,
		}
	}
	if t := req.Text; t != nil {
		q.TextQuery = &query.TextQuery{
			SearchText:         t.SearchText,
			Fuzziness:          t.Fuzziness,
			GetText:            t.GetText,
			HighlightFragments: t.HighlightFragments,
			HighlightSeparator: t.HighlightSeparator,
		}
	}
	if t := req.Tags; t != nil {
		q.TagQuery = &query.TagQuery{
			All:       tag.Make(t.All...),
			Any:       tag.Make(t.Any...),
			Not:       tag.Make(t.Not...),
			GetFacets: t.Facets,
			GetTags:   t.GetTags,
		}
	}
	if d := req.Date; d != nil {
		q.DateQuery = &query.DateQuery{After: d.After, Before: d.Before}
	}
	if n := req.Name; n != nil {
		q.NameQuery = &query.NameQuery{Is: n.Is, StartsWith: n.StartsWith, EndsWith: n.EndsWith, Contains: n.Contains}
	}
	if l := req.Location; l != nil {
		lq := &query.LocationQuery{}
		if l.Center != nil {
			lq.Location = &geo.Location{Latitude: l.Center.Lat, Longitude: l.Center.Lng}
		}
		if l.MaxDistance != nil {
			unit, err := geo.ParseUnit(l.Unit)
			if err != nil {
				return nil, domain.NewMalformed(l.Unit, err)
			}
			d := geo.NewDistance(*l.MaxDistance, unit)
			lq.MaxDistance = &d
		}
		q.LocationQuery = lq
	}
	return q, nil
}

// QueryResponse is the body returned by POST /api/v1/query.
type QueryResponse struct {
	Total        int                       `json:"total"`
	Matches      []MatchResponse           `json:"matches"`
	Facets       map[string]map[string]int `json:"facets,omitempty"`
	CompileError string                    `json:"compile_error,omitempty"`
}

// MatchesResponse is a page of matches from a browse endpoint.
type MatchesResponse struct {
	Total   int             `json:"total"`
	Matches []MatchResponse `json:"matches"`
}

// ListResponse is a sorted list of names.
type ListResponse struct {
	Items []string `json:"items"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Build  version.Info      `json:"build"`
}

// MatchResponse is one search hit. Optional fields are omitted when the query did not ask for
// them or the item has no value.
type MatchResponse struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Score     float64    `json:"score"`
	Date      *time.Time `json:"date,omitempty"`
	Location  *Point     `json:"location,omitempty"`
	Distance  *float64   `json:"distance,omitempty"`
	Text      *string    `json:"text,omitempty"`
	Highlight *string    `json:"highlight,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
}

func matchToResponse(m match.Match) MatchResponse {
	out := MatchResponse{
		ID:        m.ID(),
		Name:      m.Name(),
		Score:     m.Score(),
		Date:      m.Date(),
		Distance:  m.Distance(),
		Text:      m.Text(),
		Highlight: m.Highlight(),
	}
	if l := m.Location(); l != nil {
		out.Location = &Point{Lat: l.Latitude, Lng: l.Longitude}
	}
	if tags := m.Tags(); len(tags) > 0 {
		out.Tags = make([]string, len(tags))
		for i, t := range tags {
			out.Tags[i] = t.String()
		}
	}
	return out
}

func matchesToResponse(matches []match.Match) []MatchResponse {
	out := make([]MatchResponse, len(matches))
	for i, m := range matches {
		out[i] = matchToResponse(m)
	}
	return out
}

func pageToResponse(p *browseuc.Page) MatchesResponse {
	return MatchesResponse{Total: p.Total, Matches: matchesToResponse(p.Matches)}
}
