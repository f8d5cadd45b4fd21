// Package browse answers the back-office questions about an index: which cultures and tags it
// holds, and pages of matches by type, tag or location.
package browse

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/lookdex/internal/domain"
	"github.com/kailas-cloud/lookdex/internal/domain/field"
	"github.com/kailas-cloud/lookdex/internal/domain/item"
	"github.com/kailas-cloud/lookdex/internal/domain/search/match"
	"github.com/kailas-cloud/lookdex/internal/domain/search/query"
	"github.com/kailas-cloud/lookdex/internal/domain/tag"
)

// Page is one chunk of matches and the total they were cut from.
type Page struct {
	Total   int
	Matches []match.Match
}

// Service handles browse queries.
type Service struct {
	search Searcher
}

// New creates a browse service.
func New(s Searcher) *Service {
	return &Service{search: s}
}

// ParseSort reads a browse sort name: Score, Name or Date, case-insensitive. Empty means Score.
func ParseSort(s string) (query.SortOn, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "score":
		return query.SortScore, nil
	case "name":
		return query.SortName, nil
	case "date":
		return query.SortDateDescending, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidSort, s)
}

// Cultures returns the distinct cultures of indexed items, sorted.
func (s *Service) Cultures(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	err := s.search.Scan(ctx, nil, []string{field.Culture}, func(_ string, fields map[string]string) error {
		if c := fields[field.Culture]; c != "" {
			seen[c] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan cultures: %w", err)
	}
	return sortedKeys(seen), nil
}

// TagGroups returns the distinct non-empty tag groups in the index, sorted.
func (s *Service) TagGroups(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	err := s.scanTags(ctx, func(t tag.Tag) {
		if t.Group != "" {
			seen[t.Group] = struct{}{}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scan tag groups: %w", err)
	}
	return sortedKeys(seen), nil
}

// TagNames returns the distinct tag names in group, sorted. An empty group lists ungrouped tags.
func (s *Service) TagNames(ctx context.Context, group string) ([]string, error) {
	seen := make(map[string]struct{})
	err := s.scanTags(ctx, func(t tag.Tag) {
		if t.Group == group && t.Name != "" {
			seen[t.Name] = struct{}{}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scan tag names: %w", err)
	}
	return sortedKeys(seen), nil
}

func (s *Service) scanTags(ctx context.Context, fn func(t tag.Tag)) error {
	return s.search.Scan(ctx, nil, []string{field.Tags}, func(_ string, fields map[string]string) error {
		for _, t := range tag.Split(fields[field.Tags]) {
			fn(t)
		}
		return nil
	})
}

// Matches returns a page of every item.
func (s *Service) Matches(ctx context.Context, sort query.SortOn, skip, take int) (*Page, error) {
	q := query.New()
	q.NodeQuery = &query.NodeQuery{}
	q.SortOn = sort
	return s.page(ctx, q, skip, take)
}

// NodeTypeMatches returns a page of items of type t, detached items included.
func (s *Service) NodeTypeMatches(
	ctx context.Context, t item.PublishedType, sort query.SortOn, skip, take int,
) (*Page, error) {
	q := query.New()
	q.NodeQuery = &query.NodeQuery{Types: []item.PublishedType{t}}
	q.SortOn = sort
	return s.page(ctx, q, skip, take)
}

// DetachedMatches returns a page of detached items of type t.
func (s *Service) DetachedMatches(
	ctx context.Context, t item.PublishedType, sort query.SortOn, skip, take int,
) (*Page, error) {
	q := query.New()
	q.NodeQuery = &query.NodeQuery{Types: []item.PublishedType{t}, Detached: item.OnlyDetached}
	q.SortOn = sort
	return s.page(ctx, q, skip, take)
}

// TagMatches returns a page of items tagged group:name. Without a name it matches any tag in
// group; without either it matches every item.
func (s *Service) TagMatches(
	ctx context.Context, group, name string, sort query.SortOn, skip, take int,
) (*Page, error) {
	q := query.New()
	q.TagQuery = &query.TagQuery{GetTags: true}
	if t := tag.New(group, name); !t.IsBlank() {
		q.TagQuery.All = []tag.Tag{t}
	}
	q.SortOn = sort
	return s.page(ctx, q, skip, take)
}

// LocationMatches returns a page of items that have a location.
func (s *Service) LocationMatches(ctx context.Context, sort query.SortOn, skip, take int) (*Page, error) {
	q := query.New()
	q.LocationQuery = &query.LocationQuery{}
	q.SortOn = sort
	return s.page(ctx, q, skip, take)
}

func (s *Service) page(ctx context.Context, q *query.Query, skip, take int) (*Page, error) {
	rs, err := s.search.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	if rs.CompileFailed() {
		return nil, fmt.Errorf("query matches: %w", rs.CompileErr())
	}
	matches, err := rs.Collect(ctx, max(skip, 0), take)
	if err != nil {
		return nil, fmt.Errorf("collect matches: %w", err)
	}
	return &Page{Total: rs.Total(), Matches: matches}, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
