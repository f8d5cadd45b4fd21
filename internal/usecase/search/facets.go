package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/lookdex/internal/domain/field"
	"github.com/kailas-cloud/lookdex/internal/domain/search/query"
	"github.com/kailas-cloud/lookdex/internal/domain/tag"
	"github.com/kailas-cloud/lookdex/internal/metrics"
)

// Facets counts, per requested group, how many matches of q carry each tag name. Candidate
// names come from the matches of q with its tag constraints removed, so names the constraints
// exclude are reported with 0. The empty group counts ungrouped tags.
func (s *Service) Facets(ctx context.Context, q *query.Query, groups []string) (map[string]map[string]int, error) {
	if q == nil {
		q = query.New()
	}
	compiled, err := q.Compile(s.compiler)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}
	return s.facets(ctx, q, compiled, groups)
}

func (s *Service) facets(
	ctx context.Context, q *query.Query, compiled *query.Compiled, groups []string,
) (map[string]map[string]int, error) {
	groups = facetGroups(groups)
	out := make(map[string]map[string]int, len(groups))
	for _, g := range groups {
		out[g] = make(map[string]int)
	}
	if len(groups) == 0 {
		return out, nil
	}

	if q.TagQuery.HasConstraints() {
		base, err := q.WithoutTagConstraints().Compile(s.compiler)
		if err != nil {
			return nil, fmt.Errorf("compile facet candidates: %w", err)
		}
		err = s.scanTags(ctx, base, func(t tag.Tag) {
			if names, ok := out[t.Group]; ok {
				if _, seen := names[t.Name]; !seen {
					names[t.Name] = 0
				}
			}
		})
		if err != nil {
			return nil, fmt.Errorf("scan facet candidates: %w", err)
		}
	}

	err := s.scanTags(ctx, compiled, func(t tag.Tag) {
		if names, ok := out[t.Group]; ok {
			names[t.Name]++
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scan facet counts: %w", err)
	}
	return out, nil
}

// facetGroups trims and dedupes groups. A blank group stays as "".
func facetGroups(groups []string) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = strings.TrimSpace(g)
	}
	return distinct(out)
}

// scanTags visits the distinct named tags of every match of c.
func (s *Service) scanTags(ctx context.Context, c *query.Compiled, fn func(t tag.Tag)) error {
	metrics.FacetScansTotal.Inc()
	return s.exec.Scan(ctx, c, []string{field.Tags}, func(_ string, fields map[string]string) error {
		seen := make(map[tag.Tag]struct{})
		for _, t := range tag.Split(fields[field.Tags]) {
			if t.Name == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			fn(t)
		}
		return nil
	})
}
