package search

import (
	"fmt"
	"math"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/kailas-cloud/lookdex/internal/domain"
	"github.com/kailas-cloud/lookdex/internal/domain/culture"
	"github.com/kailas-cloud/lookdex/internal/domain/field"
	"github.com/kailas-cloud/lookdex/internal/domain/geo"
	"github.com/kailas-cloud/lookdex/internal/domain/item"
	"github.com/kailas-cloud/lookdex/internal/domain/search/clause"
	"github.com/kailas-cloud/lookdex/internal/domain/search/query"
	"github.com/kailas-cloud/lookdex/internal/domain/tag"
)

// Compiler turns a Query into an engine-neutral clause tree and renders it through the driver.
// It implements query.Compiler.
type Compiler struct {
	prep             Preparer
	maxDistanceMiles float64
}

// NewCompiler creates a compiler rendering through p.
func NewCompiler(p Preparer, cfg domain.SearchConfig) *Compiler {
	return &Compiler{prep: p, maxDistanceMiles: cfg.WithDefaults().MaxDistanceMiles}
}

// Compile builds the plan for q. fp is stamped on the result.
func (c *Compiler) Compile(q *query.Query, fp query.Fingerprint) (*query.Compiled, error) {
	plan, err := c.Build(q)
	if err != nil {
		return nil, err
	}
	prepared, err := c.prep.Prepare(plan.Clause)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	return query.NewCompiled(fp, plan.Clause, prepared, plan.Geo, plan.Sort), nil
}

// Plan is the engine-neutral result of Build.
type Plan struct {
	Clause clause.Node
	Geo    *geo.Filter
	Sort   query.SortOn
}

// Build assembles the clause tree of q. Every present slot adds one AND-ed group.
func (c *Compiler) Build(q *query.Query) (*Plan, error) {
	if !q.SortOn.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSort, string(q.SortOn))
	}

	b := &builder{}
	b.text(q.TextQuery)
	if err := b.tags(q.TagQuery); err != nil {
		return nil, err
	}
	if err := b.nodes(q.NodeQuery); err != nil {
		return nil, err
	}
	b.date(q.DateQuery)
	b.name(q.NameQuery)
	if raw := strings.TrimSpace(q.RawQuery); raw != "" {
		b.must = append(b.must, clause.Raw{Query: raw})
	}

	filter, err := c.location(q.LocationQuery)
	if err != nil {
		return nil, err
	}
	switch {
	case filter != nil:
		b.must = append(b.must, boxClause(filter.Box))
	case q.LocationQuery != nil:
		b.must = append(b.must, located())
	}

	node, err := b.build()
	if err != nil {
		return nil, domain.NewMalformed(q.RawQuery, err)
	}

	sort := q.SortOn.Normalize()
	if sort == query.SortDistance && filter == nil {
		sort = query.SortScore
	}
	return &Plan{Clause: node, Geo: filter, Sort: sort}, nil
}

type builder struct {
	must    []clause.Node
	mustNot []clause.Node
}

func (b *builder) build() (clause.Node, error) {
	if len(b.mustNot) == 0 {
		if len(b.must) > clause.MaxClausesPerGroup {
			return nil, fmt.Errorf("too many clauses (max %d)", clause.MaxClausesPerGroup)
		}
		return clause.And(b.must...), nil
	}
	root, err := clause.NewBool(b.must, nil, b.mustNot)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return root, nil
}

func (b *builder) text(t *query.TextQuery) {
	if t == nil {
		return
	}
	text := strings.TrimSpace(t.SearchText)
	if text == "" {
		return
	}
	b.must = append(b.must, clause.Text{Field: field.Text, Text: text, Fuzziness: editDistance(t.Fuzziness)})
}

// editDistance maps a similarity in (0,1) to the edit distance a fuzzy match allows.
func editDistance(similarity float64) int {
	switch {
	case similarity <= 0 || similarity >= 1:
		return 0
	case similarity >= 0.5:
		return 1
	default:
		return 2
	}
}

func (b *builder) tags(t *query.TagQuery) error {
	if t == nil {
		return nil
	}
	all, err := tagNodes(t.All)
	if err != nil {
		return err
	}
	anyOf, err := tagNodes(t.Any)
	if err != nil {
		return err
	}
	not, err := tagNodes(t.Not)
	if err != nil {
		return err
	}

	b.must = append(b.must, all...)
	if len(anyOf) > 0 {
		or, err := disjunction(anyOf)
		if err != nil {
			return domain.NewMalformed("", err)
		}
		b.must = append(b.must, or)
	}
	b.mustNot = append(b.mustNot, not...)
	return nil
}

// tagNodes drops blank tags and turns each remaining tag into a term. A group-only tag
// becomes a lookup on the group's marker field.
func tagNodes(tags []tag.Tag) ([]clause.Node, error) {
	tags = tag.NonBlank(tags)
	nodes := make([]clause.Node, 0, len(tags))
	for _, t := range tags {
		if err := t.Validate(); err != nil {
			return nil, domain.NewMalformed(t.String(), err)
		}
		nodes = append(nodes, tagNode(t))
	}
	return nodes, nil
}

func tagNode(t tag.Tag) clause.Node {
	if t.IsGroupOnly() {
		return clause.Term{Field: field.TagGroup(t.Group), Value: field.MarkerValue}
	}
	return clause.Term{Field: field.Tags, Value: t.String()}
}

func (b *builder) nodes(n *query.NodeQuery) error {
	if n == nil {
		return nil
	}

	types, err := itemTypes(n.Types, n.Detached)
	if err != nil {
		return err
	}
	if len(types) < len(item.AllTypes) {
		values := make([]string, len(types))
		for i, t := range types {
			values[i] = string(t)
		}
		b.must = append(b.must, clause.Or(terms(field.ItemType, values)...))
	}

	cultures := make([]string, 0, len(n.Cultures))
	for _, name := range nonBlank(n.Cultures) {
		canonical, err := culture.Canonical(name)
		if err != nil {
			return err
		}
		cultures = append(cultures, canonical)
	}
	for _, group := range []struct {
		field  string
		values []string
	}{
		{field.Culture, distinct(cultures)},
		{field.TypeAlias, distinct(nonBlank(n.Aliases))},
		{field.Key, distinct(nonBlank(n.Keys))},
	} {
		if len(group.values) == 0 {
			continue
		}
		or, err := disjunction(terms(group.field, group.values))
		if err != nil {
			return domain.NewMalformed(group.field, err)
		}
		b.must = append(b.must, or)
	}

	ids := roaring.New()
	for _, id := range n.NotIDs {
		if id <= 0 || int64(id) > math.MaxUint32 {
			return domain.NewMalformed(fmt.Sprint(id), fmt.Errorf("node id out of range"))
		}
		ids.Add(uint32(id))
	}
	it := ids.Iterator()
	for it.HasNext() {
		id := float64(it.Next())
		b.mustNot = append(b.mustNot, clause.Numeric{Field: field.NodeID, Range: clause.Between(id, id)})
	}
	b.mustNot = append(b.mustNot, terms(field.Key, distinct(nonBlank(n.NotKeys)))...)
	return nil
}

// itemTypes expands published types by detached mode. No types means every published type.
func itemTypes(published []item.PublishedType, mode item.DetachedMode) ([]item.Type, error) {
	if len(published) == 0 {
		published = item.AllPublishedTypes
	}
	seen := make(map[item.Type]bool)
	var out []item.Type
	for _, p := range published {
		types, err := p.ItemTypes(mode)
		if err != nil {
			return nil, err
		}
		for _, t := range types {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (b *builder) date(d *query.DateQuery) {
	if d == nil || (d.After == nil && d.Before == nil) {
		return
	}
	var lo, hi *float64
	if d.After != nil {
		v := float64(field.Ticks(*d.After))
		lo = &v
	}
	if d.Before != nil {
		v := float64(field.Ticks(*d.Before))
		hi = &v
	}
	r, _ := clause.NewRange(nil, lo, nil, hi) // at least one bound is set
	b.must = append(b.must, clause.Numeric{Field: field.SortDate, Range: r})
}

func (b *builder) name(n *query.NameQuery) {
	if n == nil {
		return
	}
	if v := lowerTrim(n.Is); v != "" {
		b.must = append(b.must, clause.Term{Field: field.SortName, Value: v})
	}
	if v := lowerTrim(n.StartsWith); v != "" {
		b.must = append(b.must, clause.Prefix{Field: field.SortName, Prefix: v})
	}
	if v := lowerTrim(n.EndsWith); v != "" {
		b.must = append(b.must, clause.Wildcard{Field: field.SortName, Pattern: "*" + v})
	}
	if v := lowerTrim(n.Contains); v != "" {
		b.must = append(b.must, clause.Wildcard{Field: field.SortName, Pattern: "*" + v + "*"})
	}
}

// location plans the radius filter. A query without a center point has no radius.
func (c *Compiler) location(l *query.LocationQuery) (*geo.Filter, error) {
	if l == nil || l.Location == nil {
		return nil, nil
	}
	if !geo.ValidateCoordinates(l.Location.Latitude, l.Location.Longitude) {
		return nil, domain.NewMalformed(l.Location.String(), fmt.Errorf("coordinates out of range"))
	}
	radius := c.maxDistanceMiles
	unit := geo.Miles
	if l.MaxDistance != nil {
		if l.MaxDistance.Value <= 0 {
			return nil, domain.NewMalformed(fmt.Sprint(l.MaxDistance.Value), fmt.Errorf("max distance must be positive"))
		}
		radius = math.Min(l.MaxDistance.Miles(), radius)
		if l.MaxDistance.Unit != "" {
			unit = l.MaxDistance.Unit
		}
	}
	return geo.NewFilter(*l.Location, radius, unit), nil
}

// located matches every item with a location.
func located() clause.Node {
	return clause.Numeric{Field: field.Latitude, Range: clause.Between(-90, 90)}
}

// boxClause restricts the latitude/longitude fields to the candidate box.
func boxClause(box geo.Box) clause.Node {
	spans := make([]clause.Node, len(box.Lng))
	for i, s := range box.Lng {
		spans[i] = clause.Numeric{Field: field.Longitude, Range: clause.Between(s.Min, s.Max)}
	}
	return clause.And(
		clause.Numeric{Field: field.Latitude, Range: clause.Between(box.Lat.Min, box.Lat.Max)},
		clause.Or(spans...),
	)
}

func disjunction(nodes []clause.Node) (clause.Node, error) {
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	b, err := clause.NewBool(nil, nodes, nil)
	if err != nil {
		return nil, fmt.Errorf("build disjunction: %w", err)
	}
	return b, nil
}

func terms(name string, values []string) []clause.Node {
	out := make([]clause.Node, len(values))
	for i, v := range values {
		out[i] = clause.Term{Field: name, Value: v}
	}
	return out
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
