package bleve

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/lookdex/internal/domain"
	"github.com/kailas-cloud/lookdex/internal/domain/search/clause"
)

// prepared is a clause tree rendered into a bleve query.
type prepared struct {
	node  clause.Node
	query query.Query
}

func (p *prepared) Clause() clause.Node { return p.node }

// Prepare renders a clause tree into a bleve query. Raw clauses are parsed with the
// bleve query string syntax; a parse failure is a malformed query.
func (s *Store) Prepare(n clause.Node) (clause.Prepared, error) {
	q, err := render(n)
	if err != nil {
		return nil, err
	}
	return &prepared{node: n, query: q}, nil
}

func render(n clause.Node) (query.Query, error) {
	switch v := n.(type) {
	case nil, clause.All:
		return bleve.NewMatchAllQuery(), nil
	case clause.Term:
		q := bleve.NewTermQuery(v.Value)
		q.SetField(v.Field)
		return q, nil
	case clause.Text:
		q := bleve.NewMatchQuery(v.Text)
		q.SetField(v.Field)
		q.SetFuzziness(v.Fuzziness)
		return q, nil
	case clause.Prefix:
		q := bleve.NewPrefixQuery(v.Prefix)
		q.SetField(v.Field)
		return q, nil
	case clause.Wildcard:
		q := bleve.NewRegexpQuery(wildcardRegexp(v.Pattern))
		q.SetField(v.Field)
		return q, nil
	case clause.Numeric:
		return renderNumeric(v), nil
	case clause.Raw:
		q, err := bleve.NewQueryStringQuery(v.Query).Parse()
		if err != nil {
			return nil, domain.NewMalformed(v.Query, err)
		}
		return q, nil
	case clause.Bool:
		return renderBool(v)
	}
	return nil, fmt.Errorf("unsupported clause %T", n)
}

func renderNumeric(n clause.Numeric) query.Query {
	lo, loIncl := n.Range.Min()
	hi, hiIncl := n.Range.Max()
	q := bleve.NewNumericRangeInclusiveQuery(lo, hi, &loIncl, &hiIncl)
	q.SetField(n.Field)
	return q
}

func renderBool(b clause.Bool) (query.Query, error) {
	must, err := renderAll(b.Must())
	if err != nil {
		return nil, err
	}
	should, err := renderAll(b.Should())
	if err != nil {
		return nil, err
	}
	mustNot, err := renderAll(b.MustNot())
	if err != nil {
		return nil, err
	}

	if len(should) > 0 {
		d := bleve.NewDisjunctionQuery(should...)
		d.SetMin(1)
		must = append(must, d)
	}
	if len(must) == 0 {
		must = append(must, bleve.NewMatchAllQuery())
	}
	var positive query.Query = bleve.NewConjunctionQuery(must...)
	if len(must) == 1 {
		positive = must[0]
	}
	if len(mustNot) == 0 {
		return positive, nil
	}
	return query.NewBooleanQuery([]query.Query{positive}, nil, mustNot), nil
}

func renderAll(nodes []clause.Node) ([]query.Query, error) {
	out := make([]query.Query, 0, len(nodes))
	for _, n := range nodes {
		q, err := render(n)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// wildcardRegexp turns a * wildcard pattern into an equivalent regexp, quoting everything else.
func wildcardRegexp(pattern string) string {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(parts, ".*")
}
