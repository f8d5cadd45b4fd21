package query

import (
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/lookdex/internal/domain/geo"
	"github.com/kailas-cloud/lookdex/internal/domain/item"
	"github.com/kailas-cloud/lookdex/internal/domain/search/clause"
	"github.com/kailas-cloud/lookdex/internal/domain/tag"
)

type countingCompiler struct {
	calls int
	err   error
}

func (c *countingCompiler) Compile(q *Query, fp Fingerprint) (*Compiled, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return NewCompiled(fp, clause.All{}, nil, nil, q.SortOn), nil
}

func TestCompile_NewQueryHasNoCompiledForm(t *testing.T) {
	q := New()
	if q.Compiled() != nil {
		t.Fatal("new query should have no compiled form")
	}
}

func TestCompile_SecondCallReturnsSamePointer(t *testing.T) {
	q := New()
	q.TextQuery = &TextQuery{SearchText: "umbraco"}
	c := &countingCompiler{}

	first, err := q.Compile(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := q.Compile(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Error("expected the memoized pointer")
	}
	if c.calls != 1 {
		t.Errorf("compiler called %d times, want 1", c.calls)
	}
	if q.Compiled() != first {
		t.Error("Compiled() should return the memo")
	}
}

func TestCompile_EqualReplacementKeepsMemo(t *testing.T) {
	q := New()
	q.NameQuery = &NameQuery{StartsWith: "a"}
	c := &countingCompiler{}
	first, _ := q.Compile(c)

	q.NameQuery = &NameQuery{StartsWith: "a"}
	second, _ := q.Compile(c)
	if first != second || c.calls != 1 {
		t.Error("value-equal replacement should keep the memo")
	}
}

func TestCompile_MutationInvalidates(t *testing.T) {
	after := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	london := geo.Location{Latitude: 51.5, Longitude: -0.12}
	ten := geo.NewDistance(10, geo.Miles)

	mutations := map[string]func(q *Query){
		"node":       func(q *Query) { q.NodeQuery = &NodeQuery{Types: []item.PublishedType{item.PublishedContent}} },
		"node alias": func(q *Query) { q.NodeQuery.Aliases = []string{"blogPost"} },
		"text":       func(q *Query) { q.TextQuery = &TextQuery{SearchText: "x"} },
		"tags":       func(q *Query) { q.TagQuery = &TagQuery{All: tag.Make("colour:red")} },
		"tag append": func(q *Query) { q.TagQuery.Any = append(q.TagQuery.Any, tag.New("", "new")) },
		"date":       func(q *Query) { q.DateQuery = &DateQuery{After: &after} },
		"name":       func(q *Query) { q.NameQuery = &NameQuery{Is: "home"} },
		"location":   func(q *Query) { q.LocationQuery = &LocationQuery{Location: &london, MaxDistance: &ten} },
		"raw":        func(q *Query) { q.RawQuery = "Look_Name:x" },
		"sort":       func(q *Query) { q.SortOn = SortName },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			q := New()
			q.NodeQuery = &NodeQuery{}
			q.TagQuery = &TagQuery{}
			c := &countingCompiler{}
			before, _ := q.Compile(c)

			mutate(q)

			if q.Compiled() != nil {
				t.Error("stale memo should not be returned")
			}
			after, err := q.Compile(c)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if after == before {
				t.Error("expected a fresh compiled form")
			}
			if c.calls != 2 {
				t.Errorf("compiler called %d times, want 2", c.calls)
			}
		})
	}
}

func TestCompile_ErrorLeavesNoMemo(t *testing.T) {
	q := New()
	q.RawQuery = "("
	wantErr := errors.New("boom")
	if _, err := q.Compile(&countingCompiler{err: wantErr}); !errors.Is(err, wantErr) {
		t.Fatalf("expected compiler error, got %v", err)
	}
	if q.Compiled() != nil {
		t.Error("failed compile should not memoize")
	}
}

func TestFingerprint_NilAndEmptyDiffer(t *testing.T) {
	a := New()
	a.NodeQuery = &NodeQuery{Aliases: nil}
	b := New()
	b.NodeQuery = &NodeQuery{Aliases: []string{}}
	if a.Fingerprint().Equal(b.Fingerprint()) {
		t.Error("nil and empty slices must encode differently")
	}
}

func TestFingerprint_OrderSensitive(t *testing.T) {
	a := New()
	a.TagQuery = &TagQuery{All: tag.Make("a", "b")}
	b := New()
	b.TagQuery = &TagQuery{All: tag.Make("b", "a")}
	if a.Fingerprint().Equal(b.Fingerprint()) {
		t.Error("tag order must be significant")
	}
}

func TestFingerprint_NoFieldBleed(t *testing.T) {
	a := New()
	a.NameQuery = &NameQuery{Is: "ab", StartsWith: "c"}
	b := New()
	b.NameQuery = &NameQuery{Is: "a", StartsWith: "bc"}
	if a.Fingerprint().Equal(b.Fingerprint()) {
		t.Error("adjacent strings must not collide")
	}
}

func TestFingerprint_EqualValuesEqualSum(t *testing.T) {
	build := func() *Query {
		q := New()
		q.TextQuery = &TextQuery{SearchText: "hello", Fuzziness: 0.7}
		q.TagQuery = &TagQuery{Any: tag.Make("colour:red", "colour:blue")}
		return q
	}
	a, b := build(), build()
	if !a.Fingerprint().Equal(b.Fingerprint()) {
		t.Fatal("equal values should give equal fingerprints")
	}
	if a.Fingerprint().Sum() != b.Fingerprint().Sum() {
		t.Error("equal fingerprints should hash equally")
	}
}

func TestWithoutTagConstraints(t *testing.T) {
	q := New()
	q.TextQuery = &TextQuery{SearchText: "x"}
	q.TagQuery = &TagQuery{All: tag.Make("a:b"), Not: tag.Make("c"), GetFacets: []string{"a"}}

	stripped := q.WithoutTagConstraints()
	if stripped.TagQuery.HasConstraints() {
		t.Error("tag constraints should be cleared")
	}
	if len(stripped.TagQuery.GetFacets) != 1 || stripped.TextQuery != q.TextQuery {
		t.Error("other slots should be kept")
	}
	if !q.TagQuery.HasConstraints() {
		t.Error("original must not change")
	}
}

func TestParseSort(t *testing.T) {
	tests := map[string]SortOn{
		"":         SortScore,
		"Score":    SortScore,
		"Name":     SortName,
		"Date":     SortDateDescending,
		"distance": SortDistance,
	}
	for in, want := range tests {
		got, err := ParseSort(in)
		if err != nil || got != want {
			t.Errorf("ParseSort(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseSort("random"); err == nil {
		t.Error("expected error for unknown sort")
	}
}

func TestSortOn_IsValid(t *testing.T) {
	for _, s := range []SortOn{"", SortScore, SortName, SortDateDescending, SortDistance} {
		if !s.IsValid() {
			t.Errorf("%q.IsValid() = false", s)
		}
	}
	if SortOn("SCORE").IsValid() {
		t.Error("sort values are case-sensitive")
	}
}
