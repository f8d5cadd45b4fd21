// Package clause is the engine-neutral boolean query algebra. The compiler builds a tree of
// Nodes and each db driver renders it into its native query form.
package clause

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxClausesPerGroup bounds each Bool group, matching the classic Lucene clause limit.
const MaxClausesPerGroup = 1024

// Node is one element of a query tree.
type Node interface {
	fmt.Stringer
	node()
}

// Prepared is a driver-native query built from a clause tree.
type Prepared interface {
	Clause() Node
}

// All matches every document.
type All struct{}

// Term is an exact, unanalyzed match on a keyword field.
type Term struct {
	Field string
	Value string
}

// Text is an analyzed full-text match. Fuzziness is an edit distance, 0 is exact.
type Text struct {
	Field     string
	Text      string
	Fuzziness int
}

// Prefix matches keyword values starting with Prefix.
type Prefix struct {
	Field  string
	Prefix string
}

// Wildcard matches keyword values against a pattern where * is any run of characters.
type Wildcard struct {
	Field   string
	Pattern string
}

// Numeric restricts a numeric field to a range.
type Numeric struct {
	Field string
	Range Range
}

// Raw is a query string in the engine's own syntax.
type Raw struct {
	Query string
}

// Bool combines clauses: all Must, at least one Should (when any), no MustNot.
type Bool struct {
	must    []Node
	should  []Node
	mustNot []Node
}

// NewBool validates and creates a Bool.
func NewBool(must, should, mustNot []Node) (Bool, error) {
	if len(must) > MaxClausesPerGroup {
		return Bool{}, fmt.Errorf("too many must clauses (max %d)", MaxClausesPerGroup)
	}
	if len(should) > MaxClausesPerGroup {
		return Bool{}, fmt.Errorf("too many should clauses (max %d)", MaxClausesPerGroup)
	}
	if len(mustNot) > MaxClausesPerGroup {
		return Bool{}, fmt.Errorf("too many must_not clauses (max %d)", MaxClausesPerGroup)
	}
	return Bool{must: must, should: should, mustNot: mustNot}, nil
}

// Must returns the required clauses.
func (b Bool) Must() []Node { return b.must }

// Should returns the alternative clauses.
func (b Bool) Should() []Node { return b.should }

// MustNot returns the excluded clauses.
func (b Bool) MustNot() []Node { return b.mustNot }

// IsEmpty reports whether the Bool has no clauses (and so matches everything).
func (b Bool) IsEmpty() bool {
	return len(b.must) == 0 && len(b.should) == 0 && len(b.mustNot) == 0
}

// And conjoins nodes, flattening nested pure-Must Bools and dropping All.
// An empty conjunction is All.
func And(nodes ...Node) Node {
	var must []Node
	for _, n := range nodes {
		switch v := n.(type) {
		case nil, All:
			continue
		case Bool:
			if len(v.should) == 0 && len(v.mustNot) == 0 {
				must = append(must, v.must...)
				continue
			}
		}
		must = append(must, n)
	}
	switch len(must) {
	case 0:
		return All{}
	case 1:
		return must[0]
	}
	return Bool{must: must}
}

// Or disjoins nodes. A single node is returned as is.
func Or(nodes ...Node) Node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	return Bool{should: nodes}
}

// Not excludes each node from everything.
func Not(nodes ...Node) Node {
	return Bool{mustNot: nodes}
}

func (All) node()      {}
func (Term) node()     {}
func (Text) node()     {}
func (Prefix) node()   {}
func (Wildcard) node() {}
func (Numeric) node()  {}
func (Raw) node()      {}
func (Bool) node()     {}

// String renders Lucene-like syntax for logs and assertions.
func (All) String() string { return "*:*" }

func (t Term) String() string { return t.Field + ":" + strconv.Quote(t.Value) }

func (t Text) String() string {
	s := t.Field + ":(" + t.Text + ")"
	if t.Fuzziness > 0 {
		s += "~" + strconv.Itoa(t.Fuzziness)
	}
	return s
}

func (p Prefix) String() string { return p.Field + ":" + strconv.Quote(p.Prefix) + "*" }

func (w Wildcard) String() string { return w.Field + ":" + w.Pattern }

func (n Numeric) String() string {
	lo, loInc := n.Range.Min()
	hi, hiInc := n.Range.Max()
	var b strings.Builder
	b.WriteString(n.Field)
	b.WriteByte(':')
	if loInc || lo == nil {
		b.WriteByte('[')
	} else {
		b.WriteByte('{')
	}
	b.WriteString(bound(lo, "*"))
	b.WriteString(" TO ")
	b.WriteString(bound(hi, "*"))
	if hiInc || hi == nil {
		b.WriteByte(']')
	} else {
		b.WriteByte('}')
	}
	return b.String()
}

func (r Raw) String() string { return "(" + r.Query + ")" }

func (b Bool) String() string {
	parts := make([]string, 0, len(b.must)+len(b.should)+len(b.mustNot))
	for _, n := range b.must {
		parts = append(parts, "+"+n.String())
	}
	if len(b.should) > 0 {
		alts := make([]string, 0, len(b.should))
		for _, n := range b.should {
			alts = append(alts, n.String())
		}
		s := strings.Join(alts, " ")
		if len(b.must) > 0 || len(b.mustNot) > 0 {
			s = "+(" + s + ")"
		}
		parts = append(parts, s)
	}
	for _, n := range b.mustNot {
		parts = append(parts, "-"+n.String())
	}
	if len(parts) == 1 && len(b.must) == 1 {
		return b.must[0].String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func bound(v *float64, open string) string {
	if v == nil {
		return open
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Walk visits n and every descendant depth-first.
func Walk(n Node, fn func(Node)) {
	fn(n)
	if b, ok := n.(Bool); ok {
		for _, group := range [][]Node{b.must, b.should, b.mustNot} {
			for _, c := range group {
				Walk(c, fn)
			}
		}
	}
}
