package clause

import (
	"strings"
	"testing"
)

func TestNewBool_Groups(t *testing.T) {
	a := Term{Field: "a", Value: "1"}
	b := Term{Field: "b", Value: "2"}
	c := Term{Field: "c", Value: "3"}

	bq, err := NewBool([]Node{a}, []Node{b}, []Node{c})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bq.Must()) != 1 || len(bq.Should()) != 1 || len(bq.MustNot()) != 1 {
		t.Error("expected 1 clause in each group")
	}
	if bq.IsEmpty() {
		t.Error("IsEmpty() = true for non-empty bool")
	}
}

func TestNewBool_TooMany(t *testing.T) {
	nodes := make([]Node, MaxClausesPerGroup+1)
	for i := range nodes {
		nodes[i] = Term{Field: "k", Value: "v"}
	}
	tests := []struct {
		name                  string
		must, should, mustNot []Node
		wantErr               string
	}{
		{"must", nodes, nil, nil, "too many must "},
		{"should", nil, nodes, nil, "too many should"},
		{"must_not", nil, nil, nodes, "too many must_not"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBool(tt.must, tt.should, tt.mustNot)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q", err)
			}
		})
	}
}

func TestAnd_Flattens(t *testing.T) {
	a := Term{Field: "a", Value: "1"}
	b := Term{Field: "b", Value: "2"}
	c := Term{Field: "c", Value: "3"}

	n := And(a, And(b, c), All{}, nil)
	bq, ok := n.(Bool)
	if !ok {
		t.Fatalf("expected Bool, got %T", n)
	}
	if len(bq.Must()) != 3 {
		t.Errorf("Must() len = %d, want 3", len(bq.Must()))
	}
}

func TestAnd_EmptyIsAll(t *testing.T) {
	if _, ok := And().(All); !ok {
		t.Error("empty And should be All")
	}
	if _, ok := And(All{}, nil).(All); !ok {
		t.Error("And of All should be All")
	}
}

func TestAnd_SingleUnwrapped(t *testing.T) {
	a := Term{Field: "a", Value: "1"}
	if got := And(a); got != Node(a) {
		t.Errorf("And(a) = %v", got)
	}
}

func TestAnd_KeepsMixedBool(t *testing.T) {
	a := Term{Field: "a", Value: "1"}
	or := Or(Term{Field: "b", Value: "2"}, Term{Field: "c", Value: "3"})
	n := And(a, or)
	bq := n.(Bool)
	if len(bq.Must()) != 2 {
		t.Fatalf("Must() len = %d, want 2", len(bq.Must()))
	}
	if _, ok := bq.Must()[1].(Bool); !ok {
		t.Error("should group must stay nested")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		n    Node
		want string
	}{
		{"all", All{}, "*:*"},
		{"term", Term{Field: "f", Value: "v"}, `f:"v"`},
		{"text", Text{Field: "t", Text: "hello"}, "t:(hello)"},
		{"fuzzy", Text{Field: "t", Text: "hello", Fuzziness: 1}, "t:(hello)~1"},
		{"prefix", Prefix{Field: "n", Prefix: "ab"}, `n:"ab"*`},
		{"wildcard", Wildcard{Field: "n", Pattern: "*ab*"}, "n:*ab*"},
		{"range", Numeric{Field: "d", Range: Between(1, 2)}, "d:[1 TO 2]"},
		{"open range", Numeric{Field: "d", Range: Range{gt: floatPtr(1)}}, "d:{1 TO *]"},
		{"open above", Numeric{Field: "d", Range: Range{gte: floatPtr(1)}}, "d:[1 TO *]"},
		{"open below", Numeric{Field: "d", Range: Range{lt: floatPtr(2)}}, "d:[* TO 2}"},
		{"raw", Raw{Query: "x:y"}, "(x:y)"},
		{"and", And(Term{Field: "a", Value: "1"}, Term{Field: "b", Value: "2"}), `(+a:"1" +b:"2")`},
		{"or", Or(Term{Field: "a", Value: "1"}, Term{Field: "b", Value: "2"}), `(a:"1" b:"2")`},
		{"not", Not(Term{Field: "a", Value: "1"}), `(-a:"1")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWalk_VisitsAll(t *testing.T) {
	n := And(
		Term{Field: "a", Value: "1"},
		Or(Term{Field: "b", Value: "2"}, Term{Field: "c", Value: "3"}),
		Not(Term{Field: "d", Value: "4"}),
	)
	var terms int
	Walk(n, func(x Node) {
		if _, ok := x.(Term); ok {
			terms++
		}
	})
	if terms != 4 {
		t.Errorf("visited %d terms, want 4", terms)
	}
}
