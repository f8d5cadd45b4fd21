package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/unicode/norm"
)

// Highlight markup and fragment defaults.
const (
	HighlightOpen    = "<strong>"
	HighlightClose   = "</strong>"
	DefaultSeparator = "..."
	// FragmentSize is the target fragment length in bytes.
	FragmentSize = 100
)

// TextHighlighter picks the best-scoring fragments of a text and marks query terms in them.
type TextHighlighter struct {
	terms     map[string]struct{}
	fragments int
	separator string
}

// NewTextHighlighter creates a highlighter for searchText returning at most fragments
// fragments. It returns nil when there is nothing to highlight.
func NewTextHighlighter(searchText string, fragments int, separator string) *TextHighlighter {
	if fragments <= 0 || strings.TrimSpace(searchText) == "" {
		return nil
	}
	terms := make(map[string]struct{})
	for _, tok := range tokenize(searchText) {
		if isWord(tok.text) {
			terms[normalize(tok.text)] = struct{}{}
		}
	}
	if len(terms) == 0 {
		return nil
	}
	if separator == "" {
		separator = DefaultSeparator
	}
	return &TextHighlighter{terms: terms, fragments: fragments, separator: separator}
}

type token struct {
	text  string
	start int
	hit   bool
}

type fragment struct {
	tokens   []token
	position int
	distinct int
	hits     int
}

// Highlight returns up to the configured number of fragments, in text order, joined by the
// separator. A text without query terms gives "".
func (h *TextHighlighter) Highlight(text string) string {
	if text == "" {
		return ""
	}
	tokens := tokenize(text)
	for i := range tokens {
		if isWord(tokens[i].text) {
			_, tokens[i].hit = h.terms[normalize(tokens[i].text)]
		}
	}

	frags := split(tokens)
	scored := frags[:0:0]
	for _, f := range frags {
		if f.distinct > 0 {
			scored = append(scored, f)
		}
	}
	if len(scored) == 0 {
		return ""
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].distinct != scored[j].distinct {
			return scored[i].distinct > scored[j].distinct
		}
		return scored[i].hits > scored[j].hits
	})
	if len(scored) > h.fragments {
		scored = scored[:h.fragments]
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].position < scored[j].position })

	parts := make([]string, len(scored))
	for i, f := range scored {
		parts[i] = f.render()
	}
	return strings.Join(parts, h.separator)
}

// split cuts tokens into fragments of about FragmentSize bytes, breaking only between tokens,
// and scores each one by its distinct and total term hits.
func split(tokens []token) []fragment {
	var (
		out  []fragment
		cur  fragment
		seen = make(map[string]struct{})
	)
	flush := func() {
		if len(cur.tokens) > 0 {
			out = append(out, cur)
		}
		cur = fragment{}
		seen = make(map[string]struct{})
	}
	for _, t := range tokens {
		if len(cur.tokens) > 0 && t.start-cur.position >= FragmentSize {
			flush()
		}
		if len(cur.tokens) == 0 {
			cur.position = t.start
		}
		cur.tokens = append(cur.tokens, t)
		if t.hit {
			cur.hits++
			key := normalize(t.text)
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				cur.distinct++
			}
		}
	}
	flush()
	return out
}

func (f fragment) render() string {
	var b strings.Builder
	for _, t := range f.tokens {
		if t.hit {
			b.WriteString(HighlightOpen)
			b.WriteString(t.text)
			b.WriteString(HighlightClose)
			continue
		}
		b.WriteString(t.text)
	}
	return strings.TrimSpace(b.String())
}

// tokenize splits s into UAX #29 word segments. Segments cover s contiguously, whitespace
// and punctuation included.
func tokenize(s string) []token {
	var out []token
	offset := 0
	segs := words.FromString(s)
	for segs.Next() {
		v := segs.Value()
		out = append(out, token{text: v, start: offset})
		offset += len(v)
	}
	return out
}

// normalize applies NFKC and lowercases.
func normalize(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
