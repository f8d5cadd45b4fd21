package redis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/lookdex/internal/domain"
	"github.com/kailas-cloud/lookdex/internal/domain/field"
	"github.com/kailas-cloud/lookdex/internal/domain/search/clause"
)

// prepared is a clause tree rendered into FT.SEARCH query syntax.
type prepared struct {
	node  clause.Node
	query string
}

func (p *prepared) Clause() clause.Node { return p.node }

func (p *prepared) String() string { return p.query }

// Prepare renders a clause tree into an FT.SEARCH query string. Raw clauses must have
// balanced brackets and quotes.
func (s *Store) Prepare(n clause.Node) (clause.Prepared, error) {
	q, err := render(n)
	if err != nil {
		return nil, err
	}
	return &prepared{node: n, query: q}, nil
}

func render(n clause.Node) (string, error) {
	switch v := n.(type) {
	case nil, clause.All:
		return "*", nil
	case clause.Term:
		// group markers are dynamic fields the FT schema cannot declare; any token of the group matches
		if group, ok := field.GroupFromMarker(v.Field); ok {
			return fmt.Sprintf("@%s:{%s*}", field.Tags, tagEscaper.Replace(group+":")), nil
		}
		return fmt.Sprintf("@%s:{%s}", v.Field, tagEscaper.Replace(v.Value)), nil
	case clause.Text:
		return renderText(v), nil
	case clause.Prefix:
		return fmt.Sprintf("@%s:{%s*}", v.Field, tagEscaper.Replace(v.Prefix)), nil
	case clause.Wildcard:
		return fmt.Sprintf("@%s:{%s}", v.Field, escapeWildcard(v.Pattern)), nil
	case clause.Numeric:
		return buildNumericFilter(v.Field, v.Range), nil
	case clause.Raw:
		if err := validateRaw(v.Query); err != nil {
			return "", domain.NewMalformed(v.Query, err)
		}
		return "(" + v.Query + ")", nil
	case clause.Bool:
		return renderBool(v)
	}
	return "", fmt.Errorf("unsupported clause %T", n)
}

func renderText(t clause.Text) string {
	words := strings.Fields(t.Text)
	fuzz := strings.Repeat("%", min(max(t.Fuzziness, 0), 3))
	for i, w := range words {
		words[i] = fuzz + escapeQuery(w) + fuzz
	}
	op := " "
	if len(words) > 1 {
		op = " | "
	}
	return fmt.Sprintf("@%s:(%s)", t.Field, strings.Join(words, op))
}

func renderBool(b clause.Bool) (string, error) {
	var parts []string

	for _, n := range b.Must() {
		p, err := render(n)
		if err != nil {
			return "", err
		}
		parts = append(parts, p)
	}

	if len(b.Should()) > 0 {
		alts := make([]string, 0, len(b.Should()))
		for _, n := range b.Should() {
			p, err := render(n)
			if err != nil {
				return "", err
			}
			alts = append(alts, p)
		}
		parts = append(parts, "("+strings.Join(alts, " | ")+")")
	}

	for _, n := range b.MustNot() {
		p, err := render(n)
		if err != nil {
			return "", err
		}
		parts = append(parts, "-"+p)
	}

	switch len(parts) {
	case 0:
		return "*", nil
	case 1:
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " ") + ")", nil
}

func buildNumericFilter(key string, r clause.Range) string {
	minBound := "-inf"
	maxBound := "+inf"

	if lo, incl := r.Min(); lo != nil {
		minBound = formatNumber(*lo)
		if !incl {
			minBound = "(" + minBound
		}
	}
	if hi, incl := r.Max(); hi != nil {
		maxBound = formatNumber(*hi)
		if !incl {
			maxBound = "(" + maxBound
		}
	}

	return fmt.Sprintf("@%s:[%s %s]", key, minBound, maxBound)
}

func formatNumber(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// escapeWildcard escapes a * wildcard pattern for a TAG query, keeping the wildcards.
func escapeWildcard(pattern string) string {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = tagEscaper.Replace(p)
	}
	return strings.Join(parts, "*")
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`,`, `\,`,
	`.`, `\.`,
)
