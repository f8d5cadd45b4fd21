// Package tag holds the (group, name) tag pair and its index token form.
package tag

import (
	"fmt"
	"strings"
)

// Separator joins group and name in an index token.
const Separator = ":"

// Tag is a grouped label. Group may be empty (ungrouped tag).
// An empty Name with a non-empty Group addresses the whole group.
type Tag struct {
	Group string
	Name  string
}

// New creates a tag, trimming surrounding whitespace.
func New(group, name string) Tag {
	return Tag{Group: strings.TrimSpace(group), Name: strings.TrimSpace(name)}
}

// Parse reads the "group:name" token form. A token without a separator is an ungrouped name.
func Parse(token string) Tag {
	group, name, ok := strings.Cut(token, Separator)
	if !ok {
		return New("", token)
	}
	return New(group, name)
}

// Make parses each token; handy for literal tag lists.
func Make(tokens ...string) []Tag {
	tags := make([]Tag, 0, len(tokens))
	for _, t := range tokens {
		tags = append(tags, Parse(t))
	}
	return tags
}

// Split reads a space-joined tag field.
func Split(field string) []Tag {
	tokens := strings.Fields(field)
	if len(tokens) == 0 {
		return nil
	}
	return Make(tokens...)
}

// String returns the index token.
func (t Tag) String() string {
	if t.Group == "" {
		return t.Name
	}
	return t.Group + Separator + t.Name
}

// IsBlank reports whether the tag carries no usable value.
func (t Tag) IsBlank() bool {
	return strings.TrimSpace(t.Group) == "" && strings.TrimSpace(t.Name) == ""
}

// IsGroupOnly reports whether the tag names a group without a tag name.
func (t Tag) IsGroupOnly() bool {
	return strings.TrimSpace(t.Group) != "" && strings.TrimSpace(t.Name) == ""
}

// Validate checks that the tag can round-trip through a space-joined token field.
func (t Tag) Validate() error {
	if strings.ContainsAny(t.Group, " \t\n"+Separator) {
		return fmt.Errorf("tag group %q contains whitespace or %q", t.Group, Separator)
	}
	if strings.ContainsAny(t.Name, " \t\n") {
		return fmt.Errorf("tag name %q contains whitespace", t.Name)
	}
	return nil
}

// NonBlank drops blank tags, keeping order.
func NonBlank(tags []Tag) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if !t.IsBlank() {
			out = append(out, New(t.Group, t.Name))
		}
	}
	return out
}
