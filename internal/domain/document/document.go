// Package document is the indexed form of an item: the stored and indexed fields search reads.
package document

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/lookdex/internal/domain/culture"
	"github.com/kailas-cloud/lookdex/internal/domain/field"
	"github.com/kailas-cloud/lookdex/internal/domain/geo"
	"github.com/kailas-cloud/lookdex/internal/domain/item"
	"github.com/kailas-cloud/lookdex/internal/domain/tag"
)

// MaxTextSize is the maximum stored text size in bytes.
const MaxTextSize = 1 << 20

// Document is one indexed item.
type Document struct {
	NodeID   int
	Key      string
	Type     item.Type
	Culture  string
	Alias    string
	HostID   int // host node for detached items
	Name     string
	Date     *time.Time
	Location *geo.Location
	Tags     []tag.Tag
	Text     string
}

// ID returns the engine document id.
func (d *Document) ID() string { return strconv.Itoa(d.NodeID) }

// Validate checks that the document can be indexed and read back.
func (d *Document) Validate() error {
	if d.NodeID <= 0 {
		return fmt.Errorf("node id must be positive")
	}
	if _, err := d.Type.PublishedType(); err != nil {
		return err
	}
	if d.Type.IsDetached() && d.HostID <= 0 {
		return fmt.Errorf("detached item %d requires a host id", d.NodeID)
	}
	if d.Culture != "" {
		if _, err := culture.Canonical(d.Culture); err != nil {
			return err
		}
	}
	if d.Location != nil && !geo.ValidateCoordinates(d.Location.Latitude, d.Location.Longitude) {
		return fmt.Errorf("location %s out of range", d.Location)
	}
	for _, t := range d.Tags {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	if len(d.Text) > MaxTextSize {
		return fmt.Errorf("text too large (max %d bytes)", MaxTextSize)
	}
	return nil
}

// Fields returns the document's index fields as strings. Absent values are omitted.
func (d *Document) Fields() map[string]string {
	f := map[string]string{
		field.NodeID:   strconv.Itoa(d.NodeID),
		field.ItemType: string(d.Type),
		field.Name:     d.Name,
		field.SortName: strings.ToLower(d.Name),
	}
	if d.Key != "" {
		f[field.Key] = d.Key
	}
	if d.Culture != "" {
		if c, err := culture.Canonical(d.Culture); err == nil {
			f[field.Culture] = c
		}
	}
	if d.Alias != "" {
		f[field.TypeAlias] = d.Alias
	}
	if d.HostID > 0 {
		f[field.HostID] = strconv.Itoa(d.HostID)
	}
	if d.Date != nil {
		f[field.Date] = field.FormatDate(*d.Date)
		f[field.SortDate] = f[field.Date]
	}
	if d.Location != nil {
		f[field.Location] = d.Location.String()
		f[field.Latitude] = strconv.FormatFloat(d.Location.Latitude, 'f', -1, 64)
		f[field.Longitude] = strconv.FormatFloat(d.Location.Longitude, 'f', -1, 64)
	}
	if tokens, groups := tagTokens(d.Tags); len(tokens) > 0 {
		f[field.Tags] = strings.Join(tokens, " ")
		for _, g := range groups {
			f[field.TagGroup(g)] = field.MarkerValue
		}
	}
	if d.Text != "" {
		f[field.Text] = d.Text
	}
	return f
}

// tagTokens returns the distinct tag tokens in order and the distinct non-empty groups.
func tagTokens(tags []tag.Tag) ([]string, []string) {
	var tokens, groups []string
	seenTok := make(map[string]bool)
	seenGroup := make(map[string]bool)
	for _, t := range tag.NonBlank(tags) {
		if t.IsGroupOnly() {
			continue
		}
		tok := t.String()
		if !seenTok[tok] {
			seenTok[tok] = true
			tokens = append(tokens, tok)
		}
		if t.Group != "" && !seenGroup[t.Group] {
			seenGroup[t.Group] = true
			groups = append(groups, t.Group)
		}
	}
	return tokens, groups
}
