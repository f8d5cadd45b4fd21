package document

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/lookdex/internal/domain"
	"github.com/kailas-cloud/lookdex/internal/domain/field"
	"github.com/kailas-cloud/lookdex/internal/domain/geo"
	"github.com/kailas-cloud/lookdex/internal/domain/item"
	"github.com/kailas-cloud/lookdex/internal/domain/tag"
)

func validDoc() Document {
	date := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
	return Document{
		NodeID:   1066,
		Key:      "7f1c",
		Type:     item.Content,
		Culture:  "en-gb",
		Alias:    "blogPost",
		Name:     "Hello World",
		Date:     &date,
		Location: &geo.Location{Latitude: 51.5, Longitude: -0.12},
		Tags:     tag.Make("colour:red", "colour:blue", "featured", "colour:red"),
		Text:     "the quick brown fox",
	}
}

func TestValidate_Valid(t *testing.T) {
	d := validDoc()
	if err := d.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID() != "1066" {
		t.Errorf("ID() = %q", d.ID())
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := map[string]func(d *Document){
		"zero id":           func(d *Document) { d.NodeID = 0 },
		"detached, no host": func(d *Document) { d.Type = item.DetachedContent },
		"bad culture":       func(d *Document) { d.Culture = "not a culture" },
		"bad location":      func(d *Document) { d.Location = &geo.Location{Latitude: 95} },
		"tag whitespace":    func(d *Document) { d.Tags = []tag.Tag{{Name: "a b"}} },
		"huge text":         func(d *Document) { d.Text = strings.Repeat("x", MaxTextSize+1) },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			d := validDoc()
			mutate(&d)
			if err := d.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidate_UnknownType(t *testing.T) {
	d := validDoc()
	d.Type = "widget"
	if err := d.Validate(); !errors.Is(err, domain.ErrUnexpectedItemType) {
		t.Errorf("err = %v, want ErrUnexpectedItemType", err)
	}
}

func TestFields(t *testing.T) {
	d := validDoc()
	f := d.Fields()

	want := map[string]string{
		field.NodeID:             "1066",
		field.Key:                "7f1c",
		field.ItemType:           "content",
		field.Culture:            "en-GB",
		field.TypeAlias:          "blogPost",
		field.Name:               "Hello World",
		field.SortName:           "hello world",
		field.Location:           "51.5|-0.12",
		field.Latitude:           "51.5",
		field.Longitude:          "-0.12",
		field.Tags:               "colour:red colour:blue featured",
		field.TagGroup("colour"): field.MarkerValue,
		field.Text:               "the quick brown fox",
	}
	for k, v := range want {
		if f[k] != v {
			t.Errorf("%s = %q, want %q", k, f[k], v)
		}
	}
	if f[field.Date] == "" || f[field.Date] != f[field.SortDate] {
		t.Errorf("date fields = %q / %q", f[field.Date], f[field.SortDate])
	}
	if _, ok := f[field.HostID]; ok {
		t.Error("host id should be omitted for attached items")
	}
}

func TestFields_OmitsAbsent(t *testing.T) {
	d := Document{NodeID: 5, Type: item.Media, Name: "Logo"}
	f := d.Fields()
	for _, k := range []string{field.Key, field.Culture, field.Date, field.Location, field.Tags, field.Text} {
		if _, ok := f[k]; ok {
			t.Errorf("%s should be omitted", k)
		}
	}
}
