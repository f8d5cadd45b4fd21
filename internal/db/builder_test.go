package db

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/lookdex/internal/domain/field"
)

func TestIndexBuilder_Simple(t *testing.T) {
	idx := NewIndex("test-idx").
		Prefix("doc:").
		Tag("category", KeywordSeparator).
		Numeric("price").Sortable().
		MustBuild()

	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Name != "test-idx" {
		t.Errorf("name = %q, want test-idx", idx.Name)
	}
	if len(idx.Fields) != 2 {
		t.Fatalf("fields count = %d, want 2", len(idx.Fields))
	}
	if idx.Fields[0].Name != "category" || idx.Fields[0].Type != IndexFieldTag {
		t.Errorf("field[0] = %+v, want category TAG", idx.Fields[0])
	}
	if idx.Fields[1].Name != "price" || idx.Fields[1].Type != IndexFieldNumeric || !idx.Fields[1].Sortable {
		t.Errorf("field[1] = %+v, want sortable price NUMERIC", idx.Fields[1])
	}
}

func TestLookIndex(t *testing.T) {
	idx := LookIndex("look", "look:doc:").MustBuild()

	if len(idx.Fields) != len(field.Schema()) {
		t.Fatalf("fields count = %d, want %d", len(idx.Fields), len(field.Schema()))
	}
	tests := []struct {
		name     string
		typ      IndexFieldType
		sep      string
		sortable bool
	}{
		{field.NodeID, IndexFieldNumeric, "", true},
		{field.ItemType, IndexFieldTag, KeywordSeparator, false},
		{field.Tags, IndexFieldTag, " ", false},
		{field.Text, IndexFieldText, "", false},
		{field.SortDate, IndexFieldNumeric, "", true},
		{field.SortName, IndexFieldTag, KeywordSeparator, true},
	}
	for _, tc := range tests {
		f, ok := idx.Field(tc.name)
		if !ok {
			t.Errorf("missing field %s", tc.name)
			continue
		}
		if f.Type != tc.typ || f.TagSeparator != tc.sep || f.Sortable != tc.sortable {
			t.Errorf("%s = %+v", tc.name, f)
		}
	}
	if f, _ := idx.Field(field.Name); !f.Stored {
		t.Error("name should be stored")
	}
}

func TestIndexBuilder_TagOptions(t *testing.T) {
	idx := NewIndex("tag-idx").
		Prefix("t:").
		Tag("tags", "|").
		MustBuild()

	f := idx.Fields[0]
	if f.TagSeparator != "|" {
		t.Errorf("separator = %q, want |", f.TagSeparator)
	}
}

func TestIndexBuilder_MultiplePrefixes(t *testing.T) {
	idx := NewIndex("multi-idx").
		Prefix("a:", "b:", "c:").
		Tag("x", "").
		MustBuild()

	if len(idx.Prefixes) != 3 {
		t.Errorf("prefix count = %d, want 3", len(idx.Prefixes))
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() (*IndexDefinition, error)
		wantErr string
	}{
		{
			name: "empty name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("").Tag("x", "").Build()
			},
			wantErr: "index name is required",
		},
		{
			name: "no fields",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Build()
			},
			wantErr: "at least one field",
		},
		{
			name: "sortable multi-valued",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Tag("tags", " ").Sortable().Build()
			},
			wantErr: "cannot be sortable",
		},
		{
			name: "invalid characters",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx with spaces").Tag("x", "").Build()
			},
			wantErr: "invalid characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("my-idx").
		Prefix("doc:").
		Tag("cat").
		Numeric("n").Sortable().
		MustBuild()

	s := idx.String()
	if !strings.HasPrefix(s, "FT.CREATE my-idx ON HASH") {
		t.Errorf("expected FT.CREATE prefix, got %q", s)
	}
	if !strings.HasSuffix(s, "n NUMERIC SORTABLE") {
		t.Errorf("missing SORTABLE in %q", s)
	}
}

func TestIndexBuilder_DuplicateFields(t *testing.T) {
	idx := &IndexDefinition{
		Name: "dup-idx",
		Fields: []IndexField{
			{Name: "field1", Type: IndexFieldTag},
			{Name: "field1", Type: IndexFieldNumeric},
		},
	}

	if err := idx.Validate(); err == nil {
		t.Fatal("expected error for duplicate fields")
	}
}

func TestError_Unwrap(t *testing.T) {
	inner := ErrIndexNotFound
	err := &Error{Op: OpSearch, Err: inner}
	if err.Error() != "FT.SEARCH: db: index not found" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Unwrap() != inner {
		t.Error("Unwrap should return the inner error")
	}
}
