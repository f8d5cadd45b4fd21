package bleve

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/kailas-cloud/lookdex/internal/db"
)

const (
	// tagsAnalyzer splits a multi-valued TAG field on whitespace, keeping tokens exact.
	tagsAnalyzer = "look_tags"
)

// buildMapping maps each index field to a bleve field. Fields outside the definition, such as
// tag group markers, are indexed dynamically as exact keywords.
func buildMapping(def *db.IndexDefinition) (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	if err := im.AddCustomAnalyzer(tagsAnalyzer, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": whitespace.Name,
	}); err != nil {
		return nil, err
	}
	im.DefaultAnalyzer = keyword.Name

	doc := bleve.NewDocumentMapping()
	for _, f := range def.Fields {
		doc.AddFieldMappingsAt(f.Name, fieldMapping(f))
	}
	im.DefaultMapping = doc
	return im, nil
}

func fieldMapping(f db.IndexField) *mapping.FieldMapping {
	var fm *mapping.FieldMapping
	switch f.Type {
	case db.IndexFieldNumeric:
		fm = bleve.NewNumericFieldMapping()
	case db.IndexFieldText:
		fm = bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
	default:
		fm = bleve.NewKeywordFieldMapping()
		if f.TagSeparator == " " {
			fm.Analyzer = tagsAnalyzer
		}
	}
	fm.Store = f.Stored
	fm.IncludeInAll = false
	fm.DocValues = f.Sortable || f.Type == db.IndexFieldNumeric
	return fm
}
