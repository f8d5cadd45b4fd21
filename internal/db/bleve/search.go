package bleve

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"

	"github.com/kailas-cloud/lookdex/internal/db"
)

// Search runs a prepared query. Hits are ordered by the requested sort, then by document id.
func (s *Store) Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
	p, ok := req.Query.(*prepared)
	if !ok {
		return nil, fmt.Errorf("query was not prepared by the bleve driver: %T", req.Query)
	}
	idx, _, err := s.open()
	if err != nil {
		return nil, err
	}

	sr := bleve.NewSearchRequestOptions(p.query, req.Limit, req.Offset, false)
	sr.Fields = req.Fields
	sr.SortByCustom(sortOrder(req.Sort))

	res, err := idx.SearchInContext(ctx, sr)
	if err != nil {
		return nil, &db.Error{Op: db.OpBleveSearch, Err: err}
	}

	out := &db.SearchResult{Total: int(res.Total), Entries: make([]db.SearchEntry, 0, len(res.Hits))}
	for _, hit := range res.Hits {
		out.Entries = append(out.Entries, db.SearchEntry{
			ID:     hit.ID,
			Score:  hit.Score,
			Fields: stringFields(hit.Fields),
		})
	}
	return out, nil
}

// Fetch loads stored fields by document id, in input order.
func (s *Store) Fetch(ctx context.Context, ids, fields []string) ([]map[string]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	idx, _, err := s.open()
	if err != nil {
		return nil, err
	}

	sr := bleve.NewSearchRequestOptions(bleve.NewDocIDQuery(ids), len(ids), 0, false)
	sr.Fields = fields
	res, err := idx.SearchInContext(ctx, sr)
	if err != nil {
		return nil, &db.Error{Op: db.OpBleveDocument, Err: err}
	}

	byID := make(map[string]map[string]string, len(res.Hits))
	for _, hit := range res.Hits {
		byID[hit.ID] = stringFields(hit.Fields)
	}
	out := make([]map[string]string, len(ids))
	for i, id := range ids {
		if m, ok := byID[id]; ok {
			out[i] = m
		} else {
			out[i] = map[string]string{}
		}
	}
	return out, nil
}

func sortOrder(fields []db.SortField) search.SortOrder {
	order := make(search.SortOrder, 0, len(fields)+2)
	if len(fields) == 0 {
		order = append(order, &search.SortScore{Desc: true})
	}
	for _, f := range fields {
		order = append(order, &search.SortField{
			Field:   f.Field,
			Desc:    f.Desc,
			Type:    search.SortFieldAuto,
			Missing: search.SortFieldMissingLast,
		})
	}
	return append(order, &search.SortDocID{})
}

// stringFields flattens stored values: numbers without trailing zeros, arrays joined by spaces.
func stringFields(in map[string]interface{}) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = stringValue(v)
	}
	return out
}

func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []interface{}:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = stringValue(e)
		}
		return strings.Join(parts, " ")
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
