package db

import "github.com/kailas-cloud/lookdex/internal/domain/search/clause"

// SortField orders results by a sortable field.
type SortField struct {
	Field string
	Desc  bool
}

// SearchRequest is the input for a search. No Sort means engine relevance order.
// The document id always breaks ties where the engine supports it.
type SearchRequest struct {
	Query  clause.Prepared
	Sort   []SortField
	Offset int
	// Limit 0 returns only the total.
	Limit int
	// Fields are stored fields to return with each hit; empty returns ids and scores only.
	Fields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	ID     string
	Score  float64
	Fields map[string]string
}
