package domain

// SearchConfig holds system-wide search limits, not exposed to clients.
type SearchConfig struct {
	MaxResults       int     // ranked hits retrieved per query, total is never capped
	MaxDistanceMiles float64 // ceiling for LocationQuery.MaxDistance
	GeoPageSize      int     // candidates per page while filtering a geo box
	FetchBatchSize   int     // documents fetched per lazy ResultSet step
	CompileCacheSize int     // shared compiled-plan LRU entries
	FacetPageSize    int     // documents per page while scanning for facets
}

// DefaultSearchConfig returns defaults tuned for a single mid-sized site index.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		MaxResults:       5000,
		MaxDistanceMiles: 500,
		GeoPageSize:      1000,
		FetchBatchSize:   50,
		CompileCacheSize: 512,
		FacetPageSize:    1000,
	}
}

// WithDefaults fills zero fields from DefaultSearchConfig.
func (c SearchConfig) WithDefaults() SearchConfig {
	d := DefaultSearchConfig()
	if c.MaxResults <= 0 {
		c.MaxResults = d.MaxResults
	}
	if c.MaxDistanceMiles <= 0 {
		c.MaxDistanceMiles = d.MaxDistanceMiles
	}
	if c.GeoPageSize <= 0 {
		c.GeoPageSize = d.GeoPageSize
	}
	if c.FetchBatchSize <= 0 {
		c.FetchBatchSize = d.FetchBatchSize
	}
	if c.CompileCacheSize <= 0 {
		c.CompileCacheSize = d.CompileCacheSize
	}
	if c.FacetPageSize <= 0 {
		c.FacetPageSize = d.FacetPageSize
	}
	return c
}
