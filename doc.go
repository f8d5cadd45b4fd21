// Package lookdex is an embeddable faceted, geo-aware search client for Look indexes.
//
// A Client compiles structured queries into the engine's native query language, runs them
// against an embedded bleve index or a Redis 8 search index, and returns lazily fetched
// matches with highlights, distances and tag facets.
//
//	c, err := lookdex.New(lookdex.WithMemory())
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	page, err := c.Search().
//		Text("harbour walk").
//		AllTags("season:spring").
//		Near(50.37, -4.14).Km(10).
//		SortBy("distance").
//		Take(20).
//		Do(ctx)
package lookdex
