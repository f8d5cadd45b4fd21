package bleve

import (
	"context"

	"github.com/kailas-cloud/lookdex/internal/db"
)

// NewMemStoreForTest creates an in-memory store with the search schema already in place.
func NewMemStoreForTest() (*Store, error) {
	s := NewStore(Config{})
	if err := s.EnsureIndex(context.Background(), db.LookIndex("look").MustBuild()); err != nil {
		return nil, err
	}
	return s, nil
}
