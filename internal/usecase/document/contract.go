package document

import (
	"context"

	domdoc "github.com/kailas-cloud/lookdex/internal/domain/document"
)

// Repository writes documents to the index.
type Repository interface {
	Put(ctx context.Context, docs []domdoc.Document) error
	Delete(ctx context.Context, nodeIDs ...int) error
}
