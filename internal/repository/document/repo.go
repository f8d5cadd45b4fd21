package document

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/lookdex/internal/db"
	domdoc "github.com/kailas-cloud/lookdex/internal/domain/document"
)

// DefaultPageSize is the number of records written per engine call.
const DefaultPageSize = 500

// store is the consumer interface for documents (ISP).
type store interface {
	Put(ctx context.Context, records []db.Record) error
	Delete(ctx context.Context, ids ...string) error
}

// Repo writes Look documents as index records.
// Implements usecase/document.Repository.
type Repo struct {
	store    store
	pageSize int
}

// New creates a document repository. pageSize <= 0 means DefaultPageSize.
func New(s store, pageSize int) *Repo {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Repo{store: s, pageSize: pageSize}
}

// Put writes docs, replacing any stored document with the same node id.
func (r *Repo) Put(ctx context.Context, docs []domdoc.Document) error {
	for start := 0; start < len(docs); start += r.pageSize {
		end := min(start+r.pageSize, len(docs))
		records := make([]db.Record, 0, end-start)
		for i := start; i < end; i++ {
			records = append(records, db.Record{ID: docs[i].ID(), Fields: docs[i].Fields()})
		}
		if err := r.store.Put(ctx, records); err != nil {
			return fmt.Errorf("put %d records: %w", len(records), err)
		}
	}
	return nil
}

// Delete removes the documents of nodeIDs. Unknown ids are ignored.
func (r *Repo) Delete(ctx context.Context, nodeIDs ...int) error {
	if len(nodeIDs) == 0 {
		return nil
	}
	ids := make([]string, len(nodeIDs))
	for i, id := range nodeIDs {
		ids[i] = strconv.Itoa(id)
	}
	if err := r.store.Delete(ctx, ids...); err != nil {
		return fmt.Errorf("delete %d records: %w", len(ids), err)
	}
	return nil
}
