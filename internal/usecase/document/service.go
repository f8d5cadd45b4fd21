// Package document seeds and prunes the index with per-document error reporting.
// Production indexing belongs to the host pipeline; this path serves embedded use and tests.
package document

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/lookdex/internal/domain"
	dombatch "github.com/kailas-cloud/lookdex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/lookdex/internal/domain/document"
)

// MaxBatchSize is the default maximum number of documents per call.
const MaxBatchSize = 1000

// Service validates documents and writes them through the repository.
type Service struct {
	repo         Repository
	maxBatchSize int
}

// New creates a document service.
func New(repo Repository) *Service {
	return &Service{repo: repo, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Index validates docs and writes the valid ones in one pass. Results are in input order.
// A node id repeated within docs fails on every occurrence after the first.
func (s *Service) Index(ctx context.Context, docs []domdoc.Document) []dombatch.Result {
	results := make([]dombatch.Result, len(docs))
	if len(docs) > s.maxBatchSize {
		err := fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidDocument)
		for i := range docs {
			results[i] = dombatch.NewError(docs[i].NodeID, err)
		}
		return results
	}

	valid := make([]domdoc.Document, 0, len(docs))
	validIdx := make([]int, 0, len(docs))
	seen := make(map[int]bool, len(docs))
	for i := range docs {
		id := docs[i].NodeID
		if err := docs[i].Validate(); err != nil {
			results[i] = dombatch.NewError(id, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err))
			continue
		}
		if seen[id] {
			results[i] = dombatch.NewError(id, fmt.Errorf("duplicate node id %d: %w", id, domain.ErrInvalidDocument))
			continue
		}
		seen[id] = true
		valid = append(valid, docs[i])
		validIdx = append(validIdx, i)
	}

	if len(valid) == 0 {
		return results
	}
	if err := s.repo.Put(ctx, valid); err != nil {
		for _, i := range validIdx {
			results[i] = dombatch.NewError(docs[i].NodeID, fmt.Errorf("index: %w", err))
		}
		return results
	}
	for _, i := range validIdx {
		results[i] = dombatch.NewOK(docs[i].NodeID)
	}
	return results
}

// Remove deletes the documents of nodeIDs. Non-positive ids fail without touching the index.
func (s *Service) Remove(ctx context.Context, nodeIDs []int) []dombatch.Result {
	results := make([]dombatch.Result, len(nodeIDs))
	if len(nodeIDs) > s.maxBatchSize {
		err := fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidDocument)
		for i, id := range nodeIDs {
			results[i] = dombatch.NewError(id, err)
		}
		return results
	}

	ids := make([]int, 0, len(nodeIDs))
	idx := make([]int, 0, len(nodeIDs))
	for i, id := range nodeIDs {
		if id <= 0 {
			results[i] = dombatch.NewError(id, fmt.Errorf("node id must be positive: %w", domain.ErrInvalidDocument))
			continue
		}
		ids = append(ids, id)
		idx = append(idx, i)
	}

	if len(ids) == 0 {
		return results
	}
	if err := s.repo.Delete(ctx, ids...); err != nil {
		for _, i := range idx {
			results[i] = dombatch.NewError(nodeIDs[i], fmt.Errorf("remove: %w", err))
		}
		return results
	}
	for _, i := range idx {
		results[i] = dombatch.NewOK(nodeIDs[i])
	}
	return results
}
