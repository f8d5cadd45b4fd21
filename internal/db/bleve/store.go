// Package bleve implements db.Store over an embedded bleve index.
package bleve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"

	"github.com/kailas-cloud/lookdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// ErrIndexClosed is returned by operations on a closed or not yet opened index.
var ErrIndexClosed = errors.New("bleve: index is not open")

// Config holds the index location. An empty Path keeps the index in memory.
type Config struct {
	Path string
}

// Store implements db.Store over one bleve index. The index is opened or created by EnsureIndex.
type Store struct {
	cfg Config

	mu    sync.RWMutex
	index bleve.Index
	def   *db.IndexDefinition
}

// NewStore creates a store. Nothing is opened until EnsureIndex.
func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg}
}

// Ping reports whether the index is open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return &db.Error{Op: db.OpPing, Err: ErrIndexClosed}
	}
	return nil
}

// WaitForReady returns immediately: an embedded index has no connection to wait for.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// Close closes the index.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index != nil {
		_ = s.index.Close()
		s.index = nil
	}
}

// EnsureIndex opens the index at the configured path, or creates it from def.
func (s *Store) EnsureIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("index definition: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.def = def
	if s.index != nil {
		return nil
	}

	if s.cfg.Path != "" {
		idx, err := bleve.Open(s.cfg.Path)
		if err == nil {
			s.index = idx
			return nil
		}
		if !errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			return &db.Error{Op: db.OpBleveOpen, Err: err}
		}
	}

	m, err := buildMapping(def)
	if err != nil {
		return fmt.Errorf("build mapping: %w", err)
	}

	var idx bleve.Index
	if s.cfg.Path == "" {
		idx, err = bleve.NewMemOnly(m)
	} else {
		idx, err = bleve.New(s.cfg.Path, m)
	}
	if err != nil {
		return &db.Error{Op: db.OpBleveOpen, Err: err}
	}
	s.index = idx
	return nil
}

// IndexExists reports whether the index is open or present on disk.
func (s *Store) IndexExists(_ context.Context, _ string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index != nil {
		return true, nil
	}
	if s.cfg.Path == "" {
		return false, nil
	}
	_, err := os.Stat(filepath.Join(s.cfg.Path, "index_meta.json"))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	}
	return false, &db.Error{Op: db.OpBleveOpen, Err: err}
}

// DropIndex closes the index and deletes its files.
func (s *Store) DropIndex(_ context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return db.ErrIndexNotFound
	}
	_ = s.index.Close()
	s.index = nil
	if s.cfg.Path != "" {
		if err := os.RemoveAll(s.cfg.Path); err != nil {
			return &db.Error{Op: db.OpBleveOpen, Err: err}
		}
	}
	return nil
}

// Put indexes records in one batch, converting numeric fields per the index definition.
func (s *Store) Put(_ context.Context, records []db.Record) error {
	if len(records) == 0 {
		return nil
	}

	idx, def, err := s.open()
	if err != nil {
		return err
	}

	batch := idx.NewBatch()
	for _, r := range records {
		doc, err := toDocument(def, r.Fields)
		if err != nil {
			return fmt.Errorf("record %s: %w", r.ID, err)
		}
		if err := batch.Index(r.ID, doc); err != nil {
			return &db.Error{Op: db.OpBleveBatch, Err: err}
		}
	}
	if err := idx.Batch(batch); err != nil {
		return &db.Error{Op: db.OpBleveBatch, Err: err}
	}
	return nil
}

// Delete removes documents by id.
func (s *Store) Delete(_ context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	idx, _, err := s.open()
	if err != nil {
		return err
	}
	batch := idx.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := idx.Batch(batch); err != nil {
		return &db.Error{Op: db.OpBleveBatch, Err: err}
	}
	return nil
}

func (s *Store) open() (bleve.Index, *db.IndexDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return nil, nil, &db.Error{Op: db.OpBleveOpen, Err: ErrIndexClosed}
	}
	return s.index, s.def, nil
}

func toDocument(def *db.IndexDefinition, fields map[string]string) (map[string]interface{}, error) {
	doc := make(map[string]interface{}, len(fields))
	for name, value := range fields {
		f, ok := def.Field(name)
		if ok && f.Type == db.IndexFieldNumeric {
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("numeric field %s: %w", name, err)
			}
			doc[name] = v
			continue
		}
		doc[name] = value
	}
	return doc, nil
}
