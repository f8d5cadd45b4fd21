package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/lookdex/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	putFn    func(ctx context.Context, records []db.Record) error
	deleteFn func(ctx context.Context, ids ...string) error

	puts    [][]db.Record
	deletes [][]string
}

func (m *mockStore) Put(ctx context.Context, records []db.Record) error {
	m.puts = append(m.puts, records)
	if m.putFn != nil {
		return m.putFn(ctx, records)
	}
	return nil
}

func (m *mockStore) Delete(ctx context.Context, ids ...string) error {
	m.deletes = append(m.deletes, ids)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ids...)
	}
	return nil
}

func newTestRepo(t *testing.T, pageSize int) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, pageSize), ms
}
