package health

import "context"

// DBPinger checks engine availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker checks that the searched index exists.
type IndexChecker interface {
	IndexExists(ctx context.Context, name string) (bool, error)
}
