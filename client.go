package lookdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lookdex/internal/db"
	dbBleve "github.com/kailas-cloud/lookdex/internal/db/bleve"
	dbRedis "github.com/kailas-cloud/lookdex/internal/db/redis"
	"github.com/kailas-cloud/lookdex/internal/metrics"
	documentrepo "github.com/kailas-cloud/lookdex/internal/repository/document"
	searchrepo "github.com/kailas-cloud/lookdex/internal/repository/search"
	browseuc "github.com/kailas-cloud/lookdex/internal/usecase/browse"
	documentuc "github.com/kailas-cloud/lookdex/internal/usecase/document"
	searchuc "github.com/kailas-cloud/lookdex/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultIndex            = "look"
)

// Client is the lookdex entry point. It is safe for concurrent use.
type Client struct {
	store     db.Store
	index     string
	searchSvc *searchuc.Service
	browseSvc *browseuc.Service
	docSvc    *documentuc.Service
}

// New creates a Client, waits for the engine and makes sure the index exists.
// Without options the index lives in memory.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{driver: driverBleve, readiness: defaultReadinessTimeout}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.driver == driverRedis && len(cfg.addrs) == 0 {
		return nil, errors.New("lookdex: redis address required")
	}

	store, index, prefixes, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, cfg.readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("lookdex: engine not ready: %w", err)
	}
	def, err := db.LookIndex(index, prefixes...).Build()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("lookdex: index definition: %w", err)
	}
	if err := store.EnsureIndex(ctx, def); err != nil {
		store.Close()
		return nil, fmt.Errorf("lookdex: ensure index %q: %w", index, err)
	}

	c, err := wireClient(store, index, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, string, []string, error) {
	switch cfg.driver {
	case driverBleve:
		return dbBleve.NewStore(dbBleve.Config{Path: cfg.bleveDir}), defaultIndex, nil, nil
	case driverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
			Index:    cfg.index,
			Prefix:   cfg.prefix,
		})
		if err != nil {
			return nil, "", nil, fmt.Errorf("lookdex: create redis store: %w", err)
		}
		return s, s.Index(), []string{s.Prefix()}, nil
	default:
		return nil, "", nil, fmt.Errorf("lookdex: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, index string, cfg *clientConfig) (*Client, error) {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.metrics {
		metrics.RegisterSearchMetrics()
	}

	searchCfg := cfg.search.WithDefaults()
	compiler, err := searchuc.NewCachedCompiler(searchuc.NewCompiler(store, searchCfg), searchCfg.CompileCacheSize)
	if err != nil {
		return nil, fmt.Errorf("lookdex: %w", err)
	}
	searchRepo := searchrepo.New(store, searchrepo.Config{
		GeoPageSize:  searchCfg.GeoPageSize,
		ScanPageSize: searchCfg.FacetPageSize,
	})
	searchSvc := searchuc.New(searchRepo, compiler, searchCfg, logger)

	docSvc := documentuc.New(documentrepo.New(store, 0))
	if cfg.maxBatchSize > 0 {
		docSvc = docSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}

	return &Client{
		store:     store,
		index:     index,
		searchSvc: searchSvc,
		browseSvc: browseuc.New(searchSvc),
		docSvc:    docSvc,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks that the engine is reachable and the index exists.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	ok, err := c.store.IndexExists(ctx, c.index)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if !ok {
		return fmt.Errorf("ping: index %q does not exist", c.index)
	}
	return nil
}

// Query runs q. Malformed input gives an empty ResultSet whose CompileErr is set, and a nil error.
func (c *Client) Query(ctx context.Context, q *Query) (*ResultSet, error) {
	rs, err := c.searchSvc.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return rs, nil
}

// Facets counts the tag names of groups over the matches of q.
func (c *Client) Facets(ctx context.Context, q *Query, groups ...string) (map[string]map[string]int, error) {
	facets, err := c.searchSvc.Facets(ctx, q, groups)
	if err != nil {
		return nil, fmt.Errorf("facets: %w", err)
	}
	return facets, nil
}

// Search starts a fluent query.
func (c *Client) Search() *SearchBuilder {
	return &SearchBuilder{client: c, take: DefaultTake}
}

// Cultures lists the distinct cultures in the index, sorted.
func (c *Client) Cultures(ctx context.Context) ([]string, error) {
	out, err := c.browseSvc.Cultures(ctx)
	if err != nil {
		return nil, fmt.Errorf("cultures: %w", err)
	}
	return out, nil
}

// TagGroups lists the distinct named tag groups in the index, sorted.
func (c *Client) TagGroups(ctx context.Context) ([]string, error) {
	out, err := c.browseSvc.TagGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("tag groups: %w", err)
	}
	return out, nil
}

// TagNames lists the distinct tag names of group, sorted. An empty group lists ungrouped tags.
func (c *Client) TagNames(ctx context.Context, group string) ([]string, error) {
	out, err := c.browseSvc.TagNames(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("tag names: %w", err)
	}
	return out, nil
}

// Index writes docs, replacing stored documents with the same node id. Invalid documents are
// skipped and reported; the returned error joins every per-document failure.
func (c *Client) Index(ctx context.Context, docs []Document) ([]BatchResult, error) {
	return batchResults("index", c.docSvc.Index(ctx, docs))
}

// Remove deletes the documents of nodeIDs.
func (c *Client) Remove(ctx context.Context, nodeIDs ...int) ([]BatchResult, error) {
	return batchResults("remove", c.docSvc.Remove(ctx, nodeIDs))
}
