package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lookdex/internal/domain"
	"github.com/kailas-cloud/lookdex/internal/domain/search/query"
	"github.com/kailas-cloud/lookdex/internal/logger"
	"github.com/kailas-cloud/lookdex/internal/metrics"
)

// Service runs structured queries: compile through the shared plan cache, execute, and map
// hits into a lazy ResultSet.
type Service struct {
	compiler query.Compiler
	exec     Executor
	cfg      domain.SearchConfig
	logger   *zap.Logger
}

// New creates a search service.
func New(exec Executor, compiler query.Compiler, cfg domain.SearchConfig, l *zap.Logger) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{compiler: compiler, exec: exec, cfg: cfg.WithDefaults(), logger: l}
}

// Query executes q. Malformed input and a nil query give an empty ResultSet and a nil error;
// CompileErr tells a failed compile apart from zero matches. Unexpected item types and engine
// failures are returned as errors.
func (s *Service) Query(ctx context.Context, q *query.Query) (*ResultSet, error) {
	log := logger.FromContextOr(ctx, s.logger)
	start := time.Now()

	if q == nil {
		log.Warn("Supplied search query was nil")
		metrics.QueriesTotal.WithLabelValues("empty").Inc()
		return emptyResultSet(nil), nil
	}
	if lq := q.LocationQuery; lq != nil && lq.Location == nil {
		log.Warn("Location query without a center point, matching any located item")
	}

	compiled, err := q.Compile(s.compiler)
	if err != nil {
		return s.compileFailed(log, q, err)
	}
	if q.SortOn.Normalize() == query.SortDistance && compiled.Sort != query.SortDistance {
		log.Warn("Distance sort without a location, sorting by score")
	}

	rk, err := s.exec.Execute(ctx, compiled, s.cfg.MaxResults)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("execute query: %w", err)
	}

	opts := resultOptions{batchSize: s.cfg.FetchBatchSize}
	if t := q.TextQuery; t != nil {
		opts.getText = t.GetText
		if rk.Total > 0 {
			if h := NewTextHighlighter(t.SearchText, t.HighlightFragments, t.HighlightSeparator); h != nil {
				opts.highlighter = h
			}
		}
	}
	if q.TagQuery != nil {
		opts.getTags = q.TagQuery.GetTags
	}
	if rk.HasDistances() {
		opts.distances = rk
	}
	rs := newResultSet(s.exec, rk, opts)

	if q.TagQuery != nil && len(q.TagQuery.GetFacets) > 0 {
		rs.facets, err = s.facets(ctx, q, compiled, q.TagQuery.GetFacets)
		if err != nil {
			metrics.QueriesTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("facets: %w", err)
		}
	}

	metrics.QueryDuration.WithLabelValues(string(compiled.Sort)).Observe(time.Since(start).Seconds())
	metrics.QueriesTotal.WithLabelValues("ok").Inc()
	if c, ok := s.compiler.(*CachedCompiler); ok {
		log.Debug("Query executed",
			zap.Int("total", rk.Total),
			zap.Float64("compile_cache_hit_ratio", c.HitRatio()),
			zap.Duration("duration", time.Since(start)),
		)
	}
	return rs, nil
}

// Scan visits the requested stored fields of every match of q, in engine order. A nil q
// visits the whole index.
func (s *Service) Scan(
	ctx context.Context, q *query.Query, fields []string, fn func(id string, fields map[string]string) error,
) error {
	if q == nil {
		q = query.New()
	}
	compiled, err := q.Compile(s.compiler)
	if err != nil {
		return fmt.Errorf("compile query: %w", err)
	}
	if err := s.exec.Scan(ctx, compiled, fields, fn); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	return nil
}

func (s *Service) compileFailed(log *zap.Logger, q *query.Query, err error) (*ResultSet, error) {
	switch {
	case errors.Is(err, domain.ErrMalformedQuery):
		log.Warn("Could not compile the query",
			zap.String("raw_query", q.RawQuery),
			zap.Error(err),
		)
		metrics.CompileFailuresTotal.WithLabelValues("malformed").Inc()
		metrics.QueriesTotal.WithLabelValues("malformed").Inc()
		return emptyResultSet(err), nil
	case errors.Is(err, domain.ErrUnexpectedItemType):
		metrics.CompileFailuresTotal.WithLabelValues("fatal").Inc()
	default:
		metrics.CompileFailuresTotal.WithLabelValues("other").Inc()
	}
	metrics.QueriesTotal.WithLabelValues("error").Inc()
	return nil, fmt.Errorf("compile query: %w", err)
}
