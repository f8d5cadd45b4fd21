// Package chi serves the search and browse API over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lookdex/internal/domain/item"
	"github.com/kailas-cloud/lookdex/internal/domain/search/query"
	"github.com/kailas-cloud/lookdex/internal/logger"
	browseuc "github.com/kailas-cloud/lookdex/internal/usecase/browse"
	healthuc "github.com/kailas-cloud/lookdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/lookdex/internal/usecase/search"
	"github.com/kailas-cloud/lookdex/internal/version"
)

// Paging limits for match lists.
const (
	DefaultTake = 20
	MaxTake     = 1000
)

const maxBodyBytes = 1 << 20

var errBadPaging = errors.New("skip and take must be non-negative integers")

// Server holds the HTTP handlers.
type Server struct {
	search        *searchuc.Service
	browse        *browseuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	browse *browseuc.Service,
	health *healthuc.Service,
	l *zap.Logger,
) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{
		search:        search,
		browse:        browse,
		health:        health,
		logger:        l,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/query", s.Query)
		r.Get("/matches", s.Matches)
		r.Get("/cultures", s.Cultures)
		r.Get("/tags/groups", s.TagGroups)
		r.Get("/tags/groups/{group}", s.TagNames)
		r.Get("/tags/groups/{group}/matches", s.TagMatches)
		r.Get("/nodes/{type}/matches", s.NodeTypeMatches)
		r.Get("/detached/{type}/matches", s.DetachedMatches)
		r.Get("/locations/matches", s.LocationMatches)
	})
}

// Query handles POST /api/v1/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Skip < 0 || req.Take < 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, errBadPaging.Error())
		return
	}

	q, err := req.toQuery()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rs, err := s.search.Query(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := QueryResponse{Total: rs.Total(), Facets: rs.Facets()}
	if rs.CompileFailed() {
		resp.CompileError = rs.CompileErr().Error()
	}
	matches, err := rs.Collect(r.Context(), req.Skip, clampTake(req.Take))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	resp.Matches = matchesToResponse(matches)
	writeJSON(w, http.StatusOK, resp)
}

// Matches handles GET /api/v1/matches.
func (s *Server) Matches(w http.ResponseWriter, r *http.Request) {
	sort, skip, take, ok := s.pageParams(w, r)
	if !ok {
		return
	}
	s.writePage(w, r)(s.browse.Matches(r.Context(), sort, skip, take))
}

// NodeTypeMatches handles GET /api/v1/nodes/{type}/matches.
func (s *Server) NodeTypeMatches(w http.ResponseWriter, r *http.Request) {
	t, ok := s.publishedType(w, r)
	if !ok {
		return
	}
	sort, skip, take, ok := s.pageParams(w, r)
	if !ok {
		return
	}
	s.writePage(w, r)(s.browse.NodeTypeMatches(r.Context(), t, sort, skip, take))
}

// DetachedMatches handles GET /api/v1/detached/{type}/matches.
func (s *Server) DetachedMatches(w http.ResponseWriter, r *http.Request) {
	t, ok := s.publishedType(w, r)
	if !ok {
		return
	}
	sort, skip, take, ok := s.pageParams(w, r)
	if !ok {
		return
	}
	s.writePage(w, r)(s.browse.DetachedMatches(r.Context(), t, sort, skip, take))
}

// TagMatches handles GET /api/v1/tags/groups/{group}/matches?name=.
func (s *Server) TagMatches(w http.ResponseWriter, r *http.Request) {
	sort, skip, take, ok := s.pageParams(w, r)
	if !ok {
		return
	}
	group, name := chi.URLParam(r, "group"), r.URL.Query().Get("name")
	s.writePage(w, r)(s.browse.TagMatches(r.Context(), group, name, sort, skip, take))
}

// LocationMatches handles GET /api/v1/locations/matches.
func (s *Server) LocationMatches(w http.ResponseWriter, r *http.Request) {
	sort, skip, take, ok := s.pageParams(w, r)
	if !ok {
		return
	}
	s.writePage(w, r)(s.browse.LocationMatches(r.Context(), sort, skip, take))
}

// Cultures handles GET /api/v1/cultures.
func (s *Server) Cultures(w http.ResponseWriter, r *http.Request) {
	s.writeList(w, r)(s.browse.Cultures(r.Context()))
}

// TagGroups handles GET /api/v1/tags/groups.
func (s *Server) TagGroups(w http.ResponseWriter, r *http.Request) {
	s.writeList(w, r)(s.browse.TagGroups(r.Context()))
}

// TagNames handles GET /api/v1/tags/groups/{group}.
func (s *Server) TagNames(w http.ResponseWriter, r *http.Request) {
	s.writeList(w, r)(s.browse.TagNames(r.Context(), chi.URLParam(r, "group")))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
		Build:  version.Get(),
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request) func(*browseuc.Page, error) {
	return func(p *browseuc.Page, err error) {
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, pageToResponse(p))
	}
}

func (s *Server) writeList(w http.ResponseWriter, r *http.Request) func([]string, error) {
	return func(items []string, err error) {
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		if items == nil {
			items = []string{}
		}
		writeJSON(w, http.StatusOK, ListResponse{Items: items})
	}
}

// pageParams reads sort, skip and take from the query string.
func (s *Server) pageParams(w http.ResponseWriter, r *http.Request) (query.SortOn, int, int, bool) {
	params := r.URL.Query()
	sort, err := browseuc.ParseSort(params.Get("sort"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return "", 0, 0, false
	}
	skip, err1 := intParam(params.Get("skip"))
	take, err2 := intParam(params.Get("take"))
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, errBadPaging.Error())
		return "", 0, 0, false
	}
	return sort, skip, clampTake(take), true
}

func (s *Server) publishedType(w http.ResponseWriter, r *http.Request) (item.PublishedType, bool) {
	t, err := item.ParsePublishedType(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "unknown item type")
		return "", false
	}
	return t, true
}

func (s *Server) log(r *http.Request) *zap.Logger {
	return logger.FromContextOr(r.Context(), s.logger)
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, errBadPaging
	}
	return v, nil
}

func clampTake(take int) int {
	if take <= 0 {
		return DefaultTake
	}
	return min(take, MaxTake)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
