package chi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lookdex/internal/db"
	"github.com/kailas-cloud/lookdex/internal/domain"
)

// ErrorCode is the machine-readable error class of an error response.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeMalformedQuery     ErrorCode = "malformed_query"
	CodeInvalidSort        ErrorCode = "invalid_sort"
	CodeNotFound           ErrorCode = "not_found"
	CodeUnexpectedItemType ErrorCode = "unexpected_item_type"
	CodeEngineUnavailable  ErrorCode = "engine_unavailable"
	CodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrMalformedQuery, http.StatusBadRequest, CodeMalformedQuery),
		sentinelHandler(domain.ErrInvalidSort, http.StatusBadRequest, CodeInvalidSort),
		sentinelHandler(domain.ErrDistanceSortWithoutLocation, http.StatusBadRequest, CodeInvalidSort),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrUnexpectedItemType, http.StatusInternalServerError, CodeUnexpectedItemType),
		engineErrorHandler,
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// engineErrorHandler reports engine command failures without exposing their details.
func engineErrorHandler(w http.ResponseWriter, err error) bool {
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		return false
	}
	writeError(w, http.StatusServiceUnavailable, CodeEngineUnavailable, "search engine unavailable: "+dbErr.Op)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.log(r)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
