package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/todump/todump/internal/breakdown"
	"github.com/todump/todump/internal/domain"
)

// Error codes carried in the "code" field of error bodies.
const (
	CodeValidation      = "validation"
	CodeUnauthorized    = "unauthorized"
	CodeNotFound        = "not_found"
	CodeConfiguration   = "configuration"
	CodeExternalService = "external_service"
	CodeParse           = "parse"
	CodeInternal        = "internal"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classify maps an error to its HTTP status and code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, breakdown.ErrConfiguration):
		return http.StatusInternalServerError, CodeConfiguration
	case errors.Is(err, breakdown.ErrExternalService):
		return http.StatusBadGateway, CodeExternalService
	case errors.Is(err, breakdown.ErrParse):
		return http.StatusBadGateway, CodeParse
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if code == CodeInternal {
		s.logger().Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		msg = "internal server error"
	}
	writeJSON(w, status, ErrorBody{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
