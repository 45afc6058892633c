package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/apperrors"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

// toErrorResponse maps err to a status code and a body that never exposes the underlying cause.
func toErrorResponse(err error) (int, ErrorResponse) {
	var de *apperrors.DomainError
	if errors.As(err, &de) {
		return apperrors.HTTPStatus(err), ErrorResponse{Error: de.Message, Type: string(de.Type)}
	}
	return http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
		Type:  string(apperrors.ErrTypeInternal),
	}
}

// writeError logs server-side failures and writes the mapped error response
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := toErrorResponse(err)
	if status >= http.StatusInternalServerError {
		s.requestLogger(r).Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	s.jsonResponse(w, status, body)
}

// badRequest writes a 400 for malformed input that never reached the engine
func (s *Server) badRequest(w http.ResponseWriter, message string) {
	s.jsonResponse(w, http.StatusBadRequest, ErrorResponse{
		Error: message,
		Type:  string(apperrors.ErrTypeValidation),
	})
}
