/**
 * @description
 * This file holds the response helpers shared by every handler: JSON encoding
 * and the single place where domain errors are translated into HTTP statuses.
 *
 * @notes
 * - Unexpected errors are logged with the request id and answered with a generic
 *   message. Internal details never reach the client.
 */
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rabiot125/Banking-Microservice/internal/domain"
	"github.com/rabiot125/Banking-Microservice/internal/logger"
	"github.com/rabiot125/Banking-Microservice/pkg/middleware"
)

const internalErrorMessage = "An unexpected error occurred"

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeJSON is a helper function for writing JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent, nothing left to report to the client.
		return
	}
}

// mapError classifies err into a status code and a client-safe body.
func mapError(err error) (int, errorResponse) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, errorResponse{Error: "Validation failed", Fields: validationErr.Fields}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrCardLimitExceeded), errors.Is(err, domain.ErrDuplicateCardType):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	}
	return http.StatusInternalServerError, errorResponse{Error: internalErrorMessage}
}

// writeError maps err and writes it. 5xx responses are logged in full.
func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	status, body := mapError(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"error", err,
		)
	}
	writeJSON(w, status, body)
}
