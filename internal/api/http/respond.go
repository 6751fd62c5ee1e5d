package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"librental-backend/internal/logger"
	"librental-backend/internal/security"
	"librental-backend/internal/service"
)

// errorResponse is the JSON error envelope for every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// pagedResponse wraps list results with the total row count.
type pagedResponse struct {
	Items    any   `json:"items"`
	Total    int32 `json:"total"`
	Page     int32 `json:"page"`
	PageSize int32 `json:"page_size"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps service errors to HTTP statuses. Business rejections carry
// their reason; everything unexpected becomes an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case service.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case service.IsBusinessRule(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, security.ErrExpiredToken),
		errors.Is(err, security.ErrWrongTokenType):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrTryAgain):
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	default:
		logger.Error("unhandled error in http layer", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "an unexpected error occurred, please try again"})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
