package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses. Anything
// unrecognized is treated as internal and its detail withheld.
func writeError(w http.ResponseWriter, err error) {
	var (
		validationErr   *domain.ValidationError
		notFoundErr     *domain.NotFoundError
		fundsErr        *domain.InsufficientFundsError
		limitErr        *domain.LimitExceededError
		unauthorizedErr *domain.UnauthorizedError
		internalErr     *domain.InternalError
	)
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationErr.Error(), Code: "VALIDATION_ERROR"})
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notFoundErr.Error(), Code: "NOT_FOUND"})
	case errors.As(err, &fundsErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: fundsErr.Error(), Code: "INSUFFICIENT_FUNDS"})
	case errors.As(err, &limitErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: limitErr.Error(), Code: "LIMIT_EXCEEDED"})
	case errors.As(err, &unauthorizedErr):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: unauthorizedErr.Error(), Code: "UNAUTHORIZED"})
	case errors.As(err, &internalErr):
		logger.Error("Internal error", "error", internalErr)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL_ERROR"})
	default:
		logger.Error("Unclassified error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL_ERROR"})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "VALIDATION_ERROR"})
		return false
	}
	return true
}
