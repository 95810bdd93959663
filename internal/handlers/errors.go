package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sbilibin2017/gw-blog/internal/errs"
	"github.com/sbilibin2017/gw-blog/internal/logger"
)

// ErrorResponse represents an error response
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// default: user not found
	Error string `json:"error"`
}

// ValidationErrorResponse represents a 422 response listing the failing fields
// swagger:model ValidationErrorResponse
type ValidationErrorResponse struct {
	// Error message
	// default: invalid input: email must be a valid email address
	Error string `json:"error"`

	// Per-field messages
	Fields map[string]string `json:"fields"`
}

var (
	errMalformedBody = errs.NewValidation("body", "must be a valid JSON object")
	errBodyTooLarge  = errors.New("request body too large")
)

// bodyError reports an oversized body as errBodyTooLarge and anything else as fallback.
func bodyError(err, fallback error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBodyTooLarge
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorw("failed to encode response", "err", err)
	}
}

// writeError maps an error kind to its HTTP status.
func writeError(w http.ResponseWriter, err error) {
	var verr *errs.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{Error: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, errs.ErrConflict):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, errs.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case errors.Is(err, errs.ErrForbidden):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, errBodyTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error()})
	default:
		logger.Log.Errorw("internal server error", "err", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errs.NewValidation("id", "must be an integer")
	}
	return id, nil
}
