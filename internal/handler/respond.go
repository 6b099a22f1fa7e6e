package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Hodaren2022/aitravel-backend/internal/ai"
	"github.com/Hodaren2022/aitravel-backend/internal/domain"
)

// statusClientClosedRequest is the nginx convention for a request the
// client abandoned; used when a chat turn is superseded by a newer one.
const statusClientClosedRequest = 499

// errorResponse is the error body shape for every endpoint:
// {"error":{"code":"...","message":"..."}}.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError maps err onto the error body shape. Domain sentinels and AI
// transport errors carry their own status; everything else is a 500.
func respondError(w http.ResponseWriter, err error) {
	var aiErr *ai.Error
	switch {
	case errors.Is(err, ai.ErrCanceled):
		respondJSON(w, statusClientClosedRequest, errorResponse{errorDetail{Code: "canceled", Message: err.Error()}})
	case errors.Is(err, ai.ErrBadFormat):
		respondJSON(w, http.StatusBadGateway, errorResponse{errorDetail{Code: "bad_ai_response", Message: err.Error()}})
	case errors.As(err, &aiErr):
		status := aiErr.Status
		if status == 0 {
			status = http.StatusBadGateway
		}
		respondJSON(w, status, errorResponse{errorDetail{Code: "ai_error", Message: aiErr.Message}})
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{errorDetail{Code: "not_found", Message: "resource not found"}})
	case errors.Is(err, domain.ErrValidation):
		respondJSON(w, http.StatusBadRequest, errorResponse{errorDetail{Code: "validation_error", Message: unwrapMessage(err)}})
	default:
		respondJSON(w, http.StatusInternalServerError, errorResponse{errorDetail{Code: "internal_error", Message: "internal server error"}})
	}
}

// respondBadRequest rejects a request before it reaches the service layer
// (missing or malformed body).
func respondBadRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{errorDetail{Code: "validation_error", Message: message}})
}

// decodeBody decodes the request body into v, returning false after writing
// a 400 when the body is malformed.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondBadRequest(w, "invalid request body")
		return false
	}
	return true
}

// unwrapMessage extracts the human-readable tail from a wrapped sentinel
// error, e.g. "service.TripService.Create: validation error: 目的地不能為空"
// → "目的地不能為空".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	marker := domain.ErrValidation.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}
