package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/core"
	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/store"
)

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Causes  []string `json:"causes,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses and stable error codes.
// Admission rejections carry their individual causes so a client can tell
// a jar overrun from a budget overrun.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var limitErr *core.LimitError
	if errors.As(err, &limitErr) {
		causes := make([]string, 0, len(limitErr.Causes))
		for _, c := range limitErr.Causes {
			causes = append(causes, string(c))
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    "limit_exceeded",
			Message: limitErr.Error(),
			Causes:  causes,
		})
		return
	}

	code, status := classifyError(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "url", r.URL.Path, "error", err)
		writeJSON(w, status, errorResponse{Code: code, Message: "internal error"})
		return
	}

	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

func classifyError(err error) (string, int) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "invalid_amount", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidBudget):
		return "invalid_budget", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrMissingAllocation):
		return "missing_allocation", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrDuplicateJar):
		return "duplicate_jar", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrAllocationExceedsBudget):
		return "allocation_exceeds_budget", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrAllocationMismatch):
		return "allocation_mismatch", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrLimitExceeded):
		return "limit_exceeded", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidDuration):
		return "invalid_duration", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrProtectedRecord):
		return "protected_record", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNoActiveChallenge):
		return "no_active_challenge", http.StatusConflict
	case errors.Is(err, core.ErrAlreadyConfigured):
		return "already_configured", http.StatusConflict
	case errors.Is(err, core.ErrNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, store.ErrUserExists):
		return "user_exists", http.StatusConflict
	case errors.Is(err, store.ErrUserNotFound), errors.Is(err, store.ErrTokenInvalid):
		return "unauthorized", http.StatusUnauthorized
	default:
		return "internal", http.StatusInternalServerError
	}
}
