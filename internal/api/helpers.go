package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/splitpay/internal/models"
	"github.com/mmynk/splitpay/internal/money"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeLedgerError maps the ledger error taxonomy onto HTTP statuses:
// validation 400, not found 404, authorization 403, state conflict 409,
// execution 502 (retryable), anything else 500.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidation(err),
		errors.Is(err, money.ErrCurrencyMismatch),
		errors.Is(err, money.ErrNegativeAmount),
		errors.Is(err, money.ErrInvalidDecimal):
		writeError(w, http.StatusBadRequest, err)
	case models.IsNotFound(err):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, models.ErrNotOrganizer):
		writeError(w, http.StatusForbidden, err)
	case models.IsConflict(err):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, models.ErrTransferFailed):
		writeError(w, http.StatusBadGateway, err)
	default:
		slog.Error("Unhandled ledger error", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return false
	}
	return true
}
