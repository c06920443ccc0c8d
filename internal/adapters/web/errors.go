package web

import (
	"encoding/json"
	"net/http"

	"registrar-factura/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeJSONStatus(w, status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	})
}

// writeCoreError maps an error from the core to its HTTP status.
func writeCoreError(w http.ResponseWriter, r *http.Request, err error) {
	kind := core.KindOf(err)
	writeError(w, r, err.Error(), string(kind), statusForKind(kind))
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusForKind returns the HTTP status reported for a rejection kind.
func statusForKind(kind core.ErrorKind) int {
	switch kind {
	case core.KindMalformedIdentifier, core.KindMalformedDate, core.KindTotalsMismatch:
		return http.StatusUnprocessableEntity
	case core.KindUnknownSeller, core.KindUnknownBuyer, core.KindNotFound:
		return http.StatusNotFound
	case core.KindDuplicateInvoice:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}
