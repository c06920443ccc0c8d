package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"registrar-factura/internal/app"
	"registrar-factura/internal/core"
)

// registerInvoice handles POST /api/facturas/registrarFactura.
func (h *Handler) registerInvoice(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeInvoiceRequest(w, r)
	if !ok {
		return
	}
	writeResult(w, h.svc.RegisterInvoice(r.Context(), req))
}

// validateInvoice handles POST /api/facturas/validar.
func (h *Handler) validateInvoice(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeInvoiceRequest(w, r)
	if !ok {
		return
	}
	writeResult(w, h.svc.ValidateInvoice(r.Context(), req))
}

// getInvoice handles GET /api/facturas/{ruc}/{codigo}.
func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetInvoice(r.Context(), chi.URLParam(r, "ruc"), chi.URLParam(r, "codigo"))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// schema handles GET /api/facturas/schema.
func (h *Handler) schema(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.SubmissionSchema()
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	_, _ = w.Write(b)
}

// decodeInvoiceRequest decodes the request body and returns false + writes an
// appropriate error response on failure. Returns HTTP 413 when the body exceeds
// the size limit set by RequestBodyLimit middleware; HTTP 400 for all other
// decode errors.
func decodeInvoiceRequest(w http.ResponseWriter, r *http.Request) (app.InvoiceRequest, bool) {
	req, err := app.DecodeInvoiceRequest(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return app.InvoiceRequest{}, false
		}
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return app.InvoiceRequest{}, false
	}
	return req, true
}

func writeResult(w http.ResponseWriter, res core.Result) {
	status := http.StatusOK
	if !res.Success {
		status = statusForKind(res.Kind)
	}
	writeJSONStatus(w, status, res)
}
