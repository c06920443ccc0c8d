package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"registrar-factura/internal/core"
)

// ErrInvalidRequest is returned when a request body cannot be decoded.
var ErrInvalidRequest = errors.New("invalid request body")

// InvoiceRequest is the body accepted by the registration endpoints:
// the submission wrapped under "factura".
type InvoiceRequest struct {
	Invoice core.Submission `json:"factura" jsonschema:"required"`
}

// DecodeInvoiceRequest reads one InvoiceRequest from r. Amounts are decoded
// straight into decimals so no precision is lost on the way in.
func DecodeInvoiceRequest(r io.Reader) (InvoiceRequest, error) {
	var req InvoiceRequest
	dec := json.NewDecoder(r)
	if err := dec.Decode(&req); err != nil {
		return InvoiceRequest{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if dec.More() {
		return InvoiceRequest{}, fmt.Errorf("%w: unexpected data after the request object", ErrInvalidRequest)
	}
	return req, nil
}
