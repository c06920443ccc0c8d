package app

import (
	"context"

	"registrar-factura/internal/core"
)

// ApplicationService is the single interface all adapters (CLI, Web) call.
// It decouples presentation from the registration core. Implementations must
// contain no display logic of any kind.
type ApplicationService interface {
	// RegisterInvoice validates and persists one submitted invoice. The outcome,
	// including every rejection, is reported in the Result.
	RegisterInvoice(ctx context.Context, req InvoiceRequest) core.Result

	// ValidateInvoice runs every registration check without writing anything.
	ValidateInvoice(ctx context.Context, req InvoiceRequest) core.Result

	// GetInvoice returns a registered invoice with its line items and advance
	// applications. sellerRUC is the seller's tax ID as decimal digits.
	GetInvoice(ctx context.Context, sellerRUC, code string) (*InvoiceDetailResult, error)

	// SubmissionSchema returns the JSON Schema of the request body accepted by
	// RegisterInvoice and ValidateInvoice.
	SubmissionSchema() ([]byte, error)
}
