package core

import (
	"context"
)

// Store is the persistence contract the invoice service relies on. Each
// method is one independent operation; implementations must be safe for
// concurrent use because child rows are inserted in parallel.
//
// InsertInvoice returns an error matching ErrDuplicateInvoice when the key
// already exists. GetInvoice returns an error matching ErrNotFound when it
// does not.
type Store interface {
	SellerExists(ctx context.Context, taxID int64) (bool, error)
	BuyerExists(ctx context.Context, taxID int64) (bool, error)

	InsertInvoice(ctx context.Context, inv *Invoice) error
	InsertLineItem(ctx context.Context, item LineItem) error
	InsertApplication(ctx context.Context, app AdvancePaymentApplication) error

	// DeleteInvoice removes the invoice and every row it owns.
	DeleteInvoice(ctx context.Context, key InvoiceKey) error

	GetInvoice(ctx context.Context, key InvoiceKey) (*Invoice, error)
	ListLineItems(ctx context.Context, key InvoiceKey) ([]LineItem, error)
	ListApplications(ctx context.Context, key InvoiceKey) ([]AdvancePaymentApplication, error)
}
