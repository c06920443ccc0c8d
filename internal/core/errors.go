package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrorKind classifies why a submission was rejected.
type ErrorKind string

const (
	KindMalformedIdentifier ErrorKind = "MALFORMED_IDENTIFIER"
	KindMalformedDate       ErrorKind = "MALFORMED_DATE"
	KindUnknownSeller       ErrorKind = "UNKNOWN_SELLER"
	KindUnknownBuyer        ErrorKind = "UNKNOWN_BUYER"
	KindDuplicateInvoice    ErrorKind = "DUPLICATE_INVOICE"
	KindTotalsMismatch      ErrorKind = "TOTALS_MISMATCH"
	KindStoreUnavailable    ErrorKind = "STORE_UNAVAILABLE"
	KindNotFound            ErrorKind = "NOT_FOUND"
)

// Sentinels for errors.Is. An *InvoiceError matches the sentinel of its Kind.
var (
	ErrMalformedIdentifier = errors.New("malformed identifier")
	ErrMalformedDate       = errors.New("malformed date")
	ErrUnknownSeller       = errors.New("unknown seller")
	ErrUnknownBuyer        = errors.New("unknown buyer")
	ErrDuplicateInvoice    = errors.New("duplicate invoice")
	ErrTotalsMismatch      = errors.New("totals mismatch")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrNotFound            = errors.New("not found")
)

var sentinels = map[ErrorKind]error{
	KindMalformedIdentifier: ErrMalformedIdentifier,
	KindMalformedDate:       ErrMalformedDate,
	KindUnknownSeller:       ErrUnknownSeller,
	KindUnknownBuyer:        ErrUnknownBuyer,
	KindDuplicateInvoice:    ErrDuplicateInvoice,
	KindTotalsMismatch:      ErrTotalsMismatch,
	KindStoreUnavailable:    ErrStoreUnavailable,
	KindNotFound:            ErrNotFound,
}

// Mismatch describes one failed reconciliation check.
type Mismatch struct {
	Check    string
	Computed decimal.Decimal
	Declared decimal.Decimal
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: computed %s vs declared %s", m.Check, FormatAmount(m.Computed), FormatAmount(m.Declared))
}

// InvoiceError is the error type returned by every core operation.
type InvoiceError struct {
	Kind       ErrorKind
	Msg        string
	Err        error
	Mismatches []Mismatch
}

func (e *InvoiceError) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	for i, m := range e.Mismatches {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(m.String())
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *InvoiceError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *InvoiceError) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

func newError(kind ErrorKind, format string, args ...any) *InvoiceError {
	return &InvoiceError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func storeError(op string, err error) *InvoiceError {
	return &InvoiceError{Kind: KindStoreUnavailable, Msg: op, Err: err}
}

// KindOf returns the kind of err, or KindStoreUnavailable for errors that did
// not originate in this package.
func KindOf(err error) ErrorKind {
	var ie *InvoiceError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return KindStoreUnavailable
}
