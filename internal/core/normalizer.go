package core

import (
	"strconv"
	"strings"
	"time"
)

// DefaultDateLayout matches issue dates written as dd/mm/yyyy.
const DefaultDateLayout = "02/01/2006"

// Normalizer turns a Submission into the records that get stored.
type Normalizer struct {
	DateLayout string
}

// NewNormalizer returns a Normalizer using layout, or DefaultDateLayout when
// layout is empty.
func NewNormalizer(layout string) Normalizer {
	if layout == "" {
		layout = DefaultDateLayout
	}
	return Normalizer{DateLayout: layout}
}

// Normalize validates identifiers and the issue date and derives the stored
// fields. Line items come back in submission order, bound to the invoice key.
func (n Normalizer) Normalize(sub Submission) (*Invoice, []LineItem, error) {
	sellerID, err := parseTaxID("rucEmisor", sub.SellerTaxID)
	if err != nil {
		return nil, nil, err
	}
	buyerID, err := parseTaxID("ruc", sub.BuyerTaxID)
	if err != nil {
		return nil, nil, err
	}

	layout := n.DateLayout
	if layout == "" {
		layout = DefaultDateLayout
	}
	issued, err := time.Parse(layout, strings.TrimSpace(sub.IssueDate))
	if err != nil {
		return nil, nil, &InvoiceError{
			Kind: KindMalformedDate,
			Msg:  "fechaEmision " + strconv.Quote(sub.IssueDate) + " is not a valid date",
			Err:  err,
		}
	}

	inv := &Invoice{
		InvoiceKey:         InvoiceKey{SellerTaxID: sellerID, Code: sub.InvoiceCode},
		IssueDate:          issued,
		BuyerTaxID:         buyerID,
		PaymentMeans:       PaymentMeansCash,
		AdvanceReference:   joinAdvanceCodes(sub.AdvanceCodes()),
		Currency:           sub.Currency,
		Subtotal:           sub.Totals.SubtotalSales,
		AdvanceApplied:     sub.Totals.Advances,
		NetValue:           sub.Totals.NetValue,
		WithholdingAmount:  sub.WithholdingAmount,
		WithholdingPercent: sub.WithholdingPercent,
		Observation:        sub.Observation,
		GoodsServiceCode:   sub.GoodsServiceCode,
		PaymentMethodCode:  sub.PaymentMethodCode,
		BankAccountNumber:  sub.BankAccountNumber,
		FinalAmount:        sub.Totals.FinalAmount,
		Type:               sub.Type,
	}
	if sub.Status != nil && *sub.Status == StatusVoided {
		marker := cancellationMarker
		inv.Cancellation = &marker
	}

	items := make([]LineItem, len(sub.LineItems))
	for i, in := range sub.LineItems {
		items[i] = LineItem{
			InvoiceKey:  inv.InvoiceKey,
			Quantity:    in.Quantity,
			Unit:        in.Unit,
			Description: in.Description,
			UnitValue:   in.UnitValue,
		}
	}
	return inv, items, nil
}

// ParseTaxID parses a RUC given outside a submission, such as a lookup key.
func ParseTaxID(raw string) (int64, error) {
	return parseTaxID("ruc", raw)
}

// parseTaxID accepts only ASCII digits: no sign, no surrounding spaces.
func parseTaxID(field, raw string) (int64, error) {
	if raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		return 0, &InvoiceError{
			Kind: KindMalformedIdentifier,
			Msg:  field + " " + strconv.Quote(raw) + " is not a numeric tax ID",
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &InvoiceError{
			Kind: KindMalformedIdentifier,
			Msg:  field + " " + strconv.Quote(raw) + " is not a numeric tax ID",
			Err:  err,
		}
	}
	return id, nil
}

func joinAdvanceCodes(codes []string) *string {
	if len(codes) == 0 {
		return nil
	}
	joined := strings.Join(codes, ", ")
	return &joined
}
