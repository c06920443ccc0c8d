package core

import (
	"strings"
)

// MatchAdvance returns the first code, in declaration order, that appears
// verbatim inside description. It never matches a nil description or an
// empty code list.
func MatchAdvance(description *string, codes []string) (string, bool) {
	if description == nil || len(codes) == 0 {
		return "", false
	}
	for _, code := range codes {
		if code == "" {
			continue
		}
		if strings.Contains(*description, code) {
			return code, true
		}
	}
	return "", false
}

// ClassifiedLine is a line item together with the advance invoice it applies,
// if any.
type ClassifiedLine struct {
	Item        LineItem
	AdvanceCode string
	IsAdvance   bool
}

// Classification partitions an invoice's line items. Lines keeps the
// submission order; Advances and Sales are views over it.
type Classification struct {
	Lines []ClassifiedLine
}

// Advances returns the lines matched to an advance-payment invoice.
func (c Classification) Advances() []ClassifiedLine {
	var out []ClassifiedLine
	for _, l := range c.Lines {
		if l.IsAdvance {
			out = append(out, l)
		}
	}
	return out
}

// Sales returns the ordinary sale lines.
func (c Classification) Sales() []ClassifiedLine {
	var out []ClassifiedLine
	for _, l := range c.Lines {
		if !l.IsAdvance {
			out = append(out, l)
		}
	}
	return out
}

// LineItems returns every line item in submission order.
func (c Classification) LineItems() []LineItem {
	out := make([]LineItem, len(c.Lines))
	for i, l := range c.Lines {
		out[i] = l.Item
	}
	return out
}

// Applications builds the advance-payment application records for inv. The
// advance invoice is always assumed to belong to the same seller. Amounts are
// stored as magnitudes; advance lines usually carry a negative unit value.
func (c Classification) Applications(inv *Invoice) []AdvancePaymentApplication {
	var apps []AdvancePaymentApplication
	for _, l := range c.Advances() {
		apps = append(apps, AdvancePaymentApplication{
			Sale:    inv.InvoiceKey,
			Advance: InvoiceKey{SellerTaxID: inv.SellerTaxID, Code: l.AdvanceCode},
			Amount:  l.Item.UnitValue.Abs(),
		})
	}
	return apps
}

// Correlator classifies line items against a fixed list of declared advance
// invoice codes.
type Correlator struct {
	codes []string
}

// NewCorrelator copies codes so later changes by the caller have no effect.
func NewCorrelator(codes []string) Correlator {
	return Correlator{codes: append([]string(nil), codes...)}
}

// Classify tags every item as an advance application or a sale line.
func (c Correlator) Classify(items []LineItem) Classification {
	lines := make([]ClassifiedLine, len(items))
	for i, item := range items {
		code, ok := MatchAdvance(item.Description, c.codes)
		lines[i] = ClassifiedLine{Item: item, AdvanceCode: code, IsAdvance: ok}
	}
	return Classification{Lines: lines}
}
