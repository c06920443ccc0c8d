package core

import (
	"github.com/shopspring/decimal"
)

// ComputedTotals are the aggregates recomputed from the line items.
type ComputedTotals struct {
	AdvanceApplied decimal.Decimal // signed sum of matched unit values
	Subtotal       decimal.Decimal // sum of qty × unit value over sale lines
}

// NetValue is subtotal minus the magnitude of the applied advances.
func (t ComputedTotals) NetValue() decimal.Decimal {
	return t.Subtotal.Sub(t.AdvanceApplied.Abs())
}

// ComputeTotals accumulates the classified lines.
func ComputeTotals(cls Classification) ComputedTotals {
	t := ComputedTotals{AdvanceApplied: decimal.Zero, Subtotal: decimal.Zero}
	for _, l := range cls.Lines {
		if l.IsAdvance {
			t.AdvanceApplied = t.AdvanceApplied.Add(l.Item.UnitValue)
		} else {
			t.Subtotal = t.Subtotal.Add(l.Item.Value())
		}
	}
	return t
}

// Reconcile checks the invoice's declared totals against its line items using
// the rules for its type. Types other than VENTA and ANTICIPO have no rules.
func Reconcile(inv *Invoice, cls Classification) (ComputedTotals, error) {
	totals := ComputeTotals(cls)
	switch inv.Type {
	case InvoiceTypeSale:
		return totals, reconcileSale(inv, totals)
	case InvoiceTypeAdvance:
		return totals, reconcileAdvance(inv, cls)
	default:
		return totals, nil
	}
}

func reconcileSale(inv *Invoice, t ComputedTotals) error {
	applied := t.AdvanceApplied.Abs()
	if !applied.Equal(inv.AdvanceApplied) {
		return mismatch("VENTA: sum of applied advances does not match anticipos",
			Mismatch{Check: "anticipos", Computed: applied, Declared: inv.AdvanceApplied})
	}
	if !t.Subtotal.Equal(inv.Subtotal) {
		return mismatch("VENTA: computed sales subtotal does not match subTotalVentas",
			Mismatch{Check: "subTotalVentas", Computed: t.Subtotal, Declared: inv.Subtotal})
	}
	net := t.NetValue()
	if !EqualAll(net, inv.NetValue, inv.FinalAmount) {
		var ms []Mismatch
		if !net.Equal(inv.NetValue) {
			ms = append(ms, Mismatch{Check: "valorVenta", Computed: net, Declared: inv.NetValue})
		}
		if !net.Equal(inv.FinalAmount) {
			ms = append(ms, Mismatch{Check: "importeTotal", Computed: net, Declared: inv.FinalAmount})
		}
		return mismatch("VENTA: computed sale value does not match valorVenta or importeTotal", ms...)
	}
	return nil
}

func reconcileAdvance(inv *Invoice, cls Classification) error {
	if len(cls.Lines) == 0 {
		return nil
	}
	first := cls.Lines[0].Item.UnitValue.Abs()
	if EqualAll(first, inv.Subtotal, inv.FinalAmount) {
		return nil
	}
	var ms []Mismatch
	if !first.Equal(inv.Subtotal) {
		ms = append(ms, Mismatch{Check: "subTotalVentas", Computed: first, Declared: inv.Subtotal})
	}
	if !first.Equal(inv.FinalAmount) {
		ms = append(ms, Mismatch{Check: "importeTotal", Computed: first, Declared: inv.FinalAmount})
	}
	return mismatch("ANTICIPO: subTotalVentas and importeTotal must equal the line value", ms...)
}

func mismatch(msg string, ms ...Mismatch) *InvoiceError {
	return &InvoiceError{Kind: KindTotalsMismatch, Msg: msg, Mismatches: ms}
}
