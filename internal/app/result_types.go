package app

import (
	"time"

	"github.com/shopspring/decimal"

	"registrar-factura/internal/core"
)

// InvoiceDetailResult is returned by GetInvoice. Amounts are rendered with
// core.FormatAmount so they keep at least two decimal places.
type InvoiceDetailResult struct {
	Invoice      InvoiceView       `json:"factura"`
	LineItems    []LineItemView    `json:"detalle"`
	Applications []ApplicationView `json:"anticiposAplicados"`
}

// InvoiceView is the read-back shape of an invoice header.
type InvoiceView struct {
	SellerTaxID        int64   `json:"rucVendedor"`
	Code               string  `json:"codigoFactura"`
	IssueDate          string  `json:"fechaEmision"`
	BuyerTaxID         int64   `json:"rucCliente"`
	PaymentMeans       string  `json:"formaPago"`
	AdvanceReference   *string `json:"facturaAnticipo,omitempty"`
	Currency           string  `json:"moneda"`
	Subtotal           string  `json:"subTotalVentas"`
	AdvanceApplied     string  `json:"anticipos"`
	NetValue           string  `json:"valorVenta"`
	WithholdingAmount  *string `json:"montoDetraccion,omitempty"`
	WithholdingPercent *string `json:"porcentajeDetraccion,omitempty"`
	Observation        string  `json:"observacion,omitempty"`
	GoodsServiceCode   string  `json:"bienServicioCodigo,omitempty"`
	PaymentMethodCode  string  `json:"medioPagoCodigo,omitempty"`
	BankAccountNumber  string  `json:"numeroCuentaBancoNacion,omitempty"`
	FinalAmount        string  `json:"importeTotal"`
	Type               string  `json:"tipoFactura"`
	Voided             bool    `json:"anulada"`
}

// LineItemView is the read-back shape of a line item.
type LineItemView struct {
	ID          int64   `json:"id"`
	Quantity    string  `json:"cantidad"`
	Unit        string  `json:"unidadMedida"`
	Description *string `json:"descripcion,omitempty"`
	UnitValue   string  `json:"valorUnitario"`
	Value       string  `json:"valor"`
}

// ApplicationView is the read-back shape of an advance application.
type ApplicationView struct {
	AdvanceCode string `json:"facturaAnticipo"`
	Amount      string `json:"montoAplicado"`
}

func newInvoiceDetailResult(d *core.InvoiceDetail, dateLayout string) *InvoiceDetailResult {
	inv := d.Invoice
	res := &InvoiceDetailResult{
		Invoice: InvoiceView{
			SellerTaxID:        inv.SellerTaxID,
			Code:               inv.Code,
			IssueDate:          formatDate(inv.IssueDate, dateLayout),
			BuyerTaxID:         inv.BuyerTaxID,
			PaymentMeans:       inv.PaymentMeans,
			AdvanceReference:   inv.AdvanceReference,
			Currency:           inv.Currency,
			Subtotal:           core.FormatAmount(inv.Subtotal),
			AdvanceApplied:     core.FormatAmount(inv.AdvanceApplied),
			NetValue:           core.FormatAmount(inv.NetValue),
			WithholdingAmount:  formatNullAmount(inv.WithholdingAmount),
			WithholdingPercent: formatNullAmount(inv.WithholdingPercent),
			Observation:        inv.Observation,
			GoodsServiceCode:   inv.GoodsServiceCode,
			PaymentMethodCode:  inv.PaymentMethodCode,
			BankAccountNumber:  inv.BankAccountNumber,
			FinalAmount:        core.FormatAmount(inv.FinalAmount),
			Type:               string(inv.Type),
			Voided:             inv.Voided(),
		},
		LineItems:    make([]LineItemView, 0, len(d.LineItems)),
		Applications: make([]ApplicationView, 0, len(d.Applications)),
	}
	for _, it := range d.LineItems {
		res.LineItems = append(res.LineItems, LineItemView{
			ID:          it.ID,
			Quantity:    it.Quantity.String(),
			Unit:        it.Unit,
			Description: it.Description,
			UnitValue:   core.FormatAmount(it.UnitValue),
			Value:       core.FormatAmount(it.Value()),
		})
	}
	for _, a := range d.Applications {
		res.Applications = append(res.Applications, ApplicationView{
			AdvanceCode: a.Advance.Code,
			Amount:      core.FormatAmount(a.Amount),
		})
	}
	return res
}

func formatDate(t time.Time, layout string) string {
	if layout == "" {
		layout = core.DefaultDateLayout
	}
	return t.Format(layout)
}

func formatNullAmount(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := core.FormatAmount(d.Decimal)
	return &s
}
