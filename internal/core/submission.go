package core

import (
	"github.com/shopspring/decimal"
)

// Submission is an invoice exactly as a client posts it. Amounts decode
// straight from the JSON number text into decimals, so no value ever passes
// through float64.
type Submission struct {
	InvoiceCode        string              `json:"serieNumero" jsonschema:"required" jsonschema_description:"Invoice series and number, unique per seller (e.g. F001-1)"`
	SellerTaxID        string              `json:"rucEmisor" jsonschema:"required" jsonschema_description:"Seller RUC as a string of decimal digits"`
	IssueDate          string              `json:"fechaEmision" jsonschema:"required" jsonschema_description:"Issue date in dd/mm/yyyy format"`
	BuyerTaxID         string              `json:"ruc" jsonschema:"required" jsonschema_description:"Buyer RUC as a string of decimal digits"`
	Currency           string              `json:"moneda" jsonschema_description:"Currency code (e.g. PEN, USD)"`
	AdvanceInvoices    []AdvanceReference  `json:"facturaAnticipo,omitempty" jsonschema_description:"Advance-payment invoices applied by this sale, in declaration order"`
	Observation        string              `json:"observacion,omitempty"`
	GoodsServiceCode   string              `json:"bienServicioCodigo,omitempty" jsonschema_description:"Detraccion goods/service code"`
	PaymentMethodCode  string              `json:"medioPagoCodigo,omitempty"`
	BankAccountNumber  string              `json:"numeroCuentaBancoNacion,omitempty"`
	WithholdingPercent decimal.NullDecimal `json:"porcentajeDetraccion,omitempty"`
	WithholdingAmount  decimal.NullDecimal `json:"montoDetraccion,omitempty"`
	Status             *string             `json:"estadoFactura,omitempty" jsonschema_description:"ANULADO marks the invoice as voided"`
	Type               InvoiceType         `json:"tipoFactura" jsonschema:"required,enum=VENTA,enum=ANTICIPO" jsonschema_description:"VENTA for a sale, ANTICIPO for an advance payment"`
	LineItems          []LineItemInput     `json:"detalle" jsonschema:"required"`
	Totals             Totals              `json:"totales" jsonschema:"required"`
}

// AdvanceReference names one advance-payment invoice.
type AdvanceReference struct {
	Number string `json:"numero" jsonschema:"required" jsonschema_description:"Invoice code of the advance-payment invoice (e.g. F001-5)"`
}

// LineItemInput is one submitted detalle row.
type LineItemInput struct {
	Quantity    decimal.Decimal `json:"cantidad" jsonschema:"required"`
	Unit        string          `json:"unidadMedida,omitempty" jsonschema_description:"Unit of measure (e.g. NIU, ZZ)"`
	Description *string         `json:"descripcion,omitempty" jsonschema_description:"Free text. Lines whose text contains a declared advance invoice code are treated as advance applications"`
	UnitValue   decimal.Decimal `json:"valorUnitario" jsonschema:"required" jsonschema_description:"Unit value; negative for advance applications and corrections"`
}

// Totals is the declared totals block. Only SubtotalSales, Advances,
// NetValue and FinalAmount take part in reconciliation; the rest are
// accepted for completeness.
type Totals struct {
	SubtotalSales decimal.Decimal     `json:"subTotalVentas" jsonschema:"required"`
	Advances      decimal.Decimal     `json:"anticipos"`
	Discounts     decimal.NullDecimal `json:"descuentos,omitempty"`
	NetValue      decimal.Decimal     `json:"valorVenta" jsonschema:"required"`
	ISC           decimal.NullDecimal `json:"isc,omitempty"`
	IGV           decimal.NullDecimal `json:"igv,omitempty"`
	OtherCharges  decimal.NullDecimal `json:"otrosCargos,omitempty"`
	OtherTaxes    decimal.NullDecimal `json:"otrosTributos,omitempty"`
	Rounding      decimal.NullDecimal `json:"montoRedondeo,omitempty"`
	FinalAmount   decimal.Decimal     `json:"importeTotal" jsonschema:"required"`
}

// AdvanceCodes returns the non-empty declared advance invoice codes in order.
func (s Submission) AdvanceCodes() []string {
	codes := make([]string, 0, len(s.AdvanceInvoices))
	for _, a := range s.AdvanceInvoices {
		if a.Number != "" {
			codes = append(codes, a.Number)
		}
	}
	return codes
}
