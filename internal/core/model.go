package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceType is the tipoFactura tag that selects the reconciliation rules.
type InvoiceType string

const (
	InvoiceTypeSale    InvoiceType = "VENTA"
	InvoiceTypeAdvance InvoiceType = "ANTICIPO"
)

const (
	// PaymentMeansCash is the only payment means the service records.
	PaymentMeansCash = "Contado"

	// StatusVoided is the estadoFactura value that marks an invoice as cancelled.
	StatusVoided = "ANULADO"

	cancellationMarker = "1"
)

// Seller is an issuing taxpayer (vendedor). Sellers are provisioned outside
// this service; registration only checks that one exists.
type Seller struct {
	TaxID int64  `json:"ruc_vendedor"`
	Name  string `json:"nombre_vendedor"`
}

// Buyer is the receiving taxpayer (cliente).
type Buyer struct {
	TaxID int64  `json:"ruc_cliente"`
	Name  string `json:"nombre_cliente"`
}

// InvoiceKey identifies an invoice: the code is unique per seller.
type InvoiceKey struct {
	SellerTaxID int64  `json:"ruc_vendedor"`
	Code        string `json:"codigo_factura"`
}

// Invoice is the normalized invoice header as it is stored.
type Invoice struct {
	InvoiceKey
	IssueDate          time.Time           `json:"fecha_emision"`
	BuyerTaxID         int64               `json:"ruc_cliente"`
	PaymentMeans       string              `json:"forma_pago"`
	AdvanceReference   *string             `json:"factura_anticipo,omitempty"`
	Currency           string              `json:"tipo_moneda"`
	Subtotal           decimal.Decimal     `json:"sub_total_ventas"`
	AdvanceApplied     decimal.Decimal     `json:"anticipos"`
	NetValue           decimal.Decimal     `json:"valor_venta"`
	WithholdingAmount  decimal.NullDecimal `json:"monto_detraccion"`
	WithholdingPercent decimal.NullDecimal `json:"porcentaje_detraccion"`
	Observation        string              `json:"observacion"`
	GoodsServiceCode   string              `json:"cod_bien_servicio"`
	PaymentMethodCode  string              `json:"cod_medio_pago"`
	BankAccountNumber  string              `json:"nro_cta_banco_nacion"`
	FinalAmount        decimal.Decimal     `json:"importe_total"`
	Type               InvoiceType         `json:"tipo"`
	Cancellation       *string             `json:"anulacion,omitempty"`
}

// Voided reports whether the invoice carries the cancellation marker.
func (i *Invoice) Voided() bool {
	return i.Cancellation != nil
}

// LineItem is one detalle row. ID is assigned by the store and is zero until
// the row has been read back.
type LineItem struct {
	ID int64 `json:"detalle_id,omitempty"`
	InvoiceKey
	Quantity    decimal.Decimal `json:"cantidad"`
	Unit        string          `json:"unidad_medida"`
	Description *string         `json:"descripcion,omitempty"`
	UnitValue   decimal.Decimal `json:"valor_unitario"`
}

// Value returns quantity × unit value.
func (l LineItem) Value() decimal.Decimal {
	return LineValue(l.Quantity, l.UnitValue)
}

// AdvancePaymentApplication records that a sale invoice consumed part of an
// advance-payment invoice issued by the same seller.
type AdvancePaymentApplication struct {
	Sale    InvoiceKey      `json:"venta"`
	Advance InvoiceKey      `json:"anticipo"`
	Amount  decimal.Decimal `json:"monto_aplicado"`
}

// InvoiceDetail is an invoice together with everything it owns.
type InvoiceDetail struct {
	Invoice      Invoice                     `json:"factura"`
	LineItems    []LineItem                  `json:"detalle"`
	Applications []AdvancePaymentApplication `json:"anticipos_aplicados"`
}

// Result is the uniform outcome of a registration or validation call.
type Result struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	InvoiceCode string    `json:"codigoFactura,omitempty"`
	SellerTaxID *int64    `json:"rucVendedor,omitempty"`
	Kind        ErrorKind `json:"-"`
}
