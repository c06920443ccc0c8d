package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"registrar-factura/internal/app"
	"registrar-factura/internal/core"
)

// ErrRejected is returned when a submission was decoded but not accepted.
// The Result has already been written to the output by then.
var ErrRejected = errors.New("invoice rejected")

// Register reads one {"factura": ...} request from in, registers it and writes
// the Result as JSON to out.
func Register(ctx context.Context, svc app.ApplicationService, in io.Reader, out io.Writer) error {
	req, err := app.DecodeInvoiceRequest(in)
	if err != nil {
		return err
	}
	return writeResult(out, svc.RegisterInvoice(ctx, req))
}

// Validate is Register without writes.
func Validate(ctx context.Context, svc app.ApplicationService, in io.Reader, out io.Writer) error {
	req, err := app.DecodeInvoiceRequest(in)
	if err != nil {
		return err
	}
	return writeResult(out, svc.ValidateInvoice(ctx, req))
}

// Show writes a registered invoice to out, as JSON or as a text report.
func Show(ctx context.Context, svc app.ApplicationService, sellerRUC, code string, asJSON bool, out io.Writer) error {
	res, err := svc.GetInvoice(ctx, sellerRUC, code)
	if err != nil {
		return err
	}
	if asJSON {
		return encode(out, res)
	}
	printInvoice(out, res)
	return nil
}

// Schema writes the submission JSON Schema to out.
func Schema(svc app.ApplicationService, out io.Writer) error {
	b, err := svc.SubmissionSchema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

func writeResult(out io.Writer, res core.Result) error {
	if err := encode(out, res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%w (%s)", ErrRejected, res.Kind)
	}
	return nil
}

func encode(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printInvoice(out io.Writer, res *app.InvoiceDetailResult) {
	inv := res.Invoice
	rule := strings.Repeat("=", 72)

	fmt.Fprintln(out)
	fmt.Fprintln(out, rule)
	title := "FACTURA " + inv.Code
	if inv.Voided {
		title += " (ANULADA)"
	}
	fmt.Fprintf(out, "  %s\n", title)
	fmt.Fprintf(out, "  Tipo     : %s\n", inv.Type)
	fmt.Fprintf(out, "  Emision  : %s\n", inv.IssueDate)
	fmt.Fprintf(out, "  Vendedor : %d\n", inv.SellerTaxID)
	fmt.Fprintf(out, "  Cliente  : %d\n", inv.BuyerTaxID)
	fmt.Fprintf(out, "  Moneda   : %s\n", inv.Currency)
	if inv.AdvanceReference != nil {
		fmt.Fprintf(out, "  Anticipos: %s\n", *inv.AdvanceReference)
	}
	fmt.Fprintln(out, rule)

	fmt.Fprintf(out, "  %10s  %-6s %-30s %10s %10s\n", "CANT", "UNID", "DESCRIPCION", "V.UNIT", "VALOR")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 70))
	for _, it := range res.LineItems {
		desc := ""
		if it.Description != nil {
			desc = truncate(*it.Description, 30)
		}
		fmt.Fprintf(out, "  %10s  %-6s %-30s %10s %10s\n", it.Quantity, it.Unit, desc, it.UnitValue, it.Value)
	}
	fmt.Fprintln(out, "  "+strings.Repeat("-", 70))

	fmt.Fprintf(out, "  %-48s %21s\n", "Sub total ventas", inv.Subtotal)
	fmt.Fprintf(out, "  %-48s %21s\n", "Anticipos", inv.AdvanceApplied)
	fmt.Fprintf(out, "  %-48s %21s\n", "Valor venta", inv.NetValue)
	fmt.Fprintf(out, "  %-48s %21s\n", "Importe total", inv.FinalAmount)
	for _, a := range res.Applications {
		fmt.Fprintf(out, "  %-48s %21s\n", "Aplicado de "+a.AdvanceCode, a.Amount)
	}
	fmt.Fprintln(out, rule)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
