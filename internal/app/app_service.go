package app

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"

	"registrar-factura/internal/core"
)

// InvoiceService is the part of core.InvoiceService the application layer uses.
type InvoiceService interface {
	Register(ctx context.Context, sub core.Submission) core.Result
	Validate(ctx context.Context, sub core.Submission) core.Result
	Get(ctx context.Context, key core.InvoiceKey) (*core.InvoiceDetail, error)
}

type appService struct {
	invoices   InvoiceService
	dateLayout string
	schema     []byte
}

// NewAppService constructs an appService that satisfies ApplicationService.
// dateLayout formats dates in read-back results.
func NewAppService(invoices InvoiceService, dateLayout string) (ApplicationService, error) {
	schema, err := generateSchema()
	if err != nil {
		return nil, err
	}
	return &appService{
		invoices:   invoices,
		dateLayout: dateLayout,
		schema:     schema,
	}, nil
}

func (s *appService) RegisterInvoice(ctx context.Context, req InvoiceRequest) core.Result {
	return s.invoices.Register(ctx, req.Invoice)
}

func (s *appService) ValidateInvoice(ctx context.Context, req InvoiceRequest) core.Result {
	return s.invoices.Validate(ctx, req.Invoice)
}

func (s *appService) GetInvoice(ctx context.Context, sellerRUC, code string) (*InvoiceDetailResult, error) {
	seller, err := core.ParseTaxID(sellerRUC)
	if err != nil {
		return nil, err
	}
	detail, err := s.invoices.Get(ctx, core.InvoiceKey{SellerTaxID: seller, Code: code})
	if err != nil {
		return nil, err
	}
	return newInvoiceDetailResult(detail, s.dateLayout), nil
}

func (s *appService) SubmissionSchema() ([]byte, error) {
	return s.schema, nil
}

var (
	decimalType     = reflect.TypeOf(decimal.Decimal{})
	nullDecimalType = reflect.TypeOf(decimal.NullDecimal{})
)

// generateSchema reflects InvoiceRequest. Decimals are described as JSON
// numbers, which is how they are decoded.
func generateSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t {
			case decimalType:
				return &jsonschema.Schema{Type: "number"}
			case nullDecimalType:
				return &jsonschema.Schema{OneOf: []*jsonschema.Schema{{Type: "number"}, {Type: "null"}}}
			}
			return nil
		},
	}
	schema := reflector.Reflect(&InvoiceRequest{})
	schema.Title = "Registro de factura"
	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal submission schema: %w", err)
	}
	return b, nil
}
