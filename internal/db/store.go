package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"registrar-factura/internal/core"
)

const uniqueViolation = "23505"

// Store implements core.Store on PostgreSQL. Each method runs as its own
// statement on the pool, so concurrent calls are safe.
type Store struct {
	pool *pgxpool.Pool
}

var _ core.Store = (*Store)(nil)

// NewStore wraps pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) SellerExists(ctx context.Context, taxID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM aa_vendedor WHERE ruc_vendedor = $1)`, taxID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check seller %d: %w", taxID, err)
	}
	return exists, nil
}

func (s *Store) BuyerExists(ctx context.Context, taxID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM aa_cliente WHERE ruc_cliente = $1)`, taxID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check buyer %d: %w", taxID, err)
	}
	return exists, nil
}

func (s *Store) InsertInvoice(ctx context.Context, inv *core.Invoice) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO aa_factura (
			ruc_vendedor, codigo_factura, fecha_emision, ruc_cliente,
			forma_pago, factura_anticipo, tipo_moneda, sub_total_ventas,
			anticipos, valor_venta, monto_detraccion, observacion,
			cod_bien_servicio, cod_medio_pago, nro_cta_banco_nacion,
			porcentaje_detraccion, importe_total, tipo, anulacion
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		inv.SellerTaxID, inv.Code, inv.IssueDate, inv.BuyerTaxID,
		inv.PaymentMeans, inv.AdvanceReference, inv.Currency, inv.Subtotal,
		inv.AdvanceApplied, inv.NetValue, inv.WithholdingAmount, inv.Observation,
		inv.GoodsServiceCode, inv.PaymentMethodCode, inv.BankAccountNumber,
		inv.WithholdingPercent, inv.FinalAmount, string(inv.Type), inv.Cancellation,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert invoice %s: %w: %w", inv.Code, core.ErrDuplicateInvoice, err)
		}
		return fmt.Errorf("insert invoice %s: %w", inv.Code, err)
	}
	return nil
}

// InsertLineItem leaves id_producto and codigo NULL; products are not linked.
func (s *Store) InsertLineItem(ctx context.Context, item core.LineItem) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO aa_detalle_factura (
			ruc_vendedor, codigo_factura, id_producto, cantidad,
			unidad_medida, codigo, descripcion, valor_unitario
		) VALUES ($1, $2, NULL, $3, $4, NULL, $5, $6)`,
		item.SellerTaxID, item.Code, item.Quantity, item.Unit, item.Description, item.UnitValue,
	)
	if err != nil {
		return fmt.Errorf("insert line item for %s: %w", item.Code, err)
	}
	return nil
}

func (s *Store) InsertApplication(ctx context.Context, app core.AdvancePaymentApplication) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO aa_anticipo_aplicado (
			venta_ruc_vendedor, venta_codigo_factura,
			anticipo_ruc_vendedor, anticipo_codigo_factura, monto_aplicado
		) VALUES ($1, $2, $3, $4, $5)`,
		app.Sale.SellerTaxID, app.Sale.Code, app.Advance.SellerTaxID, app.Advance.Code, app.Amount,
	)
	if err != nil {
		return fmt.Errorf("insert advance application %s -> %s: %w", app.Sale.Code, app.Advance.Code, err)
	}
	return nil
}

// DeleteInvoice removes the invoice, its line items and its applications in
// one transaction.
func (s *Store) DeleteInvoice(ctx context.Context, key core.InvoiceKey) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stmts := []string{
		`DELETE FROM aa_anticipo_aplicado WHERE venta_ruc_vendedor = $1 AND venta_codigo_factura = $2`,
		`DELETE FROM aa_detalle_factura WHERE ruc_vendedor = $1 AND codigo_factura = $2`,
		`DELETE FROM aa_factura WHERE ruc_vendedor = $1 AND codigo_factura = $2`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt, key.SellerTaxID, key.Code); err != nil {
			return fmt.Errorf("delete invoice %s: %w", key.Code, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit delete of invoice %s: %w", key.Code, err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, key core.InvoiceKey) (*core.Invoice, error) {
	inv := &core.Invoice{}
	var tipo string
	err := s.pool.QueryRow(ctx, `
		SELECT ruc_vendedor, codigo_factura, fecha_emision, ruc_cliente,
		       forma_pago, factura_anticipo, tipo_moneda, sub_total_ventas,
		       anticipos, valor_venta, monto_detraccion, observacion,
		       cod_bien_servicio, cod_medio_pago, nro_cta_banco_nacion,
		       porcentaje_detraccion, importe_total, tipo, anulacion
		FROM aa_factura
		WHERE ruc_vendedor = $1 AND codigo_factura = $2`,
		key.SellerTaxID, key.Code,
	).Scan(
		&inv.SellerTaxID, &inv.Code, &inv.IssueDate, &inv.BuyerTaxID,
		&inv.PaymentMeans, &inv.AdvanceReference, &inv.Currency, &inv.Subtotal,
		&inv.AdvanceApplied, &inv.NetValue, &inv.WithholdingAmount, &inv.Observation,
		&inv.GoodsServiceCode, &inv.PaymentMethodCode, &inv.BankAccountNumber,
		&inv.WithholdingPercent, &inv.FinalAmount, &tipo, &inv.Cancellation,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", key.Code, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch invoice %s: %w", key.Code, err)
	}
	inv.Type = core.InvoiceType(tipo)
	return inv, nil
}

// ListLineItems returns the invoice's line items in insertion order.
func (s *Store) ListLineItems(ctx context.Context, key core.InvoiceKey) ([]core.LineItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT detalle_id, ruc_vendedor, codigo_factura, cantidad, unidad_medida, descripcion, valor_unitario
		FROM aa_detalle_factura
		WHERE ruc_vendedor = $1 AND codigo_factura = $2
		ORDER BY detalle_id`,
		key.SellerTaxID, key.Code,
	)
	if err != nil {
		return nil, fmt.Errorf("list line items for %s: %w", key.Code, err)
	}
	defer rows.Close()

	var items []core.LineItem
	for rows.Next() {
		var it core.LineItem
		if err := rows.Scan(&it.ID, &it.SellerTaxID, &it.Code, &it.Quantity, &it.Unit, &it.Description, &it.UnitValue); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}
	return items, nil
}

func (s *Store) ListApplications(ctx context.Context, key core.InvoiceKey) ([]core.AdvancePaymentApplication, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT venta_ruc_vendedor, venta_codigo_factura, anticipo_ruc_vendedor, anticipo_codigo_factura, monto_aplicado
		FROM aa_anticipo_aplicado
		WHERE venta_ruc_vendedor = $1 AND venta_codigo_factura = $2
		ORDER BY anticipo_codigo_factura`,
		key.SellerTaxID, key.Code,
	)
	if err != nil {
		return nil, fmt.Errorf("list advance applications for %s: %w", key.Code, err)
	}
	defer rows.Close()

	var apps []core.AdvancePaymentApplication
	for rows.Next() {
		var a core.AdvancePaymentApplication
		if err := rows.Scan(&a.Sale.SellerTaxID, &a.Sale.Code, &a.Advance.SellerTaxID, &a.Advance.Code, &a.Amount); err != nil {
			return nil, fmt.Errorf("scan advance application: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating advance applications: %w", err)
	}
	return apps, nil
}

// CreateSeller and CreateBuyer provision parties. Registration never calls
// them; they back the seed command and tests.
func (s *Store) CreateSeller(ctx context.Context, seller core.Seller) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO aa_vendedor (ruc_vendedor, nombre_vendedor) VALUES ($1, $2)
		ON CONFLICT (ruc_vendedor) DO UPDATE SET nombre_vendedor = EXCLUDED.nombre_vendedor`,
		seller.TaxID, seller.Name)
	if err != nil {
		return fmt.Errorf("create seller %d: %w", seller.TaxID, err)
	}
	return nil
}

func (s *Store) CreateBuyer(ctx context.Context, buyer core.Buyer) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO aa_cliente (ruc_cliente, nombre_cliente) VALUES ($1, $2)
		ON CONFLICT (ruc_cliente) DO UPDATE SET nombre_cliente = EXCLUDED.nombre_cliente`,
		buyer.TaxID, buyer.Name)
	if err != nil {
		return fmt.Errorf("create buyer %d: %w", buyer.TaxID, err)
	}
	return nil
}
