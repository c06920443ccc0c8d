package db_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar-factura/internal/config"
	"registrar-factura/internal/core"
	"registrar-factura/internal/db"
)

const (
	testSeller int64 = 2011111111
	testBuyer  int64 = 2022222222
)

func setupTestDB(t *testing.T) (*pgxpool.Pool, *db.Store) {
	_ = godotenv.Load("../../.env")

	// Integration tests truncate tables, so they only run against TEST_DATABASE_URL.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, config.DatabaseConfig{URL: dbURL})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = db.Migrate(pool)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `TRUNCATE TABLE aa_anticipo_aplicado, aa_detalle_factura, aa_factura, aa_cliente, aa_vendedor CASCADE`)
	require.NoError(t, err)

	store := db.NewStore(pool)
	require.NoError(t, store.CreateSeller(ctx, core.Seller{TaxID: testSeller, Name: "Ferreteria Central"}))
	require.NoError(t, store.CreateBuyer(ctx, core.Buyer{TaxID: testBuyer, Name: "Constructora Sur"}))
	return pool, store
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleInvoice(code string) *core.Invoice {
	ref := "F001-5"
	return &core.Invoice{
		InvoiceKey:        core.InvoiceKey{SellerTaxID: testSeller, Code: code},
		IssueDate:         time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		BuyerTaxID:        testBuyer,
		PaymentMeans:      core.PaymentMeansCash,
		AdvanceReference:  &ref,
		Currency:          "PEN",
		Subtotal:          dec("200.00"),
		AdvanceApplied:    dec("50.00"),
		NetValue:          dec("150.00"),
		WithholdingAmount: decimal.NewNullDecimal(dec("18.00")),
		FinalAmount:       dec("150.00"),
		Type:              core.InvoiceTypeSale,
	}
}

func TestStore_SellerAndBuyerExists(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()

	ok, err := store.SellerExists(ctx, testSeller)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.SellerExists(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.BuyerExists(ctx, testBuyer)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_InvoiceRoundTrip(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()
	inv := sampleInvoice("F001-1")

	require.NoError(t, store.InsertInvoice(ctx, inv))
	desc := "Anticipo F001-5"
	require.NoError(t, store.InsertLineItem(ctx, core.LineItem{InvoiceKey: inv.InvoiceKey, Quantity: dec("2"), Unit: "NIU", UnitValue: dec("100.00")}))
	require.NoError(t, store.InsertLineItem(ctx, core.LineItem{InvoiceKey: inv.InvoiceKey, Quantity: dec("1"), Unit: "NIU", Description: &desc, UnitValue: dec("-50.00")}))
	require.NoError(t, store.InsertApplication(ctx, core.AdvancePaymentApplication{
		Sale:    inv.InvoiceKey,
		Advance: core.InvoiceKey{SellerTaxID: testSeller, Code: "F001-5"},
		Amount:  dec("50.00"),
	}))

	got, err := store.GetInvoice(ctx, inv.InvoiceKey)
	require.NoError(t, err)
	assert.Equal(t, inv.Code, got.Code)
	assert.Equal(t, core.InvoiceTypeSale, got.Type)
	assert.True(t, got.Subtotal.Equal(inv.Subtotal))
	assert.Equal(t, "200.00", core.FormatAmount(got.Subtotal))
	assert.True(t, got.WithholdingAmount.Valid)
	assert.False(t, got.WithholdingPercent.Valid)
	assert.Nil(t, got.Cancellation)
	require.NotNil(t, got.AdvanceReference)
	assert.Equal(t, "F001-5", *got.AdvanceReference)
	assert.True(t, got.IssueDate.Equal(inv.IssueDate))

	items, err := store.ListLineItems(ctx, inv.InvoiceKey)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.NotZero(t, items[0].ID)
	assert.Less(t, items[0].ID, items[1].ID)
	require.NotNil(t, items[1].Description)

	apps, err := store.ListApplications(ctx, inv.InvoiceKey)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.True(t, apps[0].Amount.Equal(dec("50")))
}

func TestStore_DuplicateInvoice(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.InsertInvoice(ctx, sampleInvoice("F001-2")))
	err := store.InsertInvoice(ctx, sampleInvoice("F001-2"))
	assert.ErrorIs(t, err, core.ErrDuplicateInvoice)
}

func TestStore_GetInvoiceNotFound(t *testing.T) {
	_, store := setupTestDB(t)

	_, err := store.GetInvoice(context.Background(), core.InvoiceKey{SellerTaxID: testSeller, Code: "NOPE"})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_DeleteInvoiceRemovesChildren(t *testing.T) {
	pool, store := setupTestDB(t)
	ctx := context.Background()
	inv := sampleInvoice("F001-3")

	require.NoError(t, store.InsertInvoice(ctx, inv))
	require.NoError(t, store.InsertLineItem(ctx, core.LineItem{InvoiceKey: inv.InvoiceKey, Quantity: dec("1"), UnitValue: dec("1")}))
	require.NoError(t, store.InsertApplication(ctx, core.AdvancePaymentApplication{Sale: inv.InvoiceKey, Advance: inv.InvoiceKey, Amount: dec("1")}))

	require.NoError(t, store.DeleteInvoice(ctx, inv.InvoiceKey))

	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM aa_detalle_factura`).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM aa_anticipo_aplicado`).Scan(&n))
	assert.Zero(t, n)

	_, err := store.GetInvoice(ctx, inv.InvoiceKey)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_RegisterThroughService(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()
	svc := core.NewInvoiceService(store, core.ServiceConfig{}, nil)

	desc := "Aplicacion anticipo F001-5"
	sub := core.Submission{
		InvoiceCode:     "F001-10",
		SellerTaxID:     "2011111111",
		IssueDate:       "15/03/2024",
		BuyerTaxID:      "2022222222",
		Currency:        "PEN",
		Type:            core.InvoiceTypeSale,
		AdvanceInvoices: []core.AdvanceReference{{Number: "F001-5"}},
		LineItems: []core.LineItemInput{
			{Quantity: dec("2"), Unit: "NIU", UnitValue: dec("100.00")},
			{Quantity: dec("1"), Unit: "NIU", Description: &desc, UnitValue: dec("-50.00")},
		},
		Totals: core.Totals{
			SubtotalSales: dec("200.00"),
			Advances:      dec("50.00"),
			NetValue:      dec("150.00"),
			FinalAmount:   dec("150.00"),
		},
	}

	res := svc.Register(ctx, sub)
	require.True(t, res.Success, res.Message)

	detail, err := svc.Get(ctx, core.InvoiceKey{SellerTaxID: testSeller, Code: "F001-10"})
	require.NoError(t, err)
	assert.Len(t, detail.LineItems, 2)
	assert.Len(t, detail.Applications, 1)

	again := svc.Register(ctx, sub)
	assert.False(t, again.Success)
	assert.Equal(t, core.KindDuplicateInvoice, again.Kind)
}
