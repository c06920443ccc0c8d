package core_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"registrar-factura/internal/core"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func strPtr(s string) *string { return &s }

// memStore is an in-memory core.Store. Failure hooks let tests inject store
// errors at specific operations.
type memStore struct {
	mu           sync.Mutex
	sellers      map[int64]bool
	buyers       map[int64]bool
	invoices     map[core.InvoiceKey]core.Invoice
	items        map[core.InvoiceKey][]core.LineItem
	apps         map[core.InvoiceKey][]core.AdvancePaymentApplication
	nextID       int64
	calls        []string
	failInsertLI func(core.LineItem) error
	failSeller   error
	failDelete   error
}

func newMemStore() *memStore {
	return &memStore{
		sellers:  map[int64]bool{},
		buyers:   map[int64]bool{},
		invoices: map[core.InvoiceKey]core.Invoice{},
		items:    map[core.InvoiceKey][]core.LineItem{},
		apps:     map[core.InvoiceKey][]core.AdvancePaymentApplication{},
	}
}

func (m *memStore) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *memStore) called(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c == name {
			return true
		}
	}
	return false
}

func (m *memStore) SellerExists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SellerExists")
	if m.failSeller != nil {
		return false, m.failSeller
	}
	return m.sellers[id], nil
}

func (m *memStore) BuyerExists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("BuyerExists")
	return m.buyers[id], nil
}

func (m *memStore) InsertInvoice(_ context.Context, inv *core.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("InsertInvoice")
	if _, ok := m.invoices[inv.InvoiceKey]; ok {
		return fmt.Errorf("insert invoice: %w", core.ErrDuplicateInvoice)
	}
	m.invoices[inv.InvoiceKey] = *inv
	return nil
}

func (m *memStore) InsertLineItem(_ context.Context, item core.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("InsertLineItem")
	if m.failInsertLI != nil {
		if err := m.failInsertLI(item); err != nil {
			return err
		}
	}
	m.nextID++
	item.ID = m.nextID
	m.items[item.InvoiceKey] = append(m.items[item.InvoiceKey], item)
	return nil
}

func (m *memStore) InsertApplication(_ context.Context, app core.AdvancePaymentApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("InsertApplication")
	m.apps[app.Sale] = append(m.apps[app.Sale], app)
	return nil
}

func (m *memStore) DeleteInvoice(_ context.Context, key core.InvoiceKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteInvoice")
	if m.failDelete != nil {
		return m.failDelete
	}
	delete(m.invoices, key)
	delete(m.items, key)
	delete(m.apps, key)
	return nil
}

func (m *memStore) GetInvoice(_ context.Context, key core.InvoiceKey) (*core.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetInvoice")
	inv, ok := m.invoices[key]
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", key.Code, core.ErrNotFound)
	}
	return &inv, nil
}

func (m *memStore) ListLineItems(_ context.Context, key core.InvoiceKey) ([]core.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := append([]core.LineItem(nil), m.items[key]...)
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *memStore) ListApplications(_ context.Context, key core.InvoiceKey) ([]core.AdvancePaymentApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.AdvancePaymentApplication(nil), m.apps[key]...), nil
}

var errBoom = errors.New("connection reset")

const (
	sellerRUC = "2011111111"
	buyerRUC  = "2022222222"
)

func seededStore() *memStore {
	s := newMemStore()
	s.sellers[2011111111] = true
	s.buyers[2022222222] = true
	return s
}

// saleSubmission is scenario A: one 2 × 100.00 line, totals 200.00.
func saleSubmission(t *testing.T) core.Submission {
	return core.Submission{
		InvoiceCode: "F001-1",
		SellerTaxID: sellerRUC,
		BuyerTaxID:  buyerRUC,
		IssueDate:   "15/03/2024",
		Currency:    "PEN",
		Type:        core.InvoiceTypeSale,
		LineItems: []core.LineItemInput{
			{Quantity: dec(t, "2"), Unit: "NIU", Description: strPtr("Servicio de consultoria"), UnitValue: dec(t, "100.00")},
		},
		Totals: core.Totals{
			SubtotalSales: dec(t, "200.00"),
			Advances:      dec(t, "0"),
			NetValue:      dec(t, "200.00"),
			FinalAmount:   dec(t, "200.00"),
		},
	}
}
