package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"registrar-factura/internal/logger"
)

// DefaultFanOutLimit bounds concurrent child inserts for one invoice.
const DefaultFanOutLimit = 8

// ServiceConfig tunes an InvoiceService.
type ServiceConfig struct {
	DateLayout  string
	FanOutLimit int
}

// InvoiceService registers submitted invoices against a Store.
type InvoiceService struct {
	store      Store
	normalizer Normalizer
	fanOut     int
	log        *zap.Logger
}

// NewInvoiceService wires the service. A nil log disables logging unless the
// request context carries a logger.
func NewInvoiceService(store Store, cfg ServiceConfig, log *zap.Logger) *InvoiceService {
	fanOut := cfg.FanOutLimit
	if fanOut <= 0 {
		fanOut = DefaultFanOutLimit
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &InvoiceService{
		store:      store,
		normalizer: NewNormalizer(cfg.DateLayout),
		fanOut:     fanOut,
		log:        log,
	}
}

// Register runs the full workflow for one submission: normalize, check the
// seller and buyer, insert the invoice, reconcile totals, then insert line
// items and advance applications. A failure after the invoice insert removes
// the invoice and anything already written for it. Every outcome is reported
// through Result; Register never returns an error.
func (s *InvoiceService) Register(ctx context.Context, sub Submission) Result {
	log := s.logger(ctx).With(zap.String("invoice_code", sub.InvoiceCode), zap.String("seller_ruc", sub.SellerTaxID))

	inv, err := s.register(ctx, log, sub)
	if err != nil {
		return s.reject(log, err)
	}
	log.Info("invoice registered", zap.String("type", string(inv.Type)))
	seller := inv.SellerTaxID
	return Result{
		Success:     true,
		Message:     "invoice registered successfully",
		InvoiceCode: inv.Code,
		SellerTaxID: &seller,
	}
}

func (s *InvoiceService) register(ctx context.Context, log *zap.Logger, sub Submission) (*Invoice, error) {
	inv, cls, err := s.prepare(ctx, sub)
	if err != nil {
		return nil, err
	}

	if err := s.store.InsertInvoice(ctx, inv); err != nil {
		if errors.Is(err, ErrDuplicateInvoice) {
			return nil, &InvoiceError{
				Kind: KindDuplicateInvoice,
				Msg:  fmt.Sprintf("invoice %s already exists for seller %d", inv.Code, inv.SellerTaxID),
				Err:  err,
			}
		}
		return nil, storeError("insert invoice", err)
	}
	log.Debug("invoice row inserted")

	if _, err := Reconcile(inv, cls); err != nil {
		return nil, s.compensate(ctx, log, inv.InvoiceKey, err)
	}

	if err := s.insertChildren(ctx, inv, cls); err != nil {
		return nil, s.compensate(ctx, log, inv.InvoiceKey, err)
	}
	return inv, nil
}

// Validate runs every check Register runs, including a duplicate lookup, but
// writes nothing.
func (s *InvoiceService) Validate(ctx context.Context, sub Submission) Result {
	log := s.logger(ctx).With(zap.String("invoice_code", sub.InvoiceCode), zap.String("seller_ruc", sub.SellerTaxID))

	inv, cls, err := s.prepare(ctx, sub)
	if err == nil {
		err = s.checkNotRegistered(ctx, inv.InvoiceKey)
	}
	if err == nil {
		_, err = Reconcile(inv, cls)
	}
	if err != nil {
		return s.reject(log, err)
	}
	seller := inv.SellerTaxID
	return Result{
		Success:     true,
		Message:     "invoice is valid",
		InvoiceCode: inv.Code,
		SellerTaxID: &seller,
	}
}

// Get returns a stored invoice with its line items and applications.
func (s *InvoiceService) Get(ctx context.Context, key InvoiceKey) (*InvoiceDetail, error) {
	inv, err := s.store.GetInvoice(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &InvoiceError{
				Kind: KindNotFound,
				Msg:  fmt.Sprintf("invoice %s not found for seller %d", key.Code, key.SellerTaxID),
				Err:  err,
			}
		}
		return nil, storeError("get invoice", err)
	}
	items, err := s.store.ListLineItems(ctx, key)
	if err != nil {
		return nil, storeError("list line items", err)
	}
	apps, err := s.store.ListApplications(ctx, key)
	if err != nil {
		return nil, storeError("list advance applications", err)
	}
	return &InvoiceDetail{Invoice: *inv, LineItems: items, Applications: apps}, nil
}

// prepare normalizes and classifies sub and verifies the seller and buyer.
func (s *InvoiceService) prepare(ctx context.Context, sub Submission) (*Invoice, Classification, error) {
	inv, items, err := s.normalizer.Normalize(sub)
	if err != nil {
		return nil, Classification{}, err
	}
	cls := NewCorrelator(sub.AdvanceCodes()).Classify(items)

	ok, err := s.store.SellerExists(ctx, inv.SellerTaxID)
	if err != nil {
		return nil, Classification{}, storeError("check seller", err)
	}
	if !ok {
		return nil, Classification{}, newError(KindUnknownSeller, "seller with RUC %d does not exist", inv.SellerTaxID)
	}

	ok, err = s.store.BuyerExists(ctx, inv.BuyerTaxID)
	if err != nil {
		return nil, Classification{}, storeError("check buyer", err)
	}
	if !ok {
		return nil, Classification{}, newError(KindUnknownBuyer, "buyer with RUC %d does not exist", inv.BuyerTaxID)
	}
	return inv, cls, nil
}

func (s *InvoiceService) checkNotRegistered(ctx context.Context, key InvoiceKey) error {
	_, err := s.store.GetInvoice(ctx, key)
	switch {
	case err == nil:
		return newError(KindDuplicateInvoice, "invoice %s already exists for seller %d", key.Code, key.SellerTaxID)
	case errors.Is(err, ErrNotFound):
		return nil
	default:
		return storeError("get invoice", err)
	}
}

// insertChildren writes applications and line items concurrently and waits
// for all of them. The first failure is returned.
func (s *InvoiceService) insertChildren(ctx context.Context, inv *Invoice, cls Classification) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanOut)

	for _, app := range cls.Applications(inv) {
		g.Go(func() error {
			if err := s.store.InsertApplication(gctx, app); err != nil {
				return storeError("insert advance application "+app.Advance.Code, err)
			}
			return nil
		})
	}
	for i, item := range cls.LineItems() {
		g.Go(func() error {
			if err := s.store.InsertLineItem(gctx, item); err != nil {
				return storeError(fmt.Sprintf("insert line item %d", i+1), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// compensate deletes whatever was written for key and returns cause. A failed
// cleanup is logged and folded into the returned error message.
func (s *InvoiceService) compensate(ctx context.Context, log *zap.Logger, key InvoiceKey, cause error) error {
	if err := s.store.DeleteInvoice(context.WithoutCancel(ctx), key); err != nil {
		log.Error("compensating delete failed", zap.Error(err))
		var ie *InvoiceError
		if errors.As(cause, &ie) {
			ie.Msg += fmt.Sprintf(" (cleanup of invoice %s failed: %v)", key.Code, err)
		}
		return cause
	}
	log.Debug("invoice rows removed after failure")
	return cause
}

func (s *InvoiceService) reject(log *zap.Logger, err error) Result {
	kind := KindOf(err)
	if kind == KindStoreUnavailable {
		log.Error("invoice registration failed", zap.String("kind", string(kind)), zap.Error(err))
	} else {
		log.Info("invoice rejected", zap.String("kind", string(kind)), zap.Error(err))
	}
	return Result{
		Success: false,
		Message: "invoice rejected: " + err.Error(),
		Kind:    kind,
	}
}

func (s *InvoiceService) logger(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, s.log)
}
