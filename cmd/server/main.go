package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	webAdapter "registrar-factura/internal/adapters/web"
	"registrar-factura/internal/app"
	"registrar-factura/internal/config"
	"registrar-factura/internal/core"
	"registrar-factura/internal/db"
	"registrar-factura/internal/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("FACTURAS_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		zl.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	invoices := core.NewInvoiceService(db.NewStore(pool), core.ServiceConfig{
		DateLayout:  cfg.Invoice.DateLayout,
		FanOutLimit: cfg.Invoice.FanOutLimit,
	}, zl)

	svc, err := app.NewAppService(invoices, cfg.Invoice.DateLayout)
	if err != nil {
		zl.Fatal("application service", zap.Error(err))
	}

	handler := webAdapter.NewHandler(svc, zl, webAdapter.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Ping:           pool.Ping,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zl.Error("shutdown", zap.Error(err))
		}
	}()

	zl.Info("server starting", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Fatal("server", zap.Error(err))
	}
	zl.Info("server stopped")
}
