package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paper-trader-go/internal/bot"
	"paper-trader-go/internal/config"
	"paper-trader-go/internal/ledger"
	"paper-trader-go/internal/logger"
	"paper-trader-go/internal/marketdata"
	"paper-trader-go/internal/paper"

	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Select the ledger store backend
	var store ledger.Store
	switch cfg.Ledger.Backend {
	case "rtdb":
		store = ledger.NewRTDBStore(&cfg.Ledger, log)
		log.Info("Using hosted ledger store", zap.String("base_url", cfg.Ledger.BaseURL))
	default:
		db, err := ledger.Open(cfg.Ledger.DSN)
		if err != nil {
			log.Fatal("Failed to open ledger database", zap.Error(err))
		}
		store = ledger.NewLocalStore(db, log)
		log.Info("Using local ledger store", zap.String("dsn", cfg.Ledger.DSN))
	}

	// Market data clients and router
	crypto := marketdata.NewCryptoClient(&cfg.MarketData, log)
	stocks := marketdata.NewStocksClient(&cfg.MarketData, log)
	market := marketdata.NewRouter(log, crypto, stocks)

	// Trading core
	executor := paper.NewExecutor(log, store, market)
	reconciler := paper.NewReconciler(log, store)
	valuator := paper.NewValuator(log, store, market)
	account := paper.NewAccount(log, store)
	trader := bot.New(log, store, market, executor)

	handler := NewHandler(log, store, market, executor, reconciler, valuator, account, trader)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: handler.Routes(),
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	go func() {
		log.Info("Starting web server", zap.String("address", addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal("Web server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}

	log.Info("Server has been shut down.")
}
