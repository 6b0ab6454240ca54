// Package main is the entry point for the fabriq API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fabriq/internal/config"
	coreseq "fabriq/internal/core/sequence"
	"fabriq/internal/domain"
	"fabriq/internal/domain/auth"
	"fabriq/internal/domain/client"
	"fabriq/internal/domain/invoice"
	"fabriq/internal/domain/material"
	"fabriq/internal/domain/pricing"
	"fabriq/internal/domain/quotation"
	v1 "fabriq/internal/infrastructure/http/v1"
	"fabriq/internal/infrastructure/invoicegen"
	infraseq "fabriq/internal/infrastructure/sequence"
	"fabriq/internal/infrastructure/storage/postgres"
	"fabriq/internal/infrastructure/storage/postgres/catalog_repo"
	"fabriq/internal/infrastructure/storage/postgres/document_repo"
	"fabriq/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting fabriq server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.ConnectionString())
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Sequence allocator ---
	var allocator coreseq.Allocator
	switch cfg.Sequence.Backend {
	case "file":
		fileStore, err := infraseq.NewFileStore(cfg.Sequence.FilePath)
		if err != nil {
			log.Fatalw("failed to open sequence state file", "error", err, "path", cfg.Sequence.FilePath)
		}
		allocator = fileStore
	default:
		allocator = infraseq.NewPostgresStore(pool)
	}
	log.Infow("sequence allocator initialized", "backend", cfg.Sequence.Backend)

	// --- Invoice generator ---
	generator, err := invoicegen.NewPDFGenerator(cfg.Invoice.OutputDir)
	if err != nil {
		log.Fatalw("failed to prepare invoice output directory", "error", err)
	}

	profile := invoice.Profile{
		Creditor: invoice.Party{
			Name:    cfg.Invoice.CreditorName,
			Line1:   cfg.Invoice.CreditorLine1,
			Line2:   cfg.Invoice.CreditorLine2,
			Country: cfg.Invoice.CreditorCountry,
		},
		IBAN:         cfg.Invoice.IBAN,
		Currency:     cfg.Invoice.Currency,
		PaymentTerms: cfg.Invoice.PaymentTerms,
	}

	// --- Services ---
	quotationRepo := document_repo.NewQuotationRepo(txManager)
	quotationService := quotation.NewService(quotationRepo, allocator, generator, txManager, profile)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}
	quotationService.SetAuditRecorder(auditService)

	materialService := domain.NewCatalogService[*material.Material](
		"material", catalog_repo.NewMaterialRepo(txManager), txManager)
	clientService := domain.NewCatalogService[*client.Client](
		"client", catalog_repo.NewClientRepo(txManager), txManager)

	// --- JWT ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.Auth.JWTSecret))

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:             pool,
		Logger:           log,
		JWTValidator:     jwtService,
		QuotationService: quotationService,
		MaterialService:  materialService,
		ClientService:    clientService,
		PricingRates: pricing.Rates{
			DesignPerHour:   cfg.Pricing.DesignPerHour,
			PrintingPerHour: cfg.Pricing.PrintingPerHour,
			HandlingPerHour: cfg.Pricing.HandlingPerHour,
			MarginPercent:   cfg.Pricing.MarginPercent,
		},
		AuditService:     auditService,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
