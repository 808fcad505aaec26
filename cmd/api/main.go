package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glassline/erp-api/internal/auth"
	"github.com/glassline/erp-api/internal/config"
	"github.com/glassline/erp-api/internal/database"
	"github.com/glassline/erp-api/internal/http/handler"
	"github.com/glassline/erp-api/internal/http/middleware"
	"github.com/glassline/erp-api/internal/http/router"
	"github.com/glassline/erp-api/internal/jobs"
	"github.com/glassline/erp-api/internal/logger"
	"github.com/glassline/erp-api/internal/pricing"
	"github.com/glassline/erp-api/internal/repository"
	"github.com/glassline/erp-api/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("Error closing database", zap.Error(err))
		}
	}()

	// PostgreSQL schemas come from cmd/migrate; sqlite is for local use only
	if cfg.Database.Driver == "sqlite" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
	}

	// Repositories
	orgRepo := repository.NewOrganizationRepository(db)
	processRepo := repository.NewProcessRepository(db)
	taxRateRepo := repository.NewTaxRateRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	sequenceRepo := repository.NewNumberSequenceRepository(db, cfg.Sequences.IsolationLevel())

	// Services
	numberSequenceService := service.NewNumberSequenceService(sequenceRepo, orgRepo, log)
	taxRateService := service.NewTaxRateService(taxRateRepo, defaultTaxRates(&cfg.Pricing), log)
	organizationService := service.NewOrganizationService(orgRepo, log)
	processService := service.NewProcessService(processRepo, log)
	quoteService := service.NewQuoteService(quoteRepo, orgRepo, processRepo, taxRateService, numberSequenceService, log)
	orderService := service.NewOrderService(orderRepo, quoteRepo, numberSequenceService, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, orderRepo, taxRateService, numberSequenceService, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(&cfg.Auth, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	pricingHandler := handler.NewPricingHandler(quoteService, taxRateService, log)
	quoteHandler := handler.NewQuoteHandler(quoteService, orderService, invoiceService, log)
	masterDataHandler := handler.NewMasterDataHandler(processService, taxRateService, organizationService, log)
	sequenceHandler := handler.NewSequenceHandler(numberSequenceService, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		pricingHandler,
		quoteHandler,
		masterDataHandler,
		sequenceHandler,
	)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)
		timeout := cfg.Jobs.RepairTimeoutDuration()

		if err := jobs.RegisterSequenceRepairJob(
			scheduler,
			numberSequenceService,
			log,
			cfg.Jobs.RepairSchedule,
			timeout,
			cfg.Jobs.RepairOnStartup,
		); err != nil {
			log.Error("Failed to register sequence repair job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with sequence repair job",
				zap.String("cron_expr", cfg.Jobs.RepairSchedule),
				zap.Duration("timeout", timeout),
			)
		}
	} else {
		log.Info("Background jobs disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}

func defaultTaxRates(cfg *config.PricingConfig) pricing.TaxRates {
	return pricing.TaxRates{
		CGST: decimal.NewFromFloat(cfg.DefaultCGST),
		SGST: decimal.NewFromFloat(cfg.DefaultSGST),
		IGST: decimal.NewFromFloat(cfg.DefaultIGST),
	}
}
