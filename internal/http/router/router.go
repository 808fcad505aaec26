package router

import (
	"encoding/json"
	"net/http"

	"github.com/glassline/erp-api/internal/auth"
	"github.com/glassline/erp-api/internal/config"
	"github.com/glassline/erp-api/internal/database"
	"github.com/glassline/erp-api/internal/http/handler"
	"github.com/glassline/erp-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	cfg               *config.Config
	logger            *zap.Logger
	db                *gorm.DB
	authMiddleware    *auth.Middleware
	rateLimiter       *middleware.RateLimiter
	pricingHandler    *handler.PricingHandler
	quoteHandler      *handler.QuoteHandler
	masterDataHandler *handler.MasterDataHandler
	sequenceHandler   *handler.SequenceHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	pricingHandler *handler.PricingHandler,
	quoteHandler *handler.QuoteHandler,
	masterDataHandler *handler.MasterDataHandler,
	sequenceHandler *handler.SequenceHandler,
) *Router {
	return &Router{
		cfg:               cfg,
		logger:            logger,
		db:                db,
		authMiddleware:    authMiddleware,
		rateLimiter:       rateLimiter,
		pricingHandler:    pricingHandler,
		quoteHandler:      quoteHandler,
		masterDataHandler: masterDataHandler,
		sequenceHandler:   sequenceHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)
	if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
		r.Use(chimiddleware.Timeout(timeout))
	}

	// Liveness probe
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Readiness probe with pool stats
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		stats, err := database.HealthCheckWithStats(r.Context(), rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)

		r.Route("/pricing", func(r chi.Router) {
			r.Post("/line", rt.pricingHandler.PriceLine)
			r.Post("/tax", rt.pricingHandler.SplitTax)
			r.Post("/quote", rt.pricingHandler.PriceQuote)
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", rt.quoteHandler.List)
			r.Post("/", rt.quoteHandler.Create)
			r.Get("/{id}", rt.quoteHandler.GetByID)
			r.Post("/{id}/order", rt.quoteHandler.ConvertToOrder)
		})
		r.Post("/orders/{id}/invoice", rt.quoteHandler.Invoice)

		r.Get("/processes", rt.masterDataHandler.ListProcesses)
		r.Get("/tax-rates", rt.masterDataHandler.GetTaxRates)
		r.Get("/organization/pricing", rt.masterDataHandler.GetPricingSettings)

		// Settings changes and sequence maintenance
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireAdmin)

			r.Post("/processes", rt.masterDataHandler.CreateProcess)
			r.Put("/processes/{id}", rt.masterDataHandler.UpdateProcess)
			r.Put("/tax-rates", rt.masterDataHandler.UpdateTaxRates)
			r.Put("/organization/pricing", rt.masterDataHandler.UpdatePricingSettings)

			r.Route("/admin/sequences", func(r chi.Router) {
				r.Get("/", rt.sequenceHandler.List)
				r.Post("/repair", rt.sequenceHandler.RepairAll)
				r.Post("/{docType}/repair", rt.sequenceHandler.Repair)
			})
		})
	})

	return r
}
