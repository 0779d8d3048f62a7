package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/api/handlers"
	custommiddleware "github.com/mkuiper/Portfolio-Analytics-Backend/internal/api/middleware"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/config"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/service"
)

// Services bundles everything the router mounts handlers for.
type Services struct {
	System      *service.SystemService
	Portfolio   *service.PortfolioService
	Accounting  *service.AccountingService
	Performance *service.PerformanceService
	Rebalance   *service.RebalanceService
	Pricing     *service.PricingService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svcs Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svcs.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolios", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(svcs.Portfolio, svcs.Accounting)
			transactionHandler := handlers.NewTransactionHandler(svcs.Accounting)
			performanceHandler := handlers.NewPerformanceHandler(svcs.Performance)
			rebalanceHandler := handlers.NewRebalanceHandler(svcs.Rebalance)

			r.Get("/", portfolioHandler.Portfolios)
			r.Post("/", portfolioHandler.CreatePortfolio)

			r.Route("/{portfolioId}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDParam("portfolioId"))

				r.Get("/", portfolioHandler.Portfolio)
				r.Post("/model", portfolioHandler.AssignModel)
				r.Get("/state", portfolioHandler.State)

				r.Get("/transactions", transactionHandler.Transactions)
				r.Post("/transactions", transactionHandler.CreateTransaction)
				r.Get("/anomalies", transactionHandler.Anomalies)

				r.Get("/performance", performanceHandler.Performance)

				r.Get("/drift", rebalanceHandler.Drift)
				r.Get("/rebalance", rebalanceHandler.Rebalance)
			})
		})

		r.Route("/models", func(r chi.Router) {
			modelHandler := handlers.NewModelHandler(svcs.Portfolio)
			r.Get("/", modelHandler.Models)
			r.Post("/", modelHandler.CreateModel)

			r.Route("/{modelId}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDParam("modelId"))
				r.Get("/", modelHandler.Model)
			})
		})

		r.Route("/benchmarks", func(r chi.Router) {
			benchmarkHandler := handlers.NewBenchmarkHandler(svcs.Performance)
			r.Get("/", benchmarkHandler.Benchmarks)
			r.Post("/", benchmarkHandler.CreateBenchmark)
		})

		priceHandler := handlers.NewPriceHandler(svcs.Pricing)
		r.Post("/prices/sync", priceHandler.SyncPrices)
		r.Route("/provider", func(r chi.Router) {
			r.Get("/", priceHandler.ProviderStatus)
			r.Put("/", priceHandler.UpdateProviderConfig)
		})
	})

	return r
}
