package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/api"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/config"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/database"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/marketdata"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/repository"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/scheduler"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/secrets"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg.Logging)

	// Open database connection and bring the schema current
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	log.Info().Str("path", cfg.Database.Path).Msg("connected to database")

	// The encryptor seals the provider API token at rest. Without a
	// configured key the server still boots, but tokens saved under the
	// generated key cannot be read back after a restart.
	secretKey := cfg.Provider.SecretKey
	if secretKey == "" {
		secretKey, err = secrets.GenerateKey()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to generate encryption key")
		}
		log.Warn().Msg("PROVIDER_SECRET_KEY not set; using an ephemeral key, stored provider tokens will not survive a restart")
	}
	encryptor, err := secrets.NewEncryptor(secretKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize encryption")
	}

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	allocationRepo := repository.NewAllocationModelRepository(db)
	benchmarkRepo := repository.NewBenchmarkRepository(db)
	priceRepo := repository.NewSymbolPriceRepository(db)
	providerRepo := repository.NewProviderConfigRepository(db)

	// Create services
	systemService := service.NewSystemService(db, providerRepo)
	portfolioService := service.NewPortfolioService(portfolioRepo, allocationRepo)
	accountingService := service.NewAccountingService(transactionRepo, portfolioRepo)
	pricingService := service.NewPricingService(
		priceRepo,
		benchmarkRepo,
		transactionRepo,
		providerRepo,
		marketdata.NewEODClient(cfg.Provider.BaseURL),
		encryptor,
	)
	performanceService := service.NewPerformanceService(
		transactionRepo,
		portfolioRepo,
		benchmarkRepo,
		pricingService,
		cfg.Analytics.RiskFreeRate,
	)
	rebalanceService := service.NewRebalanceService(
		portfolioRepo,
		allocationRepo,
		transactionRepo,
		pricingService,
	)

	// Start the automatic price sync
	sched := scheduler.New(pricingService)
	if err := sched.Start(cfg.Provider.SyncSchedule); err != nil {
		log.Fatal().Err(err).Msg("failed to start price sync scheduler")
	}
	defer sched.Stop()

	// Create router
	router := api.NewRouter(api.Services{
		System:      systemService,
		Portfolio:   portfolioService,
		Accounting:  accountingService,
		Performance: performanceService,
		Rebalance:   rebalanceService,
		Pricing:     pricingService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// setupLogging applies the configured level and output format to the global
// logger. An unknown level falls back to info rather than failing startup.
func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
