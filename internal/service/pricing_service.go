package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/marketdata"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/repository"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/secrets"
)

// syncConcurrency caps how many symbols a bulk sync fetches in parallel.
const syncConcurrency = 4

// defaultSyncLookback is how far back a sync reaches for a symbol with no
// stored prices and no transactions to anchor on.
const defaultSyncLookback = 1 // years

// PricingService is the price authority for everything above it. Valuations
// read stored end-of-day prices through it (it implements engine.PriceOracle);
// the provider is only ever contacted by the sync paths, never inline in a
// valuation.
//
// Lookups resolve to the exact stored date or fall back to the most recent
// prior one, covering weekends and holidays. A symbol with no stored price at
// or before the requested date fails the lookup; inventing a zero would
// silently corrupt every number computed from it.
type PricingService struct {
	priceRepo       *repository.SymbolPriceRepository
	benchmarkRepo   *repository.BenchmarkRepository
	transactionRepo *repository.TransactionRepository
	providerRepo    *repository.ProviderConfigRepository
	client          marketdata.Client
	encryptor       *secrets.Encryptor

	mu    sync.RWMutex
	cache map[priceKey]float64
}

// priceKey identifies one resolved lookup: a symbol on a calendar day.
type priceKey struct {
	symbol string
	day    time.Time
}

// NewPricingService creates a new PricingService with the provided dependencies.
func NewPricingService(
	priceRepo *repository.SymbolPriceRepository,
	benchmarkRepo *repository.BenchmarkRepository,
	transactionRepo *repository.TransactionRepository,
	providerRepo *repository.ProviderConfigRepository,
	client marketdata.Client,
	encryptor *secrets.Encryptor,
) *PricingService {
	return &PricingService{
		priceRepo:       priceRepo,
		benchmarkRepo:   benchmarkRepo,
		transactionRepo: transactionRepo,
		providerRepo:    providerRepo,
		client:          client,
		encryptor:       encryptor,
		cache:           make(map[priceKey]float64),
	}
}

// Price returns the price of one symbol on one date, satisfying
// engine.PriceOracle. Cash is always worth exactly 1.0 per unit. Everything
// else resolves against the stored price table, exact date first, most recent
// prior date otherwise. Resolved lookups are cached; concurrent valuations of
// the same range hit the database once per symbol and day.
func (s *PricingService) Price(ctx context.Context, symbol string, class model.AssetClass, on time.Time) (float64, error) {
	if class == model.ClassCash {
		return 1.0, nil
	}

	key := priceKey{symbol: symbol, day: dayOf(on)}

	s.mu.RLock()
	price, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return price, nil
	}

	stored, err := s.priceRepo.GetPriceOnOrBefore(symbol, key.day)
	if err != nil {
		if errors.Is(err, apperrors.ErrPriceNotFound) {
			return 0, fmt.Errorf("%w: no stored price for %s on or before %s",
				apperrors.ErrUpstreamUnavailable, symbol, key.day.Format("2006-01-02"))
		}
		return 0, err
	}

	s.mu.Lock()
	s.cache[key] = stored.Price
	s.mu.Unlock()

	return stored.Price, nil
}

// SyncSymbol fetches daily closes for one symbol from the provider and
// upserts them into the stored price table.
//
// A zero from date continues from the day after the last stored price; for a
// symbol with nothing stored yet it starts at the oldest transaction on
// record, or one year back as a last resort. A zero to date means today.
// Provider failures surface as upstream unavailability.
func (s *PricingService) SyncSymbol(ctx context.Context, symbol string, from, to time.Time) (model.SymbolSyncResult, error) {
	result := model.SymbolSyncResult{Symbol: symbol}
	if symbol == "" {
		return result, fmt.Errorf("%w: symbol", apperrors.ErrMissingRequiredField)
	}

	token, err := s.apiToken()
	if err != nil {
		return result, err
	}

	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = s.syncStart(symbol, to)
	}

	closes, err := s.client.FetchDailyCloses(ctx, token, symbol, from, to)
	if err != nil {
		return result, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	prices := make([]model.SymbolPrice, 0, len(closes))
	for _, quote := range closes {
		prices = append(prices, model.SymbolPrice{
			ID:        uuid.New().String(),
			Symbol:    symbol,
			Date:      quote.Date,
			Price:     quote.Close,
			CreatedAt: time.Now().UTC(),
		})
	}

	written, err := s.priceRepo.UpsertPrices(ctx, prices)
	if err != nil {
		return result, fmt.Errorf("failed to store prices for %s: %w", symbol, err)
	}

	if written > 0 {
		s.flushCache()
	}

	result.PricesAdded = written
	return result, nil
}

// SyncAll syncs every symbol the system tracks: symbols traded in any
// portfolio into the symbol price table, and every registered benchmark into
// its own price table. Symbols sync concurrently; one symbol failing is
// recorded in the summary and never stops the others.
func (s *PricingService) SyncAll(ctx context.Context) (model.SyncSummary, error) {
	summary := model.SyncSummary{
		Updated: []model.SymbolSyncResult{},
		Errors:  []model.SymbolSyncError{},
	}

	symbols, err := s.transactionRepo.GetTradedSymbols("")
	if err != nil {
		return summary, fmt.Errorf("failed to list traded symbols: %w", err)
	}
	benchmarks, err := s.benchmarkRepo.GetBenchmarks()
	if err != nil {
		return summary, fmt.Errorf("failed to list benchmarks: %w", err)
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(syncConcurrency)

	record := func(symbol string, added int, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			summary.Errors = append(summary.Errors, model.SymbolSyncError{Symbol: symbol, Error: err.Error()})
			return
		}
		summary.Updated = append(summary.Updated, model.SymbolSyncResult{Symbol: symbol, PricesAdded: added})
		summary.TotalUpdated += added
	}

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			result, err := s.SyncSymbol(ctx, symbol, time.Time{}, time.Time{})
			record(symbol, result.PricesAdded, err)
			return nil
		})
	}
	for _, benchmark := range benchmarks {
		benchmark := benchmark
		g.Go(func() error {
			added, err := s.syncBenchmark(ctx, benchmark)
			record(benchmark.Symbol, added, err)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(summary.Updated, func(i, j int) bool { return summary.Updated[i].Symbol < summary.Updated[j].Symbol })
	sort.Slice(summary.Errors, func(i, j int) bool { return summary.Errors[i].Symbol < summary.Errors[j].Symbol })
	summary.TotalErrors = len(summary.Errors)
	summary.Success = len(summary.Updated) > 0

	if len(summary.Updated) > 0 {
		if err := s.providerRepo.UpdateLastSynced(ctx, time.Now().UTC()); err != nil {
			log.Warn().Err(err).Msg("failed to record last sync time")
		}
	}

	return summary, nil
}

// ProviderStatus reports the provider integration settings. The token itself
// never leaves the service.
func (s *PricingService) ProviderStatus() (*model.ProviderConfig, error) {
	return s.providerRepo.GetProviderConfig()
}

// SaveProviderConfig stores the provider settings, encrypting the API token
// before it touches the database.
func (s *PricingService) SaveProviderConfig(ctx context.Context, token string, enabled, autoSyncEnabled bool) error {
	if token == "" {
		return fmt.Errorf("%w: api token", apperrors.ErrMissingRequiredField)
	}

	encrypted, err := s.encryptor.Encrypt(token)
	if err != nil {
		return fmt.Errorf("failed to encrypt provider token: %w", err)
	}

	if err := s.providerRepo.SaveProviderConfig(ctx, encrypted, enabled, autoSyncEnabled); err != nil {
		return fmt.Errorf("failed to save provider config: %w", err)
	}
	return nil
}

// syncBenchmark fetches daily closes for one benchmark and upserts them into
// the benchmark price table, continuing from the most recent stored price.
func (s *PricingService) syncBenchmark(ctx context.Context, benchmark model.Benchmark) (int, error) {
	token, err := s.apiToken()
	if err != nil {
		return 0, err
	}

	to := time.Now().UTC()
	from := to.AddDate(-defaultSyncLookback, 0, 0)
	if last, err := s.benchmarkRepo.GetPriceOnOrBefore(benchmark.ID, to); err == nil {
		from = last.Date.AddDate(0, 0, 1)
	}
	if from.After(to) {
		return 0, nil
	}

	closes, err := s.client.FetchDailyCloses(ctx, token, benchmark.Symbol, from, to)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	prices := make([]model.BenchmarkPrice, 0, len(closes))
	for _, quote := range closes {
		prices = append(prices, model.BenchmarkPrice{
			ID:          uuid.New().String(),
			BenchmarkID: benchmark.ID,
			Date:        quote.Date,
			Price:       quote.Close,
		})
	}

	written, err := s.benchmarkRepo.UpsertPrices(ctx, prices)
	if err != nil {
		return 0, fmt.Errorf("failed to store prices for benchmark %s: %w", benchmark.Symbol, err)
	}
	return written, nil
}

// syncStart picks where an open-ended sync for a symbol should begin.
func (s *PricingService) syncStart(symbol string, to time.Time) time.Time {
	if last := s.priceRepo.GetLatestPriceDate(symbol); !last.IsZero() {
		return last.AddDate(0, 0, 1)
	}
	if oldest := s.transactionRepo.GetOldestTradeDate(symbol); !oldest.IsZero() {
		return oldest
	}
	return to.AddDate(-defaultSyncLookback, 0, 0)
}

// apiToken loads and decrypts the stored provider token.
func (s *PricingService) apiToken() (string, error) {
	encrypted, err := s.providerRepo.GetAPIToken()
	if err != nil {
		return "", err
	}
	token, err := s.encryptor.Decrypt(encrypted)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt provider token: %w", err)
	}
	return token, nil
}

// flushCache drops every cached lookup. Called after a sync writes new
// prices, since a stored price arriving for a date can change what a
// prior-date fallback would have resolved to.
func (s *PricingService) flushCache() {
	s.mu.Lock()
	s.cache = make(map[priceKey]float64)
	s.mu.Unlock()
}

// dayOf strips a timestamp to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
