package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Custom Portfolio").
//	    WithDescription("My description").
//	    Build(t, db)
type PortfolioBuilder struct {
	ID          string
	Name        string
	Description string
	ModelID     string
	CreatedAt   time.Time
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:          MakeID(),
		Name:        MakePortfolioName("Test Portfolio"),
		Description: "Test description",
		CreatedAt:   time.Now().UTC(),
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithDescription sets a custom description.
func (b *PortfolioBuilder) WithDescription(desc string) *PortfolioBuilder {
	b.Description = desc
	return b
}

// WithModel assigns an allocation model. The model row must already exist.
func (b *PortfolioBuilder) WithModel(modelID string) *PortfolioBuilder {
	b.ModelID = modelID
	return b
}

// Build creates the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	query := `
		INSERT INTO portfolio (id, name, description, model_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	var modelID any
	if b.ModelID != "" {
		modelID = b.ModelID
	}

	_, err := db.Exec(query, b.ID, b.Name, b.Description, modelID, b.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}

	return model.Portfolio{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		ModelID:     b.ModelID,
		CreatedAt:   b.CreatedAt,
	}
}

// Convenience functions

// CreatePortfolio creates a portfolio with the given name and default values.
//
// Example usage:
//
//	portfolio := testutil.CreatePortfolio(t, db, "My Portfolio")
func CreatePortfolio(t *testing.T, db *sql.DB, name string) model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).Build(t, db)
}

// CreatePortfolios creates multiple portfolios with unique names.
//
// Example usage:
//
//	portfolios := testutil.CreatePortfolios(t, db, 5)
//	// Creates 5 portfolios with auto-generated names
func CreatePortfolios(t *testing.T, db *sql.DB, count int) []model.Portfolio {
	t.Helper()

	portfolios := make([]model.Portfolio, count)
	for i := 0; i < count; i++ {
		portfolios[i] = NewPortfolio().Build(t, db)
	}
	return portfolios
}

// TransactionBuilder provides a fluent interface for creating ledger entries.
// The cash amount is derived from the kind, exactly as the accounting service
// derives it, so fixtures can never carry a sign the replay would reject.
//
// Example usage:
//
//	tx := testutil.NewTransaction(portfolio.ID).
//	    WithKind(model.KindSell).
//	    WithSymbol("VWRL").
//	    WithQuantity(5).
//	    WithUnitPrice(110).
//	    OnDate(testutil.Date(2024, 3, 1)).
//	    Build(t, db)
type TransactionBuilder struct {
	ID          string
	PortfolioID string
	Kind        model.TransactionKind
	AssetClass  model.AssetClass
	Symbol      string
	Quantity    float64
	UnitPrice   float64
	Amount      float64
	OccurredOn  time.Time
}

// NewTransaction creates a TransactionBuilder with defaults: a buy of 10
// units of VWRL at 100 on 2024-01-15. Amount is only used by the cash kinds
// and holds the positive magnitude.
func NewTransaction(portfolioID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		Kind:        model.KindBuy,
		AssetClass:  model.ClassEquity,
		Symbol:      "VWRL",
		Quantity:    10,
		UnitPrice:   100,
		Amount:      1000,
		OccurredOn:  Date(2024, 1, 15),
	}
}

// WithID sets a custom ID.
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.ID = id
	return b
}

// WithKind sets the transaction kind.
func (b *TransactionBuilder) WithKind(kind model.TransactionKind) *TransactionBuilder {
	b.Kind = kind
	return b
}

// WithAssetClass sets the asset class for trade kinds.
func (b *TransactionBuilder) WithAssetClass(class model.AssetClass) *TransactionBuilder {
	b.AssetClass = class
	return b
}

// WithSymbol sets the instrument symbol.
func (b *TransactionBuilder) WithSymbol(symbol string) *TransactionBuilder {
	b.Symbol = symbol
	return b
}

// WithQuantity sets the traded quantity.
func (b *TransactionBuilder) WithQuantity(quantity float64) *TransactionBuilder {
	b.Quantity = quantity
	return b
}

// WithUnitPrice sets the traded unit price.
func (b *TransactionBuilder) WithUnitPrice(price float64) *TransactionBuilder {
	b.UnitPrice = price
	return b
}

// WithAmount sets the positive cash magnitude for the cash kinds.
func (b *TransactionBuilder) WithAmount(amount float64) *TransactionBuilder {
	b.Amount = amount
	return b
}

// OnDate sets the date the transaction occurred.
func (b *TransactionBuilder) OnDate(date time.Time) *TransactionBuilder {
	b.OccurredOn = date
	return b
}

// Build creates the transaction in the database and returns it. Construction
// goes through the kind's model constructor so validation and cash signs
// match production behavior.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	var (
		tx  model.Transaction
		err error
	)

	switch b.Kind {
	case model.KindBuy:
		tx, err = model.NewBuy(b.PortfolioID, b.AssetClass, b.Symbol, b.Quantity, b.UnitPrice, b.OccurredOn)
	case model.KindSell:
		tx, err = model.NewSell(b.PortfolioID, b.AssetClass, b.Symbol, b.Quantity, b.UnitPrice, b.OccurredOn)
	case model.KindDividend:
		tx, err = model.NewDividend(b.PortfolioID, b.Symbol, b.Amount, b.OccurredOn)
	case model.KindInterest:
		tx, err = model.NewInterest(b.PortfolioID, b.Amount, b.OccurredOn)
	case model.KindCashDeposit:
		tx, err = model.NewCashDeposit(b.PortfolioID, b.Amount, b.OccurredOn)
	case model.KindCashWithdrawal:
		tx, err = model.NewCashWithdrawal(b.PortfolioID, b.Amount, b.OccurredOn)
	case model.KindFee:
		tx, err = model.NewFee(b.PortfolioID, b.Amount, b.OccurredOn)
	default:
		t.Fatalf("Unsupported transaction kind: %q", b.Kind)
	}
	if err != nil {
		t.Fatalf("Failed to construct transaction: %v", err)
	}

	tx.ID = b.ID
	tx.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO portfolio_transaction
			(id, portfolio_id, kind, asset_class, symbol, quantity, unit_price, cash_amount, occurred_on, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var assetClass, symbol, quantity, unitPrice any
	if tx.AssetClass != "" {
		assetClass = string(tx.AssetClass)
	}
	if tx.Symbol != "" {
		symbol = tx.Symbol
	}
	if tx.IsTrade() {
		quantity = tx.Quantity
		unitPrice = tx.UnitPrice
	}

	_, err = db.Exec(query,
		tx.ID,
		tx.PortfolioID,
		string(tx.Kind),
		assetClass,
		symbol,
		quantity,
		unitPrice,
		tx.CashAmount,
		tx.OccurredOn.Format("2006-01-02"),
		tx.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}

	return tx
}

// CreateDeposit records a cash deposit on the given date.
func CreateDeposit(t *testing.T, db *sql.DB, portfolioID string, amount float64, on time.Time) model.Transaction {
	t.Helper()
	return NewTransaction(portfolioID).
		WithKind(model.KindCashDeposit).
		WithAmount(amount).
		OnDate(on).
		Build(t, db)
}

// CreateBuy records an equity buy on the given date.
func CreateBuy(t *testing.T, db *sql.DB, portfolioID, symbol string, quantity, price float64, on time.Time) model.Transaction {
	t.Helper()
	return NewTransaction(portfolioID).
		WithSymbol(symbol).
		WithQuantity(quantity).
		WithUnitPrice(price).
		OnDate(on).
		Build(t, db)
}

// CreateSell records an equity sell on the given date.
func CreateSell(t *testing.T, db *sql.DB, portfolioID, symbol string, quantity, price float64, on time.Time) model.Transaction {
	t.Helper()
	return NewTransaction(portfolioID).
		WithKind(model.KindSell).
		WithSymbol(symbol).
		WithQuantity(quantity).
		WithUnitPrice(price).
		OnDate(on).
		Build(t, db)
}

// AllocationModelBuilder provides a fluent interface for creating allocation
// models together with their target lines.
//
// Example usage:
//
//	m := testutil.NewAllocationModel().
//	    WithName("Balanced").
//	    WithAllocation("VWRL", model.ClassEquity, 0.6).
//	    WithAllocation("AGGH", model.ClassBond, 0.4).
//	    Build(t, db)
type AllocationModelBuilder struct {
	ID          string
	Name        string
	Allocations []model.ModelAllocation
	CreatedAt   time.Time
}

// NewAllocationModel creates an AllocationModelBuilder with no allocations.
func NewAllocationModel() *AllocationModelBuilder {
	return &AllocationModelBuilder{
		ID:        MakeID(),
		Name:      MakeModelName("Test Model"),
		CreatedAt: time.Now().UTC(),
	}
}

// WithID sets a custom ID.
func (b *AllocationModelBuilder) WithID(id string) *AllocationModelBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *AllocationModelBuilder) WithName(name string) *AllocationModelBuilder {
	b.Name = name
	return b
}

// WithAllocation appends one target line.
func (b *AllocationModelBuilder) WithAllocation(symbol string, class model.AssetClass, weight float64) *AllocationModelBuilder {
	b.Allocations = append(b.Allocations, model.ModelAllocation{
		Symbol:     symbol,
		AssetClass: class,
		Weight:     weight,
	})
	return b
}

// Build creates the model and its allocation rows in the database.
func (b *AllocationModelBuilder) Build(t *testing.T, db *sql.DB) model.AllocationModel {
	t.Helper()

	modelQuery := `
		INSERT INTO allocation_model (id, name, created_at)
		VALUES (?, ?, ?)
	`

	_, err := db.Exec(modelQuery, b.ID, b.Name, b.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		t.Fatalf("Failed to create allocation model: %v", err)
	}

	allocationQuery := `
		INSERT INTO model_allocation (id, model_id, symbol, asset_class, weight)
		VALUES (?, ?, ?, ?, ?)
	`

	for _, a := range b.Allocations {
		_, err := db.Exec(allocationQuery, MakeID(), b.ID, a.Symbol, string(a.AssetClass), a.Weight)
		if err != nil {
			t.Fatalf("Failed to create model allocation: %v", err)
		}
	}

	return model.AllocationModel{
		ID:          b.ID,
		Name:        b.Name,
		Allocations: b.Allocations,
		CreatedAt:   b.CreatedAt,
	}
}

// CreateTwoAssetModel creates a 60/40 equity/bond model and returns it.
func CreateTwoAssetModel(t *testing.T, db *sql.DB, equitySymbol, bondSymbol string) model.AllocationModel {
	t.Helper()
	return NewAllocationModel().
		WithAllocation(equitySymbol, model.ClassEquity, 0.6).
		WithAllocation(bondSymbol, model.ClassBond, 0.4).
		Build(t, db)
}

// AssignModel points an existing portfolio at an existing allocation model.
func AssignModel(t *testing.T, db *sql.DB, portfolioID, modelID string) {
	t.Helper()

	_, err := db.Exec("UPDATE portfolio SET model_id = ? WHERE id = ?", modelID, portfolioID)
	if err != nil {
		t.Fatalf("Failed to assign model to portfolio: %v", err)
	}
}

// BenchmarkBuilder provides a fluent interface for creating benchmarks.
type BenchmarkBuilder struct {
	ID     string
	Symbol string
	Name   string
}

// NewBenchmark creates a BenchmarkBuilder with a unique symbol.
func NewBenchmark() *BenchmarkBuilder {
	return &BenchmarkBuilder{
		ID:     MakeID(),
		Symbol: MakeSymbol("SPX"),
		Name:   "Test Benchmark",
	}
}

// WithSymbol sets a custom symbol.
func (b *BenchmarkBuilder) WithSymbol(symbol string) *BenchmarkBuilder {
	b.Symbol = symbol
	return b
}

// WithName sets a custom name.
func (b *BenchmarkBuilder) WithName(name string) *BenchmarkBuilder {
	b.Name = name
	return b
}

// Build creates the benchmark in the database and returns it.
func (b *BenchmarkBuilder) Build(t *testing.T, db *sql.DB) model.Benchmark {
	t.Helper()

	query := `
		INSERT INTO benchmark (id, symbol, name, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Symbol, b.Name, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		t.Fatalf("Failed to create benchmark: %v", err)
	}

	return model.Benchmark{
		ID:     b.ID,
		Symbol: b.Symbol,
		Name:   b.Name,
	}
}

// SymbolPriceBuilder provides a fluent interface for creating a single stored
// close price.
type SymbolPriceBuilder struct {
	ID     string
	Symbol string
	Date   time.Time
	Price  float64
}

// NewSymbolPrice creates a SymbolPriceBuilder with defaults.
func NewSymbolPrice(symbol string) *SymbolPriceBuilder {
	return &SymbolPriceBuilder{
		ID:     MakeID(),
		Symbol: symbol,
		Date:   Date(2024, 1, 15),
		Price:  100,
	}
}

// WithDate sets the price date.
func (b *SymbolPriceBuilder) WithDate(date time.Time) *SymbolPriceBuilder {
	b.Date = date
	return b
}

// WithPrice sets the close price.
func (b *SymbolPriceBuilder) WithPrice(price float64) *SymbolPriceBuilder {
	b.Price = price
	return b
}

// Build creates the price row in the database and returns it.
func (b *SymbolPriceBuilder) Build(t *testing.T, db *sql.DB) model.SymbolPrice {
	t.Helper()

	query := `
		INSERT INTO symbol_price (id, symbol, price_date, close_price, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Symbol, b.Date.Format("2006-01-02"), b.Price, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		t.Fatalf("Failed to create symbol price: %v", err)
	}

	return model.SymbolPrice{
		ID:     b.ID,
		Symbol: b.Symbol,
		Date:   b.Date,
		Price:  b.Price,
	}
}

// SeedPriceSeries stores one close per consecutive calendar day for a symbol,
// starting at start. Useful for valuation and performance fixtures.
//
// Example usage:
//
//	testutil.SeedPriceSeries(t, db, "VWRL", testutil.Date(2024, 1, 1), 100, 101, 99.5)
func SeedPriceSeries(t *testing.T, db *sql.DB, symbol string, start time.Time, closes ...float64) {
	t.Helper()

	for i, price := range closes {
		NewSymbolPrice(symbol).
			WithDate(start.AddDate(0, 0, i)).
			WithPrice(price).
			Build(t, db)
	}
}

// SeedBenchmarkPrices stores one close per consecutive calendar day for a
// benchmark, starting at start.
func SeedBenchmarkPrices(t *testing.T, db *sql.DB, benchmarkID string, start time.Time, closes ...float64) {
	t.Helper()

	query := `
		INSERT INTO benchmark_price (id, benchmark_id, price_date, close_price)
		VALUES (?, ?, ?, ?)
	`

	for i, price := range closes {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		if _, err := db.Exec(query, MakeID(), benchmarkID, date, price); err != nil {
			t.Fatalf("Failed to create benchmark price: %v", err)
		}
	}
}
