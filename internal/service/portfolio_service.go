package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/repository"
)

// PortfolioService handles portfolio and allocation model lifecycle operations.
// Ledger entries and derived analytics live in their own services; this one
// owns the entities those services hang off.
type PortfolioService struct {
	portfolioRepo  *repository.PortfolioRepository
	allocationRepo *repository.AllocationModelRepository
}

// NewPortfolioService creates a new PortfolioService with the provided repository dependencies.
func NewPortfolioService(
	portfolioRepo *repository.PortfolioRepository,
	allocationRepo *repository.AllocationModelRepository,
) *PortfolioService {
	return &PortfolioService{
		portfolioRepo:  portfolioRepo,
		allocationRepo: allocationRepo,
	}
}

// CreatePortfolio creates an empty portfolio. The name is required; the
// description may be empty. The new portfolio starts with no allocation model
// and no transactions.
func (s *PortfolioService) CreatePortfolio(ctx context.Context, name, description string) (*model.Portfolio, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: portfolio name", apperrors.ErrMissingRequiredField)
	}

	portfolio := model.Portfolio{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.portfolioRepo.InsertPortfolio(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("failed to create portfolio: %w", err)
	}

	return &portfolio, nil
}

// GetAllPortfolios retrieves every portfolio, ordered by name.
func (s *PortfolioService) GetAllPortfolios() ([]model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolios()
}

// GetPortfolio retrieves a single portfolio by its ID.
func (s *PortfolioService) GetPortfolio(portfolioID string) (model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolioOnID(portfolioID)
}

// CreateModel creates an allocation model from a name and a set of target
// weights. The weights must sum to 1.0 within tolerance; validation happens
// here, once, and never again on read.
func (s *PortfolioService) CreateModel(ctx context.Context, name string, allocations []model.ModelAllocation) (*model.AllocationModel, error) {
	alloc := model.AllocationModel{
		ID:          uuid.New().String(),
		Name:        name,
		Allocations: allocations,
		CreatedAt:   time.Now().UTC(),
	}
	if err := alloc.Validate(); err != nil {
		return nil, err
	}

	if err := s.allocationRepo.InsertModel(ctx, alloc); err != nil {
		return nil, fmt.Errorf("failed to create allocation model: %w", err)
	}

	return &alloc, nil
}

// GetAllModels retrieves every allocation model with its target weights.
func (s *PortfolioService) GetAllModels() ([]model.AllocationModel, error) {
	return s.allocationRepo.GetModels()
}

// GetModel retrieves a single allocation model by its ID.
func (s *PortfolioService) GetModel(modelID string) (model.AllocationModel, error) {
	return s.allocationRepo.GetModelOnID(modelID)
}

// AssignModel attaches an existing allocation model to a portfolio, replacing
// any previous assignment. The model must exist before the portfolio is
// touched, so a bad model ID never half-updates anything.
func (s *PortfolioService) AssignModel(ctx context.Context, portfolioID, modelID string) error {
	if _, err := s.allocationRepo.GetModelOnID(modelID); err != nil {
		return err
	}

	if err := s.portfolioRepo.AssignModel(ctx, portfolioID, modelID); err != nil {
		return err
	}

	return nil
}
