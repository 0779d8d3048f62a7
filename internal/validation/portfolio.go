package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/api/request"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
)

func ValidateCreatePortfolio(req request.CreatePortfolioRequest) error {
	errors := make(map[string]string)

	// Required field
	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	} else if len(req.Name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	// Optional but has constraints
	if len(req.Description) > 500 {
		errors["description"] = "description must be 500 characters or less"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateAssignModel validates a model assignment request. The request must
// either reference an existing model by ID or define one inline, not both.
func ValidateAssignModel(req request.AssignModelRequest) error {
	if req.ModelID != "" {
		if len(req.Allocations) > 0 || req.Name != "" {
			return &Error{Fields: map[string]string{
				"modelId": "modelId and an inline model definition are mutually exclusive",
			}}
		}
		return ValidateUUID(req.ModelID)
	}
	return validateModelDefinition(req.Name, req.Allocations)
}

// ValidateCreateModel validates a standalone allocation model creation request.
func ValidateCreateModel(req request.CreateModelRequest) error {
	return validateModelDefinition(req.Name, req.Allocations)
}

// validateModelDefinition checks a model's name and target weights: every
// weight in [0, 1] under a unique non-empty symbol, summing to 1.0 within
// tolerance.
func validateModelDefinition(name string, allocations []request.AllocationRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(name) == "" {
		errors["name"] = "name is required"
	} else if len(name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	if len(allocations) == 0 {
		errors["allocations"] = "at least one allocation is required"
	}

	var sum float64
	seen := make(map[string]bool, len(allocations))
	for i, alloc := range allocations {
		field := fmt.Sprintf("allocations[%d]", i)
		if strings.TrimSpace(alloc.Symbol) == "" {
			errors[field] = "symbol is required"
			continue
		}
		if seen[alloc.Symbol] {
			errors[field] = fmt.Sprintf("duplicate symbol: %s", alloc.Symbol)
			continue
		}
		seen[alloc.Symbol] = true
		if alloc.AssetClass != "" && !ValidAssetClass[alloc.AssetClass] {
			errors[field] = fmt.Sprintf("invalid assetClass: %s", alloc.AssetClass)
			continue
		}
		if alloc.Weight < 0.0 || alloc.Weight > 1.0 {
			errors[field] = "weight must be between 0 and 1"
			continue
		}
		sum += alloc.Weight
	}

	if len(allocations) > 0 && len(errors) == 0 && math.Abs(sum-1.0) > model.WeightSumTolerance {
		errors["allocations"] = fmt.Sprintf("weights sum to %.4f, expected 1.0", sum)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
