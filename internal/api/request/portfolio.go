package request

// CreatePortfolioRequest represents the request body for creating a portfolio
type CreatePortfolioRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AssignModelRequest represents the request body for attaching an allocation
// model to a portfolio. Either an existing model is referenced by modelId, or
// a new one is defined inline via name and allocations and assigned in the
// same call.
type AssignModelRequest struct {
	ModelID     string              `json:"modelId,omitempty"`
	Name        string              `json:"name,omitempty"`
	Allocations []AllocationRequest `json:"allocations,omitempty"`
}

// AllocationRequest is one target line of an inline allocation model definition.
type AllocationRequest struct {
	Symbol     string  `json:"symbol"`
	AssetClass string  `json:"assetClass"`
	Weight     float64 `json:"weight"`
}

// CreateModelRequest represents the request body for creating a standalone
// allocation model.
type CreateModelRequest struct {
	Name        string              `json:"name"`
	Allocations []AllocationRequest `json:"allocations"`
}
