package domain

import "errors"

var (
	// ErrInsufficientHistory is returned by the simple restock plan when fewer
	// than the minimum days of order history exist.
	ErrInsufficientHistory = errors.New("insufficient order history")
	ErrUnknownMarketplace  = errors.New("unknown marketplace")
	ErrInvalidHorizon      = errors.New("invalid horizon")
	ErrInvalidOverride     = errors.New("invalid override")
	ErrInvalidDateRange    = errors.New("invalid date range")
	ErrInvalidDemandMode   = errors.New("invalid demand mode")
	ErrSKURequired         = errors.New("sku is required")
	ErrInvalidScenario     = errors.New("invalid what-if scenario")
	ErrInvalidQuantity     = errors.New("invalid quantity")
)
