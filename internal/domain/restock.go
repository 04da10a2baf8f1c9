package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RestockStatus is the urgency state shared by every restock variant.
type RestockStatus string

const (
	RestockInsufficientData RestockStatus = "insufficient_data"
	RestockHealthy          RestockStatus = "healthy"
	RestockWatch            RestockStatus = "watch"
	RestockUrgent           RestockStatus = "urgent"
)

// Reason flags attached to restock recommendations.
const (
	FlagMissingSupplierSettings = "missing_supplier_settings"
	FlagMissingForecastFallback = "missing_forecast_fallback"
	FlagMissingInventory        = "missing_inventory"
	FlagNoDemand                = "no_demand"
	FlagStockout                = "stockout"
	FlagBelowReorderPoint       = "below_reorder_point"
	FlagMOQApplied              = "moq_applied"
	FlagPackRounded             = "pack_rounded"
	FlagMinCoverApplied         = "min_cover_applied"
	FlagMaxCoverApplied         = "max_cover_applied"
	FlagDemandStdFallback       = "demand_std_fallback"
)

// InventoryLevel is the current stock position for a SKU on a marketplace.
type InventoryLevel struct {
	SKU           string `json:"sku" db:"sku"`
	Marketplace   string `json:"marketplace" db:"marketplace"`
	OnHandUnits   int    `json:"on_hand_units" db:"on_hand_units"`
	ReservedUnits int    `json:"reserved_units" db:"reserved_units"`
	InboundUnits  *int   `json:"inbound_units" db:"inbound_units"`
}

// SupplierSetting holds replenishment constraints. A nil Marketplace is the
// global setting for the SKU.
type SupplierSetting struct {
	SKU              string           `json:"sku" db:"sku"`
	Marketplace      *string          `json:"marketplace" db:"marketplace"`
	Supplier         string           `json:"supplier" db:"supplier"`
	LeadTimeDaysMean float64          `json:"lead_time_days_mean" db:"lead_time_days_mean"`
	LeadTimeDaysStd  float64          `json:"lead_time_days_std" db:"lead_time_days_std"`
	MOQUnits         int              `json:"moq_units" db:"moq_units"`
	PackSizeUnits    int              `json:"pack_size_units" db:"pack_size_units"`
	ServiceLevel     float64          `json:"service_level" db:"service_level"`
	MinDaysOfCover   *float64         `json:"min_days_of_cover" db:"min_days_of_cover"`
	MaxDaysOfCover   *float64         `json:"max_days_of_cover" db:"max_days_of_cover"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty" db:"unit_cost"`
}

// RestockPlan is the simple variant: a reorder suggestion from forecast and stock.
type RestockPlan struct {
	SKU                     string        `json:"sku"`
	Marketplace             string        `json:"marketplace"`
	Status                  RestockStatus `json:"status"`
	CurrentStock            *float64      `json:"current_stock"`
	DailyDemandExpected     float64       `json:"daily_demand_expected"`
	DailyDemandHigh         float64       `json:"daily_demand_high"`
	DaysOfCoverExpected     *float64      `json:"days_of_cover_expected"`
	LeadTimeDays            int           `json:"lead_time_days"`
	TargetCoverDays         int           `json:"target_cover_days"`
	SuggestedReorderQty     float64       `json:"suggested_reorder_qty"`
	SuggestedReorderQtyHigh float64       `json:"suggested_reorder_qty_high"`
	DataEndDate             *time.Time    `json:"data_end_date"`
	OrderByDate             *time.Time    `json:"order_by_date"`
	Trend                   Trend         `json:"trend"`
	Confidence              Confidence    `json:"confidence"`
	Recommendation          string        `json:"recommendation"`
	Reasoning               []string      `json:"reasoning"`
}

// RestockAction is one row of the traffic-light view.
type RestockAction struct {
	RestockPlan
	Color string `json:"color"`
}

// RestockRecommendation is the supplier-aware variant.
type RestockRecommendation struct {
	SKU                          string           `json:"sku"`
	Marketplace                  string           `json:"marketplace"`
	Supplier                     string           `json:"supplier"`
	Status                       RestockStatus    `json:"status"`
	OnHandUnits                  int              `json:"on_hand_units"`
	InboundUnits                 int              `json:"inbound_units"`
	ReservedUnits                int              `json:"reserved_units"`
	AvailableUnits               int              `json:"available_units"`
	DailyDemandForecast          float64          `json:"daily_demand_forecast"`
	DemandStdDaily               float64          `json:"demand_std_daily"`
	LeadTimeDaysMean             float64          `json:"lead_time_days_mean"`
	LeadTimeDaysStd              float64          `json:"lead_time_days_std"`
	ServiceLevel                 float64          `json:"service_level"`
	ZScore                       float64          `json:"z_score"`
	DaysOfCover                  *float64         `json:"days_of_cover"`
	SafetyStockUnits             float64          `json:"safety_stock_units"`
	LeadTimeDemandUnits          float64          `json:"lead_time_demand_units"`
	ReorderPointUnits            float64          `json:"reorder_point_units"`
	TargetStockUnits             float64          `json:"target_stock_units"`
	RecommendedOrderUnits        float64          `json:"recommended_order_units"`
	RecommendedOrderUnitsRounded int              `json:"recommended_order_units_rounded"`
	EstimatedOrderCost           *decimal.Decimal `json:"estimated_order_cost,omitempty"`
	PriorityScore                float64          `json:"priority_score"`
	DataEndDate                  *time.Time       `json:"data_end_date"`
	OrderByDate                  *time.Time       `json:"order_by_date"`
	ReasonFlags                  []string         `json:"reason_flags"`
}

// WhatIfResult pairs the current-data recommendation with a scenario.
type WhatIfResult struct {
	Baseline RestockRecommendation `json:"baseline"`
	Scenario RestockRecommendation `json:"scenario"`
	Applied  []string              `json:"applied_overrides"`
}
