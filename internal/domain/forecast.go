package domain

import (
	"time"

	"github.com/google/uuid"
)

// ForecastPoint is the predicted unit demand for one future day.
type ForecastPoint struct {
	Date           time.Time `json:"date"`
	PredictedUnits float64   `json:"predicted_units"`
}

// ConfidenceBound is a forecast point with its interval.
type ConfidenceBound struct {
	Date       time.Time  `json:"date"`
	Predicted  float64    `json:"predicted"`
	Lower      float64    `json:"lower"`
	Upper      float64    `json:"upper"`
	OverrideID *uuid.UUID `json:"override_id,omitempty"`
}

// BacktestPoint pairs an actual with the walk-forward prediction for that day.
type BacktestPoint struct {
	Date           time.Time `json:"date"`
	ActualUnits    int       `json:"actual_units"`
	PredictedUnits float64   `json:"predicted_units"`
}

// BacktestResult holds accuracy metrics over the trailing evaluation window.
// MAPE is a fraction (0.25 == 25%).
type BacktestResult struct {
	MAE    float64         `json:"mae"`
	MAPE   float64         `json:"mape"`
	Points []BacktestPoint `json:"points"`
}

// DriftResult compares recent accuracy against the 30-day backtest.
type DriftResult struct {
	Evaluated     bool    `json:"evaluated"`
	Flag          bool    `json:"flag"`
	WindowDays    int     `json:"window_days"`
	MAE           float64 `json:"mae"`
	MAPE          float64 `json:"mape"`
	ThresholdMAPE float64 `json:"threshold_mape"`
}

// OverrideType controls how an override adjusts the forecast.
type OverrideType string

const (
	OverrideAbsolute   OverrideType = "absolute"
	OverrideMultiplier OverrideType = "multiplier"
)

// Override is a manual adjustment over an inclusive date range. A nil SKU or
// Marketplace applies to all.
type Override struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	SKU         *string      `json:"sku" db:"sku"`
	Marketplace *string      `json:"marketplace" db:"marketplace"`
	StartDate   time.Time    `json:"start_date" db:"start_date"`
	EndDate     time.Time    `json:"end_date" db:"end_date"`
	Type        OverrideType `json:"type" db:"type"`
	Value       float64      `json:"value" db:"value"`
}

// Trend classification values.
type Trend string

const (
	TrendIncreasing       Trend = "increasing"
	TrendStable           Trend = "stable"
	TrendDecreasing       Trend = "decreasing"
	TrendInsufficientData Trend = "insufficient_data"
)

// Confidence classification values.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// IntelligenceResult summarizes forecast quality for display.
type IntelligenceResult struct {
	Trend               Trend      `json:"trend"`
	Confidence          Confidence `json:"confidence"`
	DailyDemandEstimate float64    `json:"daily_demand_estimate"`
	VolatilityCV        float64    `json:"volatility_cv"`
	ForecastLow         float64    `json:"forecast_low"`
	ForecastExpected    float64    `json:"forecast_expected"`
	ForecastHigh        float64    `json:"forecast_high"`
	Recommendation      string     `json:"recommendation"`
	Reasoning           []string   `json:"reasoning"`
}

// ForecastReport is the full forecast response for one scope.
type ForecastReport struct {
	Scope        DemandScope        `json:"scope"`
	Model        string             `json:"model"`
	HistoryStart time.Time          `json:"history_start"`
	HistoryEnd   time.Time          `json:"history_end"`
	HistoryDays  int                `json:"history_days"`
	History      []DemandPoint      `json:"history"`
	Forecast     []ConfidenceBound  `json:"forecast"`
	Backtest     BacktestResult     `json:"backtest"`
	Drift        DriftResult        `json:"drift"`
	Intelligence IntelligenceResult `json:"intelligence"`
	Quality      DemandQualityMeta  `json:"quality"`
}

// DemandReport is the demand series for a scope with its data-quality report.
type DemandReport struct {
	Scope   DemandScope       `json:"scope"`
	Start   time.Time         `json:"start"`
	End     time.Time         `json:"end"`
	Points  []DemandPoint     `json:"points"`
	Quality DemandQualityMeta `json:"quality"`
}

// BacktestReport is the accuracy view of a scope without a forward forecast.
type BacktestReport struct {
	Scope       DemandScope       `json:"scope"`
	HistoryDays int               `json:"history_days"`
	Backtest    BacktestResult    `json:"backtest"`
	Drift       DriftResult       `json:"drift"`
	Quality     DemandQualityMeta `json:"quality"`
}
