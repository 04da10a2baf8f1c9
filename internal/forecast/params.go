package forecast

// Params holds the tunable constants of the forecasting engine.
type Params struct {
	BacktestDays           int     // trailing days evaluated by the backtest
	MinBacktestHistory     int     // below this many days the backtest is zeroed
	FallbackWindowDays     int     // trailing window for the walk-forward fallback mean
	AdvancedMinHistoryDays int     // history needed before the weekly-seasonal model is used
	SeasonalityWeeks       int     // trailing weeks used for weekday factors
	SpikeLowerPercentile   float64 // training values are clipped to [lower, upper]
	SpikeUpperPercentile   float64
	BoundsZ                float64 // z multiplier for confidence bounds
	MinResiduals           int     // fewer residuals fall back to max(MAE, 1)
	DriftWindowDays        int
	DriftMultiplier        float64 // drift when window MAPE > backtest MAPE * multiplier
	TrendWindowDays        int
	TrendUpRatio           float64
	TrendDownRatio         float64
	ConfidenceHighMAPE     float64
	ConfidenceMediumMAPE   float64
	MinBoundsMargin        float64
	MaxBoundsMargin        float64
	MaxHorizonDays         int
}

// DefaultParams returns the production defaults.
func DefaultParams() Params {
	return Params{
		BacktestDays:           30,
		MinBacktestHistory:     8,
		FallbackWindowDays:     7,
		AdvancedMinHistoryDays: 28,
		SeasonalityWeeks:       12,
		SpikeLowerPercentile:   5,
		SpikeUpperPercentile:   95,
		BoundsZ:                1.96,
		MinResiduals:           5,
		DriftWindowDays:        14,
		DriftMultiplier:        1.5,
		TrendWindowDays:        14,
		TrendUpRatio:           1.10,
		TrendDownRatio:         0.90,
		ConfidenceHighMAPE:     0.20,
		ConfidenceMediumMAPE:   0.40,
		MinBoundsMargin:        0.15,
		MaxBoundsMargin:        0.8,
		MaxHorizonDays:         60,
	}
}
