package forecast

import (
	"fmt"
	"math"

	"github.com/andresuchdata/demandcast/internal/domain"
)

// ResidualStd is the standard deviation of absolute backtest errors. With fewer
// than MinResiduals points it falls back to max(MAE, 1).
func ResidualStd(backtest domain.BacktestResult, params Params) float64 {
	if len(backtest.Points) < params.MinResiduals {
		return math.Max(backtest.MAE, 1.0)
	}
	residuals := make([]float64, len(backtest.Points))
	for i, p := range backtest.Points {
		residuals[i] = math.Abs(float64(p.ActualUnits) - p.PredictedUnits)
	}
	return stddev(residuals)
}

// ConfidenceBounds widens each forecast point by z * residual std, flooring
// the lower bound at zero.
func ConfidenceBounds(points []domain.ForecastPoint, backtest domain.BacktestResult, params Params) []domain.ConfidenceBound {
	halfWidth := params.BoundsZ * ResidualStd(backtest, params)
	bounds := make([]domain.ConfidenceBound, len(points))
	for i, p := range points {
		predicted := math.Max(0, p.PredictedUnits)
		bounds[i] = domain.ConfidenceBound{
			Date:      p.Date,
			Predicted: predicted,
			Lower:     math.Max(0, predicted-halfWidth),
			Upper:     predicted + halfWidth,
		}
	}
	return bounds
}

// DetectDrift compares walk-forward accuracy over the trailing window with the
// backtest MAPE. It is not evaluated when history is shorter than window+7 days.
func DetectDrift(series Series, backtest domain.BacktestResult, params Params) domain.DriftResult {
	window := params.DriftWindowDays
	result := domain.DriftResult{
		WindowDays:    window,
		ThresholdMAPE: backtest.MAPE * params.DriftMultiplier,
	}
	if window <= 0 || series.Len() < window+7 {
		return result
	}

	points := walkForward(series, series.Len()-window, params.FallbackWindowDays)
	result.Evaluated = true
	result.MAE, result.MAPE = accuracy(points)
	result.Flag = result.MAPE > result.ThresholdMAPE
	return result
}

// ValidateOverride checks an override before it is applied.
func ValidateOverride(o domain.Override) error {
	if o.EndDate.Before(o.StartDate) {
		return fmt.Errorf("%w: end date %s before start date %s", domain.ErrInvalidOverride,
			o.EndDate.Format("2006-01-02"), o.StartDate.Format("2006-01-02"))
	}
	if o.Value < 0 || math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
		return fmt.Errorf("%w: value %v must be a non-negative number", domain.ErrInvalidOverride, o.Value)
	}
	switch o.Type {
	case domain.OverrideAbsolute, domain.OverrideMultiplier:
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", domain.ErrInvalidOverride, o.Type)
	}
}

// OverrideApplies reports whether o targets the given scope. A nil SKU or
// marketplace on the override matches everything.
func OverrideApplies(o domain.Override, scope domain.DemandScope) bool {
	if o.SKU != nil && *o.SKU != scope.SKU {
		return false
	}
	if o.Marketplace != nil && (scope.AllMarketplaces() || *o.Marketplace != scope.Marketplace) {
		return false
	}
	return true
}

// ApplyOverrides adjusts bounds in place order. Absolute overrides replace the
// prediction and re-centre the interval on it keeping its half-width;
// multipliers scale the prediction and both bounds. Later overrides win.
func ApplyOverrides(bounds []domain.ConfidenceBound, overrides []domain.Override) []domain.ConfidenceBound {
	out := append([]domain.ConfidenceBound(nil), bounds...)
	for _, o := range overrides {
		start := DateOnly(o.StartDate)
		end := DateOnly(o.EndDate)
		id := o.ID
		for i := range out {
			d := DateOnly(out[i].Date)
			if d.Before(start) || d.After(end) {
				continue
			}
			switch o.Type {
			case domain.OverrideAbsolute:
				halfWidth := out[i].Upper - out[i].Predicted
				value := math.Max(0, o.Value)
				out[i].Predicted = value
				out[i].Lower = math.Max(0, value-halfWidth)
				out[i].Upper = value + halfWidth
			case domain.OverrideMultiplier:
				factor := math.Max(0, o.Value)
				out[i].Predicted *= factor
				out[i].Lower *= factor
				out[i].Upper *= factor
			default:
				continue
			}
			out[i].OverrideID = &id
		}
	}
	return out
}
