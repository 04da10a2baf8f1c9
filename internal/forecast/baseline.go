package forecast

import (
	"math"

	"github.com/andresuchdata/demandcast/internal/domain"
)

// Forecaster produces a point forecast for the days after a series ends.
type Forecaster interface {
	Name() string
	Forecast(series Series, horizonDays int) []domain.ForecastPoint
}

// SelectForecaster returns the weekly-seasonal model once enough history
// exists, otherwise the seasonal-naive baseline.
func SelectForecaster(historyDays int, params Params) Forecaster {
	if historyDays >= params.AdvancedMinHistoryDays {
		return NewWeeklySeasonal(params)
	}
	return SeasonalNaive{}
}

// SeasonalNaive repeats the value from the same weekday one week earlier.
type SeasonalNaive struct{}

func (SeasonalNaive) Name() string { return "seasonal_naive_weekly" }

// Forecast predicts series[d-7] when that date is in the history, otherwise
// the mean of the whole series (0 for an empty series).
func (SeasonalNaive) Forecast(series Series, horizonDays int) []domain.ForecastPoint {
	if horizonDays <= 0 {
		return []domain.ForecastPoint{}
	}
	fallback := mean(series.Values())
	first := AddDays(series.End(), 1)

	points := make([]domain.ForecastPoint, horizonDays)
	for i := range points {
		d := AddDays(first, i)
		predicted := fallback
		if units, ok := series.At(AddDays(d, -7)); ok {
			predicted = float64(units)
		}
		points[i] = domain.ForecastPoint{Date: d, PredictedUnits: predicted}
	}
	return points
}

// walkForwardPredict predicts index t from values strictly before t: the value
// seven days earlier, else the mean of the trailing window, else the mean of
// everything known.
func walkForwardPredict(values []float64, t, fallbackWindow int) float64 {
	history := values[:t]
	if t-7 >= 0 {
		return history[t-7]
	}
	if len(history) >= fallbackWindow {
		return mean(history[len(history)-fallbackWindow:])
	}
	return mean(history)
}

// walkForward evaluates every index in [from, len(values)).
func walkForward(series Series, from, fallbackWindow int) []domain.BacktestPoint {
	values := series.Values()
	if from < 0 {
		from = 0
	}
	if from > len(values) {
		from = len(values)
	}
	points := make([]domain.BacktestPoint, 0, len(values)-from)
	for t := from; t < len(values); t++ {
		points = append(points, domain.BacktestPoint{
			Date:           series.DateAt(t),
			ActualUnits:    series.UnitsAt(t),
			PredictedUnits: walkForwardPredict(values, t, fallbackWindow),
		})
	}
	return points
}

// accuracy computes MAE over all points and MAPE over points with a positive actual.
func accuracy(points []domain.BacktestPoint) (mae, mape float64) {
	if len(points) == 0 {
		return 0, 0
	}
	var absSum, pctSum float64
	pctCount := 0
	for _, p := range points {
		err := math.Abs(float64(p.ActualUnits) - p.PredictedUnits)
		absSum += err
		if p.ActualUnits > 0 {
			pctSum += err / float64(p.ActualUnits)
			pctCount++
		}
	}
	mae = absSum / float64(len(points))
	if pctCount > 0 {
		mape = pctSum / float64(pctCount)
	}
	return mae, mape
}

// Backtest runs the walk-forward seasonal-naive evaluation over the trailing
// BacktestDays of the series. Histories shorter than MinBacktestHistory yield a
// zeroed result.
func Backtest(series Series, params Params) domain.BacktestResult {
	n := series.Len()
	if n < params.MinBacktestHistory {
		return domain.BacktestResult{Points: []domain.BacktestPoint{}}
	}
	from := n - params.BacktestDays
	if from < params.MinBacktestHistory {
		from = params.MinBacktestHistory
	}
	points := walkForward(series, from, params.FallbackWindowDays)
	mae, mape := accuracy(points)
	return domain.BacktestResult{MAE: mae, MAPE: mape, Points: points}
}

// Backtest30d is Backtest with the default 30-day window.
func Backtest30d(series Series) domain.BacktestResult {
	return Backtest(series, DefaultParams())
}
