package forecast

import (
	"fmt"

	"github.com/andresuchdata/demandcast/internal/domain"
)

// Request carries already-fetched inputs for one forecast computation.
type Request struct {
	Scope       domain.DemandScope
	Series      Series
	Quality     domain.DemandQualityMeta
	HorizonDays int
	Overrides   []domain.Override
	Stock       StockContext
}

// ValidateHorizon rejects horizons outside [1, MaxHorizonDays].
func ValidateHorizon(horizonDays int, params Params) error {
	if horizonDays < 1 || horizonDays > params.MaxHorizonDays {
		return fmt.Errorf("%w: %d (must be 1-%d days)", domain.ErrInvalidHorizon, horizonDays, params.MaxHorizonDays)
	}
	return nil
}

// Run forecasts, backtests, checks drift, applies in-scope overrides and
// summarizes the result. It has no side effects.
func Run(req Request, params Params) (domain.ForecastReport, error) {
	if err := ValidateHorizon(req.HorizonDays, params); err != nil {
		return domain.ForecastReport{}, err
	}

	overrides := make([]domain.Override, 0, len(req.Overrides))
	for _, o := range req.Overrides {
		if err := ValidateOverride(o); err != nil {
			return domain.ForecastReport{}, err
		}
		if OverrideApplies(o, req.Scope) {
			overrides = append(overrides, o)
		}
	}

	forecaster := SelectForecaster(req.Series.Len(), params)
	points := forecaster.Forecast(req.Series, req.HorizonDays)
	backtest := Backtest(req.Series, params)
	bounds := ApplyOverrides(ConfidenceBounds(points, backtest, params), overrides)

	var mape *float64
	if len(backtest.Points) > 0 {
		m := backtest.MAPE
		mape = &m
	}

	return domain.ForecastReport{
		Scope:        req.Scope,
		Model:        forecaster.Name(),
		HistoryStart: req.Series.Start(),
		HistoryEnd:   req.Series.End(),
		HistoryDays:  req.Series.Len(),
		History:      req.Series.Points(),
		Forecast:     bounds,
		Backtest:     backtest,
		Drift:        DetectDrift(req.Series, backtest, params),
		Intelligence: Analyze(req.Series, bounds, mape, req.Stock, params),
		Quality:      req.Quality,
	}, nil
}
