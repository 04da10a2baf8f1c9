package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/demandcast/internal/cache"
	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/forecast"
	"github.com/andresuchdata/demandcast/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ForecastRequest scopes one forecast. Zero values take the configured defaults.
type ForecastRequest struct {
	SKU             string
	Marketplace     string
	HorizonDays     int
	Mode            string
	IncludeUnmapped *bool
	EndDate         *time.Time
	LeadTimeDays    int
	CurrentStock    *float64
}

// DemandRequest scopes a demand-series read. Start defaults to the configured
// history window before End.
type DemandRequest struct {
	SKU             string
	Marketplace     string
	Mode            string
	IncludeUnmapped *bool
	Start           *time.Time
	End             *time.Time
}

type ForecastService struct {
	orders    repository.OrderHistoryReader
	mappings  repository.MappingReader
	overrides repository.OverrideReader
	cache     cache.ForecastCache
	settings  Settings
	now       func() time.Time
}

func NewForecastService(
	orders repository.OrderHistoryReader,
	mappings repository.MappingReader,
	overrides repository.OverrideReader,
	cacheImpl cache.ForecastCache,
	settings Settings,
) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	return &ForecastService{
		orders:    orders,
		mappings:  mappings,
		overrides: overrides,
		cache:     cacheImpl,
		settings:  settings,
		now:       time.Now,
	}
}

func (s *ForecastService) Settings() Settings {
	return s.settings
}

// demandInput is everything read from the collaborators for one scope.
type demandInput struct {
	scope   domain.DemandScope
	mode    domain.DemandMode
	end     time.Time
	series  forecast.Series
	quality domain.DemandQualityMeta
}

func (s *ForecastService) resolveEnd(ctx context.Context, scope domain.DemandScope, explicit *time.Time) (time.Time, error) {
	var latest *time.Time
	if explicit == nil {
		var err error
		latest, err = s.orders.GetLatestSaleDate(ctx, scope)
		if err != nil {
			return time.Time{}, err
		}
	}
	return forecast.ResolveEndDate(explicit, latest, s.now()), nil
}

// loadOverrides reads the overrides touching the forecast window after end.
func (s *ForecastService) loadOverrides(ctx context.Context, scope domain.DemandScope, end time.Time, horizonDays int) ([]domain.Override, error) {
	if s.overrides == nil {
		return nil, nil
	}
	overrides, err := s.overrides.GetOverrides(ctx, scope, forecast.AddDays(end, 1), forecast.AddDays(end, horizonDays))
	if err != nil {
		return nil, fmt.Errorf("error loading overrides: %w", err)
	}
	return overrides, nil
}

// loadDemand reads order lines and mappings concurrently.
// When start is nil the series begins at the first sale inside the history
// window, so a young SKU is not padded with a year of zeros.
func (s *ForecastService) loadDemand(ctx context.Context, scope domain.DemandScope, mode domain.DemandMode, start *time.Time, end time.Time) (demandInput, error) {
	windowStart := forecast.AddDays(end, -(s.settings.HistoryDays - 1))
	if start != nil {
		windowStart = forecast.DateOnly(*start)
	}

	var (
		rows     []domain.SalesRow
		mappings []domain.SKUMapping
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.orders.GetSalesRows(gctx, scope, windowStart, end)
		return err
	})
	if mode != domain.DemandModeLegacy {
		g.Go(func() error {
			var err error
			mappings, err = s.mappings.GetMappings(gctx, scope)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return demandInput{}, err
	}

	seriesStart := windowStart
	if start == nil {
		seriesStart = firstSaleDate(rows, windowStart, end)
	}

	series, quality := forecast.SelectDemand(rows, forecast.NewMappingTable(mappings), mode, scope, seriesStart, end)
	if quality.Severity != domain.SeverityOK {
		log.Warn().
			Str("sku", scope.SKU).
			Str("marketplace", scope.Marketplace).
			Str("severity", string(quality.Severity)).
			Strs("warnings", quality.Warnings).
			Msg("demand data quality")
	}

	return demandInput{
		scope:   scope,
		mode:    mode,
		end:     end,
		series:  series,
		quality: quality,
	}, nil
}

// firstSaleDate is the earliest row date within [windowStart, end], or the day
// after end when there are none, which yields an empty series.
func firstSaleDate(rows []domain.SalesRow, windowStart, end time.Time) time.Time {
	first := forecast.AddDays(end, 1)
	for _, row := range rows {
		d := forecast.DateOnly(row.Date)
		if d.Before(windowStart) || d.After(end) {
			continue
		}
		if d.Before(first) {
			first = d
		}
	}
	return first
}

// Forecast runs the full forecast pipeline for one scope.
func (s *ForecastService) Forecast(ctx context.Context, req ForecastRequest) (domain.ForecastReport, error) {
	scope, err := s.settings.resolveScope(req.SKU, req.Marketplace)
	if err != nil {
		return domain.ForecastReport{}, err
	}

	horizon := s.settings.horizon(req.HorizonDays)
	if err := forecast.ValidateHorizon(horizon, s.settings.Forecast); err != nil {
		return domain.ForecastReport{}, err
	}

	mode, err := forecast.ResolveMode(req.Mode, s.settings.includeUnmapped(req.IncludeUnmapped))
	if err != nil {
		return domain.ForecastReport{}, err
	}

	end, err := s.resolveEnd(ctx, scope, req.EndDate)
	if err != nil {
		return domain.ForecastReport{}, fmt.Errorf("error resolving history end: %w", err)
	}

	overrides, err := s.loadOverrides(ctx, scope, end, horizon)
	if err != nil {
		return domain.ForecastReport{}, err
	}

	key := cache.ReportKey{
		SKU:          scope.SKU,
		Marketplace:  scope.Marketplace,
		Mode:         mode,
		HorizonDays:  horizon,
		HistoryDays:  s.settings.HistoryDays,
		EndDate:      end,
		LeadTimeDays: req.LeadTimeDays,
		CurrentStock: req.CurrentStock,
		Overrides:    overrides,
	}
	if report, ok, err := s.cache.GetReport(ctx, key); err == nil && ok {
		return *report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get report failed")
	}

	in, err := s.loadDemand(ctx, scope, mode, nil, end)
	if err != nil {
		return domain.ForecastReport{}, fmt.Errorf("error loading demand: %w", err)
	}

	report, err := forecast.Run(forecast.Request{
		Scope:       scope,
		Series:      in.series,
		Quality:     in.quality,
		HorizonDays: horizon,
		Overrides:   overrides,
		Stock: forecast.StockContext{
			LeadTimeDays: req.LeadTimeDays,
			CurrentStock: req.CurrentStock,
		},
	}, s.settings.Forecast)
	if err != nil {
		return domain.ForecastReport{}, err
	}

	if err := s.cache.SetReport(ctx, key, report); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set report failed")
	}

	return report, nil
}

// Demand returns the selected demand series and its quality report.
func (s *ForecastService) Demand(ctx context.Context, req DemandRequest) (domain.DemandReport, error) {
	scope, err := s.settings.resolveScope(req.SKU, req.Marketplace)
	if err != nil {
		return domain.DemandReport{}, err
	}

	mode, err := forecast.ResolveMode(req.Mode, s.settings.includeUnmapped(req.IncludeUnmapped))
	if err != nil {
		return domain.DemandReport{}, err
	}

	end, err := s.resolveEnd(ctx, scope, req.End)
	if err != nil {
		return domain.DemandReport{}, fmt.Errorf("error resolving history end: %w", err)
	}
	if req.Start != nil && forecast.DateOnly(*req.Start).After(end) {
		return domain.DemandReport{}, fmt.Errorf("%w: start %s is after end %s",
			domain.ErrInvalidDateRange, req.Start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	in, err := s.loadDemand(ctx, scope, mode, req.Start, end)
	if err != nil {
		return domain.DemandReport{}, fmt.Errorf("error loading demand: %w", err)
	}

	return domain.DemandReport{
		Scope:   scope,
		Start:   in.series.Start(),
		End:     in.series.End(),
		Points:  in.series.Points(),
		Quality: in.quality,
	}, nil
}

// Backtest reports walk-forward accuracy and drift for a scope.
func (s *ForecastService) Backtest(ctx context.Context, req DemandRequest) (domain.BacktestReport, error) {
	scope, err := s.settings.resolveScope(req.SKU, req.Marketplace)
	if err != nil {
		return domain.BacktestReport{}, err
	}

	mode, err := forecast.ResolveMode(req.Mode, s.settings.includeUnmapped(req.IncludeUnmapped))
	if err != nil {
		return domain.BacktestReport{}, err
	}

	end, err := s.resolveEnd(ctx, scope, req.End)
	if err != nil {
		return domain.BacktestReport{}, fmt.Errorf("error resolving history end: %w", err)
	}

	in, err := s.loadDemand(ctx, scope, mode, nil, end)
	if err != nil {
		return domain.BacktestReport{}, fmt.Errorf("error loading demand: %w", err)
	}

	backtest := forecast.Backtest(in.series, s.settings.Forecast)
	return domain.BacktestReport{
		Scope:       scope,
		HistoryDays: in.series.Len(),
		Backtest:    backtest,
		Drift:       forecast.DetectDrift(in.series, backtest, s.settings.Forecast),
		Quality:     in.quality,
	}, nil
}

// seriesFromReport rebuilds the history series carried by a report.
func seriesFromReport(report domain.ForecastReport) forecast.Series {
	units := make([]int, len(report.History))
	for i, p := range report.History {
		units[i] = p.Units
	}
	return forecast.NewSeries(report.HistoryStart, units)
}
