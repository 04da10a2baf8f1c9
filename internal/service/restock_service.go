package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/repository"
	"github.com/andresuchdata/demandcast/internal/restock"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// RestockRequest scopes a restock computation. CurrentStock and DailyDemand
// replace the stored stock position and the forecast demand when set.
type RestockRequest struct {
	SKU             string
	Marketplace     string
	HorizonDays     int
	Mode            string
	IncludeUnmapped *bool
	LeadTimeDays    int
	CurrentStock    *float64
	DailyDemand     *float64
}

// ActionsRequest scopes the traffic-light view over every SKU with inventory.
type ActionsRequest struct {
	Marketplace     string
	HorizonDays     int
	Mode            string
	IncludeUnmapped *bool
	LeadTimeDays    int
}

type RestockService struct {
	forecasts *ForecastService
	inventory repository.InventoryReader
	suppliers repository.SupplierSettingReader
}

func NewRestockService(forecasts *ForecastService, inventory repository.InventoryReader, suppliers repository.SupplierSettingReader) *RestockService {
	return &RestockService{
		forecasts: forecasts,
		inventory: inventory,
		suppliers: suppliers,
	}
}

func (s *RestockService) params() restock.Params {
	return s.forecasts.settings.Restock
}

// currentStock is on hand minus reserved, summed over marketplaces for an
// all-marketplaces scope. Nil when no inventory record exists.
func (s *RestockService) currentStock(ctx context.Context, scope domain.DemandScope) (*float64, error) {
	if !scope.AllMarketplaces() {
		level, err := s.inventory.GetInventory(ctx, scope.SKU, scope.Marketplace)
		if err != nil || level == nil {
			return nil, err
		}
		stock := math.Max(0, float64(level.OnHandUnits-level.ReservedUnits))
		return &stock, nil
	}

	levels, err := s.inventory.ListInventory(ctx, domain.AllMarketplaces)
	if err != nil {
		return nil, err
	}
	var (
		total float64
		found bool
	)
	for _, level := range levels {
		if level.SKU != scope.SKU {
			continue
		}
		found = true
		total += math.Max(0, float64(level.OnHandUnits-level.ReservedUnits))
	}
	if !found {
		return nil, nil
	}
	return &total, nil
}

// leadTime picks the requested lead time, then the supplier setting, then the default.
func (s *RestockService) leadTime(ctx context.Context, scope domain.DemandScope, requested int) (int, error) {
	if requested > 0 {
		return requested, nil
	}
	if s.suppliers != nil && !scope.AllMarketplaces() {
		setting, err := s.suppliers.GetSupplierSetting(ctx, scope.SKU, scope.Marketplace)
		if err != nil {
			return 0, err
		}
		if setting != nil && setting.LeadTimeDaysMean > 0 {
			return int(math.Ceil(setting.LeadTimeDaysMean)), nil
		}
	}
	return s.params().DefaultLeadTimeDays, nil
}

// validateQuantities rejects caller-supplied stock or demand that is not a
// finite number within [0, restock.MaxQuantityUnits].
func validateQuantities(req RestockRequest) error {
	for name, v := range map[string]*float64{"current_stock": req.CurrentStock, "daily_demand": req.DailyDemand} {
		if v != nil && !validQuantity(*v) {
			return fmt.Errorf("%w: %s must be a number between 0 and %.0f", domain.ErrInvalidQuantity, name, restock.MaxQuantityUnits)
		}
	}
	return nil
}

func validQuantity(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= restock.MaxQuantityUnits
}

// planInput gathers stock, lead time and forecast for one SKU scope.
func (s *RestockService) planInput(ctx context.Context, req RestockRequest) (restock.PlanInput, error) {
	if req.SKU == "" {
		return restock.PlanInput{}, domain.ErrSKURequired
	}
	if err := validateQuantities(req); err != nil {
		return restock.PlanInput{}, err
	}
	scope, err := s.forecasts.settings.resolveScope(req.SKU, req.Marketplace)
	if err != nil {
		return restock.PlanInput{}, err
	}

	stock := req.CurrentStock
	var lead int
	g, gctx := errgroup.WithContext(ctx)
	if stock == nil {
		g.Go(func() error {
			var err error
			stock, err = s.currentStock(gctx, scope)
			return err
		})
	}
	g.Go(func() error {
		var err error
		lead, err = s.leadTime(gctx, scope, req.LeadTimeDays)
		return err
	})
	if err := g.Wait(); err != nil {
		return restock.PlanInput{}, fmt.Errorf("error loading stock position: %w", err)
	}

	horizon := s.forecasts.settings.horizon(req.HorizonDays)
	report, err := s.forecasts.Forecast(ctx, ForecastRequest{
		SKU:             scope.SKU,
		Marketplace:     scope.Marketplace,
		HorizonDays:     horizon,
		Mode:            req.Mode,
		IncludeUnmapped: req.IncludeUnmapped,
		LeadTimeDays:    lead,
		CurrentStock:    stock,
	})
	if err != nil {
		return restock.PlanInput{}, err
	}

	expected, high := restock.DailyDemandFromIntelligence(report.Intelligence, horizon)
	if req.DailyDemand != nil {
		expected, high = *req.DailyDemand, *req.DailyDemand
	}

	var dataEnd *time.Time
	if report.HistoryDays > 0 {
		end := report.HistoryEnd
		dataEnd = &end
	}

	return restock.PlanInput{
		SKU:                 scope.SKU,
		Marketplace:         scope.Marketplace,
		HistoryDays:         report.HistoryDays,
		CurrentStock:        stock,
		DataEndDate:         dataEnd,
		LeadTimeDays:        lead,
		DailyDemandExpected: expected,
		DailyDemandHigh:     high,
		Trend:               report.Intelligence.Trend,
		Confidence:          report.Intelligence.Confidence,
		Recommendation:      report.Intelligence.Recommendation,
		Reasoning:           report.Intelligence.Reasoning,
	}, nil
}

// Plan is the simple restock plan. Short history is ErrInsufficientHistory.
func (s *RestockService) Plan(ctx context.Context, req RestockRequest) (domain.RestockPlan, error) {
	in, err := s.planInput(ctx, req)
	if err != nil {
		return domain.RestockPlan{}, err
	}
	return restock.BuildPlan(in, s.params())
}

// Actions builds the traffic-light view for every inventory record in the
// marketplace, sorted most urgent first. Records on marketplaces outside the
// configured list are skipped.
func (s *RestockService) Actions(ctx context.Context, req ActionsRequest) ([]domain.RestockAction, error) {
	scope, err := s.forecasts.settings.resolveScope("", req.Marketplace)
	if err != nil {
		return nil, err
	}

	listed, err := s.inventory.ListInventory(ctx, scope.Marketplace)
	if err != nil {
		return nil, fmt.Errorf("error listing inventory: %w", err)
	}

	levels := make([]domain.InventoryLevel, 0, len(listed))
	for _, level := range listed {
		if !s.forecasts.settings.knownMarketplace(level.Marketplace) {
			log.Warn().
				Str("sku", level.SKU).
				Str("marketplace", level.Marketplace).
				Msg("restock actions: skipping inventory on unknown marketplace")
			continue
		}
		levels = append(levels, level)
	}

	actions := make([]domain.RestockAction, len(levels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.params().ActionConcurrency))
	for i, level := range levels {
		i, level := i, level
		stock := math.Max(0, float64(level.OnHandUnits-level.ReservedUnits))
		g.Go(func() error {
			in, err := s.planInput(gctx, RestockRequest{
				SKU:             level.SKU,
				Marketplace:     level.Marketplace,
				HorizonDays:     req.HorizonDays,
				Mode:            req.Mode,
				IncludeUnmapped: req.IncludeUnmapped,
				LeadTimeDays:    req.LeadTimeDays,
				CurrentStock:    &stock,
			})
			if err != nil {
				return fmt.Errorf("error planning %s/%s: %w", level.SKU, level.Marketplace, err)
			}
			actions[i] = restock.BuildAction(in, s.params())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	restock.SortActions(actions)
	log.Debug().Str("marketplace", scope.Marketplace).Int("actions", len(actions)).Msg("restock actions computed")
	return actions, nil
}

// advancedInput reads inventory, supplier setting and forecast for one SKU on
// one marketplace.
func (s *RestockService) advancedInput(ctx context.Context, req RestockRequest) (restock.AdvancedInput, error) {
	if req.SKU == "" {
		return restock.AdvancedInput{}, domain.ErrSKURequired
	}
	if err := validateQuantities(req); err != nil {
		return restock.AdvancedInput{}, err
	}
	scope, err := s.forecasts.settings.resolveScope(req.SKU, req.Marketplace)
	if err != nil {
		return restock.AdvancedInput{}, err
	}
	if scope.AllMarketplaces() {
		return restock.AdvancedInput{}, fmt.Errorf("%w: a specific marketplace is required", domain.ErrUnknownMarketplace)
	}

	var (
		inventory *domain.InventoryLevel
		supplier  *domain.SupplierSetting
		report    domain.ForecastReport
	)
	horizon := s.forecasts.settings.horizon(req.HorizonDays)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inventory, err = s.inventory.GetInventory(gctx, scope.SKU, scope.Marketplace)
		return err
	})
	g.Go(func() error {
		var err error
		supplier, err = s.suppliers.GetSupplierSetting(gctx, scope.SKU, scope.Marketplace)
		return err
	})
	g.Go(func() error {
		var err error
		report, err = s.forecasts.Forecast(gctx, ForecastRequest{
			SKU:             scope.SKU,
			Marketplace:     scope.Marketplace,
			HorizonDays:     horizon,
			Mode:            req.Mode,
			IncludeUnmapped: req.IncludeUnmapped,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return restock.AdvancedInput{}, err
	}

	in := restock.AdvancedInput{
		SKU:         scope.SKU,
		Marketplace: scope.Marketplace,
		Inventory:   inventory,
		Supplier:    supplier,
		History:     seriesFromReport(report),
		Confidence:  report.Intelligence.Confidence,
		Trend:       report.Intelligence.Trend,
	}

	if report.HistoryDays > 0 {
		end := report.HistoryEnd
		in.DataEndDate = &end
	}

	switch {
	case req.DailyDemand != nil:
		d := *req.DailyDemand
		in.DailyDemand = &d
	case report.HistoryDays >= s.params().MinHistoryDays:
		expected, _ := restock.DailyDemandFromIntelligence(report.Intelligence, horizon)
		in.DailyDemand = &expected
	}

	return in, nil
}

// Advanced is the supplier-aware recommendation.
func (s *RestockService) Advanced(ctx context.Context, req RestockRequest) (domain.RestockRecommendation, error) {
	in, err := s.advancedInput(ctx, req)
	if err != nil {
		return domain.RestockRecommendation{}, err
	}
	return restock.Advanced(in, s.params()), nil
}

// WhatIf recomputes the advanced recommendation with scenario overrides.
// Nothing is written back.
func (s *RestockService) WhatIf(ctx context.Context, req RestockRequest, overrides restock.WhatIfOverrides) (domain.WhatIfResult, error) {
	if err := validateScenario(overrides); err != nil {
		return domain.WhatIfResult{}, err
	}
	in, err := s.advancedInput(ctx, req)
	if err != nil {
		return domain.WhatIfResult{}, err
	}
	return restock.WhatIf(in, overrides, s.params()), nil
}

func validateScenario(o restock.WhatIfOverrides) error {
	if o.DailyDemand != nil && !validQuantity(*o.DailyDemand) {
		return fmt.Errorf("%w: daily_demand must be a number between 0 and %.0f", domain.ErrInvalidScenario, restock.MaxQuantityUnits)
	}
	for name, v := range map[string]*int{"on_hand_units": o.OnHand, "inbound_units": o.Inbound, "reserved_units": o.Reserved} {
		if v != nil && (*v < 0 || float64(*v) > restock.MaxQuantityUnits) {
			return fmt.Errorf("%w: %s must be between 0 and %.0f", domain.ErrInvalidScenario, name, restock.MaxQuantityUnits)
		}
	}
	if o.LeadTimeDays != nil && !(*o.LeadTimeDays > 0 && *o.LeadTimeDays <= 365) {
		return fmt.Errorf("%w: lead_time_days must be within (0, 365]", domain.ErrInvalidScenario)
	}
	if o.ServiceLevel != nil && !(*o.ServiceLevel > 0 && *o.ServiceLevel < 1) {
		return fmt.Errorf("%w: service_level must be within (0, 1)", domain.ErrInvalidScenario)
	}
	return nil
}
