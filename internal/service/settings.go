package service

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/demandcast/internal/config"
	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/forecast"
	"github.com/andresuchdata/demandcast/internal/restock"
)

// Settings are the request defaults and engine parameters shared by services.
type Settings struct {
	Forecast           forecast.Params
	Restock            restock.Params
	DefaultHorizonDays int
	HistoryDays        int
	IncludeUnmapped    bool
	Marketplaces       []string
}

func DefaultSettings() Settings {
	return Settings{
		Forecast:           forecast.DefaultParams(),
		Restock:            restock.DefaultParams(),
		DefaultHorizonDays: 30,
		HistoryDays:        365,
		Marketplaces:       []string{"amazon", "shopify", "ebay", "walmart"},
	}
}

// SettingsFromConfig overlays configured values on the defaults. Zero values
// keep the default.
func SettingsFromConfig(cfg config.ForecastConfig) Settings {
	s := DefaultSettings()

	setInt := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}
	setFloat := func(dst *float64, v float64) {
		if v > 0 {
			*dst = v
		}
	}

	setInt(&s.DefaultHorizonDays, cfg.HorizonDays)
	setInt(&s.HistoryDays, cfg.HistoryDays)
	setInt(&s.Forecast.MaxHorizonDays, cfg.MaxHorizonDays)
	setInt(&s.Forecast.DriftWindowDays, cfg.DriftWindowDays)
	setFloat(&s.Forecast.DriftMultiplier, cfg.DriftMultiplier)
	setFloat(&s.Forecast.ConfidenceHighMAPE, cfg.ConfidenceHighMAPE)
	setFloat(&s.Forecast.ConfidenceMediumMAPE, cfg.ConfidenceMediumMAPE)
	setInt(&s.Restock.DefaultLeadTimeDays, cfg.LeadTimeDays)
	setInt(&s.Restock.ReviewPeriodDays, cfg.ReviewPeriodDays)
	setInt(&s.Restock.CoverBufferDays, cfg.CoverBufferDays)
	setFloat(&s.Restock.DefaultServiceLevel, cfg.ServiceLevel)
	setInt(&s.Restock.ActionConcurrency, cfg.ActionConcurrency)

	s.IncludeUnmapped = cfg.IncludeUnmapped
	if len(cfg.Marketplaces) > 0 {
		s.Marketplaces = cfg.Marketplaces
	}
	return s
}

// resolveScope normalizes the marketplace and checks it against the configured list.
func (s Settings) resolveScope(sku, marketplace string) (domain.DemandScope, error) {
	marketplace = strings.ToLower(strings.TrimSpace(marketplace))
	if marketplace == "" {
		marketplace = domain.AllMarketplaces
	}

	if marketplace != domain.AllMarketplaces && !s.knownMarketplace(marketplace) {
		return domain.DemandScope{}, fmt.Errorf("%w: %q", domain.ErrUnknownMarketplace, marketplace)
	}

	return domain.DemandScope{SKU: strings.TrimSpace(sku), Marketplace: marketplace}, nil
}

func (s Settings) knownMarketplace(marketplace string) bool {
	marketplace = strings.ToLower(strings.TrimSpace(marketplace))
	for _, m := range s.Marketplaces {
		if m == marketplace {
			return true
		}
	}
	return false
}

func (s Settings) horizon(requested int) int {
	if requested == 0 {
		return s.DefaultHorizonDays
	}
	return requested
}

func (s Settings) includeUnmapped(requested *bool) bool {
	if requested != nil {
		return *requested
	}
	return s.IncludeUnmapped
}
