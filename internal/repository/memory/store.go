// Package memory serves the repository readers from rows loaded into memory,
// for file-based runs and tests.
package memory

import (
	"context"
	"sort"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/repository"
)

type Store struct {
	Sales     []domain.SalesRow
	Mappings  []domain.SKUMapping
	Inventory []domain.InventoryLevel
	Suppliers []domain.SupplierSetting
	Overrides []domain.Override
}

var (
	_ repository.OrderHistoryReader    = (*Store)(nil)
	_ repository.MappingReader         = (*Store)(nil)
	_ repository.InventoryReader       = (*Store)(nil)
	_ repository.SupplierSettingReader = (*Store)(nil)
	_ repository.OverrideReader        = (*Store)(nil)
)

func matches(scope domain.DemandScope, sku, marketplace string) bool {
	if scope.SKU != "" && sku != scope.SKU {
		return false
	}
	return scope.AllMarketplaces() || marketplace == scope.Marketplace
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Store) GetSalesRows(ctx context.Context, scope domain.DemandScope, start, end time.Time) ([]domain.SalesRow, error) {
	start, end = dateOnly(start), dateOnly(end)

	type key struct {
		date        time.Time
		sku         string
		marketplace string
	}
	totals := make(map[key]int)
	for _, row := range s.Sales {
		d := dateOnly(row.Date)
		if d.Before(start) || d.After(end) || !matches(scope, row.SKU, row.Marketplace) {
			continue
		}
		totals[key{d, row.SKU, row.Marketplace}] += row.Units
	}

	rows := make([]domain.SalesRow, 0, len(totals))
	for k, units := range totals {
		rows = append(rows, domain.SalesRow{Date: k.date, SKU: k.sku, Marketplace: k.marketplace, Units: units})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		if rows[i].SKU != rows[j].SKU {
			return rows[i].SKU < rows[j].SKU
		}
		return rows[i].Marketplace < rows[j].Marketplace
	})
	return rows, nil
}

func (s *Store) GetLatestSaleDate(ctx context.Context, scope domain.DemandScope) (*time.Time, error) {
	var latest *time.Time
	for _, row := range s.Sales {
		if !matches(scope, row.SKU, row.Marketplace) {
			continue
		}
		d := dateOnly(row.Date)
		if latest == nil || d.After(*latest) {
			latest = &d
		}
	}
	return latest, nil
}

func (s *Store) GetMappings(ctx context.Context, scope domain.DemandScope) ([]domain.SKUMapping, error) {
	var out []domain.SKUMapping
	for _, m := range s.Mappings {
		if matches(scope, m.SKU, m.Marketplace) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) GetInventory(ctx context.Context, sku, marketplace string) (*domain.InventoryLevel, error) {
	for _, level := range s.Inventory {
		if level.SKU == sku && level.Marketplace == marketplace {
			l := level
			return &l, nil
		}
	}
	return nil, nil
}

func (s *Store) ListInventory(ctx context.Context, marketplace string) ([]domain.InventoryLevel, error) {
	scope := domain.DemandScope{Marketplace: marketplace}
	var out []domain.InventoryLevel
	for _, level := range s.Inventory {
		if matches(scope, level.SKU, level.Marketplace) {
			out = append(out, level)
		}
	}
	return out, nil
}

// GetSupplierSetting prefers the marketplace-specific record over the global one.
func (s *Store) GetSupplierSetting(ctx context.Context, sku, marketplace string) (*domain.SupplierSetting, error) {
	var global *domain.SupplierSetting
	for i := range s.Suppliers {
		setting := s.Suppliers[i]
		if setting.SKU != sku {
			continue
		}
		if setting.Marketplace != nil && *setting.Marketplace == marketplace {
			return &setting, nil
		}
		if setting.Marketplace == nil && global == nil {
			global = &setting
		}
	}
	return global, nil
}

func (s *Store) GetOverrides(ctx context.Context, scope domain.DemandScope, start, end time.Time) ([]domain.Override, error) {
	start, end = dateOnly(start), dateOnly(end)

	var out []domain.Override
	for _, o := range s.Overrides {
		if o.EndDate.Before(start) || o.StartDate.After(end) {
			continue
		}
		if o.SKU != nil && *o.SKU != scope.SKU {
			continue
		}
		if o.Marketplace != nil && (scope.AllMarketplaces() || *o.Marketplace != scope.Marketplace) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}
