package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
)

// OrderHistoryReader returns per-day unit totals from persisted order lines.
// Missing data yields an empty result, never an error.
type OrderHistoryReader interface {
	GetSalesRows(ctx context.Context, scope domain.DemandScope, start, end time.Time) ([]domain.SalesRow, error)
	GetLatestSaleDate(ctx context.Context, scope domain.DemandScope) (*time.Time, error)
}

// MappingReader returns SKU mapping records within a scope.
type MappingReader interface {
	GetMappings(ctx context.Context, scope domain.DemandScope) ([]domain.SKUMapping, error)
}

// InventoryReader returns stock positions. A missing record is (nil, nil).
type InventoryReader interface {
	GetInventory(ctx context.Context, sku, marketplace string) (*domain.InventoryLevel, error)
	ListInventory(ctx context.Context, marketplace string) ([]domain.InventoryLevel, error)
}

// SupplierSettingReader returns the most specific supplier setting for a SKU:
// the marketplace-specific record when present, otherwise the global one.
type SupplierSettingReader interface {
	GetSupplierSetting(ctx context.Context, sku, marketplace string) (*domain.SupplierSetting, error)
}

// OverrideReader returns overrides overlapping [start, end] that may apply to scope.
type OverrideReader interface {
	GetOverrides(ctx context.Context, scope domain.DemandScope, start, end time.Time) ([]domain.Override, error)
}
