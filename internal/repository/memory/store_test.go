package memory

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/google/uuid"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestGetSalesRowsAggregatesPerDay(t *testing.T) {
	store := &Store{Sales: []domain.SalesRow{
		{Date: day(1), SKU: "A", Marketplace: "amazon", Units: 2},
		{Date: day(1).Add(5 * time.Hour), SKU: "A", Marketplace: "amazon", Units: 3},
		{Date: day(2), SKU: "A", Marketplace: "ebay", Units: 1},
		{Date: day(9), SKU: "A", Marketplace: "amazon", Units: 7},
	}}

	rows, err := store.GetSalesRows(context.Background(), domain.DemandScope{SKU: "A", Marketplace: "amazon"}, day(1), day(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Units != 5 {
		t.Fatalf("expected one aggregated row of 5 units, got %+v", rows)
	}

	latest, _ := store.GetLatestSaleDate(context.Background(), domain.DemandScope{SKU: "A", Marketplace: "ebay"})
	if latest == nil || !latest.Equal(day(2)) {
		t.Fatalf("unexpected latest date %v", latest)
	}
}

func TestGetSupplierSettingPrefersMarketplace(t *testing.T) {
	amazon := "amazon"
	store := &Store{Suppliers: []domain.SupplierSetting{
		{SKU: "A", Supplier: "global", LeadTimeDaysMean: 20},
		{SKU: "A", Marketplace: &amazon, Supplier: "specific", LeadTimeDaysMean: 10},
	}}

	got, _ := store.GetSupplierSetting(context.Background(), "A", "amazon")
	if got == nil || got.Supplier != "specific" {
		t.Fatalf("expected marketplace-specific setting, got %+v", got)
	}

	got, _ = store.GetSupplierSetting(context.Background(), "A", "ebay")
	if got == nil || got.Supplier != "global" {
		t.Fatalf("expected global setting, got %+v", got)
	}

	got, _ = store.GetSupplierSetting(context.Background(), "B", "ebay")
	if got != nil {
		t.Fatalf("expected no setting, got %+v", got)
	}
}

func TestGetOverridesScope(t *testing.T) {
	sku, mp := "A", "amazon"
	store := &Store{Overrides: []domain.Override{
		{ID: uuid.New(), StartDate: day(1), EndDate: day(5), Type: domain.OverrideMultiplier, Value: 2},
		{ID: uuid.New(), SKU: &sku, StartDate: day(1), EndDate: day(5), Type: domain.OverrideMultiplier, Value: 3},
		{ID: uuid.New(), SKU: &sku, Marketplace: &mp, StartDate: day(1), EndDate: day(5), Type: domain.OverrideAbsolute, Value: 10},
		{ID: uuid.New(), StartDate: day(20), EndDate: day(25), Type: domain.OverrideMultiplier, Value: 4},
	}}

	tests := []struct {
		name  string
		scope domain.DemandScope
		want  int
	}{
		{name: "sku on marketplace", scope: domain.DemandScope{SKU: "A", Marketplace: "amazon"}, want: 3},
		{name: "sku across marketplaces", scope: domain.DemandScope{SKU: "A"}, want: 2},
		{name: "other sku", scope: domain.DemandScope{SKU: "B", Marketplace: "amazon"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := store.GetOverrides(context.Background(), tt.scope, day(3), day(10))
			if len(got) != tt.want {
				t.Fatalf("expected %d overrides, got %d", tt.want, len(got))
			}
		})
	}
}
