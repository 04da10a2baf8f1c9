package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/demandcast/internal/config"
	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/google/uuid"
)

func TestReportKeyHashStable(t *testing.T) {
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	stock := 40.0

	a := ReportKey{SKU: "SKU-1", Marketplace: "Amazon", Mode: domain.DemandModeMappedConfirmed, HorizonDays: 30, EndDate: end, CurrentStock: &stock}
	b := ReportKey{SKU: " SKU-1 ", Marketplace: "amazon", Mode: domain.DemandModeMappedConfirmed, HorizonDays: 30, EndDate: end, CurrentStock: &stock}

	if reportKeyHash(a) != reportKeyHash(b) {
		t.Fatalf("expected normalized keys to hash equally")
	}

	c := a
	c.HorizonDays = 14
	if reportKeyHash(a) == reportKeyHash(c) {
		t.Fatalf("expected different horizons to hash differently")
	}

	d := a
	d.Marketplace = ""
	e := a
	e.Marketplace = domain.AllMarketplaces
	if reportKeyHash(d) != reportKeyHash(e) {
		t.Fatalf("empty marketplace should share the all-marketplaces key")
	}
}

func TestBuildReportKeyPrefix(t *testing.T) {
	key := ReportKey{Mode: domain.DemandModeLegacy, HorizonDays: 7}.String()
	if !strings.HasPrefix(key, forecastReportKeyPrefix+":") {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestDisabledCacheIsNoop(t *testing.T) {
	c, err := NewForecastCache(config.CacheConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	key := ReportKey{SKU: "SKU-1", HorizonDays: 30}
	if err := c.SetReport(ctx, key, domain.ForecastReport{Model: "weekly_seasonal"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, err := c.GetReport(ctx, key); err != nil || ok {
		t.Fatalf("expected miss from noop cache, got ok=%v err=%v", ok, err)
	}
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.CacheConfig{RedisPassword: "secret", RedisDB: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "127.0.0.1:6379" || opts.DB != 2 || opts.Password != "secret" {
		t.Fatalf("unexpected options: %+v", opts)
	}

	opts, err = redisOptions(config.CacheConfig{RedisURL: "redis://:pw@cache.internal:6380/1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "cache.internal:6380" || opts.DB != 1 {
		t.Fatalf("unexpected options from url: %+v", opts)
	}

	if _, err := redisOptions(config.CacheConfig{RedisURL: "://bad"}); err == nil {
		t.Fatalf("expected error for malformed url")
	}
}

func TestReportTTL(t *testing.T) {
	if got := reportTTL(config.CacheConfig{}); got != defaultReportTTL {
		t.Errorf("expected default ttl, got %s", got)
	}
	if got := reportTTL(config.CacheConfig{ForecastTTLSeconds: 90}); got != 90*time.Second {
		t.Errorf("expected 90s ttl, got %s", got)
	}
}

func TestReportKeyTracksOverridesAndHistory(t *testing.T) {
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	sku := "SKU-1"
	first := domain.Override{ID: uuid.New(), SKU: &sku, StartDate: end.AddDate(0, 0, 1), EndDate: end.AddDate(0, 0, 7), Type: domain.OverrideMultiplier, Value: 2}
	second := domain.Override{ID: uuid.New(), StartDate: end.AddDate(0, 0, 1), EndDate: end.AddDate(0, 0, 3), Type: domain.OverrideAbsolute, Value: 5}

	base := ReportKey{SKU: sku, Mode: domain.DemandModeLegacy, HorizonDays: 7, HistoryDays: 365, EndDate: end}

	withOne := base
	withOne.Overrides = []domain.Override{first}
	if reportKeyHash(base) == reportKeyHash(withOne) {
		t.Fatalf("adding an override must change the key")
	}

	edited := first
	edited.Value = 3
	withEdited := base
	withEdited.Overrides = []domain.Override{edited}
	if reportKeyHash(withOne) == reportKeyHash(withEdited) {
		t.Fatalf("editing an override must change the key")
	}

	ab, ba := base, base
	ab.Overrides = []domain.Override{first, second}
	ba.Overrides = []domain.Override{second, first}
	if reportKeyHash(ab) != reportKeyHash(ba) {
		t.Fatalf("override order must not change the key")
	}

	shorter := base
	shorter.HistoryDays = 180
	if reportKeyHash(base) == reportKeyHash(shorter) {
		t.Fatalf("history window must change the key")
	}
}
