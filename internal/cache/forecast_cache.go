package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/demandcast/internal/config"
	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	forecastReportKeyPrefix = "forecast:report"
	forecastScanBatchSize   = 100
	defaultReportTTL        = time.Minute
)

// ReportKey identifies one forecast computation. Two requests with equal keys
// produce identical reports for unchanged order history. Overrides are part
// of the key, so adding or editing one takes effect on the next request.
type ReportKey struct {
	SKU          string
	Marketplace  string
	Mode         domain.DemandMode
	HorizonDays  int
	HistoryDays  int
	EndDate      time.Time
	LeadTimeDays int
	CurrentStock *float64
	Overrides    []domain.Override
}

type ForecastCache interface {
	GetReport(ctx context.Context, key ReportKey) (*domain.ForecastReport, bool, error)
	SetReport(ctx context.Context, key ReportKey, report domain.ForecastReport) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &redisForecastCache{
		client: client,
		ttl:    reportTTL(cfg),
	}, nil
}

// redisOptions prefers REDIS_URL and falls back to host, port and DB.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func reportTTL(cfg config.CacheConfig) time.Duration {
	if cfg.ForecastTTLSeconds <= 0 {
		return defaultReportTTL
	}
	return time.Duration(cfg.ForecastTTLSeconds) * time.Second
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetReport(ctx context.Context, key ReportKey) (*domain.ForecastReport, bool, error) {
	payload, err := c.client.Get(ctx, key.String()).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.ForecastReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode forecast report cache: %w", err)
	}

	return &report, true, nil
}

func (c *redisForecastCache) SetReport(ctx context.Context, key ReportKey, report domain.ForecastReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode forecast report cache: %w", err)
	}

	if err := c.client.Set(ctx, key.String(), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// InvalidateAll unlinks every cached report in batches while scanning.
func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, forecastReportKeyPrefix+":*", forecastScanBatchSize).Iterator()
	batch := make([]string, 0, forecastScanBatchSize)
	removed := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis unlink failed: %w", err)
		}
		removed += len(batch)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == forecastScanBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	log.Debug().Int("keys", removed).Msg("forecast report cache flushed")
	return nil
}

func (n *noopForecastCache) GetReport(ctx context.Context, key ReportKey) (*domain.ForecastReport, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetReport(ctx context.Context, key ReportKey, report domain.ForecastReport) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// String is the redis key of the report.
func (key ReportKey) String() string {
	return fmt.Sprintf("%s:%s", forecastReportKeyPrefix, reportKeyHash(key))
}

func reportKeyHash(key ReportKey) string {
	parts := []string{
		"mode=" + string(key.Mode),
		fmt.Sprintf("horizon=%d", key.HorizonDays),
		fmt.Sprintf("history=%d", key.HistoryDays),
		"end=" + key.EndDate.Format("2006-01-02"),
	}

	if sku := strings.TrimSpace(key.SKU); sku != "" {
		parts = append(parts, "sku="+sku)
	}

	marketplace := strings.ToLower(strings.TrimSpace(key.Marketplace))
	if marketplace == "" {
		marketplace = domain.AllMarketplaces
	}
	parts = append(parts, "marketplace="+marketplace)

	if key.LeadTimeDays > 0 {
		parts = append(parts, fmt.Sprintf("lead=%d", key.LeadTimeDays))
	}
	if key.CurrentStock != nil {
		parts = append(parts, fmt.Sprintf("stock=%.4f", *key.CurrentStock))
	}

	if len(key.Overrides) > 0 {
		parts = append(parts, "overrides="+overridesFingerprint(key.Overrides))
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// overridesFingerprint is order-independent over the override set.
func overridesFingerprint(overrides []domain.Override) string {
	entries := make([]string, 0, len(overrides))
	for _, o := range overrides {
		sku, marketplace := "*", "*"
		if o.SKU != nil {
			sku = *o.SKU
		}
		if o.Marketplace != nil {
			marketplace = *o.Marketplace
		}
		entries = append(entries, fmt.Sprintf("%s/%s/%s/%s/%s/%s/%g",
			o.ID, sku, marketplace,
			o.StartDate.Format("2006-01-02"), o.EndDate.Format("2006-01-02"),
			o.Type, o.Value))
	}
	sort.Strings(entries)
	sum := sha1.Sum([]byte(strings.Join(entries, ";")))
	return hex.EncodeToString(sum[:])
}
