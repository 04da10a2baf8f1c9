package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/andresuchdata/demandcast/internal/cache"
	"github.com/andresuchdata/demandcast/internal/config"
	"github.com/andresuchdata/demandcast/internal/ingest"
	"github.com/andresuchdata/demandcast/internal/repository/memory"
	"github.com/andresuchdata/demandcast/internal/repository/postgres"
	"github.com/andresuchdata/demandcast/internal/service"
	"github.com/andresuchdata/demandcast/internal/storage"
	"github.com/andresuchdata/demandcast/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"
)

// environment holds what the subcommands share: the services built in open
// and the optional storage client.
type environment struct {
	db        *sqlx.DB
	store     storage.ObjectStorage
	forecasts *service.ForecastService
	restocks  *service.RestockService
}

func (e *environment) open(c *cli.Context) error {
	logger.SetLevel(c.String("log-level"))
	cfg := config.Load()
	settings := service.SettingsFromConfig(cfg.Forecast)

	if c.Bool("from-storage") || c.String("upload-key") != "" {
		client, err := storage.NewS3Client(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		e.store = client
	}

	if dbURL := c.String("db-url"); dbURL != "" {
		db, err := sql.Open("pgx", dbURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.PingContext(c.Context); err != nil {
			db.Close()
			return fmt.Errorf("failed to ping database: %w", err)
		}
		e.db = sqlx.NewDb(db, "pgx")
		wrapped := postgres.Wrap(e.db, cfg.Database.MaxConcurrentReads)

		if explicit := c.StringSlice("marketplaces"); len(explicit) > 0 {
			settings.Marketplaces = normalizeMarketplaces(explicit)
		}
		e.forecasts = service.NewForecastService(
			postgres.NewOrderRepository(wrapped),
			postgres.NewMappingRepository(wrapped),
			postgres.NewOverrideRepository(wrapped),
			cache.NewNoopForecastCache(),
			settings,
		)
		e.restocks = service.NewRestockService(e.forecasts,
			postgres.NewInventoryRepository(wrapped),
			postgres.NewSupplierRepository(wrapped),
		)
		return nil
	}

	mem, err := e.loadFiles(c)
	if err != nil {
		return err
	}

	if explicit := c.StringSlice("marketplaces"); len(explicit) > 0 {
		settings.Marketplaces = normalizeMarketplaces(explicit)
	} else {
		settings.Marketplaces = mergeMarketplaces(settings.Marketplaces, mem)
	}

	e.forecasts = service.NewForecastService(mem, mem, mem, cache.NewNoopForecastCache(), settings)
	e.restocks = service.NewRestockService(e.forecasts, mem, mem)
	return nil
}

func (e *environment) close(c *cli.Context) error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

// loadFiles reads every file flag that is set into an in-memory store.
func (e *environment) loadFiles(c *cli.Context) (*memory.Store, error) {
	mem := &memory.Store{}
	if c.String("sales") == "" {
		return nil, fmt.Errorf("either --db-url or --sales is required")
	}

	loaders := []struct {
		flag string
		load func(io.Reader, ingest.Format) error
	}{
		{"sales", func(r io.Reader, f ingest.Format) (err error) {
			mem.Sales, err = ingest.ReadSales(r, f)
			return err
		}},
		{"mappings", func(r io.Reader, f ingest.Format) (err error) {
			mem.Mappings, err = ingest.ReadMappings(r, f)
			return err
		}},
		{"inventory", func(r io.Reader, f ingest.Format) (err error) {
			mem.Inventory, err = ingest.ReadInventory(r, f)
			return err
		}},
		{"suppliers", func(r io.Reader, f ingest.Format) (err error) {
			mem.Suppliers, err = ingest.ReadSupplierSettings(r, f)
			return err
		}},
	}

	for _, l := range loaders {
		path := c.String(l.flag)
		if path == "" {
			continue
		}
		if err := e.readFile(c.Context, path, l.load); err != nil {
			return nil, fmt.Errorf("failed to load %s from %s: %w", l.flag, path, err)
		}
	}

	logger.Log.Debug().
		Int("sales_rows", len(mem.Sales)).
		Int("mappings", len(mem.Mappings)).
		Int("inventory", len(mem.Inventory)).
		Int("suppliers", len(mem.Suppliers)).
		Msg("history loaded")
	return mem, nil
}

func (e *environment) readFile(ctx context.Context, path string, load func(io.Reader, ingest.Format) error) error {
	remote := e.store != nil && !isLocal(path)
	if remote && strings.HasSuffix(path, "/") {
		key, err := e.latestExport(ctx, path)
		if err != nil {
			return err
		}
		path = key
	}

	format, err := ingest.FormatFromPath(path)
	if err != nil {
		return err
	}

	var r io.ReadCloser
	if remote {
		r, err = e.store.OpenObject(ctx, path)
	} else {
		r, err = os.Open(path)
	}
	if err != nil {
		return err
	}
	defer r.Close()

	return load(r, format)
}

// latestExport resolves a storage prefix to its most recent CSV or XLSX object.
func (e *environment) latestExport(ctx context.Context, prefix string) (string, error) {
	objects, err := e.store.ListObjects(ctx, prefix)
	if err != nil {
		return "", err
	}
	latest, ok := storage.LatestObject(objects, ".csv", ".xlsx")
	if !ok {
		return "", fmt.Errorf("no csv or xlsx objects under %s", prefix)
	}
	logger.Log.Info().Str("prefix", prefix).Str("key", latest.Key).Msg("using latest export")
	return latest.Key, nil
}

// isLocal reports whether path names an existing local file; with
// --from-storage anything else is an object key.
func isLocal(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func normalizeMarketplaces(values []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}

// mergeMarketplaces adds marketplaces present in loaded files to the configured list.
func mergeMarketplaces(configured []string, mem *memory.Store) []string {
	all := append([]string(nil), configured...)
	for _, row := range mem.Sales {
		all = append(all, row.Marketplace)
	}
	for _, level := range mem.Inventory {
		all = append(all, level.Marketplace)
	}
	out := normalizeMarketplaces(all)
	sort.Strings(out)
	return out
}
