package main

import (
	"os"

	"github.com/andresuchdata/demandcast/pkg/logger"
	"github.com/urfave/cli/v2"
)

func scopeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "sku", Usage: "SKU to scope to (empty aggregates all SKUs)"},
		&cli.StringFlag{Name: "marketplace", Usage: "Marketplace to scope to", Value: "all"},
		&cli.StringFlag{Name: "mode", Usage: "Demand mode: legacy, mapped_confirmed or mapped_include_unmapped"},
		&cli.BoolFlag{Name: "include-unmapped", Usage: "Include unmapped and pending SKUs when no mode is given"},
	}
}

func horizonFlag() cli.Flag {
	return &cli.IntFlag{Name: "horizon", Usage: "Forecast horizon in days (1-60)", Value: 0}
}

func restockFlags() []cli.Flag {
	return append(scopeFlags(),
		horizonFlag(),
		&cli.IntFlag{Name: "lead-time", Usage: "Lead time in days (defaults to supplier setting, then config)"},
		&cli.Float64Flag{Name: "stock", Usage: "Current stock, replacing the inventory record"},
		&cli.Float64Flag{Name: "daily-demand", Usage: "Daily demand, replacing the forecast"},
	)
}

func newApp() *cli.App {
	env := &environment{}

	return &cli.App{
		Name:  "forecastctl",
		Usage: "Forecast marketplace demand and plan restocks from files, object storage or Postgres",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db-url",
				Usage:   "Database connection string; when set, history is read from Postgres",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.StringFlag{Name: "sales", Usage: "Order history file (date,sku,marketplace,units) as CSV or XLSX"},
			&cli.StringFlag{Name: "mappings", Usage: "SKU mapping file (sku,marketplace,status)"},
			&cli.StringFlag{Name: "inventory", Usage: "Inventory file (sku,marketplace,on_hand_units,reserved_units,inbound_units)"},
			&cli.StringFlag{Name: "suppliers", Usage: "Supplier settings file"},
			&cli.BoolFlag{
				Name:  "from-storage",
				Usage: "Treat file flags as object keys in the configured storage bucket; a key ending in / picks the newest export under it",
			},
			&cli.StringSliceFlag{
				Name:    "marketplaces",
				Usage:   "Allowed marketplaces (defaults to config, plus those found in files)",
				EnvVars: []string{"FORECAST_MARKETPLACES"},
			},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write the JSON result to this file instead of stdout"},
			&cli.StringFlag{Name: "upload-key", Usage: "Also upload the JSON result to this object key"},
			&cli.StringFlag{Name: "log-level", Value: "warn", EnvVars: []string{"LOG_LEVEL"}},
		},
		Before: env.open,
		After:  env.close,
		Commands: []*cli.Command{
			{
				Name:   "forecast",
				Usage:  "Forecast demand with bounds, backtest, drift and a recommendation",
				Flags:  append(restockFlags(), &cli.TimestampFlag{Name: "end-date", Layout: "2006-01-02", Usage: "Last history day"}),
				Action: env.runForecast,
			},
			{
				Name:  "demand",
				Usage: "Print the selected daily demand series and its data-quality report",
				Flags: append(scopeFlags(),
					&cli.TimestampFlag{Name: "start-date", Layout: "2006-01-02"},
					&cli.TimestampFlag{Name: "end-date", Layout: "2006-01-02"},
				),
				Action: env.runDemand,
			},
			{
				Name:   "backtest",
				Usage:  "Run the walk-forward backtest and drift check",
				Flags:  append(scopeFlags(), &cli.TimestampFlag{Name: "end-date", Layout: "2006-01-02"}),
				Action: env.runBacktest,
			},
			{
				Name:  "restock",
				Usage: "Restock decisions",
				Subcommands: []*cli.Command{
					{
						Name:   "plan",
						Usage:  "Simple restock plan for one SKU",
						Flags:  restockFlags(),
						Action: env.runPlan,
					},
					{
						Name:  "actions",
						Usage: "Traffic-light view over every SKU with inventory",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "marketplace", Value: "all"},
							&cli.StringFlag{Name: "mode"},
							&cli.BoolFlag{Name: "include-unmapped"},
							horizonFlag(),
							&cli.IntFlag{Name: "lead-time"},
						},
						Action: env.runActions,
					},
					{
						Name:   "advanced",
						Usage:  "Supplier-aware recommendation for one SKU on one marketplace",
						Flags:  restockFlags(),
						Action: env.runAdvanced,
					},
					{
						Name:  "what-if",
						Usage: "Recompute the advanced recommendation with overridden inputs",
						Flags: append(restockFlags(),
							&cli.Float64Flag{Name: "set-demand"},
							&cli.IntFlag{Name: "set-on-hand"},
							&cli.IntFlag{Name: "set-inbound"},
							&cli.IntFlag{Name: "set-reserved"},
							&cli.Float64Flag{Name: "set-lead-time"},
							&cli.Float64Flag{Name: "set-service-level"},
						),
						Action: env.runWhatIf,
					},
				},
			},
		},
	}
}

func main() {
	logger.UseJSON()

	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("forecastctl failed")
	}
}
