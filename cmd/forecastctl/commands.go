package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresuchdata/demandcast/internal/restock"
	"github.com/andresuchdata/demandcast/internal/service"
	"github.com/andresuchdata/demandcast/pkg/logger"
	"github.com/urfave/cli/v2"
)

func optionalFloat(c *cli.Context, name string) *float64 {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Float64(name)
	return &v
}

func optionalInt(c *cli.Context, name string) *int {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Int(name)
	return &v
}

func includeUnmapped(c *cli.Context) *bool {
	if !c.IsSet("include-unmapped") {
		return nil
	}
	v := c.Bool("include-unmapped")
	return &v
}

func restockRequest(c *cli.Context) service.RestockRequest {
	return service.RestockRequest{
		SKU:             c.String("sku"),
		Marketplace:     c.String("marketplace"),
		HorizonDays:     c.Int("horizon"),
		Mode:            c.String("mode"),
		IncludeUnmapped: includeUnmapped(c),
		LeadTimeDays:    c.Int("lead-time"),
		CurrentStock:    optionalFloat(c, "stock"),
		DailyDemand:     optionalFloat(c, "daily-demand"),
	}
}

func demandRequest(c *cli.Context) service.DemandRequest {
	return service.DemandRequest{
		SKU:             c.String("sku"),
		Marketplace:     c.String("marketplace"),
		Mode:            c.String("mode"),
		IncludeUnmapped: includeUnmapped(c),
		Start:           c.Timestamp("start-date"),
		End:             c.Timestamp("end-date"),
	}
}

func (e *environment) runForecast(c *cli.Context) error {
	report, err := e.forecasts.Forecast(c.Context, service.ForecastRequest{
		SKU:             c.String("sku"),
		Marketplace:     c.String("marketplace"),
		HorizonDays:     c.Int("horizon"),
		Mode:            c.String("mode"),
		IncludeUnmapped: includeUnmapped(c),
		EndDate:         c.Timestamp("end-date"),
		LeadTimeDays:    c.Int("lead-time"),
		CurrentStock:    optionalFloat(c, "stock"),
	})
	if err != nil {
		return err
	}
	return e.emit(c, report)
}

func (e *environment) runDemand(c *cli.Context) error {
	report, err := e.forecasts.Demand(c.Context, demandRequest(c))
	if err != nil {
		return err
	}
	return e.emit(c, report)
}

func (e *environment) runBacktest(c *cli.Context) error {
	report, err := e.forecasts.Backtest(c.Context, demandRequest(c))
	if err != nil {
		return err
	}
	return e.emit(c, report)
}

func (e *environment) runPlan(c *cli.Context) error {
	plan, err := e.restocks.Plan(c.Context, restockRequest(c))
	if err != nil {
		return err
	}
	return e.emit(c, plan)
}

func (e *environment) runActions(c *cli.Context) error {
	actions, err := e.restocks.Actions(c.Context, service.ActionsRequest{
		Marketplace:     c.String("marketplace"),
		HorizonDays:     c.Int("horizon"),
		Mode:            c.String("mode"),
		IncludeUnmapped: includeUnmapped(c),
		LeadTimeDays:    c.Int("lead-time"),
	})
	if err != nil {
		return err
	}
	return e.emit(c, actions)
}

func (e *environment) runAdvanced(c *cli.Context) error {
	rec, err := e.restocks.Advanced(c.Context, restockRequest(c))
	if err != nil {
		return err
	}
	return e.emit(c, rec)
}

func (e *environment) runWhatIf(c *cli.Context) error {
	result, err := e.restocks.WhatIf(c.Context, restockRequest(c), restock.WhatIfOverrides{
		DailyDemand:  optionalFloat(c, "set-demand"),
		OnHand:       optionalInt(c, "set-on-hand"),
		Inbound:      optionalInt(c, "set-inbound"),
		Reserved:     optionalInt(c, "set-reserved"),
		LeadTimeDays: optionalFloat(c, "set-lead-time"),
		ServiceLevel: optionalFloat(c, "set-service-level"),
	})
	if err != nil {
		return err
	}
	return e.emit(c, result)
}

// emit writes v as indented JSON to --output or stdout, and to --upload-key
// when set.
func (e *environment) emit(c *cli.Context, v interface{}) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	payload = append(payload, '\n')

	if out := c.String("output"); out != "" {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fmt.Errorf("failed creating directory for %s: %w", out, err)
		}
		if err := os.WriteFile(out, payload, 0o644); err != nil {
			return fmt.Errorf("failed writing %s: %w", out, err)
		}
	} else if _, err := c.App.Writer.Write(payload); err != nil {
		return err
	}

	if key := c.String("upload-key"); key != "" {
		if err := e.store.UploadObject(c.Context, key, payload, "application/json"); err != nil {
			return err
		}
		logger.Log.Info().Str("key", key).Int("bytes", len(payload)).Msg("result uploaded")
	}
	return nil
}
