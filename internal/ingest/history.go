package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/shopspring/decimal"
)

// ReadSales parses an order-history export with date, sku, marketplace and
// units columns. Rows for the same day, SKU and marketplace are kept as-is;
// the forecast layer sums them.
func ReadSales(r io.Reader, format Format) ([]domain.SalesRow, error) {
	required := [][]string{{"date", "order_date"}, {"sku"}, {"marketplace", "channel"}, {"units", "quantity", "qty"}}

	var rows []domain.SalesRow
	err := readTable(r, format, required, func(rec record) error {
		date, err := parseDate(rec.get("date", "order_date"))
		if err != nil {
			return fmt.Errorf("line %d: %w", rec.line, err)
		}
		units, err := parseInt(rec.get("units", "quantity", "qty"))
		if err != nil {
			return fmt.Errorf("line %d: %w", rec.line, err)
		}
		sku := rec.get("sku")
		if sku == "" {
			return fmt.Errorf("line %d: empty sku", rec.line)
		}
		rows = append(rows, domain.SalesRow{
			Date:        date,
			SKU:         sku,
			Marketplace: strings.ToLower(rec.get("marketplace", "channel")),
			Units:       units,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadMappings parses sku, marketplace, status rows.
func ReadMappings(r io.Reader, format Format) ([]domain.SKUMapping, error) {
	required := [][]string{{"sku"}, {"marketplace", "channel"}, {"status"}}

	var mappings []domain.SKUMapping
	err := readTable(r, format, required, func(rec record) error {
		mappings = append(mappings, domain.SKUMapping{
			SKU:         rec.get("sku"),
			Marketplace: strings.ToLower(rec.get("marketplace", "channel")),
			Status:      domain.NormalizeMappingStatus(rec.get("status")),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mappings, nil
}

// ReadInventory parses stock positions. An empty inbound cell stays unknown.
func ReadInventory(r io.Reader, format Format) ([]domain.InventoryLevel, error) {
	required := [][]string{{"sku"}, {"marketplace", "channel"}, {"on_hand_units", "on_hand"}}

	var levels []domain.InventoryLevel
	err := readTable(r, format, required, func(rec record) error {
		onHand, err := parseInt(rec.get("on_hand_units", "on_hand"))
		if err != nil {
			return fmt.Errorf("line %d: %w", rec.line, err)
		}
		reserved, err := parseInt(rec.get("reserved_units", "reserved"))
		if err != nil {
			return fmt.Errorf("line %d: %w", rec.line, err)
		}

		level := domain.InventoryLevel{
			SKU:           rec.get("sku"),
			Marketplace:   strings.ToLower(rec.get("marketplace", "channel")),
			OnHandUnits:   onHand,
			ReservedUnits: reserved,
		}
		if raw := rec.get("inbound_units", "inbound"); raw != "" {
			inbound, err := parseInt(raw)
			if err != nil {
				return fmt.Errorf("line %d: %w", rec.line, err)
			}
			level.InboundUnits = &inbound
		}
		levels = append(levels, level)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return levels, nil
}

// ReadSupplierSettings parses replenishment constraints. An empty marketplace
// cell is the global setting for the SKU.
func ReadSupplierSettings(r io.Reader, format Format) ([]domain.SupplierSetting, error) {
	required := [][]string{{"sku"}}

	var settings []domain.SupplierSetting
	err := readTable(r, format, required, func(rec record) error {
		s := domain.SupplierSetting{
			SKU:      rec.get("sku"),
			Supplier: rec.get("supplier"),
		}
		if mp := strings.ToLower(rec.get("marketplace", "channel")); mp != "" {
			s.Marketplace = &mp
		}

		var err error
		if s.MOQUnits, err = parseInt(rec.get("moq_units", "moq")); err != nil {
			return fmt.Errorf("line %d: %w", rec.line, err)
		}
		if s.PackSizeUnits, err = parseInt(rec.get("pack_size_units", "pack_size")); err != nil {
			return fmt.Errorf("line %d: %w", rec.line, err)
		}

		floats := []struct {
			dst     **float64
			aliases []string
		}{
			{&s.MinDaysOfCover, []string{"min_days_of_cover"}},
			{&s.MaxDaysOfCover, []string{"max_days_of_cover"}},
		}
		for _, f := range floats {
			if *f.dst, err = parseFloat(rec.get(f.aliases...)); err != nil {
				return fmt.Errorf("line %d: %w", rec.line, err)
			}
		}

		for dst, aliases := range map[*float64][]string{
			&s.LeadTimeDaysMean: {"lead_time_days_mean", "lead_time_days"},
			&s.LeadTimeDaysStd:  {"lead_time_days_std"},
			&s.ServiceLevel:     {"service_level"},
		} {
			v, err := parseFloat(rec.get(aliases...))
			if err != nil {
				return fmt.Errorf("line %d: %w", rec.line, err)
			}
			if v != nil {
				*dst = *v
			}
		}

		if raw := rec.get("unit_cost"); raw != "" {
			cost, err := decimal.NewFromString(raw)
			if err != nil {
				return fmt.Errorf("line %d: invalid unit cost %q", rec.line, raw)
			}
			s.UnitCost = &cost
		}

		settings = append(settings, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}
