package forecast

import (
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
)

// criticalUnmappedShare is the unmapped share above which quality is critical.
const criticalUnmappedShare = 0.10

// ResolveMode returns the explicit mode when set, otherwise derives it from
// the include-unmapped flag.
func ResolveMode(explicit string, includeUnmapped bool) (domain.DemandMode, error) {
	switch domain.DemandMode(strings.ToLower(strings.TrimSpace(explicit))) {
	case "":
		if includeUnmapped {
			return domain.DemandModeMappedIncludeUnmapped, nil
		}
		return domain.DemandModeMappedConfirmed, nil
	case domain.DemandModeLegacy:
		return domain.DemandModeLegacy, nil
	case domain.DemandModeMappedConfirmed:
		return domain.DemandModeMappedConfirmed, nil
	case domain.DemandModeMappedIncludeUnmapped:
		return domain.DemandModeMappedIncludeUnmapped, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidDemandMode, explicit)
	}
}

// SelectDemand builds the demand series for mode and reports what was left out.
func SelectDemand(rows []domain.SalesRow, mappings MappingTable, mode domain.DemandMode, scope domain.DemandScope, start, end time.Time) (Series, domain.DemandQualityMeta) {
	if mode == domain.DemandModeLegacy {
		series := ExtractDemand(rows, scope, start, end)
		meta := domain.DemandQualityMeta{
			Mode:          mode,
			IncludedUnits: series.Total(),
			Warnings:      []string{"legacy mode: SKU mappings are not applied"},
		}
		if series.Total() == 0 {
			meta.Warnings = append(meta.Warnings, "no demand recorded in window")
		}
		meta.Severity = severity(meta, series.Total())
		return series, meta
	}

	series := ZeroSeries(start, end)
	meta := domain.DemandQualityMeta{Mode: mode}
	excludedKeys := make(map[domain.MappingKey]struct{})
	unmappedKeys := make(map[domain.MappingKey]struct{})

	for _, row := range rows {
		if !inScope(row, scope) {
			continue
		}
		if _, ok := series.At(row.Date); !ok || row.Units <= 0 {
			continue
		}

		key := domain.MappingKey{SKU: row.SKU, Marketplace: row.Marketplace}
		class := mappings.Classify(row.SKU, row.Marketplace)
		switch class {
		case domain.MappingConfirmed:
			meta.IncludedUnits += row.Units
		case domain.MappingUnmappedOrPending:
			meta.UnmappedUnits += row.Units
			unmappedKeys[key] = struct{}{}
		case domain.MappingIgnored:
			meta.IgnoredUnits += row.Units
			meta.ExcludedUnits += row.Units
			excludedKeys[key] = struct{}{}
		case domain.MappingDiscontinued:
			meta.DiscontinuedUnits += row.Units
			meta.ExcludedUnits += row.Units
			excludedKeys[key] = struct{}{}
		}

		if Includable(class, mode) {
			series.add(row.Date, row.Units)
		} else if class == domain.MappingUnmappedOrPending {
			excludedKeys[key] = struct{}{}
		}
	}

	denominator := meta.IncludedUnits + meta.UnmappedUnits + meta.ExcludedUnits
	if denominator > 0 {
		meta.UnmappedShare = float64(meta.UnmappedUnits) / float64(denominator)
	}
	meta.ExcludedSKUCount = len(excludedKeys)
	meta.Warnings = qualityWarnings(meta, mode, len(unmappedKeys))
	if series.Total() == 0 {
		meta.Warnings = append(meta.Warnings, "no demand recorded in window")
	}
	meta.Severity = severity(meta, series.Total())

	return series, meta
}

func qualityWarnings(meta domain.DemandQualityMeta, mode domain.DemandMode, unmappedSKUs int) []string {
	warnings := []string{}
	if meta.UnmappedUnits > 0 {
		verb := "excluded from"
		if mode == domain.DemandModeMappedIncludeUnmapped {
			verb = "included in"
		}
		warnings = append(warnings, fmt.Sprintf("%d units from %d unmapped or pending SKUs %s demand (%.1f%% of total)",
			meta.UnmappedUnits, unmappedSKUs, verb, meta.UnmappedShare*100))
	}
	if meta.IgnoredUnits > 0 {
		warnings = append(warnings, fmt.Sprintf("%d units from ignored SKUs excluded", meta.IgnoredUnits))
	}
	if meta.DiscontinuedUnits > 0 {
		warnings = append(warnings, fmt.Sprintf("%d units from discontinued SKUs excluded", meta.DiscontinuedUnits))
	}
	return warnings
}

func severity(meta domain.DemandQualityMeta, seriesTotal int) domain.Severity {
	switch {
	case meta.UnmappedShare > criticalUnmappedShare || seriesTotal == 0:
		return domain.SeverityCritical
	case meta.UnmappedShare > 0 || meta.ExcludedUnits > 0 || meta.ExcludedSKUCount > 0:
		return domain.SeverityWarning
	default:
		return domain.SeverityOK
	}
}
