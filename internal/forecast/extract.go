package forecast

import (
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
)

// ResolveEndDate picks the series end date: the explicit end when given,
// otherwise the latest date with data, otherwise today.
func ResolveEndDate(explicit, latest *time.Time, today time.Time) time.Time {
	if explicit != nil {
		return DateOnly(*explicit)
	}
	if latest != nil {
		return DateOnly(*latest)
	}
	return DateOnly(today)
}

// ExtractDemand sums units per calendar day over [start, end]. Rows outside the
// range or outside the scope are ignored; days without rows are zero.
func ExtractDemand(rows []domain.SalesRow, scope domain.DemandScope, start, end time.Time) Series {
	series := ZeroSeries(start, end)
	for _, row := range rows {
		if !inScope(row, scope) {
			continue
		}
		series.add(row.Date, row.Units)
	}
	return series
}

func inScope(row domain.SalesRow, scope domain.DemandScope) bool {
	if scope.SKU != "" && row.SKU != scope.SKU {
		return false
	}
	if !scope.AllMarketplaces() && row.Marketplace != scope.Marketplace {
		return false
	}
	return true
}
