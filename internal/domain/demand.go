package domain

import "time"

// DemandMode selects which mapping classes contribute units to a demand series.
type DemandMode string

const (
	DemandModeLegacy                DemandMode = "legacy"
	DemandModeMappedConfirmed       DemandMode = "mapped_confirmed"
	DemandModeMappedIncludeUnmapped DemandMode = "mapped_include_unmapped"
)

// Severity of a data-quality report.
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AllMarketplaces is the scope value meaning "no marketplace filter".
const AllMarketplaces = "all"

// SalesRow is one persisted order-line aggregate as returned by the order history reader.
type SalesRow struct {
	Date        time.Time `json:"date" db:"order_date"`
	SKU         string    `json:"sku" db:"sku"`
	Marketplace string    `json:"marketplace" db:"marketplace"`
	Units       int       `json:"units" db:"units"`
}

// DemandScope narrows a demand query. Empty SKU means all SKUs; empty or "all"
// marketplace means all marketplaces.
type DemandScope struct {
	SKU         string `json:"sku,omitempty"`
	Marketplace string `json:"marketplace,omitempty"`
}

// AllMarketplaces reports whether the scope spans every marketplace.
func (s DemandScope) AllMarketplaces() bool {
	return s.Marketplace == "" || s.Marketplace == AllMarketplaces
}

// DemandPoint is the unit count for one calendar day.
type DemandPoint struct {
	Date  time.Time `json:"date"`
	Units int       `json:"units"`
}

// DemandQualityMeta describes what was left out of a demand series and why.
type DemandQualityMeta struct {
	Mode              DemandMode `json:"mode"`
	IncludedUnits     int        `json:"included_units"`
	ExcludedUnits     int        `json:"excluded_units"`
	ExcludedSKUCount  int        `json:"excluded_sku_count"`
	UnmappedUnits     int        `json:"unmapped_units"`
	UnmappedShare     float64    `json:"unmapped_share"`
	IgnoredUnits      int        `json:"ignored_units"`
	DiscontinuedUnits int        `json:"discontinued_units"`
	Warnings          []string   `json:"warnings"`
	Severity          Severity   `json:"severity"`
}
