package restock

// ZPoint is one (service level, z) entry of the normal quantile table.
type ZPoint struct {
	ServiceLevel float64
	Z            float64
}

// DefaultZTable is the fixed service-level lookup table.
func DefaultZTable() []ZPoint {
	return []ZPoint{
		{ServiceLevel: 0.50, Z: 0.00},
		{ServiceLevel: 0.80, Z: 0.84},
		{ServiceLevel: 0.85, Z: 1.04},
		{ServiceLevel: 0.90, Z: 1.28},
		{ServiceLevel: 0.95, Z: 1.65},
		{ServiceLevel: 0.99, Z: 2.33},
	}
}

// Params holds the restock policy constants.
type Params struct {
	DefaultLeadTimeDays   int
	CoverBufferDays       int // added to lead time for the target coverage window
	UrgentMarginDays      int // cover <= lead time + margin is urgent
	WatchMarginDays       int // cover <= lead time + margin is watch
	ReviewPeriodDays      int
	DefaultServiceLevel   float64
	DemandStdWindowDays   int
	FallbackDemandWindow  int // trailing days averaged when no forecast is available
	MinHistoryDays        int
	MaxOrderByHorizonDays int // caps days of cover when projecting the order-by date
	ActionConcurrency     int
	ZTable                []ZPoint
}

// DefaultParams returns the production defaults.
func DefaultParams() Params {
	return Params{
		DefaultLeadTimeDays:   14,
		CoverBufferDays:       14,
		UrgentMarginDays:      3,
		WatchMarginDays:       10,
		ReviewPeriodDays:      7,
		DefaultServiceLevel:   0.95,
		DemandStdWindowDays:   90,
		FallbackDemandWindow:  28,
		MinHistoryDays:        8,
		MaxOrderByHorizonDays: 3650,
		ActionConcurrency:     8,
		ZTable:                DefaultZTable(),
	}
}
