package restock

import (
	"math"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/forecast"
	"github.com/shopspring/decimal"
)

// AdvancedInput carries the inputs of the supplier-aware variant. A nil
// DailyDemand means no forecast was available.
type AdvancedInput struct {
	SKU         string
	Marketplace string
	Inventory   *domain.InventoryLevel
	Supplier    *domain.SupplierSetting
	DailyDemand *float64
	History     forecast.Series
	DataEndDate *time.Time
	Confidence  domain.Confidence
	Trend       domain.Trend
}

// ResolveSupplier fills unset supplier fields with defaults. The second return
// is false when no setting was found.
func ResolveSupplier(s *domain.SupplierSetting, sku string, params Params) (domain.SupplierSetting, bool) {
	if s == nil {
		return domain.SupplierSetting{
			SKU:              sku,
			LeadTimeDaysMean: float64(params.DefaultLeadTimeDays),
			PackSizeUnits:    1,
			ServiceLevel:     params.DefaultServiceLevel,
		}, false
	}
	resolved := *s
	if resolved.LeadTimeDaysMean <= 0 {
		resolved.LeadTimeDaysMean = float64(params.DefaultLeadTimeDays)
	}
	if resolved.LeadTimeDaysStd < 0 {
		resolved.LeadTimeDaysStd = 0
	}
	if resolved.MOQUnits < 0 {
		resolved.MOQUnits = 0
	}
	if resolved.PackSizeUnits <= 0 {
		resolved.PackSizeUnits = 1
	}
	if resolved.ServiceLevel <= 0 {
		resolved.ServiceLevel = params.DefaultServiceLevel
	}
	return resolved, true
}

// DemandStdDaily is the sample standard deviation of the trailing window of
// history; ok is false when it cannot be computed or is zero.
func DemandStdDaily(history forecast.Series, params Params) (float64, bool) {
	std, ok := forecast.SampleStdDev(history.Tail(params.DemandStdWindowDays).Values())
	if !ok || std <= 0 || math.IsNaN(std) {
		return 0, false
	}
	return std, true
}

// SafetyStock applies z*sqrt(L)*sigma_d, falling back to z*d*sigma_L and then
// z*sqrt(d*L) when the preceding term is unavailable or zero.
func SafetyStock(z, dailyDemand, demandStd float64, demandStdOK bool, leadMean, leadStd float64) float64 {
	if demandStdOK {
		return math.Max(0, z*math.Sqrt(leadMean)*demandStd)
	}
	if ss := z * dailyDemand * leadStd; ss > 0 {
		return ss
	}
	return math.Max(0, z*math.Sqrt(math.Max(0, dailyDemand*leadMean)))
}

// Advanced computes the supplier-aware recommendation.
func Advanced(in AdvancedInput, params Params) domain.RestockRecommendation {
	flags := []string{}

	supplier, found := ResolveSupplier(in.Supplier, in.SKU, params)
	if !found {
		flags = append(flags, domain.FlagMissingSupplierSettings)
	}

	rec := domain.RestockRecommendation{
		SKU:              in.SKU,
		Marketplace:      in.Marketplace,
		Supplier:         supplier.Supplier,
		LeadTimeDaysMean: supplier.LeadTimeDaysMean,
		LeadTimeDaysStd:  supplier.LeadTimeDaysStd,
		ServiceLevel:     supplier.ServiceLevel,
		ZScore:           params.Z(supplier.ServiceLevel),
		DataEndDate:      in.DataEndDate,
	}

	var daily float64
	if in.DailyDemand != nil {
		daily = math.Min(math.Max(0, finiteOrZero(*in.DailyDemand)), MaxQuantityUnits)
	} else {
		daily = fallbackDailyDemand(in.History, params)
		flags = append(flags, domain.FlagMissingForecastFallback)
	}
	rec.DailyDemandForecast = daily
	if daily <= 0 {
		flags = append(flags, domain.FlagNoDemand)
	}

	if in.Inventory == nil {
		rec.Status = domain.RestockInsufficientData
		rec.ReasonFlags = append(flags, domain.FlagMissingInventory)
		return rec
	}

	inbound := 0
	if in.Inventory.InboundUnits != nil {
		inbound = max(0, *in.Inventory.InboundUnits)
	}
	rec.OnHandUnits = max(0, in.Inventory.OnHandUnits)
	rec.ReservedUnits = max(0, in.Inventory.ReservedUnits)
	rec.InboundUnits = inbound
	rec.AvailableUnits = max(0, rec.OnHandUnits+rec.InboundUnits-rec.ReservedUnits)
	available := float64(rec.AvailableUnits)

	std, stdOK := DemandStdDaily(in.History, params)
	rec.DemandStdDaily = std
	if !stdOK {
		flags = append(flags, domain.FlagDemandStdFallback)
	}

	rec.SafetyStockUnits = SafetyStock(rec.ZScore, daily, std, stdOK, supplier.LeadTimeDaysMean, supplier.LeadTimeDaysStd)
	rec.LeadTimeDemandUnits = daily * supplier.LeadTimeDaysMean
	rec.ReorderPointUnits = rec.LeadTimeDemandUnits + rec.SafetyStockUnits

	target := rec.ReorderPointUnits + daily*float64(params.ReviewPeriodDays)
	if supplier.MinDaysOfCover != nil && *supplier.MinDaysOfCover > 0 {
		if floor := daily * *supplier.MinDaysOfCover; floor > target {
			target = floor
			flags = append(flags, domain.FlagMinCoverApplied)
		}
	}
	if supplier.MaxDaysOfCover != nil && *supplier.MaxDaysOfCover > 0 {
		ceiling := math.Max(daily * *supplier.MaxDaysOfCover, rec.ReorderPointUnits)
		if ceiling < target {
			target = ceiling
			flags = append(flags, domain.FlagMaxCoverApplied)
		}
	}
	rec.TargetStockUnits = target

	rec.RecommendedOrderUnits = math.Max(0, target-available)
	rounded, moqApplied, packRounded := RoundOrder(rec.RecommendedOrderUnits, supplier.MOQUnits, supplier.PackSizeUnits)
	rec.RecommendedOrderUnitsRounded = rounded
	if moqApplied {
		flags = append(flags, domain.FlagMOQApplied)
	}
	if packRounded {
		flags = append(flags, domain.FlagPackRounded)
	}

	if supplier.UnitCost != nil {
		cost := supplier.UnitCost.Mul(decimal.NewFromInt(int64(rounded))).Round(2)
		rec.EstimatedOrderCost = &cost
	}

	if daily > 0 {
		cover := available / daily
		rec.DaysOfCover = &cover
		rec.PriorityScore = 1 / (cover + 0.1)
		if rec.AvailableUnits == 0 {
			flags = append(flags, domain.FlagStockout)
		}
	}
	if available < rec.ReorderPointUnits {
		flags = append(flags, domain.FlagBelowReorderPoint)
	}

	assessment := Assess(CoverInput{
		CurrentStock: &available,
		DailyDemand:  daily,
		DataEndDate:  in.DataEndDate,
		LeadTimeDays: int(math.Ceil(supplier.LeadTimeDaysMean)),
		Confidence:   in.Confidence,
		Trend:        in.Trend,
	}, params)
	rec.Status = assessment.Status
	rec.OrderByDate = assessment.OrderByDate

	rec.ReasonFlags = flags
	return rec
}

func fallbackDailyDemand(history forecast.Series, params Params) float64 {
	tail := history.Tail(params.FallbackDemandWindow)
	if tail.Len() == 0 {
		return 0
	}
	return float64(tail.Total()) / float64(tail.Len())
}
