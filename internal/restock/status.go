package restock

import (
	"math"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/forecast"
)

// CoverInput is what the shared status state machine needs.
type CoverInput struct {
	CurrentStock *float64
	DailyDemand  float64
	DataEndDate  *time.Time
	LeadTimeDays int
	Confidence   domain.Confidence
	Trend        domain.Trend
}

// CoverAssessment is the state machine outcome.
type CoverAssessment struct {
	Status      domain.RestockStatus
	DaysOfCover *float64
	OrderByDate *time.Time
}

var statusRank = map[domain.RestockStatus]int{
	domain.RestockInsufficientData: -1,
	domain.RestockHealthy:          0,
	domain.RestockWatch:            1,
	domain.RestockUrgent:           2,
}

// StatusRank orders statuses by urgency; insufficient_data ranks lowest.
func StatusRank(s domain.RestockStatus) int {
	return statusRank[s]
}

// ClassifyCover maps days of cover to healthy, watch or urgent.
func ClassifyCover(daysOfCover float64, leadTimeDays int, params Params) domain.RestockStatus {
	switch {
	case daysOfCover <= float64(leadTimeDays+params.UrgentMarginDays):
		return domain.RestockUrgent
	case daysOfCover <= float64(leadTimeDays+params.WatchMarginDays):
		return domain.RestockWatch
	default:
		return domain.RestockHealthy
	}
}

func escalate(s domain.RestockStatus) domain.RestockStatus {
	switch s {
	case domain.RestockHealthy:
		return domain.RestockWatch
	case domain.RestockWatch:
		return domain.RestockUrgent
	default:
		return s
	}
}

// Escalate raises the status one step for low confidence and one step for an
// increasing trend. It never de-escalates and never goes past urgent.
func Escalate(s domain.RestockStatus, confidence domain.Confidence, trend domain.Trend) domain.RestockStatus {
	if s == domain.RestockInsufficientData {
		return s
	}
	if confidence == domain.ConfidenceLow {
		s = escalate(s)
	}
	if trend == domain.TrendIncreasing {
		s = escalate(s)
	}
	return s
}

// Assess runs the status state machine. Unknown stock, no demand or no data
// end date is terminal insufficient_data.
func Assess(in CoverInput, params Params) CoverAssessment {
	if in.CurrentStock == nil || in.DataEndDate == nil ||
		!isFinite(*in.CurrentStock) || finiteOrZero(in.DailyDemand) <= 0 {
		return CoverAssessment{Status: domain.RestockInsufficientData}
	}

	stock := math.Max(0, *in.CurrentStock)
	cover := stock / in.DailyDemand
	status := Escalate(ClassifyCover(cover, in.LeadTimeDays, params), in.Confidence, in.Trend)

	coverDays := math.Min(math.Ceil(cover), float64(params.MaxOrderByHorizonDays))
	orderBy := forecast.AddDays(*in.DataEndDate, int(coverDays)-in.LeadTimeDays)

	return CoverAssessment{
		Status:      status,
		DaysOfCover: &cover,
		OrderByDate: &orderBy,
	}
}

// ReorderQuantity is max(0, daily demand * window - stock).
func ReorderQuantity(dailyDemand float64, windowDays int, stock float64) float64 {
	return math.Max(0, dailyDemand*float64(windowDays)-stock)
}
