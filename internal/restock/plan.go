package restock

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
)

// PlanInput is the forecast and stock context for the simple and traffic-light variants.
type PlanInput struct {
	SKU                 string
	Marketplace         string
	HistoryDays         int
	CurrentStock        *float64
	DataEndDate         *time.Time
	LeadTimeDays        int
	DailyDemandExpected float64
	DailyDemandHigh     float64
	Trend               domain.Trend
	Confidence          domain.Confidence
	Recommendation      string
	Reasoning           []string
}

// DailyDemandFromIntelligence converts horizon totals into expected and high daily demand.
func DailyDemandFromIntelligence(intel domain.IntelligenceResult, horizonDays int) (expected, high float64) {
	if horizonDays <= 0 {
		return intel.DailyDemandEstimate, intel.DailyDemandEstimate
	}
	return intel.ForecastExpected / float64(horizonDays), intel.ForecastHigh / float64(horizonDays)
}

func computePlan(in PlanInput, params Params) domain.RestockPlan {
	in.DailyDemandExpected = finiteOrZero(in.DailyDemandExpected)
	in.DailyDemandHigh = finiteOrZero(in.DailyDemandHigh)
	if in.CurrentStock != nil && !isFinite(*in.CurrentStock) {
		in.CurrentStock = nil
	}

	lead := in.LeadTimeDays
	if lead <= 0 {
		lead = params.DefaultLeadTimeDays
	}

	plan := domain.RestockPlan{
		SKU:                 in.SKU,
		Marketplace:         in.Marketplace,
		CurrentStock:        in.CurrentStock,
		DailyDemandExpected: in.DailyDemandExpected,
		DailyDemandHigh:     math.Max(in.DailyDemandHigh, in.DailyDemandExpected),
		LeadTimeDays:        lead,
		TargetCoverDays:     lead + params.CoverBufferDays,
		DataEndDate:         in.DataEndDate,
		Trend:               in.Trend,
		Confidence:          in.Confidence,
		Recommendation:      in.Recommendation,
		Reasoning:           in.Reasoning,
	}
	if plan.Reasoning == nil {
		plan.Reasoning = []string{}
	}

	assessment := Assess(CoverInput{
		CurrentStock: in.CurrentStock,
		DailyDemand:  in.DailyDemandExpected,
		DataEndDate:  in.DataEndDate,
		LeadTimeDays: lead,
		Confidence:   in.Confidence,
		Trend:        in.Trend,
	}, params)

	plan.Status = assessment.Status
	if assessment.Status == domain.RestockInsufficientData {
		return plan
	}

	stock := math.Max(0, *in.CurrentStock)
	plan.DaysOfCoverExpected = assessment.DaysOfCover
	plan.OrderByDate = assessment.OrderByDate
	plan.SuggestedReorderQty = ReorderQuantity(plan.DailyDemandExpected, plan.TargetCoverDays, stock)
	plan.SuggestedReorderQtyHigh = ReorderQuantity(plan.DailyDemandHigh, plan.TargetCoverDays, stock)
	return plan
}

// BuildPlan is the simple restock plan. It reports ErrInsufficientHistory
// instead of a status when history is too short.
func BuildPlan(in PlanInput, params Params) (domain.RestockPlan, error) {
	if in.HistoryDays < params.MinHistoryDays {
		return domain.RestockPlan{}, fmt.Errorf("%w: %d days available, %d required",
			domain.ErrInsufficientHistory, in.HistoryDays, params.MinHistoryDays)
	}
	return computePlan(in, params), nil
}

var statusColors = map[domain.RestockStatus]string{
	domain.RestockUrgent:           "red",
	domain.RestockWatch:            "yellow",
	domain.RestockHealthy:          "green",
	domain.RestockInsufficientData: "grey",
}

// BuildAction is the traffic-light variant; short history becomes insufficient_data.
func BuildAction(in PlanInput, params Params) domain.RestockAction {
	var plan domain.RestockPlan
	if in.HistoryDays < params.MinHistoryDays {
		short := in
		short.CurrentStock = nil
		plan = computePlan(short, params)
		plan.CurrentStock = in.CurrentStock
	} else {
		plan = computePlan(in, params)
	}
	return domain.RestockAction{RestockPlan: plan, Color: statusColors[plan.Status]}
}

// SortActions orders actions by urgency, then by ascending days of cover, then SKU.
func SortActions(actions []domain.RestockAction) {
	sort.SliceStable(actions, func(i, j int) bool {
		ri, rj := StatusRank(actions[i].Status), StatusRank(actions[j].Status)
		if ri != rj {
			return ri > rj
		}
		ci, cj := coverOrMax(actions[i].DaysOfCoverExpected), coverOrMax(actions[j].DaysOfCoverExpected)
		if ci != cj {
			return ci < cj
		}
		if actions[i].SKU != actions[j].SKU {
			return actions[i].SKU < actions[j].SKU
		}
		return actions[i].Marketplace < actions[j].Marketplace
	})
}

func coverOrMax(v *float64) float64 {
	if v == nil {
		return math.MaxFloat64
	}
	return *v
}
