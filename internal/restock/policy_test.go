package restock

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
)

var dataEnd = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }

func TestZScore(t *testing.T) {
	params := DefaultParams()

	tests := []struct {
		level float64
		want  float64
	}{
		{0.95, 1.65},
		{0.50, 0},
		{0.10, 0},
		{0.999, 2.33},
		{0.925, 1.465},
		{0.99, 2.33},
	}
	for _, tt := range tests {
		if got := params.Z(tt.level); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Z(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}

	prev := params.Z(0.4)
	for level := 0.4; level <= 1.0; level += 0.001 {
		z := params.Z(level)
		if z < prev {
			t.Fatalf("z decreased at %v: %v < %v", level, z, prev)
		}
		prev = z
	}
}

func TestRoundOrder(t *testing.T) {
	tests := []struct {
		name        string
		raw         float64
		moq, pack   int
		want        int
		moqApplied  bool
		packRounded bool
	}{
		{"nothing to order", 0, 10, 5, 0, false, false},
		{"negative", -3, 10, 5, 0, false, false},
		{"raised to moq", 3.2, 10, 1, 10, true, false},
		{"pack multiple", 12, 10, 5, 15, false, true},
		{"moq then pack", 3, 10, 6, 12, true, true},
		{"already rounded", 24, 10, 6, 24, false, false},
		{"fractional ceil", 7.01, 0, 0, 8, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, moq, pack := RoundOrder(tt.raw, tt.moq, tt.pack)
			if got != tt.want || moq != tt.moqApplied || pack != tt.packRounded {
				t.Fatalf("RoundOrder(%v, %d, %d) = %d, %v, %v", tt.raw, tt.moq, tt.pack, got, moq, pack)
			}
			if float64(got) < tt.raw {
				t.Fatalf("rounded %d below raw %v", got, tt.raw)
			}
			again, _, _ := RoundOrder(float64(got), tt.moq, tt.pack)
			if again != got {
				t.Fatalf("rounding is not idempotent: %d then %d", got, again)
			}
		})
	}
}

func TestSafetyStock(t *testing.T) {
	if got := SafetyStock(1.65, 10, 2, true, 14, 0); math.Abs(got-1.65*math.Sqrt(14)*2) > 1e-9 || math.Abs(got-12.35) > 0.01 {
		t.Errorf("expected about 12.35, got %v", got)
	}
	if got := SafetyStock(1.65, 10, 0, false, 14, 2); math.Abs(got-33) > 1e-9 {
		t.Errorf("expected lead-time variance fallback of 33, got %v", got)
	}
	if got := SafetyStock(1.65, 10, 0, false, 14, 0); math.Abs(got-1.65*math.Sqrt(140)) > 1e-9 {
		t.Errorf("expected sqrt fallback, got %v", got)
	}
	if got := SafetyStock(1.65, 0, 0, false, 14, 0); got != 0 {
		t.Errorf("no demand needs no safety stock, got %v", got)
	}
}

func TestClassifyCover(t *testing.T) {
	params := DefaultParams()

	tests := []struct {
		cover float64
		want  domain.RestockStatus
	}{
		{0, domain.RestockUrgent},
		{17, domain.RestockUrgent},
		{17.5, domain.RestockWatch},
		{24, domain.RestockWatch},
		{24.1, domain.RestockHealthy},
	}
	for _, tt := range tests {
		if got := ClassifyCover(tt.cover, 14, params); got != tt.want {
			t.Errorf("ClassifyCover(%v) = %s, want %s", tt.cover, got, tt.want)
		}
	}
}

func TestEscalateNeverLowersStatus(t *testing.T) {
	statuses := []domain.RestockStatus{domain.RestockHealthy, domain.RestockWatch, domain.RestockUrgent}
	confidences := []domain.Confidence{domain.ConfidenceHigh, domain.ConfidenceMedium, domain.ConfidenceLow}
	trends := []domain.Trend{domain.TrendStable, domain.TrendDecreasing, domain.TrendIncreasing, domain.TrendInsufficientData}

	for _, s := range statuses {
		for _, c := range confidences {
			for _, tr := range trends {
				got := Escalate(s, c, tr)
				if StatusRank(got) < StatusRank(s) || StatusRank(got) > StatusRank(domain.RestockUrgent) {
					t.Errorf("Escalate(%s, %s, %s) = %s", s, c, tr, got)
				}
			}
		}
	}

	if got := Escalate(domain.RestockHealthy, domain.ConfidenceLow, domain.TrendIncreasing); got != domain.RestockUrgent {
		t.Errorf("two escalations from healthy should reach urgent, got %s", got)
	}
	if got := Escalate(domain.RestockInsufficientData, domain.ConfidenceLow, domain.TrendIncreasing); got != domain.RestockInsufficientData {
		t.Errorf("insufficient_data is terminal, got %s", got)
	}
}

func TestAssessOutOfStock(t *testing.T) {
	end := dataEnd
	got := Assess(CoverInput{
		CurrentStock: floatPtr(0),
		DailyDemand:  5,
		DataEndDate:  &end,
		LeadTimeDays: 14,
		Confidence:   domain.ConfidenceHigh,
		Trend:        domain.TrendStable,
	}, DefaultParams())

	if got.Status != domain.RestockUrgent {
		t.Fatalf("expected urgent, got %s", got.Status)
	}
	if *got.DaysOfCover != 0 {
		t.Errorf("expected zero cover, got %v", *got.DaysOfCover)
	}
	if want := end.AddDate(0, 0, -14); !got.OrderByDate.Equal(want) {
		t.Errorf("expected order-by %s, got %s", want, got.OrderByDate)
	}

	for _, in := range []CoverInput{
		{DailyDemand: 5, DataEndDate: &end},
		{CurrentStock: floatPtr(10), DailyDemand: 0, DataEndDate: &end},
		{CurrentStock: floatPtr(10), DailyDemand: 5},
	} {
		if got := Assess(in, DefaultParams()); got.Status != domain.RestockInsufficientData || got.OrderByDate != nil {
			t.Errorf("expected insufficient_data for %+v, got %+v", in, got)
		}
	}
}

func TestBuildPlan(t *testing.T) {
	params := DefaultParams()
	end := dataEnd

	plan, err := BuildPlan(PlanInput{
		SKU:                 "A",
		Marketplace:         "amazon",
		HistoryDays:         60,
		CurrentStock:        floatPtr(1000),
		DataEndDate:         &end,
		DailyDemandExpected: 10,
		DailyDemandHigh:     12,
		Trend:               domain.TrendStable,
		Confidence:          domain.ConfidenceHigh,
	}, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Status != domain.RestockHealthy || plan.LeadTimeDays != 14 || plan.TargetCoverDays != 28 {
		t.Errorf("unexpected plan: %+v", plan)
	}
	if plan.SuggestedReorderQty != 0 || plan.SuggestedReorderQtyHigh != 0 {
		t.Errorf("well-stocked SKU should not reorder: %v / %v", plan.SuggestedReorderQty, plan.SuggestedReorderQtyHigh)
	}
	if want := end.AddDate(0, 0, 100-14); !plan.OrderByDate.Equal(want) {
		t.Errorf("expected order-by %s, got %s", want, plan.OrderByDate)
	}

	low, err := BuildPlan(PlanInput{SKU: "A", HistoryDays: 60, CurrentStock: floatPtr(100), DataEndDate: &end, DailyDemandExpected: 10, DailyDemandHigh: 15, LeadTimeDays: 7}, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if low.SuggestedReorderQty != 110 || low.SuggestedReorderQtyHigh != 215 {
		t.Errorf("expected reorder 110 / 215, got %v / %v", low.SuggestedReorderQty, low.SuggestedReorderQtyHigh)
	}

	if _, err := BuildPlan(PlanInput{HistoryDays: 7}, params); !errors.Is(err, domain.ErrInsufficientHistory) {
		t.Errorf("expected insufficient history, got %v", err)
	}
}

func TestBuildActionAndSort(t *testing.T) {
	params := DefaultParams()
	end := dataEnd

	short := BuildAction(PlanInput{SKU: "S", HistoryDays: 3, CurrentStock: floatPtr(2), DataEndDate: &end, DailyDemandExpected: 1}, params)
	if short.Status != domain.RestockInsufficientData || short.Color != "grey" || short.CurrentStock == nil {
		t.Errorf("unexpected short-history action: %+v", short)
	}

	actions := []domain.RestockAction{
		short,
		BuildAction(PlanInput{SKU: "H", HistoryDays: 60, CurrentStock: floatPtr(1000), DataEndDate: &end, DailyDemandExpected: 10, Confidence: domain.ConfidenceHigh}, params),
		BuildAction(PlanInput{SKU: "U2", HistoryDays: 60, CurrentStock: floatPtr(50), DataEndDate: &end, DailyDemandExpected: 10, Confidence: domain.ConfidenceHigh}, params),
		BuildAction(PlanInput{SKU: "U1", HistoryDays: 60, CurrentStock: floatPtr(0), DataEndDate: &end, DailyDemandExpected: 10, Confidence: domain.ConfidenceHigh}, params),
		BuildAction(PlanInput{SKU: "W", HistoryDays: 60, CurrentStock: floatPtr(200), DataEndDate: &end, DailyDemandExpected: 10, Confidence: domain.ConfidenceHigh}, params),
	}
	SortActions(actions)

	want := []string{"U1", "U2", "W", "H", "S"}
	colors := []string{"red", "red", "yellow", "green", "grey"}
	for i, a := range actions {
		if a.SKU != want[i] || a.Color != colors[i] {
			t.Errorf("position %d: got %s (%s), want %s (%s)", i, a.SKU, a.Color, want[i], colors[i])
		}
	}
}

func TestRoundOrderNonFinite(t *testing.T) {
	tests := []struct {
		name string
		raw  float64
		want int
	}{
		{"nan", math.NaN(), 0},
		{"positive infinity", math.Inf(1), 0},
		{"negative infinity", math.Inf(-1), 0},
		{"huge", 1e300, int(MaxQuantityUnits)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _, _ := RoundOrder(tt.raw, 0, 0); got != tt.want {
				t.Errorf("RoundOrder(%v) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestBuildPlanNonFiniteInputs(t *testing.T) {
	end := dataEnd

	plan, err := BuildPlan(PlanInput{
		SKU:                 "A",
		HistoryDays:         60,
		CurrentStock:        floatPtr(math.NaN()),
		DataEndDate:         &end,
		DailyDemandExpected: 5,
		DailyDemandHigh:     math.Inf(1),
	}, DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Status != domain.RestockInsufficientData || plan.CurrentStock != nil {
		t.Errorf("expected insufficient_data without stock, got %s %v", plan.Status, plan.CurrentStock)
	}
	if _, err := json.Marshal(plan); err != nil {
		t.Errorf("plan must encode: %v", err)
	}

	stock := math.Inf(1)
	assessment := Assess(CoverInput{CurrentStock: &stock, DailyDemand: 5, DataEndDate: &end, LeadTimeDays: 14}, DefaultParams())
	if assessment.Status != domain.RestockInsufficientData {
		t.Errorf("expected infinite stock to be insufficient_data, got %s", assessment.Status)
	}
}
