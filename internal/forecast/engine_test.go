package forecast

import (
	"errors"
	"math"
	"testing"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/google/uuid"
)

func constantSeries(days, units int) Series {
	values := make([]int, days)
	for i := range values {
		values[i] = units
	}
	return NewSeries(day0, values)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSeasonalNaiveRepeatsLastWeek(t *testing.T) {
	values := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}
	series := NewSeries(day0, values)

	points := SeasonalNaive{}.Forecast(series, 10)
	if len(points) != 10 {
		t.Fatalf("expected 10 points, got %d", len(points))
	}
	for i, p := range points {
		if !p.Date.Equal(AddDays(series.End(), i+1)) {
			t.Fatalf("point %d has date %s", i, p.Date)
		}
		if i < 7 && !almostEqual(p.PredictedUnits, float64(values[7+i])) {
			t.Errorf("day %d: expected %d, got %v", i, values[7+i], p.PredictedUnits)
		}
		if i >= 7 && !almostEqual(p.PredictedUnits, 7.5) {
			t.Errorf("day %d: expected fallback mean 7.5, got %v", i, p.PredictedUnits)
		}
	}

	if got := (SeasonalNaive{}).Forecast(ZeroSeries(day0, AddDays(day0, -1)), 3); got[0].PredictedUnits != 0 {
		t.Errorf("empty history should forecast zero, got %v", got[0].PredictedUnits)
	}
}

func TestConstantHistoryForecastAndBacktest(t *testing.T) {
	series := constantSeries(35, 10)
	params := DefaultParams()

	for _, p := range (SeasonalNaive{}).Forecast(series, 7) {
		if !almostEqual(p.PredictedUnits, 10) {
			t.Fatalf("expected 10 units/day, got %v", p.PredictedUnits)
		}
	}

	backtest := Backtest(series, params)
	if backtest.MAE != 0 || backtest.MAPE != 0 {
		t.Errorf("expected perfect backtest, got MAE %v MAPE %v", backtest.MAE, backtest.MAPE)
	}
	if len(backtest.Points) != 35-params.MinBacktestHistory {
		t.Errorf("expected %d backtest points, got %d", 35-params.MinBacktestHistory, len(backtest.Points))
	}
}

func TestBacktestWindow(t *testing.T) {
	params := DefaultParams()

	long := Backtest(constantSeries(90, 4), params)
	if len(long.Points) != params.BacktestDays {
		t.Errorf("expected %d points, got %d", params.BacktestDays, len(long.Points))
	}
	if !long.Points[len(long.Points)-1].Date.Equal(AddDays(day0, 89)) {
		t.Errorf("backtest should end on the last history day")
	}

	short := Backtest(constantSeries(params.MinBacktestHistory-1, 4), params)
	if len(short.Points) != 0 || short.MAE != 0 || short.MAPE != 0 {
		t.Errorf("short history should yield a zeroed backtest, got %+v", short)
	}

	zeros := Backtest(constantSeries(40, 0), params)
	if zeros.MAPE != 0 || zeros.MAE != 0 {
		t.Errorf("all-zero history should have zero error, got %+v", zeros)
	}
}

func TestSelectForecaster(t *testing.T) {
	params := DefaultParams()
	if got := SelectForecaster(params.AdvancedMinHistoryDays-1, params).Name(); got != "seasonal_naive_weekly" {
		t.Errorf("expected seasonal naive for short history, got %s", got)
	}
	if got := SelectForecaster(params.AdvancedMinHistoryDays, params).Name(); got != "weekly_seasonal" {
		t.Errorf("expected weekly seasonal, got %s", got)
	}
}

func TestWeeklySeasonalLearnsWeekdayFactors(t *testing.T) {
	// 2024-01-01 is a Monday; Mondays sell double.
	values := make([]int, 56)
	for i := range values {
		values[i] = 10
		if i%7 == 0 {
			values[i] = 20
		}
	}
	series := NewSeries(day0, values)
	model := NewWeeklySeasonal(DefaultParams())

	factors := model.WeekdayFactors(series)
	if !almostEqual(factors[0], 1.75) || !almostEqual(factors[3], 0.875) {
		t.Fatalf("unexpected factors: %v", factors)
	}

	points := model.Forecast(series, 7)
	for i, p := range points {
		want := 10.0
		if i == 0 {
			want = 20
		}
		if !almostEqual(p.PredictedUnits, want) {
			t.Errorf("%s: expected %v, got %v", p.Date.Weekday(), want, p.PredictedUnits)
		}
	}
}

func TestWeeklySeasonalCapsSpikes(t *testing.T) {
	series := constantSeries(60, 10)
	series.units[59] = 1000

	points := NewWeeklySeasonal(DefaultParams()).Forecast(series, 7)
	for _, p := range points {
		if p.PredictedUnits > 20 {
			t.Fatalf("spike leaked into forecast: %v", p.PredictedUnits)
		}
	}
}

func TestConfidenceBounds(t *testing.T) {
	params := DefaultParams()
	points := []domain.ForecastPoint{{Date: day0, PredictedUnits: 10}, {Date: AddDays(day0, 1), PredictedUnits: 1}}

	sparse := domain.BacktestResult{MAE: 2, Points: []domain.BacktestPoint{{ActualUnits: 8, PredictedUnits: 10}}}
	bounds := ConfidenceBounds(points, sparse, params)
	if !almostEqual(bounds[0].Upper, 10+1.96*2) || !almostEqual(bounds[0].Lower, 10-1.96*2) {
		t.Errorf("unexpected bounds with fallback std: %+v", bounds[0])
	}
	if bounds[1].Lower != 0 {
		t.Errorf("lower bound should floor at zero, got %v", bounds[1].Lower)
	}

	tiny := ConfidenceBounds(points, domain.BacktestResult{MAE: 0.2}, params)
	if !almostEqual(tiny[0].Upper-tiny[0].Predicted, 1.96) {
		t.Errorf("residual std should be at least 1, got half-width %v", tiny[0].Upper-tiny[0].Predicted)
	}

	for _, b := range bounds {
		if b.Lower > b.Predicted || b.Predicted > b.Upper {
			t.Errorf("bounds out of order: %+v", b)
		}
	}
}

func TestApplyOverrides(t *testing.T) {
	bounds := []domain.ConfidenceBound{
		{Date: day0, Predicted: 10, Lower: 5, Upper: 15},
		{Date: AddDays(day0, 1), Predicted: 10, Lower: 5, Upper: 15},
		{Date: AddDays(day0, 2), Predicted: 10, Lower: 5, Upper: 15},
	}

	multiplier := domain.Override{ID: uuid.New(), StartDate: day0, EndDate: AddDays(day0, 1), Type: domain.OverrideMultiplier, Value: 2}
	out := ApplyOverrides(bounds, []domain.Override{multiplier})
	if out[0].Predicted != 20 || out[0].Lower != 10 || out[0].Upper != 30 || *out[0].OverrideID != multiplier.ID {
		t.Errorf("multiplier not applied: %+v", out[0])
	}
	if out[2].Predicted != 10 || out[2].OverrideID != nil {
		t.Errorf("override leaked outside its range: %+v", out[2])
	}
	if bounds[0].Predicted != 10 {
		t.Errorf("input bounds must not be modified")
	}

	absolute := domain.Override{ID: uuid.New(), StartDate: AddDays(day0, 1), EndDate: AddDays(day0, 2), Type: domain.OverrideAbsolute, Value: 3}
	out = ApplyOverrides(bounds, []domain.Override{multiplier, absolute})
	if out[1].Predicted != 3 || out[1].Lower != 0 || out[1].Upper != 13 {
		t.Errorf("absolute override should win and keep the scaled half-width: %+v", out[1])
	}
	if *out[1].OverrideID != absolute.ID {
		t.Errorf("expected the later override id")
	}
}

func TestValidateOverride(t *testing.T) {
	tests := []struct {
		name string
		o    domain.Override
	}{
		{"end before start", domain.Override{StartDate: AddDays(day0, 1), EndDate: day0, Type: domain.OverrideAbsolute}},
		{"negative value", domain.Override{StartDate: day0, EndDate: day0, Type: domain.OverrideMultiplier, Value: -1}},
		{"unknown type", domain.Override{StartDate: day0, EndDate: day0, Type: "percent", Value: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateOverride(tt.o); !errors.Is(err, domain.ErrInvalidOverride) {
				t.Fatalf("expected invalid override, got %v", err)
			}
		})
	}
}

func TestOverrideApplies(t *testing.T) {
	sku, mp := "A", "amazon"
	global := domain.Override{}
	bySKU := domain.Override{SKU: &sku}
	byMarketplace := domain.Override{Marketplace: &mp}

	tests := []struct {
		name     string
		override domain.Override
		scope    domain.DemandScope
		want     bool
	}{
		{"global matches everything", global, domain.DemandScope{}, true},
		{"sku matches", bySKU, domain.DemandScope{SKU: "A"}, true},
		{"sku mismatch", bySKU, domain.DemandScope{SKU: "B"}, false},
		{"sku override skips aggregate", bySKU, domain.DemandScope{}, false},
		{"marketplace matches", byMarketplace, domain.DemandScope{SKU: "A", Marketplace: "amazon"}, true},
		{"marketplace skips all", byMarketplace, domain.DemandScope{SKU: "A", Marketplace: "all"}, false},
	}

	for _, tt := range tests {
		if got := OverrideApplies(tt.override, tt.scope); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDetectDrift(t *testing.T) {
	params := DefaultParams()

	short := DetectDrift(constantSeries(params.DriftWindowDays+6, 10), domain.BacktestResult{}, params)
	if short.Evaluated {
		t.Errorf("drift should not be evaluated on short history")
	}

	stable := constantSeries(40, 10)
	result := DetectDrift(stable, Backtest(stable, params), params)
	if !result.Evaluated || result.Flag {
		t.Errorf("constant demand should not drift: %+v", result)
	}

	shifted := constantSeries(40, 10)
	for i := 26; i < 40; i++ {
		shifted.units[i] = 20
	}
	backtest := Backtest(shifted, params)
	result = DetectDrift(shifted, backtest, params)
	if !almostEqual(result.MAPE, 0.25) {
		t.Errorf("expected window MAPE 0.25, got %v", result.MAPE)
	}
	if !result.Flag {
		t.Errorf("level shift should flag drift: %+v (backtest MAPE %v)", result, backtest.MAPE)
	}
}

func TestRunAppliesOverridesAndValidatesHorizon(t *testing.T) {
	params := DefaultParams()
	series := constantSeries(35, 10)
	override := domain.Override{ID: uuid.New(), StartDate: AddDays(series.End(), 1), EndDate: AddDays(series.End(), 7), Type: domain.OverrideMultiplier, Value: 2}

	report, err := Run(Request{Series: series, HorizonDays: 7, Overrides: []domain.Override{override}}, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, b := range report.Forecast {
		if !almostEqual(b.Predicted, 20) || !almostEqual(b.Lower, 20) || !almostEqual(b.Upper, 20) {
			t.Fatalf("expected scaled bounds of 20, got %+v", b)
		}
	}
	if report.HistoryDays != 35 || !report.HistoryEnd.Equal(AddDays(day0, 34)) {
		t.Errorf("unexpected history window: %d days to %s", report.HistoryDays, report.HistoryEnd)
	}

	for _, h := range []int{0, params.MaxHorizonDays + 1} {
		if _, err := Run(Request{Series: series, HorizonDays: h}, params); !errors.Is(err, domain.ErrInvalidHorizon) {
			t.Errorf("horizon %d: expected invalid horizon, got %v", h, err)
		}
	}
}

func TestClassifyTrend(t *testing.T) {
	params := DefaultParams()
	build := func(prior, recent int) Series {
		values := make([]int, 28)
		for i := range values {
			values[i] = prior
			if i >= 14 {
				values[i] = recent
			}
		}
		return NewSeries(day0, values)
	}

	tests := []struct {
		name   string
		series Series
		want   domain.Trend
	}{
		{"increasing", build(10, 12), domain.TrendIncreasing},
		{"decreasing", build(10, 8), domain.TrendDecreasing},
		{"stable", build(10, 10), domain.TrendStable},
		{"from zero", build(0, 3), domain.TrendIncreasing},
		{"too short", constantSeries(27, 10), domain.TrendInsufficientData},
	}

	for _, tt := range tests {
		if got := ClassifyTrend(tt.series, params); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestClassifyConfidenceAndMargin(t *testing.T) {
	params := DefaultParams()
	pct := func(v float64) *float64 { return &v }

	tests := []struct {
		mape *float64
		want domain.Confidence
	}{
		{nil, domain.ConfidenceLow},
		{pct(0.1), domain.ConfidenceHigh},
		{pct(0.3), domain.ConfidenceMedium},
		{pct(0.4), domain.ConfidenceLow},
	}
	for _, tt := range tests {
		if got := ClassifyConfidence(tt.mape, params); got != tt.want {
			t.Errorf("ClassifyConfidence(%v) = %s, want %s", tt.mape, got, tt.want)
		}
	}

	if got := BoundsMargin(nil, 0, params); !almostEqual(got, 0.15) {
		t.Errorf("expected minimum margin, got %v", got)
	}
	if got := BoundsMargin(pct(0.2), 0, params); !almostEqual(got, 0.3) {
		t.Errorf("expected mape-driven margin, got %v", got)
	}
	if got := BoundsMargin(pct(0.9), 3, params); !almostEqual(got, 0.8) {
		t.Errorf("expected clamped margin, got %v", got)
	}
}

func TestAnalyzeConstantDemand(t *testing.T) {
	params := DefaultParams()
	series := constantSeries(35, 10)
	bounds := ConfidenceBounds(SeasonalNaive{}.Forecast(series, 7), Backtest(series, params), params)
	mape := 0.0
	stock := 30.0

	result := Analyze(series, bounds, &mape, StockContext{LeadTimeDays: 14, CurrentStock: &stock}, params)
	if result.Trend != domain.TrendStable || result.Confidence != domain.ConfidenceHigh {
		t.Errorf("unexpected classification: %s / %s", result.Trend, result.Confidence)
	}
	if !almostEqual(result.ForecastExpected, 70) || !almostEqual(result.DailyDemandEstimate, 10) {
		t.Errorf("unexpected expectation: %+v", result)
	}
	if !almostEqual(result.ForecastLow, 59.5) || !almostEqual(result.ForecastHigh, 80.5) {
		t.Errorf("unexpected range: %v - %v", result.ForecastLow, result.ForecastHigh)
	}
	if result.VolatilityCV != 0 {
		t.Errorf("constant demand has no volatility, got %v", result.VolatilityCV)
	}
	if result.Recommendation == "" || len(result.Reasoning) < 4 {
		t.Errorf("expected recommendation and reasoning, got %q %v", result.Recommendation, result.Reasoning)
	}

	again := Analyze(series, bounds, &mape, StockContext{LeadTimeDays: 14, CurrentStock: &stock}, params)
	if again.Recommendation != result.Recommendation {
		t.Errorf("recommendation must be deterministic")
	}
}
