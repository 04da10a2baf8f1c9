package forecast

import (
	"fmt"
	"math"

	"github.com/andresuchdata/demandcast/internal/domain"
)

const epsilon = 1e-9

// StockContext adds optional inventory context to the recommendation text.
type StockContext struct {
	LeadTimeDays int
	CurrentStock *float64
}

// ClassifyTrend compares the mean of the last TrendWindowDays with the window
// before it.
func ClassifyTrend(series Series, params Params) domain.Trend {
	w := params.TrendWindowDays
	values := series.Values()
	if w <= 0 || len(values) < 2*w {
		return domain.TrendInsufficientData
	}
	recent := mean(values[len(values)-w:])
	prior := mean(values[len(values)-2*w : len(values)-w])
	if prior <= epsilon {
		if recent > epsilon {
			return domain.TrendIncreasing
		}
		return domain.TrendStable
	}
	ratio := recent / prior
	switch {
	case ratio >= params.TrendUpRatio:
		return domain.TrendIncreasing
	case ratio <= params.TrendDownRatio:
		return domain.TrendDecreasing
	default:
		return domain.TrendStable
	}
}

// ClassifyConfidence buckets a backtest MAPE. A nil MAPE is low confidence.
func ClassifyConfidence(mape *float64, params Params) domain.Confidence {
	switch {
	case mape == nil:
		return domain.ConfidenceLow
	case *mape < params.ConfidenceHighMAPE:
		return domain.ConfidenceHigh
	case *mape < params.ConfidenceMediumMAPE:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// Volatility is the coefficient of variation of daily demand.
func Volatility(series Series) float64 {
	values := series.Values()
	m := mean(values)
	if m <= epsilon {
		return 0
	}
	return stddev(values) / m
}

// BoundsMargin is the relative width applied to the expected forecast.
func BoundsMargin(mape *float64, volatility float64, params Params) float64 {
	m := 0.0
	if mape != nil {
		m = *mape
	}
	margin := math.Max(math.Max(m*1.5, volatility*0.5), params.MinBoundsMargin)
	return math.Min(margin, params.MaxBoundsMargin)
}

// Analyze derives trend, confidence and forecast bounds plus a deterministic
// recommendation for display.
func Analyze(series Series, forecast []domain.ConfidenceBound, mape *float64, stock StockContext, params Params) domain.IntelligenceResult {
	result := domain.IntelligenceResult{
		Trend:        ClassifyTrend(series, params),
		Confidence:   ClassifyConfidence(mape, params),
		VolatilityCV: Volatility(series),
	}

	for _, p := range forecast {
		result.ForecastExpected += p.Predicted
	}
	if len(forecast) > 0 {
		result.DailyDemandEstimate = result.ForecastExpected / float64(len(forecast))
	} else {
		result.DailyDemandEstimate = mean(series.Values())
	}

	margin := BoundsMargin(mape, result.VolatilityCV, params)
	result.ForecastLow = math.Max(0, result.ForecastExpected*(1-margin))
	result.ForecastHigh = math.Max(0, result.ForecastExpected*(1+margin))

	result.Recommendation, result.Reasoning = recommend(series, result, mape, margin, len(forecast), stock, params)
	return result
}

func recommend(series Series, r domain.IntelligenceResult, mape *float64, margin float64, horizon int, stock StockContext, params Params) (string, []string) {
	reasoning := make([]string, 0, 5)

	var text string
	switch r.Trend {
	case domain.TrendIncreasing:
		text = "Demand is rising; plan for higher volume than the recent average."
	case domain.TrendDecreasing:
		text = "Demand is falling; avoid over-ordering."
	case domain.TrendStable:
		text = "Demand is stable; keep the current replenishment rhythm."
	default:
		text = "Not enough history to establish a trend; treat the forecast as indicative."
	}

	if r.Trend != domain.TrendInsufficientData {
		values := series.Values()
		w := params.TrendWindowDays
		recent := mean(values[len(values)-w:])
		prior := mean(values[len(values)-2*w : len(values)-w])
		reasoning = append(reasoning, fmt.Sprintf("Last %d days averaged %.1f units/day versus %.1f in the %d days before.",
			w, recent, prior, w))
	} else {
		reasoning = append(reasoning, fmt.Sprintf("Only %d days of history; %d are needed for a trend.",
			series.Len(), 2*params.TrendWindowDays))
	}

	switch {
	case mape == nil:
		reasoning = append(reasoning, "No backtest available, so confidence is low.")
	default:
		reasoning = append(reasoning, fmt.Sprintf("Backtest MAPE of %.1f%% gives %s confidence.", *mape*100, r.Confidence))
	}
	if r.Confidence == domain.ConfidenceLow {
		text += " Forecast confidence is low; keep extra buffer."
	}

	reasoning = append(reasoning, fmt.Sprintf("Daily demand volatility (CV) is %.2f.", r.VolatilityCV))
	if horizon > 0 {
		reasoning = append(reasoning, fmt.Sprintf("Expected %.0f units over the next %d days (range %.0f to %.0f, ±%.0f%%).",
			r.ForecastExpected, horizon, r.ForecastLow, r.ForecastHigh, margin*100))
	}

	if stock.CurrentStock != nil && r.DailyDemandEstimate > epsilon {
		cover := *stock.CurrentStock / r.DailyDemandEstimate
		reasoning = append(reasoning, fmt.Sprintf("Current stock of %.0f units covers %.1f days against a %d-day lead time.",
			*stock.CurrentStock, cover, stock.LeadTimeDays))
		switch {
		case cover <= float64(stock.LeadTimeDays):
			text += " Stock will run out before a new order can arrive; reorder now."
		case cover <= float64(stock.LeadTimeDays+params.TrendWindowDays):
			text += " Reorder soon to avoid a stockout."
		default:
			text += " Current stock is sufficient for now."
		}
	}

	return text, reasoning
}
