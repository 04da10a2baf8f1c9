package forecast

import (
	"math"

	"github.com/andresuchdata/demandcast/internal/domain"
)

// WeeklySeasonal scales a recent baseline level by weekday factors learned
// from a spike-capped copy of the history.
type WeeklySeasonal struct {
	params Params
}

func NewWeeklySeasonal(params Params) WeeklySeasonal {
	return WeeklySeasonal{params: params}
}

func (WeeklySeasonal) Name() string { return "weekly_seasonal" }

// Forecast delegates to SeasonalNaive when history is too short.
func (w WeeklySeasonal) Forecast(series Series, horizonDays int) []domain.ForecastPoint {
	if series.Len() < w.params.AdvancedMinHistoryDays {
		return SeasonalNaive{}.Forecast(series, horizonDays)
	}
	if horizonDays <= 0 {
		return []domain.ForecastPoint{}
	}

	training := w.capSpikes(series.Values())
	factors := w.weekdayFactors(series, training)
	level := baselineLevel(training, w.params.FallbackWindowDays)

	first := AddDays(series.End(), 1)
	points := make([]domain.ForecastPoint, horizonDays)
	for i := range points {
		d := AddDays(first, i)
		points[i] = domain.ForecastPoint{
			Date:           d,
			PredictedUnits: math.Max(0, level*factors[weekdayIndex(int(d.Weekday()))]),
		}
	}
	return points
}

// capSpikes clips values to the configured percentile band.
func (w WeeklySeasonal) capSpikes(values []float64) []float64 {
	lo := percentile(values, w.params.SpikeLowerPercentile)
	hi := percentile(values, w.params.SpikeUpperPercentile)
	return clip(values, lo, hi)
}

// weekdayFactors returns factor[Mon..Sun] = weekday mean / window mean over the
// trailing SeasonalityWeeks. Weekdays without data, or an all-zero window, get 1.0.
func (w WeeklySeasonal) weekdayFactors(series Series, training []float64) [7]float64 {
	factors := [7]float64{1, 1, 1, 1, 1, 1, 1}

	window := w.params.SeasonalityWeeks * 7
	from := len(training) - window
	if from < 0 {
		from = 0
	}

	var sums [7]float64
	var counts [7]int
	for i := from; i < len(training); i++ {
		wd := weekdayIndex(int(series.DateAt(i).Weekday()))
		sums[wd] += training[i]
		counts[wd]++
	}

	overall := mean(training[from:])
	if overall <= 0 {
		return factors
	}
	for wd := range factors {
		if counts[wd] > 0 {
			factors[wd] = (sums[wd] / float64(counts[wd])) / overall
		}
	}
	return factors
}

// WeekdayFactors exposes the learned factors for a series.
func (w WeeklySeasonal) WeekdayFactors(series Series) [7]float64 {
	return w.weekdayFactors(series, w.capSpikes(series.Values()))
}

func baselineLevel(values []float64, window int) float64 {
	if len(values) >= window && window > 0 {
		return mean(values[len(values)-window:])
	}
	return mean(values)
}
