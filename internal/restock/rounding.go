package restock

import "math"

// MaxQuantityUnits caps any unit quantity handled by the restock engine so
// that conversions to int cannot overflow.
const MaxQuantityUnits = 1e9

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finiteOrZero maps NaN and infinities to 0.
func finiteOrZero(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
}

// RoundOrder raises a positive raw quantity to the MOQ, then up to the next
// multiple of packSize. The result is never below raw and rounding a rounded
// quantity leaves it unchanged. Non-finite input counts as 0 and raw is
// capped at MaxQuantityUnits.
func RoundOrder(raw float64, moq, packSize int) (qty int, moqApplied, packRounded bool) {
	raw = finiteOrZero(raw)
	if raw <= 0 {
		return 0, false, false
	}
	qty = int(math.Ceil(math.Min(raw, MaxQuantityUnits)))
	if moq > 0 && qty < moq {
		qty = moq
		moqApplied = true
	}
	if packSize > 1 && qty%packSize != 0 {
		qty = (qty/packSize + 1) * packSize
		packRounded = true
	}
	return qty, moqApplied, packRounded
}
