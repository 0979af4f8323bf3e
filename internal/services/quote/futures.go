package quote

import "math"

// TAIEX futures are tracked as a linear transform of the index price. The
// coefficient was fitted against observed futures prices; the baseline is the
// reference futures level the offset is measured from.
const (
	futuresCoefficient = 12.28065515714918
	futuresBaseline    = 27556
)

// FuturesPrice maps an index price to the correlated TAIEX futures price,
// rounded to the nearest whole point.
func FuturesPrice(indexPrice float64) float64 {
	return math.Round(indexPrice * futuresCoefficient)
}

// FuturesOffset returns the futures price's distance from the fixed baseline,
// rounded to the nearest whole point.
func FuturesOffset(indexPrice float64) float64 {
	return math.Round(FuturesPrice(indexPrice) - futuresBaseline)
}
