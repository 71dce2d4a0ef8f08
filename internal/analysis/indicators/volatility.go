package indicators

import (
	"stocksense/internal/models"
)

// ATR returns the Average True Range over the last period bars: a simple
// mean of true ranges. With fewer than period+1 bars it falls back to the
// mean of all available true ranges; with fewer than 2 bars it degrades to
// the last bar's high-low range.
func ATR(candles []models.Candle, period int) float64 {
	n := len(candles)
	if n == 0 || period <= 0 {
		return 0
	}
	if n < 2 {
		return candles[n-1].High - candles[n-1].Low
	}

	tr := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		tr = append(tr, trueRange(candles[i], candles[i-1]))
	}
	if len(tr) < period {
		return mean(tr)
	}
	return mean(tr[len(tr)-period:])
}
