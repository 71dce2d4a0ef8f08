package indicators

import (
	"stocksense/internal/models"
)

// RSI returns the Relative Strength Index in [0, 100] from the simple mean
// of gains and losses over the last period deltas. Returns the neutral 50
// when fewer than period+1 bars are available or the series is flat, and
// 100 when only the average loss is zero.
func RSI(candles []models.Candle, period int) float64 {
	if len(candles) < period+1 || period <= 0 {
		return 50.0
	}

	closes := closePrices(candles)
	gains := make([]float64, 0, len(closes)-1)
	losses := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains = append(gains, delta)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -delta)
		}
	}

	avgGain := mean(gains[len(gains)-period:])
	avgLoss := mean(losses[len(losses)-period:])

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
