package indicators

import (
	"stocksense/internal/models"
)

// TrendDirection classifies the EMA-20/50 relationship.
type TrendDirection string

const (
	TrendUp       TrendDirection = "uptrend"
	TrendDown     TrendDirection = "downtrend"
	TrendSideways TrendDirection = "sideways"
)

// Trend describes the EMA-based trend state of a series.
type Trend struct {
	Direction       TrendDirection `json:"direction"`
	Strength        float64        `json:"strength"`
	EMA20           float64        `json:"ema_20"`
	EMA50           float64        `json:"ema_50"`
	PriceVsEMA20Pct float64        `json:"price_vs_ema20_pct"`
	PriceVsEMA50Pct float64        `json:"price_vs_ema50_pct"`
}

// EMASeries returns the exponential moving average of values using the
// unadjusted recurrence ema[t] = ema[t-1] + alpha*(v[t]-ema[t-1]) with
// alpha = 2/(period+1), seeded with the first value.
func EMASeries(values []float64, period int) []float64 {
	if len(values) == 0 || period <= 0 {
		return nil
	}
	alpha := 2.0 / float64(period+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = out[i-1] + alpha*(values[i]-out[i-1])
	}
	return out
}

// DetectTrend compares EMA(20) against EMA(50): an uptrend needs EMA20 more
// than 0.5% above EMA50, a downtrend the mirror image, anything between is
// sideways. Strength ramps linearly and saturates at 1.0 when the EMA gap
// reaches 5%.
func DetectTrend(candles []models.Candle) Trend {
	closes := closePrices(candles)
	if len(closes) == 0 {
		return Trend{Direction: TrendSideways}
	}

	ema20 := EMASeries(closes, 20)
	ema50 := EMASeries(closes, 50)
	e20 := ema20[len(ema20)-1]
	e50 := ema50[len(ema50)-1]
	price := closes[len(closes)-1]

	direction := TrendSideways
	strength := 0.0
	switch {
	case e50 > 0 && e20 > e50*1.005:
		direction = TrendUp
		strength = (e20/e50 - 1) * 20
	case e50 > 0 && e20 < e50*0.995:
		direction = TrendDown
		strength = (1 - e20/e50) * 20
	}
	if strength > 1.0 {
		strength = 1.0
	}

	t := Trend{
		Direction: direction,
		Strength:  round4(strength),
		EMA20:     round2(e20),
		EMA50:     round2(e50),
	}
	if e20 > 0 {
		t.PriceVsEMA20Pct = round2((price - e20) / e20 * 100)
	}
	if e50 > 0 {
		t.PriceVsEMA50Pct = round2((price - e50) / e50 * 100)
	}
	return t
}
