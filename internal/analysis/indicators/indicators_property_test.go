package indicators

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"stocksense/internal/models"
)

// candleGen generates valid candle data with realistic OHLCV values
func candleGen() gopter.Gen {
	return gen.Struct(reflect.TypeOf(models.Candle{}), map[string]gopter.Gen{
		"Timestamp": gen.TimeRange(time.Now().Add(-365*24*time.Hour), time.Hour),
		"Open":      gen.Float64Range(100.0, 1000.0),
		"High":      gen.Float64Range(100.0, 1000.0),
		"Low":       gen.Float64Range(100.0, 1000.0),
		"Close":     gen.Float64Range(100.0, 1000.0),
		"Volume":    gen.Int64Range(1000, 10000000),
	}).Map(func(c models.Candle) models.Candle {
		if c.Open <= 0 {
			c.Open = 100.0
		}
		if c.High <= 0 {
			c.High = 100.0
		}
		if c.Low <= 0 {
			c.Low = 100.0
		}
		if c.Close <= 0 {
			c.Close = 100.0
		}
		// Enforce High >= max(Open, Close) and Low <= min(Open, Close)
		c.High = math.Max(c.High, math.Max(c.Open, c.Close))
		c.Low = math.Min(c.Low, math.Min(c.Open, c.Close))
		if c.Low > c.High {
			c.Low, c.High = c.High, c.Low
		}
		if c.High <= c.Low {
			c.High = c.Low + 1.0
		}
		return c
	})
}

// candleSliceGen generates a slice of valid candles
func candleSliceGen(minLen, maxLen int) gopter.Gen {
	return gen.SliceOfN(maxLen, candleGen()).Map(func(candles []models.Candle) []models.Candle {
		if len(candles) < minLen {
			for len(candles) < minLen {
				candles = append(candles, candles[len(candles)-1])
			}
		}
		for i := range candles {
			candles[i].Timestamp = time.Now().Add(time.Duration(i) * time.Hour)
			// Re-validate each candle after shrinking
			if candles[i].Open <= 0 {
				candles[i].Open = 100.0
			}
			if candles[i].High <= 0 {
				candles[i].High = 100.0
			}
			if candles[i].Low <= 0 {
				candles[i].Low = 100.0
			}
			if candles[i].Close <= 0 {
				candles[i].Close = 100.0
			}
			candles[i].High = math.Max(candles[i].High, math.Max(candles[i].Open, candles[i].Close))
			candles[i].Low = math.Min(candles[i].Low, math.Min(candles[i].Open, candles[i].Close))
			if candles[i].Low > candles[i].High {
				candles[i].Low, candles[i].High = candles[i].High, candles[i].Low
			}
			if candles[i].High <= candles[i].Low {
				candles[i].High = candles[i].Low + 1.0
			}
		}
		return candles
	})
}

func TestProperty_RSIWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("RSI values are within [0, 100]", prop.ForAll(
		func(candles []models.Candle) bool {
			rsi := RSI(candles, 14)
			if rsi < 0 || rsi > 100 {
				t.Logf("RSI out of bounds: %f", rsi)
				return false
			}
			return true
		},
		candleSliceGen(1, 60),
	))

	properties.TestingRun(t)
}

func TestProperty_ATRNonNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("ATR is non-negative", prop.ForAll(
		func(candles []models.Candle) bool {
			atr := ATR(candles, 14)
			if atr < 0 || math.IsNaN(atr) {
				t.Logf("ATR invalid: %f", atr)
				return false
			}
			return true
		},
		candleSliceGen(1, 60),
	))

	properties.TestingRun(t)
}

func TestProperty_EMABoundedByInput(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("EMA stays within the input range", prop.ForAll(
		func(candles []models.Candle) bool {
			closes := closePrices(candles)
			lo, hi := lowest(closes), highest(closes)
			for _, v := range EMASeries(closes, 20) {
				if v < lo-1e-9 || v > hi+1e-9 {
					t.Logf("EMA %f outside [%f, %f]", v, lo, hi)
					return false
				}
			}
			return true
		},
		candleSliceGen(2, 80),
	))

	properties.TestingRun(t)
}

func TestProperty_IndicatorDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("identical input produces identical output", prop.ForAll(
		func(candles []models.Candle) bool {
			if RSI(candles, 14) != RSI(candles, 14) {
				return false
			}
			if ATR(candles, 14) != ATR(candles, 14) {
				return false
			}
			t1, t2 := DetectTrend(candles), DetectTrend(candles)
			if t1 != t2 {
				return false
			}
			f1, f2 := Fibonacci(candles), Fibonacci(candles)
			if f1.SwingHigh != f2.SwingHigh || f1.SwingLow != f2.SwingLow || len(f1.Levels) != len(f2.Levels) {
				return false
			}
			for k, v := range f1.Levels {
				if f2.Levels[k] != v {
					return false
				}
			}
			return true
		},
		candleSliceGen(1, 60),
	))

	properties.TestingRun(t)
}
