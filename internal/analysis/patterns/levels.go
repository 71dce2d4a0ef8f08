package patterns

import (
	"sort"

	"stocksense/internal/analysis"
	"stocksense/internal/analysis/indicators"
	"stocksense/internal/models"
)

// SupportResistanceDetector clusters historical price extrema into
// horizontal levels and measures the current price's position against them.
type SupportResistanceDetector struct {
	order        int     // bars on each side for pivot confirmation
	tolerancePct float64 // cluster tolerance against the running cluster mean
	minTouches   int     // touches required to confirm a level
}

// NewSupportResistanceDetector creates a detector with default parameters.
func NewSupportResistanceDetector() *SupportResistanceDetector {
	return &SupportResistanceDetector{
		order:        5,
		tolerancePct: 0.015,
		minTouches:   2,
	}
}

// NewSupportResistanceDetectorWith creates a detector with explicit
// parameters. Non-positive values fall back to the defaults. tolerancePct is
// a fraction of the running cluster mean (0.015 = 1.5%).
func NewSupportResistanceDetectorWith(order int, tolerancePct float64, minTouches int) *SupportResistanceDetector {
	d := NewSupportResistanceDetector()
	if order >= 1 {
		d.order = order
	}
	if tolerancePct > 0 {
		d.tolerancePct = tolerancePct
	}
	if minTouches >= 1 {
		d.minTouches = minTouches
	}
	return d
}

func (d *SupportResistanceDetector) Name() string {
	return "SupportResistanceDetector"
}

// RoleReversal marks a level the close series has crossed repeatedly,
// suggesting broken support acting as resistance or vice versa.
type RoleReversal struct {
	Price       float64            `json:"price"`
	Crossings   int                `json:"crossings"`
	CurrentRole analysis.LevelType `json:"current_role"`
}

// LevelReport is the full support/resistance picture for a series.
type LevelReport struct {
	SupportLevels         []analysis.Level `json:"support_levels"`
	ResistanceLevels      []analysis.Level `json:"resistance_levels"`
	NearestSupport        *float64         `json:"nearest_support"`
	NearestResistance     *float64         `json:"nearest_resistance"`
	SupportDistancePct    *float64         `json:"support_distance_pct"`
	ResistanceDistancePct *float64         `json:"resistance_distance_pct"`
	RoleReversals         []RoleReversal   `json:"role_reversals"`
	CurrentPrice          float64          `json:"current_price"`
}

// LevelSignal is the report plus the proximity-derived trading signal.
type LevelSignal struct {
	LevelReport
	Signal   analysis.Signal `json:"signal"`
	Strength float64         `json:"strength"`
}

type cluster struct {
	sum   float64
	count int
}

func (c cluster) mean() float64 {
	return c.sum / float64(c.count)
}

// Levels detects support and resistance levels for the series.
func (d *SupportResistanceDetector) Levels(candles []models.Candle) LevelReport {
	report := LevelReport{
		SupportLevels:    []analysis.Level{},
		ResistanceLevels: []analysis.Level{},
		RoleReversals:    []RoleReversal{},
	}
	if len(candles) == 0 {
		return report
	}

	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	closes := make([]float64, len(candles))
	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
	}
	currentPrice := closes[len(closes)-1]
	report.CurrentPrice = round2(currentPrice)

	var candidates []float64
	for _, i := range indicators.LocalMaxima(highs, d.order) {
		candidates = append(candidates, highs[i])
	}
	for _, i := range indicators.LocalMinima(lows, d.order) {
		candidates = append(candidates, lows[i])
	}
	if len(candidates) == 0 {
		return report
	}

	sort.Float64s(candidates)
	clusters := d.clusterLevels(candidates)

	for _, c := range clusters {
		if c.count < d.minTouches {
			continue
		}
		price := c.mean()
		level := analysis.Level{Price: round2(price), Touches: c.count}
		if price < currentPrice {
			level.Type = analysis.LevelSupport
			report.SupportLevels = append(report.SupportLevels, level)
		} else {
			level.Type = analysis.LevelResistance
			report.ResistanceLevels = append(report.ResistanceLevels, level)
		}
	}

	// Closest level first on both sides of the current price.
	sort.Slice(report.SupportLevels, func(i, j int) bool {
		return report.SupportLevels[i].Price > report.SupportLevels[j].Price
	})
	sort.Slice(report.ResistanceLevels, func(i, j int) bool {
		return report.ResistanceLevels[i].Price < report.ResistanceLevels[j].Price
	})

	if len(report.SupportLevels) > 0 {
		s := report.SupportLevels[0].Price
		report.NearestSupport = &s
		dist := round2((currentPrice - s) / currentPrice * 100)
		report.SupportDistancePct = &dist
	}
	if len(report.ResistanceLevels) > 0 {
		r := report.ResistanceLevels[0].Price
		report.NearestResistance = &r
		dist := round2((r - currentPrice) / currentPrice * 100)
		report.ResistanceDistancePct = &dist
	}

	report.RoleReversals = d.roleReversals(clusters, closes, currentPrice)
	return report
}

// clusterLevels greedily groups sorted prices: a price joins the current
// cluster while it stays within tolerance of the running cluster mean.
func (d *SupportResistanceDetector) clusterLevels(prices []float64) []cluster {
	clusters := []cluster{{sum: prices[0], count: 1}}
	for _, price := range prices[1:] {
		last := &clusters[len(clusters)-1]
		m := last.mean()
		if abs(price-m)/m < d.tolerancePct {
			last.sum += price
			last.count++
		} else {
			clusters = append(clusters, cluster{sum: price, count: 1})
		}
	}
	return clusters
}

// roleReversals flags well-touched levels the close series has crossed at
// least twice. The current role follows from which side price sits on now.
func (d *SupportResistanceDetector) roleReversals(clusters []cluster, closes []float64, currentPrice float64) []RoleReversal {
	reversals := []RoleReversal{}
	for _, c := range clusters {
		if c.count < 3 {
			continue
		}
		level := c.mean()
		crossings := 0
		lastAbove := false
		seen := false
		for _, price := range closes {
			above := price > level
			if seen && above != lastAbove {
				crossings++
			}
			lastAbove = above
			seen = true
		}
		if crossings >= 2 {
			role := analysis.LevelSupport
			if currentPrice < level {
				role = analysis.LevelResistance
			}
			reversals = append(reversals, RoleReversal{
				Price:       round2(level),
				Crossings:   crossings,
				CurrentRole: role,
			})
		}
	}
	return reversals
}

// Signal derives a proximity signal: near support leans BUY, near
// resistance leans SELL, otherwise strength interpolates from the relative
// position between the two nearest levels.
func (d *SupportResistanceDetector) Signal(candles []models.Candle) LevelSignal {
	report := d.Levels(candles)

	signal := analysis.SignalHold
	strength := 0.0
	sDist := report.SupportDistancePct
	rDist := report.ResistanceDistancePct

	switch {
	case sDist != nil && rDist != nil:
		switch {
		case *sDist < 2.0:
			signal = analysis.SignalBuy
			strength = min(0.8, (2.0-*sDist)/2.0)
		case *rDist < 2.0:
			signal = analysis.SignalSell
			strength = -min(0.8, (2.0-*rDist)/2.0)
		default:
			ratio := *sDist / (*sDist + *rDist)
			strength = (0.5 - ratio) * 2
			if strength > 0.2 {
				signal = analysis.SignalBuy
			} else if strength < -0.2 {
				signal = analysis.SignalSell
			}
		}
	case sDist != nil && *sDist < 3.0:
		signal = analysis.SignalBuy
		strength = 0.3
	case rDist != nil && *rDist < 3.0:
		signal = analysis.SignalSell
		strength = -0.3
	}

	return LevelSignal{
		LevelReport: report,
		Signal:      signal,
		Strength:    round4(strength),
	}
}
