package indicators

// LocalMaxima returns indices of strict local maxima: values[i] must exceed
// every value within order bars on each side (window clipped at the edges).
// The first and last bar never qualify.
func LocalMaxima(values []float64, order int) []int {
	return localExtrema(values, order, func(a, b float64) bool { return a > b })
}

// LocalMinima returns indices of strict local minima, mirroring LocalMaxima.
func LocalMinima(values []float64, order int) []int {
	return localExtrema(values, order, func(a, b float64) bool { return a < b })
}

func localExtrema(values []float64, order int, cmp func(a, b float64) bool) []int {
	n := len(values)
	if n < 3 || order < 1 {
		return nil
	}
	var idx []int
	for i := 1; i < n-1; i++ {
		lo := i - order
		if lo < 0 {
			lo = 0
		}
		hi := i + order
		if hi > n-1 {
			hi = n - 1
		}
		ok := true
		for j := lo; j <= hi; j++ {
			if j == i {
				continue
			}
			if !cmp(values[i], values[j]) {
				ok = false
				break
			}
		}
		if ok {
			idx = append(idx, i)
		}
	}
	return idx
}

// Slope returns the least-squares regression slope of values against
// bar index 0..n-1. Returns 0 for fewer than two points.
func Slope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}
