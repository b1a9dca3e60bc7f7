// Package indicator provides pure derived-series transforms over daily
// closes. Every function returns a slice aligned 1:1 with its input;
// positions where the indicator is not yet defined hold math.NaN(), and
// consumers must not trigger signals on them. A window larger than the
// series yields an all-NaN slice, not an error.
package indicator

import "math"

// SMA returns the simple moving average over a trailing window.
func SMA(closes []float64, window int) []float64 {
	out := undefinedSeries(len(closes))
	if window <= 0 || window > len(closes) {
		return out
	}

	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// EMA returns the exponential moving average with smoothing factor
// 2/(window+1), seeded by the SMA of the first window observations.
func EMA(closes []float64, window int) []float64 {
	out := undefinedSeries(len(closes))
	if window <= 0 || window > len(closes) {
		return out
	}

	seed := 0.0
	for i := 0; i < window; i++ {
		seed += closes[i]
	}
	seed /= float64(window)

	alpha := 2.0 / float64(window+1)
	ema := seed
	out[window-1] = ema
	for i := window; i < len(closes); i++ {
		ema = (closes[i]-ema)*alpha + ema
		out[i] = ema
	}
	return out
}

// RSI returns the relative strength index over a trailing window of
// day-over-day deltas, using simple trailing averages of gains and losses.
// When the average loss is zero the RSI is 100.
func RSI(closes []float64, window int) []float64 {
	out := undefinedSeries(len(closes))
	if window <= 0 || window >= len(closes) {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	var gainSum, lossSum float64
	for i := 1; i < len(closes); i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > window {
			gainSum -= gains[i-window]
			lossSum -= losses[i-window]
		}
		if i < window {
			continue
		}
		avgLoss := lossSum / float64(window)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		avgGain := gainSum / float64(window)
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// Bollinger returns the middle (SMA), upper and lower bands with k sample
// standard deviations around the middle.
func Bollinger(closes []float64, window int, k float64) (upper, middle, lower []float64) {
	middle = SMA(closes, window)
	std := RollingStd(closes, window)
	upper = undefinedSeries(len(closes))
	lower = undefinedSeries(len(closes))
	for i := range closes {
		if math.IsNaN(middle[i]) || math.IsNaN(std[i]) {
			continue
		}
		upper[i] = middle[i] + k*std[i]
		lower[i] = middle[i] - k*std[i]
	}
	return upper, middle, lower
}

// RollingStd returns the sample standard deviation over a trailing window.
func RollingStd(closes []float64, window int) []float64 {
	out := undefinedSeries(len(closes))
	if window < 2 || window > len(closes) {
		return out
	}
	for i := window - 1; i < len(closes); i++ {
		mean := 0.0
		for j := i - window + 1; j <= i; j++ {
			mean += closes[j]
		}
		mean /= float64(window)

		sumSq := 0.0
		for j := i - window + 1; j <= i; j++ {
			diff := closes[j] - mean
			sumSq += diff * diff
		}
		out[i] = math.Sqrt(sumSq / float64(window-1))
	}
	return out
}

// RollingHigh returns the trailing maximum of closes over a window.
func RollingHigh(closes []float64, window int) []float64 {
	return rollingExtreme(closes, window, func(a, b float64) bool { return a > b })
}

// RollingLow returns the trailing minimum of closes over a window.
func RollingLow(closes []float64, window int) []float64 {
	return rollingExtreme(closes, window, func(a, b float64) bool { return a < b })
}

// FibonacciSupport returns low + level*(high-low) over a trailing lookback.
// The level is measured upward from the rolling low; this is a support level
// above the recent low, not a classical retracement from the high, and the
// formula is kept literally for comparability with recorded results.
func FibonacciSupport(closes []float64, lookback int, level float64) []float64 {
	high := RollingHigh(closes, lookback)
	low := RollingLow(closes, lookback)
	out := undefinedSeries(len(closes))
	for i := range closes {
		if math.IsNaN(high[i]) || math.IsNaN(low[i]) {
			continue
		}
		out[i] = low[i] + level*(high[i]-low[i])
	}
	return out
}

// DailyReturns returns day-over-day fractional changes; index 0 is 0.
func DailyReturns(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		out[i] = values[i]/values[i-1] - 1
	}
	return out
}

func rollingExtreme(closes []float64, window int, better func(a, b float64) bool) []float64 {
	out := undefinedSeries(len(closes))
	if window <= 0 || window > len(closes) {
		return out
	}
	for i := window - 1; i < len(closes); i++ {
		best := closes[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			if better(closes[j], best) {
				best = closes[j]
			}
		}
		out[i] = best
	}
	return out
}

func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
