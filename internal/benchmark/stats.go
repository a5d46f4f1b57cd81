package benchmark

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Summary holds the statistics of one duration sequence, in milliseconds.
type Summary struct {
	Mean     float64
	Variance float64
	StdDev   float64
	// Confidence is the 95% confidence half-width (2 * StdDev) as a
	// percentage of Mean.
	Confidence float64
}

// Summarize computes the statistics of times. The first sample is the warm-up
// pass and is skipped. The sample size is repeatCount, not len(times)-1, and
// no guard is applied: repeatCount <= 1 or a zero mean yield NaN or infinite
// values.
func Summarize(times []time.Duration, repeatCount int) Summary {
	var sum, sumsq float64
	for i := 1; i < len(times); i++ {
		ms := milliseconds(times[i])
		sum += ms
		sumsq += ms * ms
	}
	n := float64(repeatCount)
	mean := sum / n
	variance := (sumsq - sum*mean) / (n - 1)
	stddev := math.Sqrt(variance)
	return Summary{
		Mean:       mean,
		Variance:   variance,
		StdDev:     stddev,
		Confidence: 2 * stddev / mean * 100,
	}
}

// String renders s as "<mean>ms +- <confidence>%" with the mean in 8 columns
// and the confidence in 4.
func (s Summary) String() string {
	return fmt.Sprintf("%8sms +- %4s%%", toFixed(s.Mean, 1), toFixed(s.Confidence, 1))
}

// FormatTimes summarizes and renders times in one step.
func FormatTimes(times []time.Duration, repeatCount int) string {
	return Summarize(times, repeatCount).String()
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// toFixed formats x with the given number of fraction digits the way
// ECMAScript's Number.prototype.toFixed does: halves round away from zero
// based on the exact binary value, and non-finite values are spelled out.
func toFixed(x float64, digits int) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	case math.Abs(x) >= 1e21:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}

	sign := ""
	if x < 0 {
		sign = "-"
		x = -x
	}

	// Enough extra digits that only an exact half reads as "5000...".
	exact := strconv.FormatFloat(x, 'f', digits+30, 64)
	intPart, frac, _ := strings.Cut(exact, ".")
	kept := []byte(intPart + frac[:digits])
	if frac[digits] >= '5' {
		kept = incrementDecimal(kept)
	}

	whole := string(kept[:len(kept)-digits])
	if digits == 0 {
		return sign + whole
	}
	return sign + whole + "." + string(kept[len(kept)-digits:])
}

func incrementDecimal(b []byte) []byte {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < '9' {
			b[i]++
			return b
		}
		b[i] = '0'
	}
	return append([]byte{'1'}, b...)
}
