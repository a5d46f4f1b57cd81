package benchmark

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ms(values ...float64) []time.Duration {
	out := make([]time.Duration, len(values))
	for i, v := range values {
		out[i] = time.Duration(v * float64(time.Millisecond))
	}
	return out
}

func TestSummarize(t *testing.T) {
	s := Summarize(ms(100, 10, 20, 30), 3)

	assert.Equal(t, 20.0, s.Mean)
	assert.Equal(t, 100.0, s.Variance)
	assert.Equal(t, 10.0, s.StdDev)
	assert.Equal(t, 100.0, s.Confidence)
	assert.Equal(t, "    20.0ms +- 100.0%", s.String())
}

func TestSummarize_SkipsWarmup(t *testing.T) {
	a := Summarize(ms(1, 5, 5, 5, 5), 4)
	b := Summarize(ms(1000, 5, 5, 5, 5), 4)
	assert.Equal(t, a, b)
	assert.Equal(t, 5.0, a.Mean)
	assert.Equal(t, 0.0, a.Confidence)
	assert.Equal(t, "     5.0ms +-  0.0%", a.String())
}

func TestSummarize_MatchesCorrectedVariance(t *testing.T) {
	samples := []float64{12, 15, 11, 19, 13, 14, 16, 12, 18, 10}
	times := ms(append([]float64{40}, samples...)...)

	var mean float64
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))
	var ss float64
	for _, v := range samples {
		ss += (v - mean) * (v - mean)
	}
	want := ss / float64(len(samples)-1)

	s := Summarize(times, len(samples))
	assert.InDelta(t, mean, s.Mean, 1e-9)
	assert.InDelta(t, want, s.Variance, 1e-9)
	assert.InDelta(t, 200*math.Sqrt(want)/mean, s.Confidence, 1e-9)
}

func TestSummarize_UsesRepeatCountAsSampleSize(t *testing.T) {
	// Three measured samples but a repeat count of two: the divisor follows
	// the repeat count.
	s := Summarize(ms(0, 10, 20, 30), 2)
	assert.Equal(t, 30.0, s.Mean)
}

func TestSummarize_SingleRepeatIsNaN(t *testing.T) {
	s := Summarize(ms(50, 10), 1)
	assert.Equal(t, 10.0, s.Mean)
	assert.True(t, math.IsNaN(s.Variance))
	assert.True(t, math.IsNaN(s.Confidence))
	assert.Equal(t, "    10.0ms +-  NaN%", s.String())
}

func TestSummarize_ZeroMean(t *testing.T) {
	s := Summarize(ms(3, 0, 0, 0), 3)
	assert.Equal(t, 0.0, s.Mean)
	assert.True(t, math.IsNaN(s.Confidence))
	assert.Equal(t, "     0.0ms +-  NaN%", s.String())

	empty := Summarize(ms(3), 0)
	assert.True(t, math.IsNaN(empty.Mean))
	assert.Equal(t, "     NaNms +-  NaN%", empty.String())
}

func TestToFixed(t *testing.T) {
	tests := []struct {
		in     float64
		digits int
		want   string
	}{
		{20, 1, "20.0"},
		{0.25, 1, "0.3"},
		{0.35, 1, "0.3"}, // 0.35 is stored as 0.34999...
		{1.005, 2, "1.00"},
		{2.5, 0, "3"},
		{99.95, 1, "100.0"},
		{9.96, 1, "10.0"},
		{-0.04, 1, "-0.0"},
		{-1.25, 1, "-1.3"},
		{123456.789, 1, "123456.8"},
		{1e21, 1, "1e+21"},
		{math.NaN(), 1, "NaN"},
		{math.Inf(1), 1, "Infinity"},
		{math.Inf(-1), 1, "-Infinity"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toFixed(tt.in, tt.digits), "toFixed(%v, %d)", tt.in, tt.digits)
	}
}

func TestFormatTimes_Infinity(t *testing.T) {
	assert.Equal(t, "Infinityms +-  NaN%", Summary{Mean: math.Inf(1), Confidence: math.NaN()}.String())
	assert.Equal(t, "    12.5ms +- 11.3%", FormatTimes(ms(0, 12, 13), 2))
}
