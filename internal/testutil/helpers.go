// Package testutil provides reusable test helpers for the mixer tests.
package testutil

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/dsp/fourier"
)

// AmplitudeTolerance is the relative amplitude error allowed after a round
// trip through the mixer.
const AmplitudeTolerance = 1e-2

// AssertSymmetric verifies that a periodic window is symmetric about its
// midpoint: s[i] == s[(n-i) mod n].
func AssertSymmetric(t *testing.T, s []float64, tolerance float64) bool {
	t.Helper()
	n := len(s)
	for i := 1; i < n/2; i++ {
		j := n - i
		if !assert.InDelta(t, s[i], s[j], tolerance,
			"window not symmetric: s[%d]=%f != s[%d]=%f", i, s[i], j, s[j]) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertMonotonic verifies that a slice never decreases.
func AssertMonotonic(t *testing.T, s []float64) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] < s[i-1] {
			return assert.Fail(t, "not monotonic",
				"s[%d]=%f < s[%d]=%f", i, s[i], i-1, s[i-1])
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}

// Sine returns n samples of amplitude*sin(2πf·i/rate).
func Sine(n int, freq, rate, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return out
}

// RMS returns the root mean square of s.
func RMS(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(s)))
}

// Spectrum returns the magnitude spectrum of s (bins 0..len(s)/2).
func Spectrum(s []float64) []float64 {
	fft := fourier.NewFFT(len(s))
	coeffs := fft.Coefficients(nil, s)
	mags := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mags[i] = cmplx.Abs(c)
	}
	return mags
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC bin.
func DominantFrequency(s []float64, rate float64) float64 {
	mags := Spectrum(s)
	best := 1
	for i := 2; i < len(mags); i++ {
		if mags[i] > mags[best] {
			best = i
		}
	}
	return float64(best) * rate / float64(len(s))
}

// SpuriousRatioDB returns the level in dB of the strongest bin outside
// ±guard bins of the dominant peak, relative to that peak.
func SpuriousRatioDB(s []float64, guard int) float64 {
	mags := Spectrum(s)
	best := 1
	for i := 2; i < len(mags); i++ {
		if mags[i] > mags[best] {
			best = i
		}
	}
	var spur float64
	for i := 1; i < len(mags); i++ {
		if i >= best-guard && i <= best+guard {
			continue
		}
		spur = max(spur, mags[i])
	}
	if spur == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(spur/mags[best])
}
