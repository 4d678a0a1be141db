// Package filter designs the tapering window applied to every granule.
package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-mixer/internal/mathutil"
	"github.com/tphakala/go-audio-mixer/internal/simdops"
)

const (
	// Smallest window the overlap-add normalisation accepts
	minWindowLength = 4

	// Overlap-add uses two granules per output position
	overlapFactor = 2
)

// PeriodicKaiser generates a periodic (DFT-even) Kaiser window of the given
// length. The peak sits at index length/2 and w[i] == w[length-i] for
// 0 < i < length, so that copies shifted by any multiple of the hop tile
// cleanly.
//
// The window is normalized so the peak equals 1.0.
func PeriodicKaiser(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)
	if length == 1 {
		window[0] = 1.0
		return window
	}

	// w[n] = I₀(β·sqrt(1 - ((n - L/2)/(L/2))²)) / I₀(β)
	half := float64(length) / overlapFactor
	for n := range length {
		x := (float64(n) - half) / half
		window[n] = mathutil.BesselI0(beta * math.Sqrt(math.Max(0, 1.0-x*x)))
	}

	simdops.For[float64]().Scale(window, window, 1.0/mathutil.BesselI0(beta))
	return window
}

// OverlapAddWindow returns a Kaiser-shaped window whose two halves are
// complementary: w[i] + w[(i+length/2) mod length] == 1 for every i. Summing
// granules tapered with it at 50% overlap reconstructs the input exactly.
//
// attenuation selects the Kaiser shape in dB (see mathutil.KaiserBeta); 0
// gives the flattest shape the normalisation allows.
func OverlapAddWindow(length int, attenuation float64) ([]float64, error) {
	if length < minWindowLength || length%overlapFactor != 0 {
		return nil, fmt.Errorf("window length %d must be even and at least %d", length, minWindowLength)
	}
	if attenuation < 0 || math.IsNaN(attenuation) || math.IsInf(attenuation, 0) {
		return nil, fmt.Errorf("invalid window attenuation: %f dB", attenuation)
	}

	shape := PeriodicKaiser(length, mathutil.KaiserBeta(attenuation))

	hop := length / overlapFactor
	window := make([]float64, length)
	for i := range length {
		pair := shape[i] + shape[(i+hop)%length]
		window[i] = shape[i] / pair
	}

	return window, nil
}

// ToFloat32 narrows a window for use on float32 sample data.
func ToFloat32(window []float64) []float32 {
	out := make([]float32, len(window))
	for i, v := range window {
		out[i] = float32(v)
	}
	return out
}
