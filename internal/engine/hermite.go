package engine

import (
	"github.com/tphakala/go-audio-mixer/internal/simdops"
)

// Hermite6 is a 6-point, 3rd-order Hermite interpolator over taps
// y[-2] .. y[3]. Its polynomial
//
//	y(x) = c0 + x*(c1 + x*(c2 + x*c3))
//
// is stored as one weight vector per power of x, so a single fused
// CubicInterpDot evaluates it for all taps at once.
type Hermite6 struct {
	c0, c1, c2, c3 [hermiteTaps]float32
	ops            *simdops.Ops[float32]
}

// NewHermite6 returns an interpolator using the SIMD kernel for float32.
func NewHermite6() *Hermite6 {
	return &Hermite6{
		c0:  [hermiteTaps]float32{0, 0, 1, 0, 0, 0},
		c1:  [hermiteTaps]float32{1.0 / 12, -2.0 / 3, 0, 2.0 / 3, -1.0 / 12, 0},
		c2:  [hermiteTaps]float32{-1.0 / 6, 5.0 / 4, -7.0 / 3, 5.0 / 3, -1.0 / 2, 1.0 / 12},
		c3:  [hermiteTaps]float32{1.0 / 12, -7.0 / 12, 4.0 / 3, -4.0 / 3, 7.0 / 12, -1.0 / 12},
		ops: simdops.Float32Ops(),
	}
}

// Interpolate evaluates the curve through taps at x in [0, 1), where x=0 is
// taps[2] and x=1 would be taps[3].
func (h *Hermite6) Interpolate(taps *[hermiteTaps]float32, x float32) float32 {
	return h.ops.CubicInterpDot(taps[:], h.c0[:], h.c1[:], h.c2[:], h.c3[:], x)
}
