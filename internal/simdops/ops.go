// Package simdops provides the SIMD kernels used on the mixing hot path for
// float32 and float64 sample data.
package simdops

import (
	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported floating-point types.
type Float interface {
	float32 | float64
}

// Ops provides SIMD-accelerated operations for type F.
type Ops[F Float] struct {
	// Scale multiplies each element by scalar s: dst[i] = a[i] * s
	Scale func(dst, a []F, s F)

	// CubicInterpDot computes the fused cubic interpolation dot product:
	//   Σ hist[i] * (a[i] + x*(b[i] + x*(c[i] + x*d[i])))
	// The Hermite interpolator expresses its per-tap weights in this form.
	CubicInterpDot func(hist, a, b, c, d []F, x F) F
}

var (
	ops32 = Ops[float32]{
		Scale:          f32.Scale,
		CubicInterpDot: f32.CubicInterpDot,
	}
	ops64 = Ops[float64]{
		Scale:          f64.Scale,
		CubicInterpDot: f64.CubicInterpDot,
	}
)

// For returns the Ops instance for type F.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&ops32).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&ops64).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}

// Float32Ops returns the float32 SIMD operations.
func Float32Ops() *Ops[float32] {
	return &ops32
}

// Info describes the instruction set the kernels dispatch to.
func Info() string {
	return cpu.Info()
}
