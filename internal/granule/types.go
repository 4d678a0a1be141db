// Package granule implements the producer half of the mixer: the staging
// accumulator that cuts incoming audio into windowed, 50%-overlapping
// granules, and the single-producer/single-consumer queue that carries them
// to the audio callback.
package granule

import "math"

// Signed 16-bit range every sample is clamped to.
const (
	MinSample = -32768
	MaxSample = 32767
)

// RawFrame is one stereo frame as produced by the emulation core.
type RawFrame struct {
	L, R int32
}

// OutputFrame is one stereo frame as consumed by the audio device.
type OutputFrame struct {
	L, R int16
}

// Pair is a clamped stereo sample in 16-bit scale.
type Pair struct {
	L, R float32
}

// Add returns the element-wise sum of two pairs.
func (p Pair) Add(o Pair) Pair {
	return Pair{L: p.L + o.L, R: p.R + o.R}
}

// Scale returns p multiplied by g.
func (p Pair) Scale(g float32) Pair {
	return Pair{L: p.L * g, R: p.R * g}
}

// Granule is a window-tapered block of Pairs. Its length is the configured
// granule size.
type Granule []Pair

// Clamp16 limits v to the signed 16-bit range. NaN maps to 0.
func Clamp16(v float32) float32 {
	switch {
	case v > MaxSample:
		return MaxSample
	case v < MinSample:
		return MinSample
	case math.IsNaN(float64(v)):
		return 0
	}
	return v
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
