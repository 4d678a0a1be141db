package engine

import "math"

// Fade is a one-pole envelope that pulls the output level toward 0 while the
// queue is replaying old granules and back toward 1 once fresh audio
// arrives. It never overshoots either bound.
//
// The state is kept in float64: in float32 the fade-in step falls below half
// an ulp of 1 and the level stalls just short of unity.
type Fade struct {
	level float64
	kIn   float64
	kOut  float64
	rate  uint32
}

// SetRate recomputes the per-sample coefficients for an output rate in Hz.
// Calls with an unchanged rate are free.
func (f *Fade) SetRate(rate uint32) {
	if rate == f.rate || rate == 0 {
		return
	}
	f.rate = rate
	f.kIn = onePole(float64(rate), fadeInTime)
	f.kOut = onePole(float64(rate), fadeOutTime)
}

// onePole returns the smoothing factor reaching 1-1/e of a step after tc
// seconds at rate samples per second.
func onePole(rate, tc float64) float64 {
	return -math.Expm1(-1 / (rate * tc))
}

// Step advances the envelope by one sample and returns the new level.
func (f *Fade) Step(looping bool) float32 {
	if looping {
		f.level -= f.kOut * f.level
	} else {
		f.level += f.kIn * (1 - f.level)
	}
	return float32(f.level)
}

// Level returns the current envelope level.
func (f *Fade) Level() float32 {
	return float32(f.level)
}

// Reset silences the envelope.
func (f *Fade) Reset() {
	f.level = 0
}
