package engine

import (
	"math"
	"sync/atomic"
)

// Sizer derives the queue's target occupancy from how much audio the
// consumer asks for per callback and how often the host renders a frame.
// Update runs on the consumer; the snapshot accessors are safe from any
// goroutine.
type Sizer struct {
	nativeRate  float64
	halfGranule float64
	minTarget   uint64
	maxTarget   uint64

	smoothed    float64
	initialized bool

	smoothedBits      atomic.Uint64
	frameTimeBits     atomic.Uint64
	targetSamplesBits atomic.Uint64
}

// NewSizer returns a controller for a queue of the given granule size and
// capacity. The target is kept within [minTarget, min(maxTarget, capacity-1)].
func NewSizer(nativeRate uint32, granuleSize, capacity, minTarget, maxTarget int) *Sizer {
	upper := min(maxTarget, capacity-1)
	return &Sizer{
		nativeRate:  float64(nativeRate),
		halfGranule: float64(granuleSize / 2),
		minTarget:   uint64(min(minTarget, upper)),
		maxTarget:   uint64(upper),
	}
}

// Update folds one request of n samples into the running average and
// returns the new target occupancy in granules.
func (s *Sizer) Update(n int, frameRateHz float32) uint64 {
	if !s.initialized {
		s.smoothed = float64(n)
		s.initialized = true
	} else {
		s.smoothed += requestSmoothing * (float64(n) - s.smoothed)
	}

	fps := float64(frameRateHz)
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		fps = fallbackFrameRate
	}
	frameTime := 1 / fps

	targetSamples := requestHeadroom*s.smoothed + frameTime*s.nativeRate
	target := uint64(targetSamples / s.halfGranule)
	target = max(s.minTarget, min(target, s.maxTarget))

	s.smoothedBits.Store(math.Float64bits(s.smoothed))
	s.frameTimeBits.Store(math.Float64bits(frameTime))
	s.targetSamplesBits.Store(math.Float64bits(targetSamples))
	return target
}

// SmoothedRequest returns the averaged request size in samples.
func (s *Sizer) SmoothedRequest() float64 {
	return math.Float64frombits(s.smoothedBits.Load())
}

// FrameTime returns the last frame time estimate in seconds.
func (s *Sizer) FrameTime() float64 {
	return math.Float64frombits(s.frameTimeBits.Load())
}

// TargetSamples returns the last target expressed in samples.
func (s *Sizer) TargetSamples() float64 {
	return math.Float64frombits(s.targetSamplesBits.Load())
}

// Reset forgets the request history. Consumer side only.
func (s *Sizer) Reset() {
	s.smoothed = 0
	s.initialized = false
	s.smoothedBits.Store(0)
	s.frameTimeBits.Store(0)
	s.targetSamplesBits.Store(0)
}
