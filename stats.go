package mixer

import "fmt"

// Stats is a point-in-time view of the mixer diagnostics. Occupancies are in
// granules.
type Stats struct {
	// MinOccupancy and MaxOccupancy cover the window since the previous
	// GetStats call.
	MinOccupancy uint64
	MaxOccupancy uint64

	SmoothedOccupancy float64
	TargetOccupancy   uint64
	MaxCapacity       int

	// FadeAmplitude is the output envelope level in [0, 1].
	FadeAmplitude float32

	// IsLooping is set while old granules are replayed to cover an underrun.
	IsLooping bool

	OverrunCount  uint64
	UnderrunCount uint64
	DroppedCount  uint64

	// SmoothedRequestRate is the averaged number of frames per Mix call.
	SmoothedRequestRate float64

	// FrameTimeEstimate is the host frame duration in seconds.
	FrameTimeEstimate float64

	// TargetSampleCount is the target occupancy expressed in frames.
	TargetSampleCount int

	// SIMD describes the instruction set of the interpolation kernel.
	SIMD string
}

// String returns a one-line summary suitable for an on-screen debug overlay.
func (s Stats) String() string {
	looping := ""
	if s.IsLooping {
		looping = " LOOP"
	}
	return fmt.Sprintf("queue %d/%d [%d-%d] avg %.1f | req %.0f frame %.2fms target %d | fade %.2f%s | over %d under %d drop %d",
		s.TargetOccupancy, s.MaxCapacity, s.MinOccupancy, s.MaxOccupancy, s.SmoothedOccupancy,
		s.SmoothedRequestRate, s.FrameTimeEstimate*1000, s.TargetSampleCount,
		s.FadeAmplitude, looping,
		s.OverrunCount, s.UnderrunCount, s.DroppedCount)
}
