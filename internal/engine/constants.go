package engine

// Hermite interpolation constants
const (
	// 6-point, 3rd-order Hermite interpolator
	hermiteTaps = 6

	// Tap index holding the sample at the integer cursor position (taps i-2 .. i+3)
	hermiteCenter = 2
)

// Playback cursor fixed-point format
const (
	// Fractional bits of the cursor and of the per-sample step
	fracBits = 24
	fracOne  = 1 << fracBits
	fracMask = fracOne - 1

	// Only the top bits of the fraction select the interpolation point
	interpBits  = 8
	interpShift = fracBits - interpBits
	interpScale = 1.0 / (1 << interpBits)

	// One step may advance at most this fraction of a granule
	maxStepDivisor = 4
)

// Fade envelope time constants (seconds)
const (
	fadeOutTime = 0.064
	fadeInTime  = 0.008
)

// Adaptive sizing constants
const (
	// EMA weight of each new request size
	requestSmoothing = 0.1

	// EMA weight of each occupancy observation
	occupancySmoothing = 0.1

	// Requests worth of samples kept queued on top of one frame of audio
	requestHeadroom = 4

	// Assumed host frame rate when the caller supplies none
	fallbackFrameRate = 60.0

	// Default queue target bounds in granules
	DefaultMinQueueGranules = 4
	DefaultMaxQueueGranules = 128
)
