package mixer

import "github.com/tphakala/go-audio-mixer/internal/engine"

// Default engine geometry
const (
	// DefaultGranuleSize is the granule length in frames.
	DefaultGranuleSize = 256

	// DefaultQueueCapacity is the number of granule slots.
	DefaultQueueCapacity = 128

	// DefaultMinQueueGranules and DefaultMaxQueueGranules bound the adaptive
	// queue target.
	DefaultMinQueueGranules = engine.DefaultMinQueueGranules
	DefaultMaxQueueGranules = engine.DefaultMaxQueueGranules

	// DefaultWindowAttenuation selects the Kaiser shape of the granule window (dB).
	DefaultWindowAttenuation = 60.0
)

// Configuration limits
const (
	minGranuleSize   = 16
	maxGranuleSize   = 1 << 16
	minQueueCapacity = 4
	maxQueueCapacity = 1 << 16
	maxNativeRate    = 1 << 20 // Hz
	maxAttenuation   = 200.0   // dB
)

// Output encoding
const (
	stereoChannels = 2
	bytesPerSample = 2
	bytesPerFrame  = stereoChannels * bytesPerSample
)
