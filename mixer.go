package mixer

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/tphakala/go-audio-mixer/internal/engine"
	"github.com/tphakala/go-audio-mixer/internal/filter"
	"github.com/tphakala/go-audio-mixer/internal/granule"
	"github.com/tphakala/go-audio-mixer/internal/simdops"
)

// RawFrame is one stereo frame from the emulation core.
type RawFrame = granule.RawFrame

// OutputFrame is one stereo 16-bit frame for the audio device.
type OutputFrame = granule.OutputFrame

// RunState reports whether the emulation core is running. Gaps are only
// filled by replaying old audio while it is.
type RunState = engine.RunState

// Config holds mixer configuration.
type Config struct {
	// NativeRate is the sample rate of the emulated machine's audio in Hz.
	NativeRate uint32

	// GranuleSize is the granule length in frames. Must be a power of two.
	// Larger granules tolerate burstier producers at the cost of latency.
	GranuleSize int

	// QueueCapacity is the number of granules the queue holds. Must be a
	// power of two.
	QueueCapacity int

	// MinQueueGranules and MaxQueueGranules bound the adaptive target
	// occupancy. The upper bound is further limited to QueueCapacity-1.
	MinQueueGranules int
	MaxQueueGranules int

	// WindowAttenuation selects the shape of the granule window in dB.
	// Higher values taper the granule edges harder.
	WindowAttenuation float64

	// FillAudioGaps replays recent audio with a fade-out when the producer
	// falls behind. Without it the output goes silent instead.
	FillAudioGaps bool

	// RunState gates gap filling. Nil means always running.
	RunState RunState

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Common errors returned by the mixer.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid mixer configuration")

	// ErrHandleClaimed indicates the producer or consumer side is already owned.
	ErrHandleClaimed = errors.New("mixer handle already claimed")
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.NativeRate == 0 || c.NativeRate > maxNativeRate {
		return fmt.Errorf("%w: native rate must be in (0, %d] Hz", ErrInvalidConfig, maxNativeRate)
	}

	if !granule.IsPowerOfTwo(c.GranuleSize) || c.GranuleSize < minGranuleSize || c.GranuleSize > maxGranuleSize {
		return fmt.Errorf("%w: granule size must be a power of two in [%d, %d]", ErrInvalidConfig, minGranuleSize, maxGranuleSize)
	}

	if !granule.IsPowerOfTwo(c.QueueCapacity) || c.QueueCapacity < minQueueCapacity || c.QueueCapacity > maxQueueCapacity {
		return fmt.Errorf("%w: queue capacity must be a power of two in [%d, %d]", ErrInvalidConfig, minQueueCapacity, maxQueueCapacity)
	}

	if c.MinQueueGranules < 1 || c.MinQueueGranules >= c.QueueCapacity {
		return fmt.Errorf("%w: min queue granules must be in [1, %d)", ErrInvalidConfig, c.QueueCapacity)
	}

	if c.MaxQueueGranules < c.MinQueueGranules {
		return fmt.Errorf("%w: max queue granules must be at least min queue granules", ErrInvalidConfig)
	}

	if c.WindowAttenuation < 0 || c.WindowAttenuation > maxAttenuation || math.IsNaN(c.WindowAttenuation) {
		return fmt.Errorf("%w: window attenuation must be 0-%v dB", ErrInvalidConfig, maxAttenuation)
	}

	return nil
}

// Mixer resamples audio from an emulation core to an audio device.
//
// Audio flows through the claim-once Producer and Consumer handles; the two
// may run on different goroutines and never block each other. GetStats and
// SetEmulationSpeed are safe from any goroutine. Clear must not run
// concurrently with either handle.
type Mixer struct {
	engine     *engine.Engine
	nativeRate uint32
	simd       string
	logger     *slog.Logger

	producerClaimed atomic.Bool
	consumerClaimed atomic.Bool
}

// New creates a mixer with the specified configuration.
func New(config *Config) (*Mixer, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	window, err := filter.OverlapAddWindow(config.GranuleSize, config.WindowAttenuation)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e, err := engine.New(engine.Config{
		NativeRate:       config.NativeRate,
		GranuleSize:      config.GranuleSize,
		QueueCapacity:    config.QueueCapacity,
		MinQueueGranules: config.MinQueueGranules,
		MaxQueueGranules: config.MaxQueueGranules,
		Window:           filter.ToFloat32(window),
		FillGaps:         config.FillAudioGaps,
		RunState:         config.RunState,
		Logger:           logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	m := &Mixer{
		engine:     e,
		nativeRate: config.NativeRate,
		simd:       simdops.Info(),
		logger:     logger,
	}
	logger.Debug("mixer created",
		"native_rate", config.NativeRate,
		"granule_size", config.GranuleSize,
		"queue_capacity", config.QueueCapacity,
		"fill_gaps", config.FillAudioGaps,
		"simd", m.simd)
	return m, nil
}

func (m *Mixer) pushSamples(samples []RawFrame, volume float32) {
	m.engine.Push(samples, volume)
}

func (m *Mixer) mix(out []OutputFrame, outputRate uint32, frameRateHz float32) {
	m.engine.Mix(out, outputRate, frameRateHz)
}

// SetEmulationSpeed scales playback for fast-forward or slow motion. 1 is
// real time. Non-positive and non-finite values reset it to 1.
func (m *Mixer) SetEmulationSpeed(speed float64) {
	m.engine.SetSpeed(speed)
}

// EmulationSpeed returns the current speed factor.
func (m *Mixer) EmulationSpeed() float64 {
	return m.engine.Speed()
}

// NativeRate returns the producer sample rate in Hz.
func (m *Mixer) NativeRate() uint32 {
	return m.nativeRate
}

// Clear drops all queued audio and resets playback and statistics.
func (m *Mixer) Clear() {
	m.engine.Clear()
}

// GetStats returns a snapshot of the mixer diagnostics and restarts the
// min/max occupancy window.
func (m *Mixer) GetStats() Stats {
	s := m.engine.Snapshot(true)
	return Stats{
		MinOccupancy:        s.MinOccupancy,
		MaxOccupancy:        s.MaxOccupancy,
		SmoothedOccupancy:   s.SmoothedOccupancy,
		TargetOccupancy:     s.TargetOccupancy,
		MaxCapacity:         s.Capacity,
		FadeAmplitude:       s.Fade,
		IsLooping:           s.Looping,
		OverrunCount:        s.Counters.Overruns,
		UnderrunCount:       s.Counters.Underruns,
		DroppedCount:        s.Counters.Dropped,
		SmoothedRequestRate: s.SmoothedRequest,
		FrameTimeEstimate:   s.FrameTime,
		TargetSampleCount:   int(s.TargetSamples),
		SIMD:                m.simd,
	}
}
