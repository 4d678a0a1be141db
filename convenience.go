package mixer

import "sync/atomic"

// Common native rates of emulated sound hardware.
const (
	// RateCD is the CD quality sample rate.
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate, common on modern consoles.
	RateDAT = 48000

	// RateSNES is the nominal output rate of the SNES S-DSP.
	RateSNES = 32000

	// RateNDS is the output rate of the Nintendo DS mixer.
	RateNDS = 32768
)

// DefaultConfig returns a configuration with default geometry for a
// producer running at nativeRate Hz. Gap filling is enabled.
func DefaultConfig(nativeRate uint32) *Config {
	return &Config{
		NativeRate:        nativeRate,
		GranuleSize:       DefaultGranuleSize,
		QueueCapacity:     DefaultQueueCapacity,
		MinQueueGranules:  DefaultMinQueueGranules,
		MaxQueueGranules:  DefaultMaxQueueGranules,
		WindowAttenuation: DefaultWindowAttenuation,
		FillAudioGaps:     true,
	}
}

// NewDefault creates a mixer with DefaultConfig.
func NewDefault(nativeRate uint32) (*Mixer, error) {
	return New(DefaultConfig(nativeRate))
}

// RunFlag is a RunState that can be toggled from any goroutine.
type RunFlag struct {
	running atomic.Bool
}

// NewRunFlag returns a flag with the given initial state.
func NewRunFlag(running bool) *RunFlag {
	f := &RunFlag{}
	f.running.Store(running)
	return f
}

// Set updates the flag.
func (f *RunFlag) Set(running bool) {
	f.running.Store(running)
}

// Running reports the current state.
func (f *RunFlag) Running() bool {
	return f.running.Load()
}
