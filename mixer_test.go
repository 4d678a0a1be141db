package mixer

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func silence(n int) []RawFrame {
	return make([]RawFrame, n)
}

func tone(n int, freq, rate float64, amplitude int32) []RawFrame {
	frames := make([]RawFrame, n)
	for i := range frames {
		v := int32(math.Round(float64(amplitude) * math.Sin(2*math.Pi*freq*float64(i)/rate)))
		frames[i] = RawFrame{L: v, R: v}
	}
	return frames
}

// =============================================================================
// Configuration
// =============================================================================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"zero native rate", func(c *Config) { c.NativeRate = 0 }},
		{"native rate too high", func(c *Config) { c.NativeRate = maxNativeRate + 1 }},
		{"granule not power of two", func(c *Config) { c.GranuleSize = 300 }},
		{"granule too small", func(c *Config) { c.GranuleSize = 8 }},
		{"granule too large", func(c *Config) { c.GranuleSize = maxGranuleSize * 2 }},
		{"capacity not power of two", func(c *Config) { c.QueueCapacity = 96 }},
		{"capacity too small", func(c *Config) { c.QueueCapacity = 2 }},
		{"min granules zero", func(c *Config) { c.MinQueueGranules = 0 }},
		{"min granules reach capacity", func(c *Config) { c.MinQueueGranules = c.QueueCapacity }},
		{"max below min", func(c *Config) { c.MaxQueueGranules = c.MinQueueGranules - 1 }},
		{"negative attenuation", func(c *Config) { c.WindowAttenuation = -1 }},
		{"NaN attenuation", func(c *Config) { c.WindowAttenuation = math.NaN() }},
		{"excessive attenuation", func(c *Config) { c.WindowAttenuation = maxAttenuation + 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(RateDAT)
			tt.mod(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			_, err = New(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDefaultConfig(t *testing.T) {
	for _, rate := range []uint32{RateSNES, RateNDS, RateCD, RateDAT} {
		cfg := DefaultConfig(rate)
		require.NoError(t, cfg.Validate(), "rate %d", rate)
		assert.True(t, cfg.FillAudioGaps)
	}

	m, err := NewDefault(RateCD)
	require.NoError(t, err)
	assert.Equal(t, uint32(RateCD), m.NativeRate())

	stats := m.GetStats()
	assert.Equal(t, DefaultQueueCapacity, stats.MaxCapacity)
	assert.Equal(t, uint64(DefaultQueueCapacity-1), stats.TargetOccupancy)
}

// =============================================================================
// Playback
// =============================================================================

// TestMixer_StartupAfterSilence pushes a second of silence and then requests
// one 60 Hz frame of audio at the same rate.
func TestMixer_StartupAfterSilence(t *testing.T) {
	m, err := NewDefault(RateCD)
	require.NoError(t, err)

	m.pushSamples(silence(RateCD), 1)
	out := make([]OutputFrame, 735)
	m.mix(out, RateCD, 60)

	for i, f := range out {
		require.Equal(t, OutputFrame{}, f, "frame %d", i)
	}

	stats := m.GetStats()
	assert.Zero(t, stats.UnderrunCount)
	assert.Equal(t, uint64(28), stats.TargetOccupancy)
	assert.False(t, stats.IsLooping)
	assert.InDelta(t, 3675, stats.TargetSampleCount, 1)
}

func TestMixer_EmptyWithoutGapFilling(t *testing.T) {
	cfg := DefaultConfig(RateDAT)
	cfg.FillAudioGaps = false
	m, err := New(cfg)
	require.NoError(t, err)

	out := make([]OutputFrame, 1024)
	m.mix(out, RateDAT, 60)

	for _, f := range out {
		require.Equal(t, OutputFrame{}, f)
	}
	stats := m.GetStats()
	assert.False(t, stats.IsLooping)
	assert.Zero(t, stats.UnderrunCount)
}

func TestMixer_RunStateGatesGapFilling(t *testing.T) {
	run := NewRunFlag(false)
	cfg := DefaultConfig(RateDAT)
	cfg.RunState = run
	m, err := New(cfg)
	require.NoError(t, err)

	out := make([]OutputFrame, 1024)
	m.mix(out, RateDAT, 60)
	assert.Zero(t, m.GetStats().UnderrunCount, "paused core is not covered")

	run.Set(true)
	m.mix(out, RateDAT, 60)
	stats := m.GetStats()
	assert.Positive(t, stats.UnderrunCount)
	assert.True(t, stats.IsLooping)
}

func TestMixer_EmulationSpeed(t *testing.T) {
	m, err := NewDefault(RateDAT)
	require.NoError(t, err)
	assert.InDelta(t, 1, m.EmulationSpeed(), 0)

	m.SetEmulationSpeed(2)
	assert.InDelta(t, 2, m.EmulationSpeed(), 0)

	// Double speed consumes queued audio twice as fast.
	m.pushSamples(tone(8192, 440, RateDAT, 8000), 1)
	out := make([]OutputFrame, 1024)
	m.mix(out, RateDAT, 60)
	fast := m.GetStats()

	m.SetEmulationSpeed(-3)
	assert.InDelta(t, 1, m.EmulationSpeed(), 0)

	ref, err := NewDefault(RateDAT)
	require.NoError(t, err)
	ref.pushSamples(tone(8192, 440, RateDAT, 8000), 1)
	ref.mix(out, RateDAT, 60)
	normal := ref.GetStats()

	assert.Less(t, fast.MinOccupancy, normal.MinOccupancy)
}

func TestMixer_Clear(t *testing.T) {
	m, err := NewDefault(RateDAT)
	require.NoError(t, err)

	m.pushSamples(tone(RateDAT, 440, RateDAT, 8000), 1)
	out := make([]OutputFrame, 800)
	m.mix(out, RateDAT, 60)

	m.Clear()
	m.Clear()

	stats := m.GetStats()
	assert.Zero(t, stats.OverrunCount)
	assert.Zero(t, stats.DroppedCount)
	assert.Zero(t, stats.MaxOccupancy)
	assert.Zero(t, stats.FadeAmplitude)
	assert.Zero(t, stats.SmoothedRequestRate)

	m.mix(out, RateDAT, 60)
	for _, f := range out {
		require.Equal(t, OutputFrame{}, f, "cleared mixer must not replay old audio")
	}
}

// =============================================================================
// Handles
// =============================================================================

func TestMixer_HandlesClaimOnce(t *testing.T) {
	m, err := NewDefault(RateDAT)
	require.NoError(t, err)

	p, err := m.Producer()
	require.NoError(t, err)
	_, err = m.Producer()
	assert.True(t, errors.Is(err, ErrHandleClaimed))

	c, err := m.Consumer()
	require.NoError(t, err)
	_, err = m.Consumer()
	assert.ErrorIs(t, err, ErrHandleClaimed)

	p.PushSamples(tone(4096, 440, RateDAT, 8000), 1)
	out := make([]OutputFrame, 512)
	c.Mix(out, RateDAT, 60)
	assert.Positive(t, m.GetStats().MaxOccupancy)
}

func TestMixer_DataPathOnlyThroughHandles(t *testing.T) {
	mixerType := reflect.TypeOf(&Mixer{})
	for _, name := range []string{"PushSamples", "Mix"} {
		_, ok := mixerType.MethodByName(name)
		assert.False(t, ok, "Mixer must not expose %s outside the handles", name)
	}

	_, ok := reflect.TypeOf(&Producer{}).MethodByName("PushSamples")
	assert.True(t, ok)
	_, ok = reflect.TypeOf(&Consumer{}).MethodByName("Mix")
	assert.True(t, ok)
}

// =============================================================================
// Logging
// =============================================================================

func TestMixer_LogsDropOnset(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig(RateDAT)
	cfg.QueueCapacity = 8
	cfg.MaxQueueGranules = 7
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m, err := New(cfg)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "mixer created")

	// Two bursts that both overflow log one warning.
	m.pushSamples(silence(RateDAT), 1)
	m.pushSamples(silence(RateDAT), 1)
	assert.Equal(t, 1, strings.Count(buf.String(), "granule queue full"))
	assert.Positive(t, m.GetStats().DroppedCount)

	m.Clear()
	assert.Contains(t, buf.String(), "mixer state cleared")
}

func BenchmarkMixer_PushMix(b *testing.B) {
	m, err := NewDefault(RateDAT)
	require.NoError(b, err)
	in := tone(800, 440, RateDAT, 8000)
	out := make([]OutputFrame, 800)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.pushSamples(in, 1)
		m.mix(out, RateDAT, 60)
	}
}
