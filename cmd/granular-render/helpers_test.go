package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mixer "github.com/tphakala/go-audio-mixer"
	"github.com/tphakala/go-audio-mixer/internal/source"
)

func toneFrames(n, rate int) []mixer.RawFrame {
	frames := make([]mixer.RawFrame, n)
	for i := range frames {
		v := int32(math.Round(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(rate))))
		frames[i] = mixer.RawFrame{L: v, R: v}
	}
	return frames
}

func newTestSimulation(t *testing.T, frames []mixer.RawFrame, params simulationParams) (*simulation, *mixer.Mixer) {
	t.Helper()
	running := mixer.NewRunFlag(true)
	cfg := mixer.DefaultConfig(uint32(params.nativeRate))
	cfg.RunState = running
	m, err := mixer.New(cfg)
	require.NoError(t, err)

	sim, err := newSimulation(m, running, frames, params)
	require.NoError(t, err)
	return sim, m
}

func TestOutputLength(t *testing.T) {
	assert.Equal(t, 48000, outputLength(32000, 32000, 48000))
	assert.Equal(t, 2, outputLength(1, 32000, 48000))
	assert.Zero(t, outputLength(100, 0, 48000))
}

func TestBurstEnd_CoversClip(t *testing.T) {
	const (
		rate  = 44100
		fps   = 59.94
		total = 100000
	)
	prev := 0
	for k := 0; prev < total; k++ {
		end := burstEnd(k, rate, fps, total)
		size := end - prev
		assert.True(t, size == 735 || size == 736 || end == total, "burst %d has %d frames", k, size)
		prev = end
	}
	assert.Equal(t, total, prev)
}

func TestSimulation_Run(t *testing.T) {
	const (
		nativeRate = 32000
		outputRate = 48000
	)
	frames := toneFrames(nativeRate, nativeRate)
	sim, m := newTestSimulation(t, frames, simulationParams{
		nativeRate: nativeRate,
		outputRate: outputRate,
		fps:        60,
		jitter:     0.5,
		callback:   512,
		volume:     1,
		seed:       7,
	})

	out := sim.run()

	assert.Len(t, out, outputRate)
	assert.Equal(t, len(frames), sim.pushed)
	assert.Equal(t, 60, sim.bursts)
	assert.Equal(t, int(math.Ceil(float64(outputRate)/512)), sim.callbacks)
	assert.False(t, sim.running.Running())

	var peak int16
	for _, f := range out {
		peak = max(peak, f.L)
	}
	assert.Greater(t, peak, int16(4000))
	assert.LessOrEqual(t, peak, int16(8500))

	stats := m.GetStats()
	assert.Zero(t, stats.DroppedCount)
}

func TestSimulation_HandlesAlreadyClaimed(t *testing.T) {
	m, err := mixer.NewDefault(mixer.RateSNES)
	require.NoError(t, err)
	_, err = m.Producer()
	require.NoError(t, err)

	_, err = newSimulation(m, mixer.NewRunFlag(true), nil, simulationParams{})
	require.ErrorIs(t, err, mixer.ErrHandleClaimed)
}

func TestWriteWAV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	frames := []mixer.OutputFrame{{L: 1, R: -1}, {L: 32767, R: -32768}, {L: 0, R: 100}}

	require.NoError(t, writeWAV(path, 48000, frames))

	clip, err := source.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 48000, clip.SampleRate)
	assert.Equal(t, []mixer.RawFrame{{L: 1, R: -1}, {L: 32767, R: -32768}, {L: 0, R: 100}}, clip.Frames)
}

func TestWriteWAV_InvalidDirectory(t *testing.T) {
	err := writeWAV("/nonexistent/dir/output.wav", 48000, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestWriteWAV_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")
	require.NoError(t, writeWAV(path, 48000, nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
