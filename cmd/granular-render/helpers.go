package main

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	mixer "github.com/tphakala/go-audio-mixer"
)

// simulationParams describes the producer and device timing.
type simulationParams struct {
	nativeRate int
	outputRate int
	fps        float64
	jitter     float64
	callback   int
	volume     float32
	seed       uint64
}

// simulation drives one Mixer from a single goroutine on a virtual clock.
// Producer bursts and device callbacks are interleaved in timestamp order,
// which is the only ordering the mixer can observe.
type simulation struct {
	params   simulationParams
	producer *mixer.Producer
	consumer *mixer.Consumer
	running  *mixer.RunFlag
	frames   []mixer.RawFrame
	rng      *rand.Rand

	// Called after each device callback with the callback count.
	onCallback func(n int)

	pushed    int
	bursts    int
	callbacks int
}

func newSimulation(m *mixer.Mixer, running *mixer.RunFlag, frames []mixer.RawFrame, params simulationParams) (*simulation, error) {
	producer, err := m.Producer()
	if err != nil {
		return nil, fmt.Errorf("failed to claim producer: %w", err)
	}
	consumer, err := m.Consumer()
	if err != nil {
		return nil, fmt.Errorf("failed to claim consumer: %w", err)
	}
	return &simulation{
		params:   params,
		producer: producer,
		consumer: consumer,
		running:  running,
		frames:   frames,
		rng:      rand.New(rand.NewPCG(params.seed, params.seed^0x9e3779b97f4a7c15)),
	}, nil
}

// outputLength returns the number of device frames that cover the clip.
func outputLength(inputFrames, nativeRate, outputRate int) int {
	if nativeRate <= 0 {
		return 0
	}
	return int(math.Ceil(float64(inputFrames) * float64(outputRate) / float64(nativeRate)))
}

// burstEnd returns the clip position after video frame k, so that bursts
// of varying size add up to exactly the clip length.
func burstEnd(k int, nativeRate int, fps float64, total int) int {
	end := int(math.Round(float64(k+1) * float64(nativeRate) / fps))
	return min(end, total)
}

// run plays the whole clip and returns the device stream.
func (s *simulation) run() []mixer.OutputFrame {
	p := s.params
	total := outputLength(len(s.frames), p.nativeRate, p.outputRate)
	out := make([]mixer.OutputFrame, 0, total+p.callback)

	framePeriod := 1 / p.fps
	nextBurst := s.burstTime(0, framePeriod)

	for len(out) < total {
		now := float64(s.callbacks) * float64(p.callback) / float64(p.outputRate)

		for s.pushed < len(s.frames) && nextBurst <= now {
			end := burstEnd(s.bursts, p.nativeRate, p.fps, len(s.frames))
			s.producer.PushSamples(s.frames[s.pushed:end], p.volume)
			s.pushed = end
			s.bursts++
			nextBurst = s.burstTime(s.bursts, framePeriod)
		}
		if s.pushed >= len(s.frames) {
			s.running.Set(false)
		}

		n := len(out)
		out = append(out, make([]mixer.OutputFrame, p.callback)...)
		s.consumer.Mix(out[n:], uint32(p.outputRate), float32(p.fps))
		s.callbacks++
		if s.onCallback != nil {
			s.onCallback(s.callbacks)
		}
	}
	return out[:total]
}

// burstTime returns when video frame k is delivered: its nominal time plus
// a random delay of up to jitter frames.
func (s *simulation) burstTime(k int, framePeriod float64) float64 {
	return (float64(k) + s.params.jitter*s.rng.Float64()) * framePeriod
}

// writeWAV writes frames as a 16-bit stereo WAV file.
func writeWAV(path string, sampleRate int, frames []mixer.OutputFrame) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	data := make([]int, 0, len(frames)*outputChannels)
	for _, fr := range frames {
		data = append(data, int(fr.L), int(fr.R))
	}

	enc := wav.NewEncoder(f, sampleRate, outputBitDepth, outputChannels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: outputChannels, SampleRate: sampleRate},
		SourceBitDepth: outputBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return errors.Join(fmt.Errorf("failed to write audio data: %w", err), enc.Close())
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return nil
}
