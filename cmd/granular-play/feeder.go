package main

import (
	"context"
	"math"
	"time"

	mixer "github.com/tphakala/go-audio-mixer"
)

// pusher is the producer side of a mixer.
type pusher interface {
	PushSamples(samples []mixer.RawFrame, volume float32)
}

// feeder plays the role of an emulation core: once per video frame it
// hands over the audio generated during that frame.
type feeder struct {
	out        pusher
	frames     []mixer.RawFrame
	nativeRate int
	fps        float64
	volume     float32
	loop       bool

	// Video frames delivered so far.
	frame int
}

func newFeeder(out pusher, frames []mixer.RawFrame, nativeRate int, fps float64, volume float32, loop bool) *feeder {
	return &feeder{
		out:        out,
		frames:     frames,
		nativeRate: nativeRate,
		fps:        fps,
		volume:     volume,
		loop:       loop,
	}
}

// offset returns the stream position at the start of video frame k.
func (f *feeder) offset(k int) int {
	return int(math.Round(float64(k) * float64(f.nativeRate) / f.fps))
}

// step delivers one video frame of audio and reports whether any audio
// remains.
func (f *feeder) step() bool {
	n := len(f.frames)
	if n == 0 {
		return false
	}

	start, end := f.offset(f.frame), f.offset(f.frame+1)
	f.frame++

	if !f.loop {
		if start >= n {
			return false
		}
		f.out.PushSamples(f.frames[start:min(end, n)], f.volume)
		return end < n
	}

	for start < end {
		i := start % n
		j := min(n, i+end-start)
		f.out.PushSamples(f.frames[i:j], f.volume)
		start += j - i
	}
	return true
}

// run calls step once per video frame until the clip ends or ctx is done.
func (f *feeder) run(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / f.fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !f.step() {
				return
			}
		}
	}
}
