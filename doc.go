// Package mixer is a real-time audio resampler and mixer for emulators.
//
// An emulation loop produces audio at the guest machine's native rate, in
// irregular bursts tied to video frames. An audio device pulls audio at its
// own rate from a callback. The mixer sits between them, never blocks either
// side, and absorbs the timing mismatch.
//
// # Quick Start
//
//	m, err := mixer.NewDefault(mixer.RateSNES)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	producer, _ := m.Producer()
//	consumer, _ := m.Consumer()
//
//	// Emulation goroutine, once per video frame:
//	producer.PushSamples(frames, 1.0)
//
//	// Audio callback goroutine:
//	consumer.Mix(out, 48000, 60)
//
// For pull-based players, [NewReader] wraps the consumer side in an
// io.Reader producing signed 16-bit little-endian stereo.
//
// # Architecture
//
//	PushSamples -> [Staging] -> [Granule Queue] -> [Resampler] -> Mix
//	               windowed       lock-free SPSC     6-tap Hermite
//	               granules                          + fade envelope
//
// Incoming frames are clamped and collected into granules of GranuleSize
// frames, tapered by a window whose overlapping halves sum to one. A new
// granule is cut every half granule, so consecutive granules overlap by 50%
// and summing them reconstructs the input.
//
// The queue holds granules between the two goroutines. Its target occupancy
// follows the callback size and the host frame time. When the backlog grows
// past the target the reader skips ahead (overrun). When it runs dry and
// [Config.FillAudioGaps] is set, the reader replays the last few granules
// while the output fades out, and fades back in once new audio arrives
// (underrun).
//
// The resampler reads two granules half a granule apart, sums them, and
// interpolates with a 6-point Hermite polynomial at a fixed-point position
// advancing by NativeRate/outputRate per output frame, scaled by the
// emulation speed.
//
// # Thread Safety
//
// Audio goes in through [Producer.PushSamples] and out through
// [Consumer.Mix]. [Mixer.Producer] and [Mixer.Consumer] hand out each side
// at most once, so one goroutine owns each; the two may run concurrently. [Mixer.GetStats] and
// [Mixer.SetEmulationSpeed] are safe from any goroutine. [Mixer.Clear]
// requires both sides to be idle.
package mixer
