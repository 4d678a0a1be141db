// Command granular-play plays an audio file through the mixer in real time.
// A producer goroutine pushes one video frame of audio per tick while the
// audio device pulls from the mixer on its own clock.
//
// Usage:
//
//	granular-play input.ogg
//	granular-play -fps 50 -speed 1.25 -v input.wav
//	granular-play -loop input.mp3                 # until interrupted
//
// Build with -tags headless to replace the audio device with a timer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	mixer "github.com/tphakala/go-audio-mixer"
	"github.com/tphakala/go-audio-mixer/internal/source"
)

const (
	defaultOutputRate = 48000
	defaultFPS        = 60.0
	minRequiredArgs   = 1

	// Time the device keeps playing after the last burst
	drainTime = 250 * time.Millisecond

	statsPeriod = time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outputRate := flag.Int("rate", defaultOutputRate, "Device output rate in Hz")
	fps := flag.Float64("fps", defaultFPS, "Emulator frame rate")
	volume := flag.Float64("volume", 1.0, "Producer volume")
	speed := flag.Float64("speed", 1.0, "Emulation speed factor")
	loop := flag.Bool("loop", false, "Loop the input until interrupted")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		return fmt.Errorf("insufficient arguments")
	}
	if *fps <= 0 || *outputRate <= 0 {
		return fmt.Errorf("rate and fps must be positive")
	}

	clip, err := source.Open(args[0])
	if err != nil {
		return err
	}
	if *verbose {
		log.Printf("Input: %s (%s, %d Hz, %.2fs)", args[0], clip.Format, clip.SampleRate, clip.Duration())
	}

	running := mixer.NewRunFlag(true)
	cfg := mixer.DefaultConfig(uint32(clip.SampleRate))
	cfg.RunState = running
	if *verbose {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	m, err := mixer.New(cfg)
	if err != nil {
		return err
	}
	m.SetEmulationSpeed(*speed)

	producer, err := m.Producer()
	if err != nil {
		return err
	}
	consumer, err := m.Consumer()
	if err != nil {
		return err
	}

	frameRate := float32(*fps)
	reader := mixer.NewReader(consumer, uint32(*outputRate), func() float32 { return frameRate })
	dev, err := newDevice(*outputRate, reader)
	if err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	defer func() {
		if err := dev.Close(); err != nil {
			log.Printf("closing audio device: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f := newFeeder(producer, clip.Frames, clip.SampleRate, *fps, float32(*volume), *loop)
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.run(ctx)
	}()

	dev.Start()

	statsTicker := time.NewTicker(statsPeriod)
	defer statsTicker.Stop()
wait:
	for {
		select {
		case <-done:
			break wait
		case <-statsTicker.C:
			if *verbose {
				log.Printf("Stats: %s", m.GetStats())
			}
		}
	}

	// Let the queued audio play out, then fade to silence instead of
	// replaying the tail.
	running.Set(false)
	if ctx.Err() == nil {
		time.Sleep(drainTime)
	}

	fmt.Printf("Played %d video frames of %s\n", f.frame, args[0])
	fmt.Printf("  %s\n", m.GetStats())
	return nil
}
