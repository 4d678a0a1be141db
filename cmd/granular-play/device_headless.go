//go:build headless

package main

import (
	"io"
	"sync"
	"time"
)

// Frames pulled per simulated callback.
const headlessCallbackFrames = 512

// device pulls from the mixer on a timer and discards the audio.
type device struct {
	r      io.Reader
	period time.Duration
	buf    []byte

	stop chan struct{}
	wg   sync.WaitGroup
}

func newDevice(sampleRate int, r io.Reader) (*device, error) {
	return &device{
		r:      r,
		period: time.Duration(float64(time.Second) * headlessCallbackFrames / float64(sampleRate)),
		buf:    make([]byte, headlessCallbackFrames*4),
		stop:   make(chan struct{}),
	}, nil
}

func (d *device) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(d.period)
		defer ticker.Stop()
		for {
			select {
			case <-d.stop:
				return
			case <-ticker.C:
				_, _ = d.r.Read(d.buf)
			}
		}
	}()
}

func (d *device) Close() error {
	close(d.stop)
	d.wg.Wait()
	return nil
}
