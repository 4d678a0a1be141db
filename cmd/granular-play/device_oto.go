//go:build !headless

package main

import (
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Device buffer length; short enough that the mixer's own queue dominates
// latency.
const deviceBufferTime = 40 * time.Millisecond

type device struct {
	ctx    *oto.Context
	player *oto.Player
}

func newDevice(sampleRate int, r io.Reader) (*device, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   deviceBufferTime,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	return &device{
		ctx:    ctx,
		player: ctx.NewPlayer(r),
	}, nil
}

func (d *device) Start() {
	d.player.Play()
}

func (d *device) Close() error {
	return d.player.Close()
}
