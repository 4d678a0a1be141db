package mixer

// Producer is the emulation side of a Mixer. At most one exists per Mixer,
// and it is the only way to feed audio in.
type Producer struct {
	m *Mixer
}

// Producer claims the producer side. It fails with ErrHandleClaimed if it
// was already claimed.
func (m *Mixer) Producer() (*Producer, error) {
	if !m.producerClaimed.CompareAndSwap(false, true) {
		return nil, ErrHandleClaimed
	}
	return &Producer{m: m}, nil
}

// PushSamples appends frames from the emulation core, scaled by volume.
// It never blocks and never allocates; when the queue is full the newest
// audio is dropped.
func (p *Producer) PushSamples(samples []RawFrame, volume float32) {
	p.m.pushSamples(samples, volume)
}

// Consumer is the device side of a Mixer. At most one exists per Mixer,
// and it is the only way to pull audio out.
type Consumer struct {
	m *Mixer
}

// Consumer claims the consumer side. It fails with ErrHandleClaimed if it
// was already claimed.
func (m *Mixer) Consumer() (*Consumer, error) {
	if !m.consumerClaimed.CompareAndSwap(false, true) {
		return nil, ErrHandleClaimed
	}
	return &Consumer{m: m}, nil
}

// Mix fills out with frames at outputRate Hz. frameRateHz is the host's
// current frame rate, used to size the queue; pass 0 if unknown. Mix always
// fills the whole buffer.
func (c *Consumer) Mix(out []OutputFrame, outputRate uint32, frameRateHz float32) {
	c.m.mix(out, outputRate, frameRateHz)
}
