package mixer

import (
	"encoding/binary"
	"io"
)

// FrameRateFunc returns the host's current frame rate in Hz.
type FrameRateFunc func() float32

// Reader adapts a Consumer to io.Reader, producing interleaved signed 16-bit
// little-endian stereo. It is the shape pull-based audio players such as
// oto expect.
type Reader struct {
	consumer   *Consumer
	outputRate uint32
	frameRate  FrameRateFunc
	frames     []OutputFrame
}

// NewReader returns a Reader mixing at outputRate Hz. frameRate may be nil.
func NewReader(c *Consumer, outputRate uint32, frameRate FrameRateFunc) *Reader {
	return &Reader{
		consumer:   c,
		outputRate: outputRate,
		frameRate:  frameRate,
	}
}

// Read fills p with whole frames. Trailing bytes that do not form a full
// frame are left untouched. A non-empty p shorter than one frame fails with
// io.ErrShortBuffer.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := len(p) / bytesPerFrame
	if n == 0 {
		return 0, io.ErrShortBuffer
	}

	// Grows only when the device asks for a larger block than before.
	if cap(r.frames) < n {
		r.frames = make([]OutputFrame, n)
	}
	frames := r.frames[:n]

	var fps float32
	if r.frameRate != nil {
		fps = r.frameRate()
	}
	r.consumer.Mix(frames, r.outputRate, fps)

	for i, f := range frames {
		o := i * bytesPerFrame
		binary.LittleEndian.PutUint16(p[o:], uint16(f.L))
		binary.LittleEndian.PutUint16(p[o+bytesPerSample:], uint16(f.R))
	}
	return n * bytesPerFrame, nil
}
