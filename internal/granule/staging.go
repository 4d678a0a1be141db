package granule

import "math"

// Staging accumulates producer samples in a rolling buffer of one granule and
// emits a windowed granule into the queue every half granule of new input.
// It is owned by the producer goroutine.
type Staging struct {
	buf    []Pair
	window []float32
	pos    int
	mask   int
	half   int
	queue  *Queue
}

// NewStaging returns an accumulator feeding q. window must have the queue's
// granule size.
func NewStaging(q *Queue, window []float32) *Staging {
	n := q.GranuleSize()
	return &Staging{
		buf:    make([]Pair, n),
		window: window,
		mask:   n - 1,
		half:   n / 2,
		queue:  q,
	}
}

// Push scales each frame by volume, clamps it to 16-bit range and appends
// it to the rolling buffer. It never blocks and never allocates.
func (s *Staging) Push(frames []RawFrame, volume float32) {
	if volume < 0 || math.IsNaN(float64(volume)) {
		volume = 0
	}

	for _, f := range frames {
		s.buf[s.pos] = Pair{
			L: Clamp16(float32(f.L) * volume),
			R: Clamp16(float32(f.R) * volume),
		}
		s.pos = (s.pos + 1) & s.mask

		if s.pos == 0 || s.pos == s.half {
			s.emit()
		}
	}
}

// emit windows the last granule's worth of samples, oldest first, straight
// into the next queue slot.
func (s *Staging) emit() {
	dst, ok := s.queue.Reserve()
	if !ok {
		return
	}

	for i, w := range s.window {
		dst[i] = s.buf[(s.pos+i)&s.mask].Scale(w)
	}
	s.queue.Publish()
}

// Reset clears the rolling buffer.
func (s *Staging) Reset() {
	clear(s.buf)
	s.pos = 0
}
