package granule

import (
	"log/slog"
	"sync/atomic"
)

// Queue is a fixed-capacity single-producer/single-consumer ring of granules.
//
// head and tail are unbounded counters; the slot for a counter c is
// c & (capacity-1), and occupancy is head - tail in wrap-around uint64
// arithmetic. The reader trails the newest granule by one: the granule at
// head-1 is only consumed once another one is published behind it.
//
// Ownership:
//   - Reserve, Publish, Enqueue: producer goroutine only. The producer is the
//     only writer of head and of the slot at head.
//   - Dequeue: consumer goroutine only. The consumer is the only writer of
//     tail and reads only slots behind head.
//   - Target, SetTarget, Occupancy, Looping, Counters: any goroutine.
//   - Reset: only while both sides are quiescent.
//
// Go's sync/atomic operations are sequentially consistent, so the store of
// head after filling a slot happens-before any consumer load that observes
// the new head, and symmetrically for tail.
type Queue struct {
	head atomic.Uint64
	_    [56]byte
	tail atomic.Uint64
	_    [56]byte

	// Set while the consumer is replaying old granules to cover an underrun.
	looping atomic.Bool

	// Target occupancy in granules. Relaxed: a value one callback stale is fine.
	target atomic.Uint64

	dropped   atomic.Uint64
	overruns  atomic.Uint64
	underruns atomic.Uint64

	slots       []Pair
	granuleSize int
	capacity    uint64
	mask        uint64

	// Producer-only: true while consecutive granules are being dropped.
	dropping bool
	logger   *slog.Logger
}

// Counters is a snapshot of the queue's event counters.
type Counters struct {
	Dropped   uint64
	Overruns  uint64
	Underruns uint64
}

// NewQueue allocates a queue of capacity granules of granuleSize pairs each.
// Both sizes must be powers of two; the caller validates them.
func NewQueue(capacity, granuleSize int, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	q := &Queue{
		slots:       make([]Pair, capacity*granuleSize),
		granuleSize: granuleSize,
		capacity:    uint64(capacity),
		mask:        uint64(capacity - 1),
		logger:      logger,
	}
	q.target.Store(uint64(capacity - 1))
	return q
}

// Capacity returns the number of slots.
func (q *Queue) Capacity() int {
	return int(q.capacity)
}

// GranuleSize returns the length of every granule in the queue.
func (q *Queue) GranuleSize() int {
	return q.granuleSize
}

func (q *Queue) slot(counter uint64) Granule {
	i := int(counter&q.mask) * q.granuleSize
	return q.slots[i : i+q.granuleSize : i+q.granuleSize]
}

// Reserve returns the slot the next Publish makes visible. It returns false
// when the queue is full; the granule is then counted as dropped and the
// caller must not call Publish.
func (q *Queue) Reserve() (Granule, bool) {
	head := q.head.Load()
	tail := q.tail.Load()

	// Full when head+1 would land on tail's slot.
	if head-tail >= q.capacity-1 {
		q.dropped.Add(1)
		if !q.dropping {
			q.dropping = true
			q.logger.Warn("granule queue full, dropping audio",
				"occupancy", head-tail,
				"capacity", q.capacity)
		}
		return nil, false
	}

	if q.dropping {
		q.dropping = false
		q.logger.Debug("granule queue accepting audio again", "dropped", q.dropped.Load())
	}
	return q.slot(head), true
}

// Publish makes the reserved slot visible to the consumer.
func (q *Queue) Publish() {
	q.head.Store(q.head.Load() + 1)
	// Fresh data is available again.
	q.looping.Store(false)
}

// Enqueue copies g into the queue. It returns false if the queue was full
// and g was dropped.
func (q *Queue) Enqueue(g Granule) bool {
	dst, ok := q.Reserve()
	if !ok {
		return false
	}
	copy(dst, g)
	q.Publish()
	return true
}

// Dequeue copies the next granule into dst.
//
// When the backlog exceeds the target, the reader jumps forward to
// target/2+1 granules behind head. When nothing unread is left, it either
// replays the last max(2, target/2)-1 granules (fillGaps) and raises the
// looping flag, or writes silence into dst and clears the flag.
func (q *Queue) Dequeue(dst Granule, fillGaps bool) {
	target := q.target.Load()
	head := q.head.Load()
	tail := q.tail.Load()

	if head-tail > target {
		tail = head - (target/2 + 1)
		q.overruns.Add(1)
	}

	next := tail + 1
	if head-tail <= 1 {
		if !fillGaps {
			clear(dst)
			q.looping.Store(false)
			return
		}

		// Hand out the newest granule and rewind over the recent past.
		tail = head - 1
		next = head - (max(2, target/2) - 1)
		q.looping.Store(true)
		q.underruns.Add(1)
	}

	copy(dst, q.slot(tail))
	q.tail.Store(next)
}

// Occupancy returns head - tail.
func (q *Queue) Occupancy() uint64 {
	tail := q.tail.Load()
	return q.head.Load() - tail
}

// Target returns the target occupancy in granules.
func (q *Queue) Target() uint64 {
	return q.target.Load()
}

// SetTarget stores the target occupancy in granules.
func (q *Queue) SetTarget(granules uint64) {
	q.target.Store(granules)
}

// Looping reports whether the consumer is replaying old granules.
func (q *Queue) Looping() bool {
	return q.looping.Load()
}

// Counters returns the current event counters.
func (q *Queue) Counters() Counters {
	return Counters{
		Dropped:   q.dropped.Load(),
		Overruns:  q.overruns.Load(),
		Underruns: q.underruns.Load(),
	}
}

// Reset zeroes every slot, cursor and counter without reallocating.
func (q *Queue) Reset() {
	clear(q.slots)
	q.head.Store(0)
	q.tail.Store(0)
	q.looping.Store(false)
	q.target.Store(q.capacity - 1)
	q.dropped.Store(0)
	q.overruns.Store(0)
	q.underruns.Store(0)
	q.dropping = false
}
