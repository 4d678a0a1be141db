// Package engine implements the consumer half of the mixer: it pulls
// windowed granules from the queue and resamples the overlap-added stream to
// the device rate with a 6-point Hermite interpolator, fading out while the
// queue has to replay old audio.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/tphakala/go-audio-mixer/internal/granule"
)

// RunState reports whether the emulation core is currently producing audio.
type RunState interface {
	Running() bool
}

// Config holds the engine parameters. The root package validates them.
type Config struct {
	NativeRate       uint32
	GranuleSize      int
	QueueCapacity    int
	MinQueueGranules int
	MaxQueueGranules int

	// Window must have GranuleSize elements whose halves sum to one.
	Window []float32

	FillGaps bool
	RunState RunState
	Logger   *slog.Logger
}

// Snapshot is a point-in-time view of the engine's diagnostics.
type Snapshot struct {
	MinOccupancy      uint64
	MaxOccupancy      uint64
	SmoothedOccupancy float64
	TargetOccupancy   uint64
	Capacity          int
	Fade              float32
	Looping           bool
	Counters          granule.Counters
	SmoothedRequest   float64
	FrameTime         float64
	TargetSamples     float64
}

// noObservation marks the minimum occupancy as unset.
const noObservation = math.MaxUint64

// Engine owns the staging accumulator, the granule queue and the playback
// state. Push belongs to the producer goroutine and Mix to the consumer
// goroutine; each side must be driven by at most one goroutine at a time.
type Engine struct {
	cfg     Config
	queue   *granule.Queue
	staging *granule.Staging
	hermite *Hermite6
	sizer   *Sizer
	logger  *slog.Logger
	maxStep float64

	// Consumer-only playback state
	front, back  granule.Granule
	cur          cursor
	fade         Fade
	tapsL, tapsR [hermiteTaps]float32
	occSmoothed  float64
	occObserved  bool

	speedBits atomic.Uint64
	minOcc    atomic.Uint64
	maxOcc    atomic.Uint64
	occBits   atomic.Uint64
	fadeBits  atomic.Uint32
}

// New allocates an engine. All buffers are sized here; Push and Mix never
// allocate.
func New(cfg Config) (*Engine, error) {
	if !granule.IsPowerOfTwo(cfg.GranuleSize) || cfg.GranuleSize < 2*hermiteTaps {
		return nil, fmt.Errorf("granule size %d must be a power of two of at least %d", cfg.GranuleSize, 2*hermiteTaps)
	}
	if !granule.IsPowerOfTwo(cfg.QueueCapacity) || cfg.QueueCapacity < 4 {
		return nil, fmt.Errorf("queue capacity %d must be a power of two of at least 4", cfg.QueueCapacity)
	}
	if len(cfg.Window) != cfg.GranuleSize {
		return nil, fmt.Errorf("window length %d does not match granule size %d", len(cfg.Window), cfg.GranuleSize)
	}
	if cfg.NativeRate == 0 {
		return nil, fmt.Errorf("native rate must be positive")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	q := granule.NewQueue(cfg.QueueCapacity, cfg.GranuleSize, logger)
	e := &Engine{
		cfg:     cfg,
		queue:   q,
		staging: granule.NewStaging(q, cfg.Window),
		hermite: NewHermite6(),
		sizer:   NewSizer(cfg.NativeRate, cfg.GranuleSize, cfg.QueueCapacity, cfg.MinQueueGranules, cfg.MaxQueueGranules),
		logger:  logger,
		maxStep: float64(cfg.GranuleSize/maxStepDivisor) * fracOne,
		front:   make(granule.Granule, cfg.GranuleSize),
		back:    make(granule.Granule, cfg.GranuleSize),
		cur:     newCursor(cfg.GranuleSize),
	}
	e.speedBits.Store(math.Float64bits(1))
	e.minOcc.Store(noObservation)
	return e, nil
}

// Push feeds producer frames into the staging accumulator.
func (e *Engine) Push(frames []granule.RawFrame, volume float32) {
	e.staging.Push(frames, volume)
}

// SetSpeed sets the emulation speed factor that scales the playback step.
// Non-positive and non-finite values reset it to 1.
func (e *Engine) SetSpeed(speed float64) {
	if !(speed > 0) || math.IsInf(speed, 0) {
		speed = 1
	}
	e.speedBits.Store(math.Float64bits(speed))
}

// Speed returns the emulation speed factor.
func (e *Engine) Speed() float64 {
	return math.Float64frombits(e.speedBits.Load())
}

// Step returns the per-output-sample cursor increment for outputRate, in
// fixed point with fracBits fractional bits, limited to a quarter granule.
func (e *Engine) Step(outputRate uint32) uint64 {
	if outputRate == 0 {
		return 0
	}
	step := math.Round(float64(e.cfg.NativeRate) * e.Speed() / float64(outputRate) * fracOne)
	return uint64(min(step, e.maxStep))
}

// Mix fills out with audio resampled to outputRate. frameRateHz is the host's
// current video frame rate and feeds the queue sizing. Mix always writes
// every frame of out.
func (e *Engine) Mix(out []granule.OutputFrame, outputRate uint32, frameRateHz float32) {
	if len(out) == 0 {
		return
	}
	if outputRate == 0 {
		clear(out)
		return
	}

	e.queue.SetTarget(e.sizer.Update(len(out), frameRateHz))
	e.fade.SetRate(outputRate)
	e.observe(e.queue.Occupancy())

	step := e.Step(outputRate)
	mask := e.cur.mask
	half := e.cur.half

	for n := range out {
		i := e.cur.index
		for t := range hermiteTaps {
			f := e.front[(i+t-hermiteCenter)&mask]
			b := e.back[(i+half+t-hermiteCenter)&mask]
			e.tapsL[t] = f.L + b.L
			e.tapsR[t] = f.R + b.R
		}

		x := e.cur.interp()
		gain := e.fade.Step(e.queue.Looping())
		out[n] = granule.OutputFrame{
			L: toInt16(e.hermite.Interpolate(&e.tapsL, x) * gain),
			R: toInt16(e.hermite.Interpolate(&e.tapsR, x) * gain),
		}

		frontWrapped, backWrapped := e.cur.advance(step)
		if frontWrapped {
			e.dequeue(e.front)
		}
		if backWrapped {
			e.dequeue(e.back)
		}
	}

	e.fadeBits.Store(math.Float32bits(e.fade.Level()))
}

func (e *Engine) dequeue(dst granule.Granule) {
	e.queue.Dequeue(dst, e.fillGaps())
	e.observe(e.queue.Occupancy())
}

func (e *Engine) fillGaps() bool {
	return e.cfg.FillGaps && (e.cfg.RunState == nil || e.cfg.RunState.Running())
}

// observe records an occupancy sample. Consumer side only; the min/max
// updates race benignly with a concurrent Snapshot reset.
func (e *Engine) observe(occ uint64) {
	for {
		old := e.minOcc.Load()
		if occ >= old || e.minOcc.CompareAndSwap(old, occ) {
			break
		}
	}
	for {
		old := e.maxOcc.Load()
		if occ <= old || e.maxOcc.CompareAndSwap(old, occ) {
			break
		}
	}

	if !e.occObserved {
		e.occSmoothed = float64(occ)
		e.occObserved = true
	} else {
		e.occSmoothed += occupancySmoothing * (float64(occ) - e.occSmoothed)
	}
	e.occBits.Store(math.Float64bits(e.occSmoothed))
}

// Snapshot returns the current diagnostics. With resetPeaks the min/max
// occupancy window restarts.
func (e *Engine) Snapshot(resetPeaks bool) Snapshot {
	var lo, hi uint64
	if resetPeaks {
		lo = e.minOcc.Swap(noObservation)
		hi = e.maxOcc.Swap(0)
	} else {
		lo = e.minOcc.Load()
		hi = e.maxOcc.Load()
	}

	occ := e.queue.Occupancy()
	if lo == noObservation {
		lo, hi = occ, occ
	}

	return Snapshot{
		MinOccupancy:      lo,
		MaxOccupancy:      hi,
		SmoothedOccupancy: math.Float64frombits(e.occBits.Load()),
		TargetOccupancy:   e.queue.Target(),
		Capacity:          e.queue.Capacity(),
		Fade:              math.Float32frombits(e.fadeBits.Load()),
		Looping:           e.queue.Looping(),
		Counters:          e.queue.Counters(),
		SmoothedRequest:   e.sizer.SmoothedRequest(),
		FrameTime:         e.sizer.FrameTime(),
		TargetSamples:     e.sizer.TargetSamples(),
	}
}

// Clear returns the engine to its freshly constructed state without
// reallocating. Neither Push nor Mix may run concurrently with it.
func (e *Engine) Clear() {
	e.queue.Reset()
	e.staging.Reset()
	clear(e.front)
	clear(e.back)
	e.cur.reset()
	e.fade.Reset()
	e.sizer.Reset()

	e.occSmoothed = 0
	e.occObserved = false
	e.minOcc.Store(noObservation)
	e.maxOcc.Store(0)
	e.occBits.Store(0)
	e.fadeBits.Store(0)

	e.logger.Debug("mixer state cleared")
}

// Queue exposes the granule queue for inspection.
func (e *Engine) Queue() *granule.Queue {
	return e.queue
}

func toInt16(v float32) int16 {
	return int16(math.Round(float64(granule.Clamp16(v))))
}
