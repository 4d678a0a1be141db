package engine

// cursor is the playback position within the front granule: an integer
// sample index and a fracBits-bit fraction. The back granule is read at the
// same position shifted by half a granule.
type cursor struct {
	index int
	frac  uint64
	size  int
	half  int
	mask  int
}

func newCursor(granuleSize int) cursor {
	return cursor{
		size: granuleSize,
		half: granuleSize / 2,
		mask: granuleSize - 1,
	}
}

// interp returns the interpolation point selected by the top interpBits of
// the fraction.
func (c *cursor) interp() float32 {
	return float32(c.frac>>interpShift) * interpScale
}

// advance moves the cursor by step (fixed point, fracBits fractional bits)
// and reports whether the front position wrapped past the end of its
// granule and whether the back position did. step must be below half a
// granule, so at most one of the two wraps per call.
func (c *cursor) advance(step uint64) (frontWrapped, backWrapped bool) {
	total := c.frac + step
	prev := c.index
	next := prev + int(total>>fracBits)
	c.frac = total & fracMask

	frontWrapped = next >= c.size
	backWrapped = prev < c.half && next >= c.half
	c.index = next & c.mask
	return frontWrapped, backWrapped
}

func (c *cursor) reset() {
	c.index = 0
	c.frac = 0
}
