package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursor_UnityStep(t *testing.T) {
	const size = 16
	c := newCursor(size)

	var fronts, backs []int
	for n := 1; n <= 2*size; n++ {
		f, b := c.advance(fracOne)
		if f {
			fronts = append(fronts, n)
		}
		if b {
			backs = append(backs, n)
		}
	}

	assert.Equal(t, []int{size, 2 * size}, fronts)
	assert.Equal(t, []int{size / 2, size + size/2}, backs)
	assert.Equal(t, 0, c.index)
	assert.Zero(t, c.frac)
}

func TestCursor_FractionalStep(t *testing.T) {
	const size = 256
	c := newCursor(size)
	step := uint64(fracOne * 2 / 3)

	steps := 3 * size * 10
	var fronts, backs int
	for range steps {
		f, b := c.advance(step)
		assert.False(t, f && b, "both positions wrapped on one step")
		if f {
			fronts++
		}
		if b {
			backs++
		}
	}

	// 3*size*10 steps of 2/3 sample cover 20 granules.
	assert.InDelta(t, 20, fronts, 1)
	assert.InDelta(t, 20, backs, 1)
	assert.Less(t, c.index, size)
}

func TestCursor_Interp(t *testing.T) {
	c := newCursor(16)
	c.frac = fracOne / 2
	assert.InDelta(t, 0.5, c.interp(), 1e-9)

	// Bits below the interpolation resolution are ignored.
	c.frac = 1<<interpShift - 1
	assert.Zero(t, c.interp())

	c.frac = fracMask
	assert.InDelta(t, 1-interpScale, c.interp(), 1e-9)
}

func TestCursor_Reset(t *testing.T) {
	c := newCursor(16)
	c.advance(5*fracOne + 123)
	c.reset()
	assert.Equal(t, 0, c.index)
	assert.Zero(t, c.frac)
	assert.Equal(t, 16, c.size)
}
