package mixer

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_MatchesMix(t *testing.T) {
	src := tone(RateDAT/2, 440, RateDAT, 12000)

	direct, err := NewDefault(RateDAT)
	require.NoError(t, err)
	direct.pushSamples(src, 1)

	viaReader, err := NewDefault(RateDAT)
	require.NoError(t, err)
	viaReader.pushSamples(src, 1)
	consumer, err := viaReader.Consumer()
	require.NoError(t, err)

	calls := 0
	r := NewReader(consumer, RateDAT, func() float32 {
		calls++
		return 60
	})

	const frames = 2048
	want := make([]OutputFrame, frames)
	direct.mix(want, RateDAT, 60)

	p := make([]byte, frames*bytesPerFrame)
	n, err := io.ReadFull(r, p)
	require.NoError(t, err)
	require.Equal(t, len(p), n)
	assert.Equal(t, 1, calls)

	for i, f := range want {
		l := int16(binary.LittleEndian.Uint16(p[i*bytesPerFrame:]))
		rr := int16(binary.LittleEndian.Uint16(p[i*bytesPerFrame+bytesPerSample:]))
		require.Equal(t, f, OutputFrame{L: l, R: rr}, "frame %d", i)
	}
}

func TestReader_PartialFrames(t *testing.T) {
	m, err := NewDefault(RateDAT)
	require.NoError(t, err)
	c, err := m.Consumer()
	require.NoError(t, err)
	r := NewReader(c, RateDAT, nil)

	for size := 1; size < bytesPerFrame; size++ {
		n, err := r.Read(make([]byte, size))
		require.ErrorIs(t, err, io.ErrShortBuffer, "size %d", size)
		assert.Zero(t, n)
	}

	n, err := r.Read(nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	p := make([]byte, 3*bytesPerFrame+2)
	for i := range p {
		p[i] = 0xAA
	}
	n, err = r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 3*bytesPerFrame, n)
	assert.Equal(t, []byte{0xAA, 0xAA}, p[n:], "trailing bytes are untouched")
}

func TestReader_ReusesBuffer(t *testing.T) {
	m, err := NewDefault(RateDAT)
	require.NoError(t, err)
	c, err := m.Consumer()
	require.NoError(t, err)
	r := NewReader(c, RateDAT, nil)

	_, err = r.Read(make([]byte, 512*bytesPerFrame))
	require.NoError(t, err)
	first := &r.frames[0]

	_, err = r.Read(make([]byte, 256*bytesPerFrame))
	require.NoError(t, err)
	assert.Same(t, first, &r.frames[0])
}
