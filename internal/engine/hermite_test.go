package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// hermiteReference evaluates the 6-point, 3rd-order Hermite polynomial
// directly from its difference form.
func hermiteReference(y *[hermiteTaps]float32, x float32) float32 {
	ym2, ym1, y0, y1, y2, y3 := y[0], y[1], y[2], y[3], y[4], y[5]
	c0 := y0
	c1 := 1.0/12*(ym2-y2) + 2.0/3*(y1-ym1)
	c2 := 5.0/4*ym1 - 7.0/3*y0 + 5.0/3*y1 - 1.0/2*y2 + 1.0/12*y3 - 1.0/6*ym2
	c3 := 1.0/12*(ym2-y3) + 7.0/12*(y2-ym1) + 4.0/3*(y0-y1)
	return ((c3*x+c2)*x+c1)*x + c0
}

func TestHermite6_MatchesReference(t *testing.T) {
	h := NewHermite6()
	rng := rand.New(rand.NewSource(7))

	for range 200 {
		var taps [hermiteTaps]float32
		for i := range taps {
			taps[i] = float32(rng.Float64()*2-1) * 30000
		}
		x := float32(rng.Intn(1<<interpBits)) * interpScale

		want := hermiteReference(&taps, x)
		got := h.Interpolate(&taps, x)
		assert.InDelta(t, want, got, 0.5, "x=%f taps=%v", x, taps)
	}
}

func TestHermite6_ExactAtSamplePoint(t *testing.T) {
	h := NewHermite6()
	taps := [hermiteTaps]float32{-3000, 12000, 1234, -32768, 32767, 5}
	assert.InDelta(t, float32(1234), h.Interpolate(&taps, 0), 1e-3)
}

func TestHermite6_ReproducesLowOrderSignals(t *testing.T) {
	h := NewHermite6()

	tests := []struct {
		name string
		taps [hermiteTaps]float32
		want func(x float32) float32
	}{
		{
			name: "constant",
			taps: [hermiteTaps]float32{1000, 1000, 1000, 1000, 1000, 1000},
			want: func(float32) float32 { return 1000 },
		},
		{
			name: "ramp",
			taps: [hermiteTaps]float32{-200, -100, 0, 100, 200, 300},
			want: func(x float32) float32 { return 100 * x },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k := range 1 << interpBits {
				x := float32(k) * interpScale
				assert.InDelta(t, tt.want(x), h.Interpolate(&tt.taps, x), 1e-2, "x=%f", x)
			}
		})
	}
}

func BenchmarkHermite6_Interpolate(b *testing.B) {
	h := NewHermite6()
	taps := [hermiteTaps]float32{1, 2, 3, 4, 5, 6}
	var sink float32
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sink += h.Interpolate(&taps, 0.5)
	}
	_ = sink
}
