package waveform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var allKinds = []Kind{Sine, Triangle, Square, Sawtooth}

func TestPeriodicity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		kind := allKinds[rapid.IntRange(0, 3).Draw(rt, "kind")]
		phase := rapid.Float64Range(-10, 10).Draw(rt, "phase")
		smoothing := rapid.Float64Range(0, 0.5).Draw(rt, "smoothing")
		duty := rapid.Float64Range(0.01, 1).Draw(rt, "duty")
		pulse := rapid.Bool().Draw(rt, "pulse")

		a := Eval(kind, phase, smoothing, duty, pulse)
		b := Eval(kind, phase+1, smoothing, duty, pulse)
		require.InDelta(rt, a, b, 1e-9)
	})
}

func TestRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		kind := allKinds[rapid.IntRange(0, 3).Draw(rt, "kind")]
		phase := rapid.Float64Range(-10, 10).Draw(rt, "phase")
		smoothing := rapid.Float64Range(0, 0.5).Draw(rt, "smoothing")
		duty := rapid.Float64Range(0, 1).Draw(rt, "duty")
		pulse := rapid.Bool().Draw(rt, "pulse")

		v := Eval(kind, phase, smoothing, duty, pulse)
		if pulse {
			require.GreaterOrEqual(rt, v, -1e-9)
			require.LessOrEqual(rt, v, 1+1e-9)
		} else {
			require.GreaterOrEqual(rt, v, -1-1e-9)
			require.LessOrEqual(rt, v, 1+1e-9)
		}
	})
}

func TestZeroDutyCycleIsAlwaysZero(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		kind := allKinds[rapid.IntRange(0, 3).Draw(rt, "kind")]
		phase := rapid.Float64Range(-10, 10).Draw(rt, "phase")
		pulse := rapid.Bool().Draw(rt, "pulse")

		require.Equal(rt, 0.0, Eval(kind, phase, 0, 0, pulse))
	})
}

func TestBarePlainWaveIsUnchangedByIdentitySmoothingAndDuty(t *testing.T) {
	// f(p, 0, 1, false) matches the canonical bare-wave shape.
	assert.InDelta(t, 0.0, Eval(Sine, 0, 0, 1, false), 1e-9)
	assert.InDelta(t, 1.0, Eval(Sine, 0.25, 0, 1, false), 1e-9)
	assert.InDelta(t, -1.0, Eval(Triangle, 0, 0, 1, false), 1e-9)
	assert.InDelta(t, 1.0, Eval(Triangle, 0.5, 0, 1, false), 1e-9)
	assert.InDelta(t, 1.0, Eval(Square, 0, 0, 1, false), 1e-9)
	assert.InDelta(t, -1.0, Eval(Square, 0.5, 0, 1, false), 1e-9)
}

func TestWrap(t *testing.T) {
	assert.InDelta(t, 0.5, Wrap(1.5), 1e-9)
	assert.InDelta(t, 0.5, Wrap(-0.5), 1e-9)
	assert.InDelta(t, 0.0, Wrap(2.0), 1e-9)
}

func TestSquareSmoothingContinuous(t *testing.T) {
	// With smoothing>0 the transition is gradual, not a hard jump: sampling
	// either side of the 0.5 crossing should differ by less than the hard
	// jump of 2.0.
	s := 0.1
	before := Eval(Square, 0.5-s/2, s, 1, false)
	after := Eval(Square, 0.5+s/2, s, 1, false)
	assert.Less(t, absf(after-before), 2.0)
}

func absf(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
