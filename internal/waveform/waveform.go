// Package waveform implements the pure phase-to-value generator functions
// that drive every animator in the show. Every function here is stateless
// and reentrant: no allocation, no locking, safe to call from the tick
// thread millions of times a second.
package waveform

import "math"

// Kind selects which periodic function an Animator samples.
type Kind int

const (
	Sine Kind = iota
	Triangle
	Square
	Sawtooth
)

// Wrap folds a phase value into [0, 1).
func Wrap(phase float64) float64 {
	p := math.Mod(phase, 1.0)
	if p < 0 {
		p += 1.0
	}
	return p
}

// clampSmoothing keeps smoothing within [0, 0.5], treating 0 as "no
// smoothing".
func clampSmoothing(smoothing float64) float64 {
	if smoothing < 0 {
		return 0
	}
	if smoothing > 0.5 {
		return 0.5
	}
	return smoothing
}

// Eval samples the waveform of the given kind at phase (taken mod 1),
// gated by dutyCycle and optionally remapped to a unipolar pulse. Returns
// a value in [-1, 1] normally, or [0, 1] when pulse is true.
func Eval(kind Kind, phase float64, smoothing float64, dutyCycle float64, pulse bool) float64 {
	p := Wrap(phase)
	smoothing = clampSmoothing(smoothing)

	if dutyCycle <= 0 || p > dutyCycle {
		return 0
	}
	pActive := p / dutyCycle

	switch kind {
	case Sine:
		return evalSine(pActive, pulse)
	case Triangle:
		return evalTriangle(pActive, pulse)
	case Square:
		return evalSquare(pActive, smoothing, pulse)
	case Sawtooth:
		return evalSawtooth(pActive, smoothing, pulse)
	default:
		return 0
	}
}

func evalSine(p float64, pulse bool) float64 {
	if pulse {
		return (math.Sin(2*math.Pi*(p-0.25)) + 1) / 2
	}
	return math.Sin(2 * math.Pi * p)
}

// evalTriangleBipolar returns the bipolar triangle with zero crossings at
// 0.25 and 0.75, peak +1 at 0.25->0.5 envelope midpoint... concretely:
// rises from -1 at p=0 to +1 at p=0.5, falls back to -1 at p=1.
func evalTriangleBipolar(p float64) float64 {
	// Standard symmetric triangle: 4*|p-0.5|-1 inverted to match the
	// zero-crossing contract (0 at 0.25 and 0.75, peak at 0.5, trough at 0).
	if p < 0.5 {
		return 4*p - 1
	}
	return 3 - 4*p
}

func evalTriangle(p float64, pulse bool) float64 {
	bip := evalTriangleBipolar(p)
	if pulse {
		return (bip + 1) / 2
	}
	return bip
}

func evalSquare(p float64, smoothing float64, pulse bool) float64 {
	var v float64
	if smoothing <= 0 {
		if p < 0.5 {
			v = 1
		} else {
			v = -1
		}
	} else {
		v = rampedSquare(p, smoothing)
	}
	if pulse {
		return (v + 1) / 2
	}
	return v
}

// rampedSquare produces a hard square wave with linear ramps of half-width
// `smoothing` phase units centered on the 0, 0.5, and 1(=0) crossings.
func rampedSquare(p float64, smoothing float64) float64 {
	switch {
	case p < smoothing:
		// ramp from -1 (at p=0, continuing from the p=1 edge) up to +1
		return lerp(-1, 1, (p+smoothing)/(2*smoothing))
	case p < 0.5-smoothing:
		return 1
	case p < 0.5+smoothing:
		return lerp(1, -1, (p-(0.5-smoothing))/(2*smoothing))
	case p < 1-smoothing:
		return -1
	default:
		return lerp(-1, 1, (p-(1-smoothing))/(2*smoothing))
	}
}

func evalSawtooth(p float64, smoothing float64, pulse bool) float64 {
	var v float64
	if smoothing <= 0 {
		// Rising ramp over [0, 0.5) from 0 to 1, mirrored below zero over
		// [0.5, 1) rising from -1 back to 0 — the single discontinuity sits
		// at 0.5.
		if p < 0.5 {
			v = 2 * p
		} else {
			v = 2*p - 2
		}
	} else {
		v = rampedSawtooth(p, smoothing)
	}
	if pulse {
		return (v + 1) / 2
	}
	return v
}

// rampedSawtooth rounds the discontinuity at 0.5 over a half-width of
// `smoothing` phase units, linearly interpolating through the jump.
func rampedSawtooth(p float64, smoothing float64) float64 {
	raw := 2 * p
	if p >= 0.5 {
		raw = 2*p - 2
	}
	lo, hi := 0.5-smoothing, 0.5+smoothing
	if p < lo || p >= hi {
		return raw
	}
	// Blend linearly between the pre-jump and post-jump values.
	before := 2 * lo
	after := 2*hi - 2
	return lerp(before, after, (p-lo)/(hi-lo))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
