// Package animator implements the stateful oscillator bank that modulates
// beam parameters: Animator and ClipModulator.
//
// Animators are data only: they hold no
// pointer back to the beam they modulate. The owning beam's ClipModulator
// evaluates the bank against the beam's own parameter set every tick.
package animator

import (
	"github.com/generalelectrix/tunnels/internal/param"
	"github.com/generalelectrix/tunnels/internal/waveform"
)

// MixRule controls how a ClipModulator combines multiple animators that
// target the same parameter. Sum is the baseline rule; pick-max and
// multiply are offered as an explicit per-modulator knob for
// installations that want different layering semantics (see DESIGN.md).
type MixRule int

const (
	MixSum MixRule = iota
	MixPickMax
	MixMultiply
)

// Animator is a parameterized waveform generator. It owns no pointer to
// whatever it modulates — only the target selector, set by the owning
// ClipModulator's caller (the control plane).
type Animator struct {
	WaveformKind waveform.Kind
	Speed        float64 // phase-units per beat, signed
	Weight       float64 // [0, 1]
	Smoothing    float64 // [0, 0.5]
	DutyCycle    float64 // [0, 1]
	Pulse        bool
	Target       param.ID

	// ClockLocked selects whether Speed is interpreted against the
	// clock's master phase (cycles-per-beat) or accumulated independently
	// each tick (free-running). Free-run state lives in phaseAcc, the only
	// state an Animator keeps beyond its configuration.
	ClockLocked bool
	phaseAcc    float64
}

// NewAnimator returns an Animator with the identity defaults: zero weight (so it
// contributes nothing until configured), full duty cycle, no smoothing.
func NewAnimator() Animator {
	return Animator{
		WaveformKind: waveform.Sine,
		Weight:       0,
		DutyCycle:    1,
		ClockLocked:  true,
	}
}

// Eval advances free-run phase state (if applicable) by dt and returns this
// animator's contribution for the tick: weight * f(phase, ...). A
// zero-weight or untargeted animator always contributes exactly 0,
// regardless of waveform/smoothing/duty-cycle.
func (a *Animator) Eval(clockPhase float64, dt float64) float64 {
	if a.Target == param.None || a.Weight == 0 {
		if !a.ClockLocked {
			a.advanceFreeRun(dt)
		}
		return 0
	}

	var phase float64
	if a.ClockLocked {
		phase = a.Speed * clockPhase
	} else {
		a.advanceFreeRun(dt)
		phase = a.phaseAcc
	}

	return a.Weight * waveform.Eval(a.WaveformKind, phase, a.Smoothing, a.DutyCycle, a.Pulse)
}

func (a *Animator) advanceFreeRun(dt float64) {
	a.phaseAcc = waveform.Wrap(a.phaseAcc + a.Speed*dt)
}

// NudgePhase offsets the free-run phase accumulator by delta phase units.
// A no-op for clock-locked animators, which own no independent phase.
func (a *Animator) NudgePhase(delta float64) {
	if a.ClockLocked {
		return
	}
	a.phaseAcc = waveform.Wrap(a.phaseAcc + delta)
}

// ResetPhase zeros the free-run phase accumulator.
func (a *Animator) ResetPhase() {
	a.phaseAcc = 0
}

// PhaseAccForTest exposes the free-run phase accumulator for tests in
// other packages; production code has no business reading it directly.
func (a *Animator) PhaseAccForTest() float64 {
	return a.phaseAcc
}

// ClipModulator holds a fixed-size bank of Animators bound to one beam. Its
// evaluation returns a modulation table keyed by parameter, with per-target
// mixing of animators that share a target.
type ClipModulator struct {
	Bank []Animator
	Rule MixRule
}

// New returns a ClipModulator with n identity (zero-weight, untargeted)
// animators — n is fixed for the lifetime of the owning beam class.
func New(n int) *ClipModulator {
	bank := make([]Animator, n)
	for i := range bank {
		bank[i] = animatorNew()
	}
	return &ClipModulator{Bank: bank, Rule: MixSum}
}

func animatorNew() Animator { return NewAnimator() }

// Evaluate advances every animator in the bank by dt and returns the
// modulation table: parameter id -> combined modulation value. An
// untargeted or zero-weight animator contributes nothing and is skipped
// entirely (it never appears as a key), so an all-zero-weight bank yields
// an empty table — identity modulation.
func (c *ClipModulator) Evaluate(clockPhase float64, dt float64) map[param.ID]float64 {
	table := make(map[param.ID]float64)
	counts := make(map[param.ID]int)

	for i := range c.Bank {
		a := &c.Bank[i]
		v := a.Eval(clockPhase, dt)
		if a.Target == param.None || a.Weight == 0 {
			continue
		}
		counts[a.Target]++
		switch c.Rule {
		case MixPickMax:
			if cur, ok := table[a.Target]; !ok || absf(v) > absf(cur) {
				table[a.Target] = v
			}
		case MixMultiply:
			if cur, ok := table[a.Target]; ok {
				table[a.Target] = cur * v
			} else {
				table[a.Target] = v
			}
		default: // MixSum
			table[a.Target] += v
		}
	}
	return table
}

func absf(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// SetTarget, SetSpeed, etc. are the operators the control plane uses to
// mutate a single animator slot.

func (c *ClipModulator) SetTarget(slot int, id param.ID) {
	if slot < 0 || slot >= len(c.Bank) {
		return
	}
	c.Bank[slot].Target = id
}

func (c *ClipModulator) SetSpeed(slot int, speed float64) {
	if slot < 0 || slot >= len(c.Bank) {
		return
	}
	c.Bank[slot].Speed = speed
}

func (c *ClipModulator) SetWeight(slot int, weight float64) {
	if slot < 0 || slot >= len(c.Bank) {
		return
	}
	if weight < 0 {
		weight = 0
	} else if weight > 1 {
		weight = 1
	}
	c.Bank[slot].Weight = weight
}

func (c *ClipModulator) SetWaveform(slot int, kind waveform.Kind) {
	if slot < 0 || slot >= len(c.Bank) {
		return
	}
	c.Bank[slot].WaveformKind = kind
}

func (c *ClipModulator) SetSmoothing(slot int, smoothing float64) {
	if slot < 0 || slot >= len(c.Bank) {
		return
	}
	if smoothing < 0 {
		smoothing = 0
	} else if smoothing > 0.5 {
		smoothing = 0.5
	}
	c.Bank[slot].Smoothing = smoothing
}

func (c *ClipModulator) SetDutyCycle(slot int, duty float64) {
	if slot < 0 || slot >= len(c.Bank) {
		return
	}
	if duty < 0 {
		duty = 0
	} else if duty > 1 {
		duty = 1
	}
	c.Bank[slot].DutyCycle = duty
}

func (c *ClipModulator) SetPulse(slot int, pulse bool) {
	if slot < 0 || slot >= len(c.Bank) {
		return
	}
	c.Bank[slot].Pulse = pulse
}

func (c *ClipModulator) NudgePhase(slot int, delta float64) {
	if slot < 0 || slot >= len(c.Bank) {
		return
	}
	c.Bank[slot].NudgePhase(delta)
}

func (c *ClipModulator) ResetPhase(slot int) {
	if slot < 0 || slot >= len(c.Bank) {
		return
	}
	c.Bank[slot].ResetPhase()
}
