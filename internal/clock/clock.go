// Package clock implements the master/auxiliary clock scheduling model:
// a fixed-tick master phase/beat driver plus N independently tap-tempo'd
// auxiliary clocks, following the same single-owned-struct-stepped-once-
// per-tick shape as a typical master-clock scheduler (its own Step/Reset
// rather than a free-running timer).
package clock

import "math"

// wrap folds a phase value into [0, 1).
func wrap(p float64) float64 {
	m := math.Mod(p, 1.0)
	if m < 0 {
		m += 1.0
	}
	return m
}

// TapState is the tap-tempo estimator's state machine:
// cold -> warm (>=2 taps) -> locked (>=4 taps within tolerance).
type TapState int

const (
	TapCold TapState = iota
	TapWarm
	TapLocked
)

const tapWindow = 4 // K=4 sliding window of taps (3 pairwise deltas)

// TapTempoEstimator estimates a beat period from tap timestamps: the
// period is the median of pairwise deltas over a sliding window of the
// last K taps. Once out of the Cold state, a tap arriving more than 2x the
// current estimate after the previous one is not used as a delta: it
// discards the earlier taps and starts a fresh run, leaving the period
// unchanged.
type TapTempoEstimator struct {
	defaultPeriod float64   // seconds, used while Cold
	taps          []float64 // timestamps in seconds, most recent last
	period        float64
	state         TapState
}

// NewTapTempoEstimator returns a cold estimator defaulting to defaultBPM
// until enough taps arrive.
func NewTapTempoEstimator(defaultBPM float64) *TapTempoEstimator {
	return &TapTempoEstimator{
		defaultPeriod: 60.0 / defaultBPM,
		period:        60.0 / defaultBPM,
		state:         TapCold,
	}
}

// Tap records a tap at the given timestamp (seconds, monotonic, caller-
// supplied so tests need no wall clock) and re-estimates the period.
func (e *TapTempoEstimator) Tap(timestamp float64) {
	if len(e.taps) > 0 {
		last := e.taps[len(e.taps)-1]
		delta := timestamp - last
		if e.state != TapCold && delta > 2*e.period {
			// Spurious tap (too slow relative to current estimate):
			// start a fresh run rather than corrupting the estimate.
			e.taps = e.taps[:0]
		}
	}

	e.taps = append(e.taps, timestamp)
	if len(e.taps) > tapWindow {
		e.taps = e.taps[len(e.taps)-tapWindow:]
	}

	if len(e.taps) < 2 {
		return
	}

	deltas := make([]float64, 0, len(e.taps)-1)
	for i := 1; i < len(e.taps); i++ {
		deltas = append(deltas, e.taps[i]-e.taps[i-1])
	}
	e.period = median(deltas)

	switch {
	case len(e.taps) >= tapWindow:
		e.state = TapLocked
	case len(e.taps) >= 2:
		e.state = TapWarm
	}
}

// Period returns the current estimated beat period in seconds.
func (e *TapTempoEstimator) Period() float64 { return e.period }

// State returns the estimator's convergence state.
func (e *TapTempoEstimator) State() TapState { return e.state }

// Reset returns the estimator to its cold, default-BPM state.
func (e *TapTempoEstimator) Reset() {
	e.taps = e.taps[:0]
	e.period = e.defaultPeriod
	e.state = TapCold
}

// SetPeriod overrides the estimator's period directly and marks it
// Locked, without going through Tap. Used to restore a previously
// converged tempo from a persisted snapshot.
func (e *TapTempoEstimator) SetPeriod(period float64) {
	e.period = period
	e.state = TapLocked
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	insertionSort(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// insertionSort avoids pulling in sort.Float64s for a handful of values;
// tapWindow-1 deltas at most (3 when locked), so O(n^2) is irrelevant.
func insertionSort(vals []float64) {
	for i := 1; i < len(vals); i++ {
		v := vals[i]
		j := i - 1
		for j >= 0 && vals[j] > v {
			vals[j+1] = vals[j]
			j--
		}
		vals[j+1] = v
	}
}

// Phase is one clock's continuous position in the beat cycle: phase in [0,1), a monotonic beat counter, and its own
// tap-tempo estimator.
type Phase struct {
	PhaseValue float64 // [0,1)
	BeatNumber uint64

	tempo *TapTempoEstimator
}

func newPhase(defaultBPM float64) Phase {
	return Phase{tempo: NewTapTempoEstimator(defaultBPM)}
}

// Advance steps the phase by dt seconds at the estimator's current period,
// rolling BeatNumber forward on each wrap.
func (p *Phase) Advance(dt float64) {
	if p.tempo.Period() <= 0 {
		return
	}
	delta := dt / p.tempo.Period()
	next := p.PhaseValue + delta
	if next >= 1.0 {
		p.BeatNumber += uint64(math.Floor(next))
	}
	p.PhaseValue = wrap(next)
}

// Tap registers a tap-tempo event at the given timestamp.
func (p *Phase) Tap(timestamp float64) { p.tempo.Tap(timestamp) }

// Nudge resyncs phase to 0 on an explicit "nudge" command.
func (p *Phase) Nudge() { p.PhaseValue = 0 }

// BPM returns the phase's current tempo estimate in beats per minute.
func (p *Phase) BPM() float64 { return 60.0 / p.tempo.Period() }

// SetBPM overrides the phase's tempo directly, marking it Locked. Used to
// restore a tempo from a persisted snapshot rather than re-deriving it
// from taps.
func (p *Phase) SetBPM(bpm float64) {
	if bpm <= 0 {
		return
	}
	p.tempo.SetPeriod(60.0 / bpm)
}

// TapState returns the phase's tap-tempo convergence state.
func (p *Phase) TapState() TapState { return p.tempo.State() }

// AuxClock is one auxiliary clock published by the MasterClock.
type AuxClock struct {
	Phase
	Name string
}

// MasterClock is the ShowClock: the master phase/beat plus
// its fixed tick rate and a set of independently tap-tempo'd aux clocks.
type MasterClock struct {
	TickRateHz float64

	Master Phase
	Aux    []AuxClock
}

// NewMasterClock returns a MasterClock at tickRateHz with numAux auxiliary
// clocks, all defaulting to defaultBPM until tapped.
func NewMasterClock(tickRateHz, defaultBPM float64, numAux int) *MasterClock {
	aux := make([]AuxClock, numAux)
	for i := range aux {
		aux[i] = AuxClock{Phase: newPhase(defaultBPM), Name: ""}
	}
	return &MasterClock{
		TickRateHz: tickRateHz,
		Master:     newPhase(defaultBPM),
		Aux:        aux,
	}
}

// Tick advances the master phase and every aux clock by dt.
func (c *MasterClock) Tick(dt float64) {
	c.Master.Advance(dt)
	for i := range c.Aux {
		c.Aux[i].Advance(dt)
	}
}
