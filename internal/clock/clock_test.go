package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColdEstimatorUsesDefaultBPM(t *testing.T) {
	e := NewTapTempoEstimator(120)
	assert.Equal(t, TapCold, e.State())
	assert.InDelta(t, 0.5, e.Period(), 1e-9)
}

func TestTwoTapsGoWarm(t *testing.T) {
	e := NewTapTempoEstimator(120)
	e.Tap(0.0)
	e.Tap(0.5)
	assert.Equal(t, TapWarm, e.State())
	assert.InDelta(t, 0.5, e.Period(), 1e-9)
}

func TestFourTapsLockAndConvergeToTruePeriod(t *testing.T) {
	e := NewTapTempoEstimator(60)
	truePeriod := 0.5
	for i := 0; i < 4; i++ {
		e.Tap(float64(i) * truePeriod)
	}
	assert.Equal(t, TapLocked, e.State())
	assert.InDelta(t, truePeriod, e.Period(), 1e-9)
}

func TestConvergesWithJitterViaMedian(t *testing.T) {
	e := NewTapTempoEstimator(60)
	// true period 0.5s with jitter on individual deltas; median should
	// reject the single outlier delta.
	e.Tap(0.0)
	e.Tap(0.52)
	e.Tap(1.01)
	e.Tap(1.49)
	assert.InDelta(t, 0.49, e.Period(), 0.05)
}

func TestSpuriousSlowTapDoesNotCorruptEstimate(t *testing.T) {
	e := NewTapTempoEstimator(60)
	e.Tap(0.0)
	e.Tap(0.5)
	e.Tap(1.0)
	e.Tap(1.5)
	require.Equal(t, TapLocked, e.State())
	priorPeriod := e.Period()

	// A tap far later than 2x the current estimate starts a fresh run
	// rather than corrupting the locked estimate with a bogus delta.
	e.Tap(1.5 + 5.0)
	assert.InDelta(t, priorPeriod, e.Period(), 1e-9)
}

func TestResetReturnsToCold(t *testing.T) {
	e := NewTapTempoEstimator(120)
	e.Tap(0)
	e.Tap(0.5)
	e.Reset()
	assert.Equal(t, TapCold, e.State())
	assert.InDelta(t, 0.5, e.Period(), 1e-9)
}

func TestPhaseAdvanceWrapsAndIncrementsBeatNumber(t *testing.T) {
	p := newPhase(60) // period 1s
	p.Advance(0.5)
	assert.InDelta(t, 0.5, p.PhaseValue, 1e-9)
	assert.Equal(t, uint64(0), p.BeatNumber)

	p.Advance(0.6)
	assert.InDelta(t, 0.1, p.PhaseValue, 1e-9)
	assert.Equal(t, uint64(1), p.BeatNumber)
}

func TestNudgeResetsPhaseToZero(t *testing.T) {
	p := newPhase(60)
	p.Advance(0.3)
	p.Nudge()
	assert.Equal(t, 0.0, p.PhaseValue)
}

func TestMasterClockAdvancesMasterAndAllAux(t *testing.T) {
	mc := NewMasterClock(60, 120, 2)
	mc.Tick(0.1)
	assert.Greater(t, mc.Master.PhaseValue, 0.0)
	for i := range mc.Aux {
		assert.Greater(t, mc.Aux[i].PhaseValue, 0.0)
	}
}

func TestAuxClocksIndependentTapTempo(t *testing.T) {
	mc := NewMasterClock(60, 120, 1)
	mc.Aux[0].Tap(0.0)
	mc.Aux[0].Tap(1.0) // aux tapped at 60 BPM
	assert.InDelta(t, 60.0, mc.Aux[0].BPM(), 1e-6)
	assert.InDelta(t, 120.0, mc.Master.BPM(), 1e-6, "master unaffected by aux taps")
}
