package beam

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generalelectrix/tunnels/internal/param"
	"github.com/generalelectrix/tunnels/internal/waveform"
)

func TestStaticTunnelEmitsExactSegments(t *testing.T) {
	tn := NewTunnel()
	tn.Segments = 6
	tn.Thickness = 0.5
	tn.ColCenter = 0.0
	tn.Size = 0.25
	tn.AspectRatio = 1.0

	tn.Tick(1.0/60, 0)
	cmds := tn.Draw(0)
	require.Len(t, cmds, 6)

	for k, cmd := range cmds {
		require.NotNil(t, cmd.Arc)
		assert.InDelta(t, float64(k)/6.0, cmd.Arc.Start, 1e-9)
		assert.InDelta(t, 0.5/6.0, wrapDelta(cmd.Arc.Stop-cmd.Arc.Start), 1e-9)
		assert.InDelta(t, 0.0, cmd.Arc.RotAngle, 1e-9)
	}
}

func wrapDelta(d float64) float64 {
	m := math.Mod(d, 1.0)
	if m < 0 {
		m += 1.0
	}
	return m
}

func TestBlackingKeepsEvenIndices(t *testing.T) {
	tn := NewTunnel()
	tn.Segments = 8
	tn.Blacking = 1

	tn.Tick(1.0/60, 0)
	cmds := tn.Draw(0)
	require.Len(t, cmds, 4)
}

func TestSegmentsClampedToOne(t *testing.T) {
	tn := NewTunnel()
	tn.Segments = 0
	tn.Tick(1.0/60, 0)
	cmds := tn.Draw(0)
	assert.Len(t, cmds, 1)
}

func TestAllArcsWithinUnitPhaseRange(t *testing.T) {
	tn := NewTunnel()
	tn.Segments = 5
	tn.Thickness = 0.9
	tn.MarqueeSpeed = 0.37
	for i := 0; i < 50; i++ {
		tn.Tick(1.0/60, float64(i)/50)
		for _, cmd := range tn.Draw(float64(i) / 50) {
			require.NotNil(t, cmd.Arc)
			assert.GreaterOrEqual(t, cmd.Arc.Start, 0.0)
			assert.Less(t, cmd.Arc.Start, 1.0)
			assert.GreaterOrEqual(t, cmd.Arc.Stop, 0.0)
			assert.Less(t, cmd.Arc.Stop, 1.0)
		}
	}
}

// Modulated rotation integrates the modulation's contribution into
// rotAngle over time, tick by tick.
func TestModulatedRotationAccumulates(t *testing.T) {
	tn := NewTunnel()
	tn.Segments = 6
	tn.Modulator().SetWaveform(0, waveform.Sine)
	tn.Modulator().SetTarget(0, param.TunnelRotationSpeed)
	tn.Modulator().SetWeight(0, 0.5)
	tn.Modulator().Bank[0].ClockLocked = true
	tn.Modulator().Bank[0].Speed = 1 // 1 cycle/beat

	dt := 1.0 / 1000
	beatsTotal := 0.25
	ticks := int(beatsTotal / dt)

	var integral float64
	clockPhase := 0.0
	for i := 0; i < ticks; i++ {
		clockPhase = math.Mod(float64(i)*dt, 1.0)
		integral += 0.5 * math.Sin(2*math.Pi*clockPhase) * dt
		tn.Tick(dt, clockPhase)
	}

	assert.InDelta(t, wrapDelta(integral), tn.rotationPhase, 1e-3)
}

func TestDrawIdempotentWithinATick(t *testing.T) {
	// Draw must not itself advance animator state: calling it twice after
	// one Tick (e.g. once per video channel) must yield identical output.
	tn := NewTunnel()
	tn.Segments = 4
	tn.Modulator().SetTarget(0, param.TunnelColCenter)
	tn.Modulator().SetWeight(0, 0.3)
	tn.Modulator().Bank[0].ClockLocked = false
	tn.Modulator().Bank[0].Speed = 0.1

	tn.Tick(1.0/60, 0.5)
	first := tn.Draw(0.5)
	second := tn.Draw(0.5)
	require.Equal(t, first, second)
}
