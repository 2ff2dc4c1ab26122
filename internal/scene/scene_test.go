package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generalelectrix/tunnels/internal/beam"
	"github.com/generalelectrix/tunnels/internal/param"
)

func TestCreateAndClearTunnelLayer(t *testing.T) {
	s := New(8, 4, 60, 120)
	tn := s.CreateTunnelLayer(0, "ring-a", 0x1)
	require.NotNil(t, tn)
	assert.False(t, s.Mixer.Layers[0].IsEmpty())
	assert.Equal(t, "ring-a", s.Mixer.Layers[0].Name)

	s.ClearLayer(0)
	assert.True(t, s.Mixer.Layers[0].IsEmpty())
}

func TestSetBeamParamDispatchesOnVariant(t *testing.T) {
	s := New(2, 0, 60, 120)
	s.CreateTunnelLayer(0, "t", 0x1)
	s.SetBeamParam(0, param.TunnelThickness, 0.75)

	tn := s.Mixer.Layers[0].Beam.(*beam.Tunnel)
	assert.InDelta(t, 0.75, tn.Thickness, 1e-9)

	// Out-of-range clamp.
	s.SetBeamParam(0, param.TunnelThickness, 5.0)
	assert.Equal(t, 1.0, tn.Thickness)
}

func TestSetBeamParamOnLineLayer(t *testing.T) {
	s := New(2, 0, 60, 120)
	s.CreateLineLayer(1, "line", 0x1)
	s.SetBeamParam(1, param.LineLength, 0.3)

	lb := s.Mixer.Layers[1].Beam.(*beam.LineBeam)
	assert.InDelta(t, 0.3, lb.Length, 1e-9)
}

func TestSetAnimatorTargetAndWeight(t *testing.T) {
	s := New(1, 0, 60, 120)
	s.CreateTunnelLayer(0, "t", 0x1)
	s.SetAnimatorTarget(0, 0, param.TunnelRotationSpeed)
	s.SetAnimatorWeight(0, 0, 0.8)

	mod := s.Mixer.Layers[0].Beam.Modulator()
	assert.Equal(t, param.TunnelRotationSpeed, mod.Bank[0].Target)
	assert.InDelta(t, 0.8, mod.Bank[0].Weight, 1e-9)
}

func TestOutOfRangeLayerIndexIsNoOp(t *testing.T) {
	s := New(2, 0, 60, 120)
	assert.NotPanics(t, func() {
		s.SetLayerLevel(99, 1.0)
		s.ToggleMask(-1)
		s.Bump(99)
		s.SetBeamParam(99, param.TunnelThickness, 1)
		s.SetAnimatorTarget(99, 0, param.TunnelThickness)
	})
}

func TestTapTempoAndNudgeClock(t *testing.T) {
	s := New(1, 1, 60, 120)
	s.TapTempo(0)
	s.TapTempo(0.5)
	assert.InDelta(t, 120.0, s.Clock.Master.BPM(), 1e-6)

	s.Clock.Master.Advance(0.25)
	assert.Greater(t, s.Clock.Master.PhaseValue, 0.0)
	s.NudgeClock()
	assert.Equal(t, 0.0, s.Clock.Master.PhaseValue)

	s.TapAuxTempo(0, 0)
	s.TapAuxTempo(0, 1.0)
	assert.InDelta(t, 60.0, s.Clock.Aux[0].BPM(), 1e-6)
}
