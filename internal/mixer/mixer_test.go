package mixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generalelectrix/tunnels/internal/beam"
)

const chanAll uint32 = 0xFFFFFFFF

func TestEmptyMixerEvaluatesToNoCommands(t *testing.T) {
	m := New(16)
	m.Tick(1.0/60, 0)
	cmds := m.Evaluate(chanAll, 0)
	assert.Empty(t, cmds)
}

func TestMixerOrderingPreservesLayerIndex(t *testing.T) {
	m := New(4)

	t0 := beam.NewTunnel()
	t0.Segments = 1
	t0.ColCenter = 0.1
	m.Layers[0].Beam = t0
	m.Layers[0].Level = 1
	m.Layers[0].VideoChannels = chanAll

	t1 := beam.NewTunnel()
	t1.Segments = 1
	t1.ColCenter = 0.9
	m.Layers[1].Beam = t1
	m.Layers[1].Level = 1
	m.Layers[1].VideoChannels = chanAll

	m.Tick(1.0/60, 0)
	cmds := m.Evaluate(chanAll, 0)
	require.Len(t, cmds, 2)
	require.NotNil(t, cmds[0].Command.Arc)
	require.NotNil(t, cmds[1].Command.Arc)
	assert.InDelta(t, 0.1, cmds[0].Command.Arc.Hue, 1e-9)
	assert.InDelta(t, 0.9, cmds[1].Command.Arc.Hue, 1e-9)
}

func TestZeroLevelLayerEmitsNothing(t *testing.T) {
	m := New(2)
	tn := beam.NewTunnel()
	tn.Segments = 3
	m.Layers[0].Beam = tn
	m.Layers[0].Level = 0
	m.Layers[0].VideoChannels = chanAll

	m.Tick(1.0/60, 0)
	assert.Empty(t, m.Evaluate(chanAll, 0))
}

func TestLayerOnDifferentChannelIsExcluded(t *testing.T) {
	m := New(2)
	tn := beam.NewTunnel()
	tn.Segments = 2
	m.Layers[0].Beam = tn
	m.Layers[0].Level = 1
	m.Layers[0].VideoChannels = 0x1 // channel bit 0 only

	m.Tick(1.0/60, 0)
	assert.Empty(t, m.Evaluate(0x2, 0))
	assert.NotEmpty(t, m.Evaluate(0x1, 0))
}

func TestBumpDecayTiming(t *testing.T) {
	m := New(1)
	tn := beam.NewTunnel()
	tn.Segments = 1
	m.Layers[0].Beam = tn
	m.Layers[0].Level = 0
	m.Layers[0].VideoChannels = chanAll
	m.Layers[0].Bump()

	dt := 0.001
	var lastLevel uint32 = 256 // sentinel above valid range

	elapsed := 0.0
	for elapsed < 0.400 {
		m.Tick(dt, 0)
		cmds := m.Evaluate(chanAll, 0)
		if elapsed == 0 {
			require.NotEmpty(t, cmds)
			assert.Equal(t, uint32(255), cmds[0].Level)
		}
		if len(cmds) > 0 {
			assert.LessOrEqual(t, cmds[0].Level, lastLevel)
			lastLevel = cmds[0].Level
		}
		elapsed += dt
	}

	m.Tick(dt, 0)
	assert.Empty(t, m.Evaluate(chanAll, 0))
}

func TestMaskedLayerSuppressedWhenAnotherUnmaskedActive(t *testing.T) {
	m := New(2)
	base := beam.NewTunnel()
	base.Segments = 1
	m.Layers[0].Beam = base
	m.Layers[0].Level = 1
	m.Layers[0].VideoChannels = chanAll

	masked := beam.NewTunnel()
	masked.Segments = 1
	m.Layers[1].Beam = masked
	m.Layers[1].Level = 1
	m.Layers[1].Mask = true
	m.Layers[1].VideoChannels = chanAll

	m.Tick(1.0/60, 0)
	cmds := m.Evaluate(chanAll, 0)
	assert.Len(t, cmds, 1, "masked layer suppressed while another unmasked layer is active")
}

func TestMaskedLayerAloneIsNotSuppressed(t *testing.T) {
	m := New(1)
	masked := beam.NewTunnel()
	masked.Segments = 1
	m.Layers[0].Beam = masked
	m.Layers[0].Level = 1
	m.Layers[0].Mask = true
	m.Layers[0].VideoChannels = chanAll

	m.Tick(1.0/60, 0)
	cmds := m.Evaluate(chanAll, 0)
	assert.Len(t, cmds, 1)
}

func TestClearReturnsLayerToEmpty(t *testing.T) {
	m := New(1)
	tn := beam.NewTunnel()
	m.Layers[0].Beam = tn
	m.Layers[0].Level = 1
	m.Layers[0].VideoChannels = chanAll
	assert.False(t, m.Layers[0].IsEmpty())

	m.Layers[0].Clear()
	assert.True(t, m.Layers[0].IsEmpty())

	m.Tick(1.0/60, 0)
	assert.Empty(t, m.Evaluate(chanAll, 0))
}
