package show

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generalelectrix/tunnels/internal/control"
	"github.com/generalelectrix/tunnels/internal/logging"
	"github.com/generalelectrix/tunnels/internal/publish"
	"github.com/generalelectrix/tunnels/internal/scene"
)

type fakeSource struct {
	events []control.InputEvent
}

func (f *fakeSource) Drain() []control.InputEvent {
	out := f.events
	f.events = nil
	return out
}

type fakeSink struct {
	received []control.EchoUpdate
	err      error
}

func (f *fakeSink) SendEcho(update control.EchoUpdate) error {
	f.received = append(f.received, update)
	return f.err
}

func newTestShow(t *testing.T, numLayers, numChannels int) (*Show, *scene.Scene, *control.Mapper) {
	t.Helper()
	sc := scene.New(numLayers, 1, 60, 120)
	table := control.NewTable()
	mapper := control.NewMapper(sc, table, 16)
	pub := publish.New(numChannels, logging.New(logging.ParseLevel("error")))
	s := New(sc, mapper, pub, numChannels, logging.New(logging.ParseLevel("error")))
	return s, sc, mapper
}

func TestStepDrainsSurfaceAndAppliesBinding(t *testing.T) {
	s, sc, mapper := newTestShow(t, 4, 1)
	sc.CreateTunnelLayer(0, "t", 0x1)
	mapper.Table.SetBinding(
		control.SurfaceControl{SurfaceID: "apc40", ControlID: "fader1"},
		control.Target{Kind: control.TargetLayerLevel, Layer: 0, AnimSlot: control.PageRelative},
	)

	src := &fakeSource{events: []control.InputEvent{{Surface: "apc40", Control: "fader1", Value: 0.75}}}
	s.AddSurface(Surface{ID: "apc40", Source: src, Sink: &fakeSink{}})

	s.Step(1.0 / 60)

	assert.InDelta(t, 0.75, sc.Mixer.Layers[0].Level, 1e-9)
}

func TestStepAdvancesMasterClock(t *testing.T) {
	s, sc, _ := newTestShow(t, 2, 1)
	before := sc.Clock.Master.PhaseValue
	for i := 0; i < 5; i++ {
		s.Step(1.0 / 60)
	}
	assert.NotEqual(t, before, sc.Clock.Master.PhaseValue)
}

func TestStepRoutesEchoToMatchingSurface(t *testing.T) {
	s, sc, mapper := newTestShow(t, 4, 1)
	sc.CreateTunnelLayer(0, "t", 0x1)

	target := control.Target{Kind: control.TargetLayerLevel, Layer: 0, AnimSlot: control.PageRelative}
	mapper.Table.SetBinding(control.SurfaceControl{SurfaceID: "apc40", ControlID: "fader1"}, target)

	sink := &fakeSink{}
	src := &fakeSource{events: []control.InputEvent{{Surface: "apc40", Control: "fader1", Value: 0.4}}}
	s.AddSurface(Surface{ID: "apc40", Source: src, Sink: sink})

	s.Step(1.0 / 60)

	require.Len(t, sink.received, 1)
	assert.Equal(t, "fader1", sink.received[0].Control)
	assert.InDelta(t, 0.4, sink.received[0].Value, 1e-9)
}

func TestStepAdvancesFrameNumberPerTick(t *testing.T) {
	s, sc, _ := newTestShow(t, 2, 1)
	sc.CreateTunnelLayer(0, "t", 0x1)
	sc.SetLayerLevel(0, 1.0)

	s.Step(1.0 / 60)
	assert.Equal(t, uint32(1), s.frameNumber)
	s.Step(1.0 / 60)
	assert.Equal(t, uint32(2), s.frameNumber)
}

func TestRunStopsWhenContextCanceled(t *testing.T) {
	s, _, _ := newTestShow(t, 2, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestSnapshotReflectsEmptyAndOccupiedLayers(t *testing.T) {
	s, sc, _ := newTestShow(t, 2, 1)
	sc.CreateTunnelLayer(0, "ring", 0x1)
	sc.SetLayerLevel(0, 0.5)

	snap := s.Snapshot()
	require.Len(t, snap.Layers, 2)
	assert.False(t, snap.Layers[0].Empty)
	assert.Equal(t, "ring", snap.Layers[0].Name)
	assert.Equal(t, "tunnel", snap.Layers[0].BeamVariant)
	assert.InDelta(t, 0.5, snap.Layers[0].Level, 1e-9)
	assert.True(t, snap.Layers[1].Empty)
}

func TestSnapshotIncludesSurfaceConnectionState(t *testing.T) {
	s, _, _ := newTestShow(t, 1, 1)
	s.AddSurface(Surface{ID: "apc40", Source: &fakeSource{}, Sink: &fakeSink{}, Status: func() bool { return false }})

	snap := s.Snapshot()
	require.Len(t, snap.Surfaces, 1)
	assert.Equal(t, "apc40", snap.Surfaces[0].ID)
	assert.False(t, snap.Surfaces[0].Connected)
}

func TestSnapshotDefaultsSurfaceConnectedWhenNoStatusFunc(t *testing.T) {
	s, _, _ := newTestShow(t, 1, 1)
	s.AddSurface(Surface{ID: "touchosc", Source: &fakeSource{}, Sink: &fakeSink{}})

	snap := s.Snapshot()
	require.Len(t, snap.Surfaces, 1)
	assert.True(t, snap.Surfaces[0].Connected)
}
