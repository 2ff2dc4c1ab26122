// Package scene implements the global show-state aggregate: master clock
// and mixer encapsulated as one owned value passed to the tick loop and
// control threads by scoped access, rather than process-wide mutable
// singletons.
package scene

import (
	"github.com/generalelectrix/tunnels/internal/animator"
	"github.com/generalelectrix/tunnels/internal/beam"
	"github.com/generalelectrix/tunnels/internal/clock"
	"github.com/generalelectrix/tunnels/internal/mixer"
	"github.com/generalelectrix/tunnels/internal/param"
	"github.com/generalelectrix/tunnels/internal/waveform"
)

// Scene is the single owned aggregate of mutable show state. It carries
// no lock of its own: the tick thread owns exclusive write access during
// a tick, and the ControlMapper's single scene lock is held by its
// caller.
type Scene struct {
	Mixer *mixer.Mixer
	Clock *clock.MasterClock
}

// New returns a Scene with numLayers mixer layers and numAux auxiliary
// clocks, ticking at tickRateHz with a defaultBPM master tempo.
func New(numLayers, numAux int, tickRateHz, defaultBPM float64) *Scene {
	return &Scene{
		Mixer: mixer.New(numLayers),
		Clock: clock.NewMasterClock(tickRateHz, defaultBPM, numAux),
	}
}

// CreateTunnelLayer populates layer i with a fresh Tunnel beam, clearing
// whatever was there before.
func (s *Scene) CreateTunnelLayer(i int, name string, videoChannels uint32) *beam.Tunnel {
	tn := beam.NewTunnel()
	s.Mixer.Layers[i] = mixer.Layer{
		Beam:          tn,
		Name:          name,
		VideoChannels: videoChannels,
	}
	return tn
}

// CreateLineLayer populates layer i with a fresh Beam-line.
func (s *Scene) CreateLineLayer(i int, name string, videoChannels uint32) *beam.LineBeam {
	lb := beam.NewLineBeam()
	s.Mixer.Layers[i] = mixer.Layer{
		Beam:          lb,
		Name:          name,
		VideoChannels: videoChannels,
	}
	return lb
}

// ClearLayer returns layer i to the empty state.
func (s *Scene) ClearLayer(i int) {
	if i < 0 || i >= len(s.Mixer.Layers) {
		return
	}
	s.Mixer.Layers[i].Clear()
}

// SetLayerLevel sets layer i's persistent level in [0,1].
func (s *Scene) SetLayerLevel(i int, level float64) {
	if i < 0 || i >= len(s.Mixer.Layers) {
		return
	}
	s.Mixer.Layers[i].Level = clamp01(level)
}

// ToggleMask flips layer i's mask flag.
func (s *Scene) ToggleMask(i int) {
	if i < 0 || i >= len(s.Mixer.Layers) {
		return
	}
	s.Mixer.Layers[i].Mask = !s.Mixer.Layers[i].Mask
}

// Bump triggers layer i's transient level override.
func (s *Scene) Bump(i int) {
	if i < 0 || i >= len(s.Mixer.Layers) {
		return
	}
	s.Mixer.Layers[i].Bump()
}

// SetBeamParam sets a closed-enum parameter's base value on layer i's
// beam, dispatching on the beam's concrete variant. Unknown
// target/variant combinations are a no-op.
func (s *Scene) SetBeamParam(i int, id param.ID, value float64) {
	if i < 0 || i >= len(s.Mixer.Layers) {
		return
	}
	switch b := s.Mixer.Layers[i].Beam.(type) {
	case *beam.Tunnel:
		setTunnelParam(b, id, value)
	case *beam.LineBeam:
		setLineParam(b, id, value)
	}
}

func setTunnelParam(t *beam.Tunnel, id param.ID, v float64) {
	switch id {
	case param.TunnelRotationSpeed:
		t.RotationSpeed = v
	case param.TunnelThickness:
		t.Thickness = clamp01(v)
	case param.TunnelSize:
		t.Size = clamp01(v)
	case param.TunnelAspectRatio:
		t.AspectRatio = clamp01(v)
	case param.TunnelColCenter:
		t.ColCenter = wrapPhase(v)
	case param.TunnelColWidth:
		t.ColWidth = clamp01(v)
	case param.TunnelColSpread:
		t.ColSpread = clamp01(v)
	case param.TunnelColSaturation:
		t.ColSaturation = clamp01(v)
	case param.TunnelPositionX:
		t.PositionX = v
	case param.TunnelPositionY:
		t.PositionY = v
	case param.TunnelMarqueeSpeed:
		t.MarqueeSpeed = v
	}
}

func setLineParam(l *beam.LineBeam, id param.ID, v float64) {
	switch id {
	case param.LineThickness:
		l.Thickness = clamp01(v)
	case param.LineLength:
		l.Length = clamp01(v)
	case param.LinePositionX:
		l.PositionX = v
	case param.LinePositionY:
		l.PositionY = v
	case param.LineRotation:
		l.Rotation = wrapPhase(v)
	case param.LineColor:
		l.Color = wrapPhase(v)
	case param.LineStartPhase:
		l.StartPhase = wrapPhase(v)
	case param.LineStopPhase:
		l.StopPhase = wrapPhase(v)
	}
}

// SetAnimatorTarget assigns animator slot's modulation target.
func (s *Scene) SetAnimatorTarget(layer, slot int, id param.ID) {
	if m := s.modulatorFor(layer); m != nil {
		m.SetTarget(slot, id)
	}
}

// SetAnimatorSpeed sets animator slot's speed (signed, phase-units/beat).
func (s *Scene) SetAnimatorSpeed(layer, slot int, speed float64) {
	if m := s.modulatorFor(layer); m != nil {
		m.SetSpeed(slot, speed)
	}
}

// SetAnimatorWeight sets animator slot's weight, clamped to [0,1].
func (s *Scene) SetAnimatorWeight(layer, slot int, weight float64) {
	if m := s.modulatorFor(layer); m != nil {
		m.SetWeight(slot, weight)
	}
}

// SetAnimatorWaveform sets animator slot's waveform kind.
func (s *Scene) SetAnimatorWaveform(layer, slot int, kind waveform.Kind) {
	if m := s.modulatorFor(layer); m != nil {
		m.SetWaveform(slot, kind)
	}
}

// NudgeAnimatorPhase nudges a free-running animator's accumulated phase.
func (s *Scene) NudgeAnimatorPhase(layer, slot int, delta float64) {
	if m := s.modulatorFor(layer); m != nil {
		m.NudgePhase(slot, delta)
	}
}

func (s *Scene) modulatorFor(layer int) *animator.ClipModulator {
	if layer < 0 || layer >= len(s.Mixer.Layers) {
		return nil
	}
	b := s.Mixer.Layers[layer].Beam
	if b == nil {
		return nil
	}
	return b.Modulator()
}

// TapTempo registers a master-clock tap at the given timestamp (seconds).
func (s *Scene) TapTempo(timestamp float64) {
	s.Clock.Master.Tap(timestamp)
}

// TapAuxTempo registers a tap on auxiliary clock i.
func (s *Scene) TapAuxTempo(i int, timestamp float64) {
	if i < 0 || i >= len(s.Clock.Aux) {
		return
	}
	s.Clock.Aux[i].Tap(timestamp)
}

// NudgeClock resyncs the master clock's phase to 0.
func (s *Scene) NudgeClock() {
	s.Clock.Master.Nudge()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func wrapPhase(p float64) float64 {
	for p < 0 {
		p += 1
	}
	for p >= 1 {
		p -= 1
	}
	return p
}
