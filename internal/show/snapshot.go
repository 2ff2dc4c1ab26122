package show

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/generalelectrix/tunnels/internal/animator"
	"github.com/generalelectrix/tunnels/internal/beam"
	"github.com/generalelectrix/tunnels/internal/mixer"
	"github.com/generalelectrix/tunnels/internal/param"
	"github.com/generalelectrix/tunnels/internal/scene"
	"github.com/generalelectrix/tunnels/internal/waveform"
)

// This is the operator-invoked save/restore path: a full dump of mixer
// layer and clock state an operator can stash and later reload, distinct
// from internal/config's process-startup configuration and from the
// per-frame wire format internal/wire encodes for the viewer. It uses
// ordinary map-style MessagePack (field names, not wire's fixed-order
// array encoding) since it is an infrequent, internal-only save file with
// no cross-process wire contract to hold stable.

type animatorState struct {
	WaveformKind int
	Speed        float64
	Weight       float64
	Smoothing    float64
	DutyCycle    float64
	Pulse        bool
	Target       int
	ClockLocked  bool
}

type tunnelState struct {
	RotationSpeed float64
	Thickness     float64
	Size          float64
	AspectRatio   float64
	ColCenter     float64
	ColWidth      float64
	ColSpread     float64
	ColSaturation float64
	Segments      int
	Blacking      int
	PositionX     float64
	PositionY     float64
	MarqueeSpeed  float64
}

type lineState struct {
	Thickness  float64
	Length     float64
	PositionX  float64
	PositionY  float64
	Rotation   float64
	Color      float64
	StartPhase float64
	StopPhase  float64
}

type layerState struct {
	Empty         bool
	Name          string
	VideoChannels uint32
	Level         float64
	Mask          bool
	Variant       string
	Tunnel        *tunnelState `msgpack:",omitempty"`
	Line          *lineState   `msgpack:",omitempty"`
	Animators     []animatorState
}

type clockState struct {
	Name string
	BPM  float64
}

type showState struct {
	Layers    []layerState
	MasterBPM float64
	Aux       []clockState
}

// SaveState serializes the show's mixer layers and clock tempos to a
// byte slice an operator can persist and later pass to RestoreState.
func (s *Show) SaveState() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return msgpack.Marshal(s.buildState())
}

// RestoreState replaces the show's mixer layers and clock tempos with a
// previously saved state. Layers beyond the saved state's length, and
// any layer the saved state marks empty, are cleared.
func (s *Show) RestoreState(data []byte) error {
	var st showState
	if err := msgpack.Unmarshal(data, &st); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyState(st)
	return nil
}

func (s *Show) buildState() showState {
	layers := make([]layerState, len(s.Scene.Mixer.Layers))
	for i := range s.Scene.Mixer.Layers {
		layers[i] = layerStateFor(&s.Scene.Mixer.Layers[i])
	}

	aux := make([]clockState, len(s.Scene.Clock.Aux))
	for i, a := range s.Scene.Clock.Aux {
		aux[i] = clockState{Name: a.Name, BPM: a.BPM()}
	}

	return showState{
		Layers:    layers,
		MasterBPM: s.Scene.Clock.Master.BPM(),
		Aux:       aux,
	}
}

func layerStateFor(l *mixer.Layer) layerState {
	if l.IsEmpty() {
		return layerState{Empty: true}
	}
	ls := layerState{
		Name:          l.Name,
		VideoChannels: l.VideoChannels,
		Level:         l.Level,
		Mask:          l.Mask,
	}
	switch b := l.Beam.(type) {
	case *beam.Tunnel:
		ls.Variant = "tunnel"
		ls.Tunnel = &tunnelState{
			RotationSpeed: b.RotationSpeed,
			Thickness:     b.Thickness,
			Size:          b.Size,
			AspectRatio:   b.AspectRatio,
			ColCenter:     b.ColCenter,
			ColWidth:      b.ColWidth,
			ColSpread:     b.ColSpread,
			ColSaturation: b.ColSaturation,
			Segments:      b.Segments,
			Blacking:      b.Blacking,
			PositionX:     b.PositionX,
			PositionY:     b.PositionY,
			MarqueeSpeed:  b.MarqueeSpeed,
		}
		ls.Animators = animatorBankState(b.Modulator().Bank)
	case *beam.LineBeam:
		ls.Variant = "line"
		ls.Line = &lineState{
			Thickness:  b.Thickness,
			Length:     b.Length,
			PositionX:  b.PositionX,
			PositionY:  b.PositionY,
			Rotation:   b.Rotation,
			Color:      b.Color,
			StartPhase: b.StartPhase,
			StopPhase:  b.StopPhase,
		}
		ls.Animators = animatorBankState(b.Modulator().Bank)
	}
	return ls
}

func (s *Show) applyState(st showState) {
	for i, pl := range st.Layers {
		if i >= len(s.Scene.Mixer.Layers) {
			break
		}
		applyLayerState(s.Scene, i, pl)
	}
	for i := len(st.Layers); i < len(s.Scene.Mixer.Layers); i++ {
		s.Scene.ClearLayer(i)
	}

	if st.MasterBPM > 0 {
		s.Scene.Clock.Master.SetBPM(st.MasterBPM)
	}
	for i, ac := range st.Aux {
		if i >= len(s.Scene.Clock.Aux) {
			break
		}
		if ac.BPM > 0 {
			s.Scene.Clock.Aux[i].SetBPM(ac.BPM)
		}
		if ac.Name != "" {
			s.Scene.Clock.Aux[i].Name = ac.Name
		}
	}
}

func restoreAnimatorBank(bank []animator.Animator, saved []animatorState) {
	for i, pa := range saved {
		if i >= len(bank) {
			break
		}
		bank[i] = animator.Animator{
			WaveformKind: waveform.Kind(pa.WaveformKind),
			Speed:        pa.Speed,
			Weight:       pa.Weight,
			Smoothing:    pa.Smoothing,
			DutyCycle:    pa.DutyCycle,
			Pulse:        pa.Pulse,
			Target:       param.ID(pa.Target),
			ClockLocked:  pa.ClockLocked,
		}
	}
}

func animatorBankState(bank []animator.Animator) []animatorState {
	out := make([]animatorState, len(bank))
	for i, a := range bank {
		out[i] = animatorState{
			WaveformKind: int(a.WaveformKind),
			Speed:        a.Speed,
			Weight:       a.Weight,
			Smoothing:    a.Smoothing,
			DutyCycle:    a.DutyCycle,
			Pulse:        a.Pulse,
			Target:       int(a.Target),
			ClockLocked:  a.ClockLocked,
		}
	}
	return out
}

func applyLayerState(sc *scene.Scene, i int, pl layerState) {
	if pl.Empty {
		sc.ClearLayer(i)
		return
	}
	switch pl.Variant {
	case "tunnel":
		tn := sc.CreateTunnelLayer(i, pl.Name, pl.VideoChannels)
		if pl.Tunnel != nil {
			t := pl.Tunnel
			tn.RotationSpeed = t.RotationSpeed
			tn.Thickness = t.Thickness
			tn.Size = t.Size
			tn.AspectRatio = t.AspectRatio
			tn.ColCenter = t.ColCenter
			tn.ColWidth = t.ColWidth
			tn.ColSpread = t.ColSpread
			tn.ColSaturation = t.ColSaturation
			tn.Segments = t.Segments
			tn.Blacking = t.Blacking
			tn.PositionX = t.PositionX
			tn.PositionY = t.PositionY
			tn.MarqueeSpeed = t.MarqueeSpeed
		}
		restoreAnimatorBank(tn.Modulator().Bank, pl.Animators)
	case "line":
		lb := sc.CreateLineLayer(i, pl.Name, pl.VideoChannels)
		if pl.Line != nil {
			ln := pl.Line
			lb.Thickness = ln.Thickness
			lb.Length = ln.Length
			lb.PositionX = ln.PositionX
			lb.PositionY = ln.PositionY
			lb.Rotation = ln.Rotation
			lb.Color = ln.Color
			lb.StartPhase = ln.StartPhase
			lb.StopPhase = ln.StopPhase
		}
		restoreAnimatorBank(lb.Modulator().Bank, pl.Animators)
	default:
		return
	}
	sc.Mixer.Layers[i].Level = pl.Level
	sc.Mixer.Layers[i].Mask = pl.Mask
}
