// Package show wires together a Scene, a ControlMapper, a FramePublisher,
// and any number of controller surfaces into the running process: the
// tick loop that drains controller input, advances the scene, and
// publishes one frame per active video channel every tick.
package show

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/generalelectrix/tunnels/internal/beam"
	"github.com/generalelectrix/tunnels/internal/clock"
	"github.com/generalelectrix/tunnels/internal/consoledash"
	"github.com/generalelectrix/tunnels/internal/control"
	"github.com/generalelectrix/tunnels/internal/logging"
	"github.com/generalelectrix/tunnels/internal/metronome"
	"github.com/generalelectrix/tunnels/internal/publish"
	"github.com/generalelectrix/tunnels/internal/scene"
	"github.com/generalelectrix/tunnels/internal/wire"
)

// InputSource is the subset of a controller transport the tick loop needs:
// a non-blocking drain of whatever events queued up since the last tick.
// Satisfied by *midimap.Transport and *oscmap.Transport.
type InputSource interface {
	Drain() []control.InputEvent
}

// EchoSink is the subset of a controller transport needed to push a
// reverse update back out to the surface.
type EchoSink interface {
	SendEcho(control.EchoUpdate) error
}

// Surface binds one physical controller's input and echo-back transport
// to the surface id the binding table and Mapper address it by. Status,
// if set, reports the transport's live connection state for the
// dashboard; nil means always-connected (e.g. a surface with no concept
// of connection, or one not worth tracking).
type Surface struct {
	ID     string
	Source InputSource
	Sink   EchoSink
	Status func() bool
}

// Show is the running aggregate: a Scene driven by a tick loop, fed by
// any number of controller Surfaces through a ControlMapper, publishing
// draw-command frames through a FramePublisher. The metronome is
// optional and nil when disabled.
type Show struct {
	Scene     *scene.Scene
	Mapper    *control.Mapper
	Publisher *publish.Publisher
	Metronome *metronome.Metronome

	log         *logging.Logger
	numChannels int
	tickRateHz  float64
	epoch       time.Time

	mu             sync.Mutex
	surfaces       []Surface
	frameNumber    uint32
	lastMasterBeat uint64
}

// New returns a Show ticking Scene's clock at its configured rate,
// publishing numChannels video channels.
func New(sc *scene.Scene, mapper *control.Mapper, pub *publish.Publisher, numChannels int, log *logging.Logger) *Show {
	return &Show{
		Scene:       sc,
		Mapper:      mapper,
		Publisher:   pub,
		numChannels: numChannels,
		tickRateHz:  sc.Clock.TickRateHz,
		log:         log,
		epoch:       time.Now(),
	}
}

// EnableMetronome attaches a metronome to click on every master beat.
// Passing nil disables it.
func (s *Show) EnableMetronome(m *metronome.Metronome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Metronome = m
}

// AddSurface registers a controller surface to be drained each tick and
// to receive echo-back updates addressed to it.
func (s *Show) AddSurface(sf Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surfaces = append(s.surfaces, sf)
}

// Run drives the tick loop at the scene clock's configured rate until ctx
// is canceled. A tick that overruns its deadline logs the slip and
// continues immediately rather than sleeping negative time; it never
// tries to "catch up" by running multiple ticks back to back, since a
// stalled process should fall behind in wall-clock time rather than
// burst frames. Run returns only after its last Step call has completed,
// so the caller can safely close the Publisher immediately afterward.
func (s *Show) Run(ctx context.Context) {
	interval := time.Duration(float64(time.Second) / s.tickRateHz)
	dt := 1.0 / s.tickRateHz
	deadline := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		deadline = deadline.Add(interval)
		s.Step(dt)

		now := time.Now()
		if !now.Before(deadline) {
			if s.log != nil {
				s.log.Warnf("tick loop slipped by %v, skipping sleep", now.Sub(deadline))
			}
			deadline = now
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(deadline.Sub(now)):
		}
	}
}

// Step runs exactly one tick: drain every surface's queued input, advance
// the scene by dt, click the metronome on a beat change, publish one
// frame per active video channel, and route any echo updates the tick's
// mutations produced. Exposed directly so tests can drive the show
// deterministically without real timers.
func (s *Show) Step(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.surfaces {
		events := s.surfaces[i].Source.Drain()
		if len(events) > 0 {
			s.Mapper.ApplyBatch(events)
		}
	}

	s.Scene.Clock.Tick(dt)
	clockPhase := s.Scene.Clock.Master.PhaseValue
	s.Scene.Mixer.Tick(dt, clockPhase)

	if s.Metronome != nil {
		if beat := s.Scene.Clock.Master.BeatNumber; beat != s.lastMasterBeat {
			s.Metronome.Beat(beat)
			s.lastMasterBeat = beat
		}
	}

	s.publishFrames(clockPhase)
	s.frameNumber++

	s.routeEchoes()
}

func (s *Show) publishFrames(clockPhase float64) {
	timestampMs := time.Since(s.epoch).Milliseconds()
	for ch := 0; ch < s.numChannels; ch++ {
		bit := uint32(1) << uint(ch)
		cmds := s.Scene.Mixer.Evaluate(bit, clockPhase)
		frame := wire.BuildFrame(s.frameNumber, timestampMs, cmds)
		encoded, err := wire.Encode(frame)
		if err != nil {
			if s.log != nil {
				s.log.Errorf("show: encode frame for channel %d: %v", ch, err)
			}
			continue
		}
		s.Publisher.PublishFrame(ch, encoded)
	}
}

func (s *Show) routeEchoes() {
	for {
		select {
		case update := <-s.Mapper.Echo():
			s.deliverEcho(update)
		default:
			return
		}
	}
}

func (s *Show) deliverEcho(update control.EchoUpdate) {
	for i := range s.surfaces {
		if s.surfaces[i].ID != update.Surface {
			continue
		}
		if err := s.surfaces[i].Sink.SendEcho(update); err != nil && s.log != nil {
			s.log.RateLimitedErrorf(update.Surface, "show: echo to %s: %v", update.Surface, err)
		}
		return
	}
}

// Snapshot builds a point-in-time consoledash.State, implementing
// consoledash.StateProvider so a Show can drive the dashboard directly.
func (s *Show) Snapshot() consoledash.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return consoledash.State{
		Layers:   s.layerViews(),
		Master:   clockView("master", s.Scene.Clock.Master),
		Aux:      s.auxViews(),
		Surfaces: s.surfaceViews(),
	}
}

func (s *Show) layerViews() []consoledash.LayerView {
	out := make([]consoledash.LayerView, len(s.Scene.Mixer.Layers))
	for i := range s.Scene.Mixer.Layers {
		l := &s.Scene.Mixer.Layers[i]
		if l.IsEmpty() {
			out[i] = consoledash.LayerView{Empty: true}
			continue
		}
		lv := consoledash.LayerView{
			Name:    l.Name,
			Level:   l.EffectiveLevel(),
			Mask:    l.Mask,
			Bumping: l.Bumping(),
		}
		switch b := l.Beam.(type) {
		case *beam.Tunnel:
			lv.BeamVariant = "tunnel"
			lv.PreviewHex = b.PreviewColor().Hex()
		case *beam.LineBeam:
			lv.BeamVariant = "line"
		}
		out[i] = lv
	}
	return out
}

func (s *Show) auxViews() []consoledash.ClockView {
	out := make([]consoledash.ClockView, len(s.Scene.Clock.Aux))
	for i, a := range s.Scene.Clock.Aux {
		name := a.Name
		if name == "" {
			name = fmt.Sprintf("aux%d", i)
		}
		out[i] = clockView(name, a.Phase)
	}
	return out
}

func (s *Show) surfaceViews() []consoledash.SurfaceView {
	out := make([]consoledash.SurfaceView, len(s.surfaces))
	for i, sf := range s.surfaces {
		connected := true
		if sf.Status != nil {
			connected = sf.Status()
		}
		out[i] = consoledash.SurfaceView{ID: sf.ID, Connected: connected}
	}
	return out
}

func clockView(name string, p clock.Phase) consoledash.ClockView {
	return consoledash.ClockView{
		Name:  name,
		BPM:   p.BPM(),
		State: tapStateString(p.TapState()),
		Phase: p.PhaseValue,
		Beat:  p.BeatNumber,
	}
}

func tapStateString(st clock.TapState) string {
	switch st {
	case clock.TapWarm:
		return "warm"
	case clock.TapLocked:
		return "locked"
	default:
		return "cold"
	}
}
