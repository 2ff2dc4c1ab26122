// Package mixer implements ordered, leveled, maskable layering of Beams:
// for each active video channel, it walks its ordered layers and
// flattens their draw commands into one sequence, lower index first.
package mixer

import (
	"github.com/generalelectrix/tunnels/internal/beam"
)

// Bump decay timing: held at full for BumpHoldSeconds, then
// linearly decays to 0 over BumpDecaySeconds.
const (
	BumpHoldSeconds  = 0.100
	BumpDecaySeconds = 0.300
)

// Layer is one slot in the ordered composition stack. An empty slot carries a nil Beam and is skipped on Evaluate.
type Layer struct {
	Beam          beam.Beam
	Level         float64 // [0,1]
	Mask          bool
	VideoChannels uint32 // bit-set, one bit per channel
	Name          string

	bumpLevel   float64
	bumpElapsed float64
	bumping     bool
}

// IsEmpty reports whether the layer carries no beam.
func (l *Layer) IsEmpty() bool { return l.Beam == nil }

// Clear removes this layer's beam, returning it to the empty state.
func (l *Layer) Clear() {
	l.Beam = nil
	l.Name = ""
	l.bumping = false
	l.bumpLevel = 0
	l.bumpElapsed = 0
}

// Bump triggers the transient level override at full (1.0), decaying per
// the timing.
func (l *Layer) Bump() {
	l.bumping = true
	l.bumpElapsed = 0
	l.bumpLevel = 1.0
}

// tickBump advances the bump decay timer by dt, returning the current
// bump level contribution.
func (l *Layer) tickBump(dt float64) float64 {
	if !l.bumping {
		return 0
	}
	l.bumpElapsed += dt
	switch {
	case l.bumpElapsed <= BumpHoldSeconds:
		l.bumpLevel = 1.0
	case l.bumpElapsed <= BumpHoldSeconds+BumpDecaySeconds:
		frac := (l.bumpElapsed - BumpHoldSeconds) / BumpDecaySeconds
		l.bumpLevel = 1.0 - frac
	default:
		l.bumpLevel = 0
		l.bumping = false
	}
	return l.bumpLevel
}

// effectiveLevel returns max(level, bump_level), reading the
// bump state as of the last Tick call without advancing it again.
func (l *Layer) effectiveLevel() float64 {
	if l.bumpLevel > l.Level {
		return l.bumpLevel
	}
	return l.Level
}

// EffectiveLevel exposes effectiveLevel to read-only consumers outside
// this package, such as a dashboard or persisted snapshot.
func (l *Layer) EffectiveLevel() float64 { return l.effectiveLevel() }

// Bumping reports whether the layer's transient bump override is
// currently active.
func (l *Layer) Bumping() bool { return l.bumping }

// Mixer is a fixed-length ordered sequence of layers.
type Mixer struct {
	Layers []Layer
}

// New returns a Mixer with numLayers empty slots.
func New(numLayers int) *Mixer {
	return &Mixer{Layers: make([]Layer, numLayers)}
}

// Tick advances every non-empty layer's beam by dt and decays bump timers.
// Called once per tick, before any Evaluate call for any channel (mirrors
// the Tunnel/LineBeam Tick-once/Draw-many-times contract).
func (m *Mixer) Tick(dt float64, clockPhase float64) {
	for i := range m.Layers {
		l := &m.Layers[i]
		l.tickBump(dt)
		if l.IsEmpty() {
			continue
		}
		l.Beam.Tick(dt, clockPhase)
	}
}

// LeveledCommand pairs a beam draw command with its layer's effective
// level, attached so downstream consumers never need to re-derive it.
type LeveledCommand struct {
	Command beam.Command
	Level   uint32 // 0-255
}

// Evaluate drives frame composition for one video channel.
// Must be preceded by this tick's Tick call; Evaluate itself never advances
// beam or bump state, so it is safe to call once per active channel.
func (m *Mixer) Evaluate(channel uint32, clockPhase float64) []LeveledCommand {
	out := make([]LeveledCommand, 0, len(m.Layers))
	for i := range m.Layers {
		l := &m.Layers[i]
		if l.IsEmpty() {
			continue
		}
		if l.VideoChannels&channel == 0 {
			continue
		}
		if l.Mask && m.anotherUnmaskedActiveInChannel(i, channel) {
			// Simplified mask rule: mask
			// suppresses just this layer, not the whole group.
			continue
		}

		level := l.effectiveLevel()
		if level <= 0 {
			continue
		}
		levelU8 := uint32(level*255 + 0.5)

		for _, cmd := range l.Beam.Draw(clockPhase) {
			out = append(out, LeveledCommand{Command: cmd, Level: levelU8})
		}
	}
	return out
}

// anotherUnmaskedActiveInChannel reports whether any other layer in the
// given channel is unmasked and has level > 0.
func (m *Mixer) anotherUnmaskedActiveInChannel(idx int, channel uint32) bool {
	for i := range m.Layers {
		if i == idx {
			continue
		}
		o := &m.Layers[i]
		if o.IsEmpty() || o.Mask {
			continue
		}
		if o.VideoChannels&channel == 0 {
			continue
		}
		if o.Level > 0 || o.bumpLevel > 0 {
			return true
		}
	}
	return false
}
