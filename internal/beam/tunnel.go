package beam

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/generalelectrix/tunnels/internal/animator"
	"github.com/generalelectrix/tunnels/internal/param"
)

// AnimatorBankSize is the fixed N animators per ClipModulator.
const AnimatorBankSize = 4

// Tunnel is the parametric ring-shape entity.
type Tunnel struct {
	RotationSpeed float64 // bipolar [-0.5, 0.5], phase-units/sec
	Thickness     float64 // [0,1]
	Size          float64 // [0,1]
	AspectRatio   float64 // [0,1]
	ColCenter     float64 // hue, phase [0,1)
	ColWidth      float64 // [0,1]
	ColSpread     float64 // [0,1]
	ColSaturation float64 // [0,1]
	Segments      int     // >= 1
	Blacking      int     // negative=gap pattern, positive=segment-skip
	PositionX     float64
	PositionY     float64
	MarqueeSpeed  float64 // bipolar [-0.5, 0.5], phase-units/sec

	animators *animator.ClipModulator

	marqueeOffset float64 // continuous internal state, not clock-owned
	rotationPhase float64

	// cached holds this tick's resolved (base+modulation) parameter set,
	// computed once in Tick and reused across however many times Mixer
	// calls Draw this tick (once per active video channel).
	cached resolved
}

// NewTunnel returns a Tunnel with a fresh animator bank and the minimum
// legal segment count.
func NewTunnel() *Tunnel {
	return &Tunnel{
		Thickness:     0.5,
		Size:          0.25,
		AspectRatio:   1.0,
		ColSaturation: 1.0,
		Segments:      1,
		animators:     animator.New(AnimatorBankSize),
	}
}

func (t *Tunnel) Modulator() *animator.ClipModulator { return t.animators }

func wrap(p float64) float64 {
	m := math.Mod(p, 1.0)
	if m < 0 {
		m += 1.0
	}
	return m
}

// resolved holds the tunnel's effective (base + modulation, clamped/wrapped)
// parameter set for one tick.
type resolved struct {
	thickness     float64
	size          float64
	aspectRatio   float64
	colCenter     float64
	colWidth      float64
	colSpread     float64
	colSaturation float64
	blacking      int
	positionX     float64
	positionY     float64
}

// Tick advances the animator bank once, then the tunnel's own continuous
// state — marquee offset and rotation phase, driven by the *modulated*
// speed, and caches the resolved non-speed parameters for this tick's
// Draw calls.
func (t *Tunnel) Tick(dt float64, clockPhase float64) {
	mod := t.animators.Evaluate(clockPhase, dt)

	effRotationSpeed := mod[param.TunnelRotationSpeed] + t.RotationSpeed
	effMarqueeSpeed := mod[param.TunnelMarqueeSpeed] + t.MarqueeSpeed

	t.rotationPhase = wrap(t.rotationPhase + effRotationSpeed*dt)
	t.marqueeOffset = wrap(t.marqueeOffset + effMarqueeSpeed*dt)

	t.cached = resolved{
		thickness:     clamp01(t.Thickness + mod[param.TunnelThickness]),
		size:          clamp01(t.Size + mod[param.TunnelSize]),
		aspectRatio:   clamp01(t.AspectRatio + mod[param.TunnelAspectRatio]),
		colCenter:     wrap(t.ColCenter + mod[param.TunnelColCenter]),
		colWidth:      clamp01(t.ColWidth + mod[param.TunnelColWidth]),
		colSpread:     clamp01(t.ColSpread + mod[param.TunnelColSpread]),
		colSaturation: clamp01(t.ColSaturation + mod[param.TunnelColSaturation]),
		blacking:      t.Blacking, // integer selector, not modulated
		positionX:     t.PositionX + mod[param.TunnelPositionX],
		positionY:     t.PositionY + mod[param.TunnelPositionY],
	}
}

// segmentMasked reports whether segment i is blacked out under the given
// blacking pattern: non-negative b masks every (b+1)-th
// segment (a "segment-skip" pattern); negative -b draws only every
// (b+1)-th segment (a "gap" pattern). Zero means no blacking.
func segmentMasked(i, blacking int) bool {
	if blacking == 0 {
		return false
	}
	if blacking > 0 {
		b := blacking
		return (i+1)%(b+1) == 0
	}
	b := -blacking
	return (i+1)%(b+1) != 0
}

// ramp returns a linear ramp across the segments, i/segments, used to
// spread hue and saturation modifiers across the ring.
func ramp(i, segments int) float64 {
	if segments <= 0 {
		return 0
	}
	return float64(i) / float64(segments)
}

// Draw emits one Arc per un-blacked segment from the parameters cached by
// the last Tick call. It performs no modulation evaluation of its own, so
// it is safe to call more than once per tick (once per active video
// channel) without double-advancing animator state. Segments is clamped
// to at least 1.
func (t *Tunnel) Draw(clockPhase float64) []Command {
	segments := t.Segments
	if segments < 1 {
		segments = 1
	}

	p := t.cached
	segmentWidth := 1.0 / float64(segments)

	cmds := make([]Command, 0, segments)
	for i := 0; i < segments; i++ {
		if segmentMasked(i, p.blacking) {
			continue
		}

		centerPhase := wrap(t.marqueeOffset + float64(i)*segmentWidth)
		start := centerPhase
		stop := wrap(centerPhase + segmentWidth*p.thickness)
		r := ramp(i, segments)

		arc := &Arc{
			Thickness: p.thickness,
			Hue:       wrap(p.colCenter + p.colSpread*r),
			Sat:       clamp01(p.colSaturation * (1 - p.colWidth*r)),
			Val:       255,
			X:         p.positionX,
			Y:         p.positionY,
			RadX:      p.size,
			RadY:      p.size * p.aspectRatio,
			Start:     start,
			Stop:      stop,
			RotAngle:  t.rotationPhase,
		}
		cmds = append(cmds, Command{Arc: arc})
	}
	return cmds
}

// PreviewColor returns the tunnel's current ring color as an RGB color for
// operator-facing display (dashboard swatches), using go-colorful's HSV
// conversion rather than hand-rolled color math.
func (t *Tunnel) PreviewColor() colorful.Color {
	return colorful.Hsv(t.cached.colCenter*360, t.cached.colSaturation, 1)
}
