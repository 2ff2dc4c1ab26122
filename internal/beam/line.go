package beam

import (
	"github.com/generalelectrix/tunnels/internal/animator"
	"github.com/generalelectrix/tunnels/internal/param"
)

// LineBeam is the Beam-line entity. Named LineBeam, not Line, because
// Line is already the wire-adjacent draw-command record in command.go —
// the tagged variant keeps the entity and its draw call distinctly named.
type LineBeam struct {
	Thickness  float64
	Length     float64
	PositionX  float64
	PositionY  float64
	Rotation   float64 // phase
	Color      float64 // hue, phase
	StartPhase float64
	StopPhase  float64

	animators *animator.ClipModulator
	cached    lineResolved
}

type lineResolved struct {
	thickness  float64
	length     float64
	positionX  float64
	positionY  float64
	rotation   float64
	color      float64
	startPhase float64
	stopPhase  float64
}

// NewLineBeam returns a Beam-line with a fresh animator bank.
func NewLineBeam() *LineBeam {
	return &LineBeam{
		Thickness: 0.1,
		Length:    0.5,
		animators: animator.New(AnimatorBankSize),
	}
}

func (l *LineBeam) Modulator() *animator.ClipModulator { return l.animators }

func (l *LineBeam) Tick(dt float64, clockPhase float64) {
	mod := l.animators.Evaluate(clockPhase, dt)

	l.cached = lineResolved{
		thickness:  clamp01(l.Thickness + mod[param.LineThickness]),
		length:     clamp01(l.Length + mod[param.LineLength]),
		positionX:  l.PositionX + mod[param.LinePositionX],
		positionY:  l.PositionY + mod[param.LinePositionY],
		rotation:   wrap(l.Rotation + mod[param.LineRotation]),
		color:      wrap(l.Color + mod[param.LineColor]),
		startPhase: wrap(l.StartPhase + mod[param.LineStartPhase]),
		stopPhase:  wrap(l.StopPhase + mod[param.LineStopPhase]),
	}
}

func (l *LineBeam) Draw(clockPhase float64) []Command {
	p := l.cached
	line := &Line{
		Thickness: p.thickness,
		Hue:       p.color,
		Sat:       1,
		Val:       255,
		X:         p.positionX,
		Y:         p.positionY,
		Length:    p.length,
		Start:     p.startPhase,
		Stop:      p.stopPhase,
		RotAngle:  p.rotation,
	}
	return []Command{{Line: line}}
}
