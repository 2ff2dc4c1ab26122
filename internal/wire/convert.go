package wire

import "github.com/generalelectrix/tunnels/internal/mixer"

// FromLeveledCommands splits a Mixer's flattened output into arc and line
// wire records, preserving layer order within each list.
func FromLeveledCommands(cmds []mixer.LeveledCommand) (arcs []ArcRecord, lines []LineRecord) {
	for _, lc := range cmds {
		switch {
		case lc.Command.Arc != nil:
			a := lc.Command.Arc
			arcs = append(arcs, ArcRecord{
				Level:     lc.Level,
				Thickness: float32(a.Thickness),
				Hue:       float32(a.Hue),
				Sat:       float32(a.Sat),
				Val:       a.Val,
				X:         float32(a.X),
				Y:         float32(a.Y),
				RadX:      float32(a.RadX),
				RadY:      float32(a.RadY),
				Start:     float32(a.Start),
				Stop:      float32(a.Stop),
				RotAngle:  float32(a.RotAngle),
			})
		case lc.Command.Line != nil:
			l := lc.Command.Line
			lines = append(lines, LineRecord{
				Level:     lc.Level,
				Thickness: float32(l.Thickness),
				Hue:       float32(l.Hue),
				Sat:       float32(l.Sat),
				Val:       l.Val,
				X:         float32(l.X),
				Y:         float32(l.Y),
				Length:    float32(l.Length),
				Start:     float32(l.Start),
				Stop:      float32(l.Stop),
				RotAngle:  float32(l.RotAngle),
			})
		}
	}
	return arcs, lines
}

// BuildFrame assembles a Frame from a tick's leveled commands for one
// channel. When both arcs and lines are present, the frame's envelope is
// a type_tag=0 collection of the two typed lists; a single-kind frame
// uses the corresponding type_tag directly; an empty tick is a
// type_tag=0, count=0 collection.
func BuildFrame(number uint32, timestampMs int64, cmds []mixer.LeveledCommand) Frame {
	arcs, lines := FromLeveledCommands(cmds)

	switch {
	case len(arcs) == 0 && len(lines) == 0:
		return NewEmptyFrame(number, timestampMs)
	case len(lines) == 0:
		return NewArcsFrame(number, timestampMs, arcs)
	case len(arcs) == 0:
		return NewLinesFrame(number, timestampMs, lines)
	default:
		return Frame{
			Number:    number,
			Timestamp: timestampMs,
			Envelope:  Envelope{Tag: TagCollection, Arcs: arcs, Lines: lines},
		}
	}
}
