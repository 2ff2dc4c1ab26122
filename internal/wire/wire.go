// Package wire implements the frame wire format: a
// self-describing binary record per video channel, MessagePack-encoded
// via vmihailenco/msgpack, with a type-tagged envelope distinguishing a
// collection (empty, or holding both an arc list and a line list), an arc
// list, or a line list.
package wire

import (
	"github.com/vmihailenco/msgpack/v5"
)

// TypeTag selects the payload shape of a Frame's envelope.
type TypeTag int

const (
	TagCollection TypeTag = 0
	TagArcs       TypeTag = 1
	TagLines      TypeTag = 2
)

// ArcRecord is the wire-level arc record. Field order here is the msgpack array encoding order and must
// not change without bumping a wire version.
type ArcRecord struct {
	_msgpack  struct{} `msgpack:",asArray"`
	Level     uint32
	Thickness float32
	Hue       float32
	Sat       float32
	Val       uint32
	X         float32
	Y         float32
	RadX      float32
	RadY      float32
	Start     float32
	Stop      float32
	RotAngle  float32
}

// LineRecord is the wire-level line record.
type LineRecord struct {
	_msgpack  struct{} `msgpack:",asArray"`
	Level     uint32
	Thickness float32
	Hue       float32
	Sat       float32
	Val       uint32
	X         float32
	Y         float32
	Length    float32
	Start     float32
	Stop      float32
	RotAngle  float32
}

// Envelope is the `[type_tag, payload]` pair. TagArcs populates only Arcs,
// TagLines populates only Lines, and TagCollection carries both lists
// (both empty for an empty frame).
type Envelope struct {
	_msgpack struct{} `msgpack:",asArray"`
	Tag      TypeTag
	Arcs     []ArcRecord
	Lines    []LineRecord
}

// Frame is one published message: a monotonic frame number, a millisecond
// timestamp since an arbitrary epoch, and the draw-entity envelope.
type Frame struct {
	_msgpack  struct{} `msgpack:",asArray"`
	Number    uint32
	Timestamp int64
	Envelope  Envelope
}

// NewEmptyFrame returns a type_tag=0, count=0 frame.
func NewEmptyFrame(number uint32, timestampMs int64) Frame {
	return Frame{
		Number:    number,
		Timestamp: timestampMs,
		Envelope:  Envelope{Tag: TagCollection},
	}
}

// NewArcsFrame wraps a list of arcs as a type_tag=1 frame.
func NewArcsFrame(number uint32, timestampMs int64, arcs []ArcRecord) Frame {
	return Frame{
		Number:    number,
		Timestamp: timestampMs,
		Envelope:  Envelope{Tag: TagArcs, Arcs: arcs},
	}
}

// NewLinesFrame wraps a list of lines as a type_tag=2 frame.
func NewLinesFrame(number uint32, timestampMs int64, lines []LineRecord) Frame {
	return Frame{
		Number:    number,
		Timestamp: timestampMs,
		Envelope:  Envelope{Tag: TagLines, Lines: lines},
	}
}

// Encode serializes a Frame to its MessagePack-family binary form.
func Encode(f Frame) ([]byte, error) {
	return msgpack.Marshal(&f)
}

// Decode parses a Frame from its MessagePack-family binary form.
func Decode(b []byte) (Frame, error) {
	var f Frame
	err := msgpack.Unmarshal(b, &f)
	return f, err
}
