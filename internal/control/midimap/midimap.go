// Package midimap adapts gomidi/midi's driver API into the ControlMapper's
// transport contract: it decodes Control Change messages
// into normalized InputEvents on a bounded queue, and accepts reverse CC
// writes for LED/value echo-back. Same driver, same listen/connect/
// disconnect shape as a typical gomidi Handler, generalized from a fixed
// mixer-channel CC map to the binding table's free-form control IDs.
package midimap

import (
	"fmt"
	"strconv"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/generalelectrix/tunnels/internal/control"
	"github.com/generalelectrix/tunnels/internal/logging"
)

// eventQueueDepth bounds the lock-free input queue the tick thread drains
// at the start of each tick.
const eventQueueDepth = 256

// Transport owns one MIDI input/output port pair for one surface, such
// as an APC40 or APC20.
type Transport struct {
	surfaceID string
	inPort    drivers.In
	outPort   drivers.Out
	stopFunc  func()
	events    chan control.InputEvent

	mu        sync.RWMutex
	connected bool
	log       *logging.Logger
}

// New returns a disconnected Transport for the given surface id.
func New(surfaceID string, log *logging.Logger) *Transport {
	return &Transport{
		surfaceID: surfaceID,
		events:    make(chan control.InputEvent, eventQueueDepth),
		log:       log,
	}
}

// InputPorts lists available MIDI input ports.
func InputPorts() []drivers.In { return midi.GetInPorts() }

// OutputPorts lists available MIDI output ports.
func OutputPorts() []drivers.Out { return midi.GetOutPorts() }

// Connect opens in/out ports and starts listening.
func (t *Transport) Connect(in drivers.In, out drivers.Out) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.connected {
		t.disconnectLocked()
	}
	t.inPort = in
	t.outPort = out

	if out != nil {
		if err := out.Open(); err != nil {
			return fmt.Errorf("midimap: open output port: %w", err)
		}
	}
	if in != nil {
		stop, err := midi.ListenTo(in, t.handleMIDI, midi.UseSysEx())
		if err != nil {
			if out != nil {
				out.Close()
			}
			return fmt.Errorf("midimap: listen on input port: %w", err)
		}
		t.stopFunc = stop
	}

	t.connected = true
	return nil
}

// handleMIDI decodes a Control Change into an InputEvent normalized to
// [0,1] (CC values are 0-127) and enqueues it without blocking; a full
// queue drops the event.
func (t *Transport) handleMIDI(msg midi.Message, timestampMs int32) {
	var ch, cc, val uint8
	if !msg.GetControlChange(&ch, &cc, &val) {
		return
	}
	ev := control.InputEvent{
		Surface:   t.surfaceID,
		Control:   ccControlID(ch, cc),
		Value:     float64(val) / 127.0,
		Timestamp: float64(timestampMs) / 1000.0,
	}
	select {
	case t.events <- ev:
	default:
		if t.log != nil {
			t.log.RateLimitedErrorf(t.surfaceID, "midimap: input queue full on %s, dropping event", t.surfaceID)
		}
	}
}

// ccControlID names a control by MIDI channel and CC number, matching the
// ControlID half of the binding table's (surface, control) key.
func ccControlID(channel, cc uint8) string {
	return "cc" + strconv.Itoa(int(channel)) + "." + strconv.Itoa(int(cc))
}

// Events returns the channel the tick thread drains at the start of each
// tick.
func (t *Transport) Events() <-chan control.InputEvent { return t.events }

// Drain pulls every currently queued event without blocking.
func (t *Transport) Drain() []control.InputEvent {
	var out []control.InputEvent
	for {
		select {
		case ev := <-t.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// SendEcho writes a reverse CC update to the surface for LED/value echo.
// A no-op if disconnected or output-less.
func (t *Transport) SendEcho(update control.EchoUpdate) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.outPort == nil || !t.connected {
		return nil
	}
	ch, cc, err := parseCCControlID(update.Control)
	if err != nil {
		return nil
	}
	val := uint8(update.Value*127 + 0.5)
	return t.outPort.Send(midi.ControlChange(ch, cc, val))
}

func parseCCControlID(id string) (channel, cc uint8, err error) {
	var chInt, ccInt int
	n, err := fmt.Sscanf(id, "cc%d.%d", &chInt, &ccInt)
	if err != nil || n != 2 {
		return 0, 0, fmt.Errorf("midimap: not a cc control id: %q", id)
	}
	return uint8(chInt), uint8(ccInt), nil
}

// IsConnected reports whether the transport currently has an open port.
func (t *Transport) IsConnected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.connected
}

func (t *Transport) disconnectLocked() {
	if t.stopFunc != nil {
		t.stopFunc()
		t.stopFunc = nil
	}
	if t.outPort != nil {
		t.outPort.Close()
	}
	t.connected = false
}

// Close shuts the transport down cleanly.
func (t *Transport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disconnectLocked()
}
