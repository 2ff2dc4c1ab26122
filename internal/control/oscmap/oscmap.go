// Package oscmap adapts hypebeast/go-osc into the ControlMapper's
// transport contract, mirroring midimap's shape (bounded input queue,
// non-blocking enqueue, echo-back) for the OSC surface.
package oscmap

import (
	"fmt"
	"net"
	"sync"

	"github.com/hypebeast/go-osc/osc"

	"github.com/generalelectrix/tunnels/internal/control"
	"github.com/generalelectrix/tunnels/internal/logging"
)

const eventQueueDepth = 256

// Transport owns one OSC server (listening for incoming messages from one
// surface) and a client (for echo-back writes to the same surface).
type Transport struct {
	surfaceID string
	server    *osc.Server
	conn      net.PacketConn
	client    *osc.Client
	events    chan control.InputEvent
	log       *logging.Logger

	mu      sync.Mutex
	running bool
}

// New returns a Transport for the given surface, echoing back to
// remoteHost:remotePort. It receives nothing until Listen is called.
func New(surfaceID, remoteHost string, remotePort int, log *logging.Logger) *Transport {
	return &Transport{
		surfaceID: surfaceID,
		client:    osc.NewClient(remoteHost, remotePort),
		events:    make(chan control.InputEvent, eventQueueDepth),
		log:       log,
	}
}

// Listen starts the OSC server on listenAddr (e.g. "0.0.0.0:8765") in its
// own goroutine, one per transport. The first argument of every incoming
// message (float32, float64, int32, or bool as 1/0) becomes the event value
// as-is, without rescaling, and is enqueued non-blocking; messages with no
// argument or another argument type are dropped.
func (t *Transport) Listen(listenAddr string) error {
	d := osc.NewStandardDispatcher()
	if err := d.AddMsgHandler("*", t.handleMessage); err != nil {
		return fmt.Errorf("oscmap: register dispatcher: %w", err)
	}

	conn, err := net.ListenPacket("udp", listenAddr)
	if err != nil {
		return fmt.Errorf("oscmap: listen on %s: %w", listenAddr, err)
	}

	t.mu.Lock()
	t.conn = conn
	t.server = &osc.Server{Dispatcher: d}
	t.running = true
	t.mu.Unlock()

	go func() {
		if err := t.server.Serve(conn); err != nil {
			if t.log != nil {
				t.log.RateLimitedErrorf(t.surfaceID, "oscmap: server on %s: %v", t.surfaceID, err)
			}
			t.mu.Lock()
			t.running = false
			t.mu.Unlock()
		}
	}()
	return nil
}

func (t *Transport) handleMessage(msg *osc.Message) {
	if len(msg.Arguments) == 0 {
		return
	}
	val, ok := normalizeArg(msg.Arguments[0])
	if !ok {
		return
	}
	ev := control.InputEvent{
		Surface: t.surfaceID,
		Control: msg.Address,
		Value:   val,
	}
	select {
	case t.events <- ev:
	default:
		if t.log != nil {
			t.log.RateLimitedErrorf(t.surfaceID, "oscmap: input queue full on %s, dropping event", t.surfaceID)
		}
	}
}

func normalizeArg(arg any) (float64, bool) {
	switch v := arg.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int32:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
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

// SendEcho writes a reverse update back to the surface as a single-float
// OSC message at the control's address.
func (t *Transport) SendEcho(update control.EchoUpdate) error {
	msg := osc.NewMessage(update.Control)
	msg.Append(float32(update.Value))
	return t.client.Send(msg)
}

// IsRunning reports whether the OSC server goroutine is still serving.
func (t *Transport) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Close shuts down the OSC server by closing its underlying connection.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	if t.conn == nil {
		return nil
	}
	return t.conn.Close()
}
