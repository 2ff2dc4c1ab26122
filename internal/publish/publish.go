// Package publish implements the FramePublisher: an unreliable,
// drop-old publish/subscribe fan-out of per-channel wire frames over
// gorilla/websocket, standing in for a raw TCP pub/sub socket (no
// nanomsg/zmq-family transport exists in this project's dependency
// stack; websocket fan-out is the idiomatic substitute pulled from the
// broader dependency pack).
package publish

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/generalelectrix/tunnels/internal/logging"
)

// subscriberQueueDepth bounds each subscriber's outbound queue; on lag the
// publisher drops the oldest queued frame and keeps sending the newest.
const subscriberQueueDepth = 4

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Topic fans out one video channel's frames to any number of subscriber
// connections.
type Topic struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
	log  *logging.Logger
}

type subscriber struct {
	send chan []byte
	done chan struct{}
}

// NewTopic returns an empty topic.
func NewTopic(log *logging.Logger) *Topic {
	return &Topic{subs: make(map[*subscriber]struct{}), log: log}
}

// Publish enqueues frame to every current subscriber without blocking: a
// subscriber whose queue is full has its oldest pending frame dropped to
// make room for the newest. Publish itself never blocks on a
// slow subscriber.
func (t *Topic) Publish(frame []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for s := range t.subs {
		select {
		case s.send <- frame:
		default:
			// Queue full: drop the oldest, then enqueue the newest.
			select {
			case <-s.send:
			default:
			}
			select {
			case s.send <- frame:
			default:
			}
		}
	}
}

// ServeHTTP upgrades an incoming request to a websocket connection and
// registers it as a subscriber on this topic, writing each published frame
// to it until a write fails. Publisher.Close does not end the connection
// or unregister the subscriber.
func (t *Topic) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if t.log != nil {
			t.log.Errorf("websocket upgrade failed: %v", err)
		}
		return
	}

	s := &subscriber{
		send: make(chan []byte, subscriberQueueDepth),
		done: make(chan struct{}),
	}
	t.mu.Lock()
	t.subs[s] = struct{}{}
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.subs, s)
		t.mu.Unlock()
		close(s.done)
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// subscriberCount reports the number of currently connected subscribers;
// unexported, used by this package's tests.
func (t *Topic) subscriberCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Publisher owns one Topic per video channel.
type Publisher struct {
	topics []*Topic
	closed bool
	mu     sync.Mutex
}

// New returns a Publisher with one topic per channel in [0, numChannels).
func New(numChannels int, log *logging.Logger) *Publisher {
	topics := make([]*Topic, numChannels)
	for i := range topics {
		topics[i] = NewTopic(log)
	}
	return &Publisher{topics: topics}
}

// Topic returns the topic for the given channel index, or nil if out of
// range.
func (p *Publisher) Topic(channel int) *Topic {
	if channel < 0 || channel >= len(p.topics) {
		return nil
	}
	return p.topics[channel]
}

// PublishFrame publishes an already-encoded wire frame to the given
// channel's topic. A no-op after Close.
func (p *Publisher) PublishFrame(channel int, frame []byte) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return
	}
	if t := p.Topic(channel); t != nil {
		t.Publish(frame)
	}
}

// Close marks the publisher closed; it must only be called after the
// tick thread has exited.
func (p *Publisher) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
