package publish

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicFanOutToSubscriber(t *testing.T) {
	topic := NewTopic(nil)
	srv := httptest.NewServer(http.HandlerFunc(topic.ServeHTTP))
	defer srv.Close()

	wsURL := "ws" + srv.URL[len("http"):]
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for topic.subscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, 1, topic.subscriberCount())

	topic.Publish([]byte("hello"))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(msg))
}

func TestPublisherNoOpAfterClose(t *testing.T) {
	p := New(2, nil)
	topic := p.Topic(0)
	require.NotNil(t, topic)

	p.Close()
	p.PublishFrame(0, []byte("dropped"))
	assert.Equal(t, 0, topic.subscriberCount())
}

func TestPublishDoesNotBlockWhenQueueFull(t *testing.T) {
	topic := NewTopic(nil)
	s := &subscriber{send: make(chan []byte, subscriberQueueDepth), done: make(chan struct{})}
	topic.subs[s] = struct{}{}

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberQueueDepth*3; i++ {
			topic.Publish([]byte{byte(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber queue")
	}
}

func TestTopicOutOfRangeChannelReturnsNil(t *testing.T) {
	p := New(1, nil)
	assert.Nil(t, p.Topic(-1))
	assert.Nil(t, p.Topic(5))
}
