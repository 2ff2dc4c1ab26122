package metronome

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSoftClipBounded(t *testing.T) {
	assert.Equal(t, 1.0, softClip(5))
	assert.Equal(t, -1.0, softClip(-5))
	assert.InDelta(t, 0, softClip(0), 1e-9)
}

func TestBeatTriggersEnvelopeWhenEnabled(t *testing.T) {
	m := &Metronome{enabled: true, freq: clickFrequencyHz}
	m.Beat(1)
	assert.Equal(t, 1.0, m.envelope)
	assert.Equal(t, float64(clickFrequencyHz), m.freq)
}

func TestBeatIsNoOpWhenDisabled(t *testing.T) {
	m := &Metronome{enabled: false}
	m.Beat(4)
	assert.Equal(t, 0.0, m.envelope)
}

func TestDownbeatUsesHigherFrequency(t *testing.T) {
	m := &Metronome{enabled: true}
	m.Beat(8) // 8 % 4 == 0
	assert.Equal(t, float64(downbeatFrequencyHz), m.freq)

	m.Beat(9)
	assert.Equal(t, float64(clickFrequencyHz), m.freq)
}

func TestClickStreamReadDecaysEnvelope(t *testing.T) {
	m := &Metronome{enabled: true, freq: clickFrequencyHz}
	m.Beat(0)
	stream := &clickStream{m: m}

	buf := make([]byte, 4*256)
	n, err := stream.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Less(t, m.envelope, 1.0)
}

func TestClickStreamReadSilentWhenEnvelopeDecayed(t *testing.T) {
	m := &Metronome{envelope: 0}
	stream := &clickStream{m: m}
	buf := make([]byte, 16)
	_, err := stream.Read(buf)
	assert.NoError(t, err)
	for _, b := range buf {
		assert.Equal(t, byte(0), b)
	}
}
