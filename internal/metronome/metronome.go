// Package metronome implements an audible tempo click, streamed through
// oto the same way a softsynth engine streams its voices: one oto.Player
// reading from a io.Reader that synthesizes samples on demand under a
// mutex, with output soft-clipped before quantizing to PCM16. It drives
// a single click voice from the show clock's beat number instead of a
// step sequencer.
package metronome

import (
	"math"
	"sync"

	"github.com/hajimehoshi/oto/v2"
)

const (
	sampleRate   = 44100
	channelCount = 2
	bitDepth     = 2

	clickDurationSeconds = 0.03
	clickFrequencyHz     = 1800 // regular (non-downbeat) click
	downbeatFrequencyHz  = 2600 // first beat of the bar gets a higher click
)

// Metronome synthesizes a short click each time Beat is called, streaming
// it out through an oto.Player — samples generated lazily in Read, guarded
// by a mutex, never precomputed into a buffer the tick loop would have to
// own.
type Metronome struct {
	ctx    *oto.Context
	player oto.Player

	mu       sync.Mutex
	enabled  bool
	phase    float64 // radians
	envelope float64 // [0,1], decays each sample once triggered
	freq     float64
}

// New opens an oto playback context and starts streaming silence until the
// first Beat call.
func New() (*Metronome, error) {
	ctx, ready, err := oto.NewContext(sampleRate, channelCount, bitDepth)
	if err != nil {
		return nil, err
	}
	<-ready

	m := &Metronome{ctx: ctx, freq: clickFrequencyHz}
	m.player = ctx.NewPlayer(&clickStream{m: m})
	m.player.Play()
	return m, nil
}

// Enable turns the audible click on or off without tearing down the
// underlying player.
func (m *Metronome) Enable(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = on
}

// Beat retriggers the click envelope. beatNumber mod 4 == 0 is treated as
// a downbeat and gets the higher-pitched click, mirroring how a real
// metronome accents the first beat of a bar.
func (m *Metronome) Beat(beatNumber uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}
	m.envelope = 1.0
	m.phase = 0
	if beatNumber%4 == 0 {
		m.freq = downbeatFrequencyHz
	} else {
		m.freq = clickFrequencyHz
	}
}

// Close stops playback and releases the player.
func (m *Metronome) Close() {
	m.mu.Lock()
	m.enabled = false
	m.mu.Unlock()
	if m.player != nil {
		m.player.Close()
	}
}

// clickDecayPerSample is the per-sample envelope multiplier that drives
// the click to ~0 over clickDurationSeconds.
var clickDecayPerSample = math.Pow(0.001, 1.0/(sampleRate*clickDurationSeconds))

type clickStream struct {
	m *Metronome
}

func (s *clickStream) Read(buf []byte) (int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	samples := len(buf) / 4
	for i := 0; i < samples; i++ {
		var sample float64
		if s.m.envelope > 1e-4 {
			sample = math.Sin(s.m.phase) * s.m.envelope
			s.m.phase += 2 * math.Pi * s.m.freq / sampleRate
			s.m.envelope *= clickDecayPerSample
		}
		sample = softClip(sample)

		v := int16(sample * 32767 * 0.8)
		idx := i * 4
		buf[idx] = byte(v)
		buf[idx+1] = byte(v >> 8)
		buf[idx+2] = byte(v)
		buf[idx+3] = byte(v >> 8)
	}
	return len(buf), nil
}

func softClip(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return 1.5*x - 0.5*x*x*x
}
