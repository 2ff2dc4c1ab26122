package beam

import "github.com/generalelectrix/tunnels/internal/animator"

// Beam is the sum type of drawable entities. Tick evaluates the animator
// bank against the given clock phase, advances the beam's own continuous
// state (marquee offset, rotation phase) by dt, and caches the resolved
// parameters; Draw emits this tick's draw commands from that cache without
// advancing any state.
type Beam interface {
	Tick(dt float64, clockPhase float64)
	Draw(clockPhase float64) []Command
	Modulator() *animator.ClipModulator
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
