// Package control implements the ControlMapper: a binding
// table routing (surface, control) events to scene mutations under a
// single scene lock, with pages/banks state and echo-back to
// bind-mirrored surfaces.
package control

import (
	"math"

	"github.com/generalelectrix/tunnels/internal/param"
)

// Curve is a mapping curve applied to a raw controller value before it
// reaches the scene.
type Curve int

const (
	CurveLinear Curve = iota
	CurveLog
	CurveExponential
)

// Apply maps a raw [0,1] controller value through the curve into [0,1].
func (c Curve) Apply(raw float64) float64 {
	if raw < 0 {
		raw = 0
	} else if raw > 1 {
		raw = 1
	}
	switch c {
	case CurveLog:
		return logCurve(raw)
	case CurveExponential:
		return raw * raw
	default:
		return raw
	}
}

func logCurve(raw float64) float64 {
	// log10(9*raw + 1) / log10(10) maps [0,1] -> [0,1] with a log taper.
	const scale = 9.0
	return math.Log10(scale*raw+1) / math.Log10(scale+1)
}

// TargetKind distinguishes what a binding mutates: a mixer layer's level
// state, a beam parameter, or an animator slot knob.
type TargetKind int

const (
	TargetLayerLevel TargetKind = iota
	TargetLayerMask
	TargetLayerBump
	TargetBeamParam
	TargetAnimatorTarget
	TargetAnimatorSpeed
	TargetAnimatorWeight
	TargetClockTap
	TargetClockNudge
)

// PageRelative is the sentinel Layer/AnimSlot value meaning "resolve
// against the surface's current page/bank selection" rather than a fixed
// index.
const PageRelative = -1

// Target is the scene-relative destination a binding resolves to.
type Target struct {
	Kind     TargetKind
	Layer    int // fixed layer index, or PageRelative
	AnimSlot int // fixed animator slot, or PageRelative
	ParamID  param.ID
	Curve    Curve
}

// SurfaceControl identifies one physical control on one surface: the
// pair (surface_id, control_id).
type SurfaceControl struct {
	SurfaceID string
	ControlID string
}

// Table is the binding table: (surface, control) -> target.
// Read-mostly; remap operations take a short lock and are applied at the
// next tick boundary, modeled here by Table being owned
// exclusively by the ControlMapper and mutated only via SetBinding.
type Table struct {
	bindings map[SurfaceControl]Target
}

// NewTable returns an empty binding table.
func NewTable() *Table {
	return &Table{bindings: make(map[SurfaceControl]Target)}
}

// SetBinding installs or replaces a binding (a "remap operation").
func (t *Table) SetBinding(sc SurfaceControl, target Target) {
	t.bindings[sc] = target
}

// RemoveBinding deletes a binding.
func (t *Table) RemoveBinding(sc SurfaceControl) {
	delete(t.bindings, sc)
}

// Lookup resolves a surface control to its target, if bound.
func (t *Table) Lookup(sc SurfaceControl) (Target, bool) {
	tgt, ok := t.bindings[sc]
	return tgt, ok
}

// Bindings returns every bound (surface, control) pair, for snapshotting a
// page's full state to a surface on page change.
func (t *Table) Bindings() map[SurfaceControl]Target {
	out := make(map[SurfaceControl]Target, len(t.bindings))
	for k, v := range t.bindings {
		out[k] = v
	}
	return out
}
