// Package param defines the closed set of scalar parameters a ClipModulator
// can target: an enumerated ID in place of dynamic string-keyed parameter
// dispatch, split by the beam variant that owns each id.
package param

// ID identifies one modulatable scalar on a beam. The zero value, None,
// means "this animator targets nothing".
type ID int

const (
	None ID = iota

	// Tunnel parameters.
	TunnelRotationSpeed
	TunnelThickness
	TunnelSize
	TunnelAspectRatio
	TunnelColCenter
	TunnelColWidth
	TunnelColSpread
	TunnelColSaturation
	TunnelBlacking
	TunnelPositionX
	TunnelPositionY
	TunnelMarqueeSpeed

	// Beam-line parameters.
	LineThickness
	LineLength
	LinePositionX
	LinePositionY
	LineRotation
	LineColor
	LineStartPhase
	LineStopPhase
)

// Kind describes how a parameter's modulated value must be resolved:
// wrapped (phases), clamped to [0,1] (levels/saturations), or left
// unconstrained (speeds).
type Kind int

const (
	KindUnconstrained Kind = iota
	KindClamp01
	KindWrapPhase
)

var kinds = map[ID]Kind{
	TunnelRotationSpeed: KindUnconstrained,
	TunnelThickness:     KindClamp01,
	TunnelSize:          KindClamp01,
	TunnelAspectRatio:   KindClamp01,
	TunnelColCenter:     KindWrapPhase,
	TunnelColWidth:      KindClamp01,
	TunnelColSpread:     KindClamp01,
	TunnelColSaturation: KindClamp01,
	TunnelBlacking:      KindUnconstrained,
	TunnelPositionX:     KindUnconstrained,
	TunnelPositionY:     KindUnconstrained,
	TunnelMarqueeSpeed:  KindUnconstrained,

	LineThickness:  KindClamp01,
	LineLength:     KindClamp01,
	LinePositionX:  KindUnconstrained,
	LinePositionY:  KindUnconstrained,
	LineRotation:   KindWrapPhase,
	LineColor:      KindWrapPhase,
	LineStartPhase: KindWrapPhase,
	LineStopPhase:  KindWrapPhase,
}

// KindOf reports how a parameter's value must be resolved after modulation.
func KindOf(id ID) Kind {
	if k, ok := kinds[id]; ok {
		return k
	}
	return KindUnconstrained
}

// TunnelTargets lists the parameters a Tunnel's ClipModulator may target.
func TunnelTargets() []ID {
	return []ID{
		TunnelRotationSpeed, TunnelThickness, TunnelSize, TunnelAspectRatio,
		TunnelColCenter, TunnelColWidth, TunnelColSpread, TunnelColSaturation,
		TunnelBlacking, TunnelPositionX, TunnelPositionY, TunnelMarqueeSpeed,
	}
}

// LineTargets lists the parameters a Beam-line's ClipModulator may target.
func LineTargets() []ID {
	return []ID{
		LineThickness, LineLength, LinePositionX, LinePositionY,
		LineRotation, LineColor, LineStartPhase, LineStopPhase,
	}
}
