package main

import (
	"strconv"

	"github.com/generalelectrix/tunnels/internal/control"
)

// defaultBindingTable wires a baseline control surface named "apc40" to
// the mixer: one fader/mask/bump/speed/weight control per layer plus two
// global clock buttons. It is the generalized shape of a fixed
// mixer-channel CC map rather than a configurable one — operators wanting
// a different layout remap individual bindings at runtime through the
// Mapper's Table.
func defaultBindingTable(numLayers int) *control.Table {
	const surfaceID = "apc40"
	table := control.NewTable()

	for i := 0; i < numLayers; i++ {
		layer := i
		si := strconv.Itoa(i)

		table.SetBinding(
			control.SurfaceControl{SurfaceID: surfaceID, ControlID: "cc0." + si},
			control.Target{Kind: control.TargetLayerLevel, Layer: layer, AnimSlot: control.PageRelative},
		)
		table.SetBinding(
			control.SurfaceControl{SurfaceID: surfaceID, ControlID: "cc1." + si},
			control.Target{Kind: control.TargetLayerMask, Layer: layer, AnimSlot: control.PageRelative},
		)
		table.SetBinding(
			control.SurfaceControl{SurfaceID: surfaceID, ControlID: "cc2." + si},
			control.Target{Kind: control.TargetLayerBump, Layer: layer, AnimSlot: control.PageRelative},
		)
		table.SetBinding(
			control.SurfaceControl{SurfaceID: surfaceID, ControlID: "cc3." + si},
			control.Target{Kind: control.TargetAnimatorSpeed, Layer: layer, AnimSlot: 0},
		)
		table.SetBinding(
			control.SurfaceControl{SurfaceID: surfaceID, ControlID: "cc4." + si},
			control.Target{Kind: control.TargetAnimatorWeight, Layer: layer, AnimSlot: 0},
		)
	}

	table.SetBinding(
		control.SurfaceControl{SurfaceID: surfaceID, ControlID: "cc5.0"},
		control.Target{Kind: control.TargetClockTap, Layer: control.PageRelative, AnimSlot: control.PageRelative},
	)
	table.SetBinding(
		control.SurfaceControl{SurfaceID: surfaceID, ControlID: "cc5.1"},
		control.Target{Kind: control.TargetClockNudge, Layer: control.PageRelative, AnimSlot: control.PageRelative},
	)

	return table
}
