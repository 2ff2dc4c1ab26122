package control

import (
	"sync"

	"github.com/generalelectrix/tunnels/internal/scene"
)

// InputEvent is one decoded controller event, independent of transport
// (MIDI CC or OSC message), enqueued by a transport thread and drained by
// the tick thread.
type InputEvent struct {
	Surface   string
	Control   string
	Value     float64 // raw, already normalized to [0,1] by the transport
	Timestamp float64 // seconds, for tap-tempo targets
}

// EchoUpdate is a reverse update pushed back out to a surface after a
// scene mutation.
type EchoUpdate struct {
	Surface string
	Control string
	Value   float64
}

// page tracks one controller's local, non-scene UI state: which mixer
// layer and which animator bank slot it currently addresses. Page/bank changes are local state mutations, not
// scene mutations.
type page struct {
	selectedLayer int
	selectedBank  int
}

// Mapper is the ControlMapper: it owns the binding table, a
// per-surface page/bank cursor, and the single scene lock under which all
// mutation happens.
type Mapper struct {
	Table *Table
	Scene *scene.Scene

	mu    sync.Mutex // the "single scene lock"
	pages map[string]*page

	echo chan EchoUpdate
}

// NewMapper returns a Mapper bound to the given scene and binding table.
// echoQueueDepth bounds the reverse-update queue drained by the (optional)
// controller output thread.
func NewMapper(sc *scene.Scene, table *Table, echoQueueDepth int) *Mapper {
	return &Mapper{
		Table: table,
		Scene: sc,
		pages: make(map[string]*page),
		echo:  make(chan EchoUpdate, echoQueueDepth),
	}
}

// Echo returns the channel of reverse updates for surfaces to consume.
func (m *Mapper) Echo() <-chan EchoUpdate { return m.echo }

func (m *Mapper) pageFor(surface string) *page {
	p, ok := m.pages[surface]
	if !ok {
		p = &page{}
		m.pages[surface] = p
	}
	return p
}

// SelectLayer is a local page-state mutation: it does not
// touch scene state, and pushes a full snapshot of the new page back to
// the surface.
func (m *Mapper) SelectLayer(surface string, layer int) {
	m.mu.Lock()
	p := m.pageFor(surface)
	p.selectedLayer = layer
	m.mu.Unlock()
	m.pushPageSnapshot(surface)
}

// SelectBank is a local page-state mutation selecting which animator slot
// of the currently selected beam the surface's bank controls address.
func (m *Mapper) SelectBank(surface string, bank int) {
	m.mu.Lock()
	p := m.pageFor(surface)
	p.selectedBank = bank
	m.mu.Unlock()
	m.pushPageSnapshot(surface)
}

// Apply mutates scene state under a single scene lock, then enqueues
// echo updates to every surface bound to the same target. Last writer
// wins on conflicting surfaces; echoes go out after every mutation.
func (m *Mapper) Apply(ev InputEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sc := SurfaceControl{SurfaceID: ev.Surface, ControlID: ev.Control}
	target, ok := m.Table.Lookup(sc)
	if !ok {
		return
	}

	value := target.Curve.Apply(ev.Value)
	m.mutate(ev.Surface, target, value, ev.Timestamp)
	m.enqueueEchoesForTarget(target, value)
}

// ApplyBatch drains a queue's worth of events in order.
func (m *Mapper) ApplyBatch(events []InputEvent) {
	for _, ev := range events {
		m.Apply(ev)
	}
}

func (m *Mapper) mutate(surface string, target Target, value float64, timestamp float64) {
	p := m.pageFor(surface)
	layer := target.Layer
	if layer < 0 {
		layer = p.selectedLayer
	}
	slot := target.AnimSlot
	if slot < 0 {
		slot = p.selectedBank
	}

	switch target.Kind {
	case TargetLayerLevel:
		m.Scene.SetLayerLevel(layer, value)
	case TargetLayerMask:
		if value > 0.5 {
			m.Scene.ToggleMask(layer)
		}
	case TargetLayerBump:
		if value > 0.5 {
			m.Scene.Bump(layer)
		}
	case TargetBeamParam:
		m.Scene.SetBeamParam(layer, target.ParamID, value)
	case TargetAnimatorTarget:
		m.Scene.SetAnimatorTarget(layer, slot, target.ParamID)
	case TargetAnimatorSpeed:
		// animator speed is bipolar [-0.5, 0.5]; map the unipolar curve
		// output onto that range around a detented zero at value=0.5.
		m.Scene.SetAnimatorSpeed(layer, slot, value-0.5)
	case TargetAnimatorWeight:
		m.Scene.SetAnimatorWeight(layer, slot, value)
	case TargetClockTap:
		if value > 0.5 {
			m.Scene.TapTempo(timestamp)
		}
	case TargetClockNudge:
		if value > 0.5 {
			m.Scene.NudgeClock()
		}
	}
}

func (m *Mapper) enqueueEchoesForTarget(target Target, value float64) {
	for sc, t := range m.Table.Bindings() {
		if !sameTarget(t, target) {
			continue
		}
		select {
		case m.echo <- EchoUpdate{Surface: sc.SurfaceID, Control: sc.ControlID, Value: value}:
		default:
			// Output queue full: drop the echo rather than block the
			// scene-owning tick thread.
		}
	}
}

func sameTarget(a, b Target) bool {
	return a.Kind == b.Kind && a.Layer == b.Layer && a.AnimSlot == b.AnimSlot && a.ParamID == b.ParamID
}

// pushPageSnapshot enqueues an echo update per binding relevant to the
// surface's newly selected page.
func (m *Mapper) pushPageSnapshot(surface string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sc := range m.Table.Bindings() {
		if sc.SurfaceID != surface {
			continue
		}
		select {
		case m.echo <- EchoUpdate{Surface: sc.SurfaceID, Control: sc.ControlID, Value: 0}:
		default:
		}
	}
}
