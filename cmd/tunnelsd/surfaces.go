package main

import (
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/generalelectrix/tunnels/internal/config"
	"github.com/generalelectrix/tunnels/internal/control/midimap"
	"github.com/generalelectrix/tunnels/internal/control/oscmap"
	"github.com/generalelectrix/tunnels/internal/logging"
)

// connectMIDISurface opens a midimap.Transport for the configured surface,
// resolving its named ports against the system's available MIDI ports. A
// missing port name leaves that side nil (write-only or read-only
// surface) rather than failing the whole surface.
func connectMIDISurface(sfCfg config.Surface, log *logging.Logger) *midimap.Transport {
	t := midimap.New(sfCfg.ID, log)
	in := findMIDIInput(sfCfg.MIDIInput)
	out := findMIDIOutput(sfCfg.MIDIOutput)
	if err := t.Connect(in, out); err != nil {
		log.Errorf("midi surface %s: connect: %v", sfCfg.ID, err)
	}
	return t
}

func findMIDIInput(name string) drivers.In {
	if name == "" {
		return nil
	}
	for _, p := range midimap.InputPorts() {
		if p.String() == name {
			return p
		}
	}
	return nil
}

func findMIDIOutput(name string) drivers.Out {
	if name == "" {
		return nil
	}
	for _, p := range midimap.OutputPorts() {
		if p.String() == name {
			return p
		}
	}
	return nil
}

// connectOSCSurface opens an oscmap.Transport for the configured surface,
// listening for incoming OSC messages and echoing back to its configured
// remote host/port.
func connectOSCSurface(sfCfg config.Surface, log *logging.Logger) *oscmap.Transport {
	t := oscmap.New(sfCfg.ID, sfCfg.OSCRemoteHost, sfCfg.OSCRemotePort, log)
	if err := t.Listen(sfCfg.OSCListenAddr); err != nil {
		log.Errorf("osc surface %s: listen: %v", sfCfg.ID, err)
	}
	return t
}
