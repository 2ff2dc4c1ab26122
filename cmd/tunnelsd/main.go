// Command tunnelsd runs the tunnel visual engine as a daemon: it ticks a
// Scene, accepts MIDI/OSC control input, and publishes draw-command
// frames to websocket subscribers over HTTP.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/generalelectrix/tunnels/internal/config"
	"github.com/generalelectrix/tunnels/internal/consoledash"
	"github.com/generalelectrix/tunnels/internal/control"
	"github.com/generalelectrix/tunnels/internal/control/midimap"
	"github.com/generalelectrix/tunnels/internal/control/oscmap"
	"github.com/generalelectrix/tunnels/internal/logging"
	"github.com/generalelectrix/tunnels/internal/metronome"
	"github.com/generalelectrix/tunnels/internal/publish"
	"github.com/generalelectrix/tunnels/internal/scene"
	"github.com/generalelectrix/tunnels/internal/show"
)

const echoQueueDepth = 256

func main() {
	fs := pflag.NewFlagSet("tunnelsd", pflag.ExitOnError)
	flags := config.BindFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	cfg, err := config.LoadFile(flags.ConfigFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "tunnelsd: load config: %v\n", err)
		os.Exit(1)
	}
	cfg = flags.Apply(cfg)

	log := logging.New(logging.ParseLevel(cfg.LogLevel))

	sc := scene.New(cfg.NumLayers, cfg.NumAuxClocks, cfg.TickHz, cfg.DefaultBPM)
	mapper := control.NewMapper(sc, defaultBindingTable(cfg.NumLayers), echoQueueDepth)
	pub := publish.New(cfg.NumChannels, log)
	sh := show.New(sc, mapper, pub, cfg.NumChannels, log)

	met := setupMetronome(cfg, sh, log)
	midiTransports, oscTransports := connectSurfaces(cfg, sh, log)

	ln, err := net.Listen("tcp", cfg.BindAddr)
	if err != nil {
		log.Errorf("tunnelsd: listen on %s: %v", cfg.BindAddr, err)
		os.Exit(1)
	}
	httpServer := &http.Server{Handler: frameMux(pub, cfg.NumChannels)}
	go func() {
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Errorf("tunnelsd: http server: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	tickDone := make(chan struct{})
	go func() {
		sh.Run(ctx)
		close(tickDone)
	}()

	var program *tea.Program
	if cfg.ConsoleEnabled {
		program = tea.NewProgram(consoledash.New(sh, cfg.ConsoleRefreshHz), tea.WithAltScreen())
		go func() {
			if _, err := program.Run(); err != nil {
				log.Errorf("tunnelsd: console: %v", err)
			}
			cancel()
		}()
	}

	waitForShutdown(ctx)
	cancel()
	if program != nil {
		program.Quit()
	}
	<-tickDone
	pub.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("tunnelsd: http shutdown: %v", err)
	}

	for _, t := range midiTransports {
		t.Close()
	}
	for _, t := range oscTransports {
		if err := t.Close(); err != nil {
			log.Errorf("tunnelsd: osc transport close: %v", err)
		}
	}
	if met != nil {
		met.Close()
	}

	log.Infof("tunnelsd: shutdown complete")
}

func waitForShutdown(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
}

func setupMetronome(cfg config.Config, sh *show.Show, log *logging.Logger) *metronome.Metronome {
	if !cfg.MetronomeEnabled {
		return nil
	}
	met, err := metronome.New()
	if err != nil {
		log.Errorf("tunnelsd: metronome: %v", err)
		return nil
	}
	met.Enable(true)
	sh.EnableMetronome(met)
	return met
}

func connectSurfaces(cfg config.Config, sh *show.Show, log *logging.Logger) ([]*midimap.Transport, []*oscmap.Transport) {
	var midiTransports []*midimap.Transport
	var oscTransports []*oscmap.Transport

	for _, sfCfg := range cfg.Surfaces {
		switch sfCfg.Transport {
		case "midi":
			t := connectMIDISurface(sfCfg, log)
			midiTransports = append(midiTransports, t)
			sh.AddSurface(show.Surface{ID: sfCfg.ID, Source: t, Sink: t, Status: t.IsConnected})
		case "osc":
			t := connectOSCSurface(sfCfg, log)
			oscTransports = append(oscTransports, t)
			sh.AddSurface(show.Surface{ID: sfCfg.ID, Source: t, Sink: t, Status: t.IsRunning})
		default:
			log.Errorf("tunnelsd: surface %s: unknown transport %q", sfCfg.ID, sfCfg.Transport)
		}
	}
	return midiTransports, oscTransports
}

func frameMux(pub *publish.Publisher, numChannels int) *http.ServeMux {
	mux := http.NewServeMux()
	for ch := 0; ch < numChannels; ch++ {
		mux.Handle(fmt.Sprintf("/channel/%d", ch), pub.Topic(ch))
	}
	return mux
}
