// Package config loads startup configuration from an optional YAML file,
// with command-line flags taking precedence over any value the file
// sets. This is deliberately distinct from runtime-state persistence
// (see internal/show's SaveState/RestoreState): config governs how the
// process starts, never what the operator built during a session.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Surface describes one control surface to bring up at startup.
type Surface struct {
	ID        string `yaml:"id"`
	Transport string `yaml:"transport"` // "midi" or "osc"

	MIDIInput  string `yaml:"midi_input,omitempty"`
	MIDIOutput string `yaml:"midi_output,omitempty"`

	OSCListenAddr string `yaml:"osc_listen_addr,omitempty"`
	OSCRemoteHost string `yaml:"osc_remote_host,omitempty"`
	OSCRemotePort int    `yaml:"osc_remote_port,omitempty"`
}

// Config is the full set of values needed to start the show process.
type Config struct {
	BindAddr     string  `yaml:"bind_addr"`
	TickHz       float64 `yaml:"tick_hz"`
	NumChannels  int     `yaml:"num_channels"`
	NumLayers    int     `yaml:"num_layers"`
	NumAuxClocks int     `yaml:"num_aux_clocks"`
	DefaultBPM   float64 `yaml:"default_bpm"`

	MetronomeEnabled bool    `yaml:"metronome_enabled"`
	ConsoleEnabled   bool    `yaml:"console_enabled"`
	ConsoleRefreshHz float64 `yaml:"console_refresh_hz"`

	LogLevel string `yaml:"log_level"`

	Surfaces []Surface `yaml:"surfaces"`
}

// Default returns the built-in baseline config, used when no file is
// given and no flags override it.
func Default() Config {
	return Config{
		BindAddr:         ":6000",
		TickHz:           40,
		NumChannels:      1,
		NumLayers:        8,
		NumAuxClocks:     2,
		DefaultBPM:       120,
		MetronomeEnabled: false,
		ConsoleEnabled:   false,
		ConsoleRefreshHz: 15,
		LogLevel:         "info",
	}
}

// LoadFile reads and parses a YAML config file, starting from Default()
// and overwriting only the fields the file sets.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// FlagSet holds the pflag flags whose values, if explicitly set by the
// caller, override the corresponding Config field. Call Apply after
// pflag.Parse to fold the parsed values back in.
type FlagSet struct {
	configFile  *string
	bindAddr    *string
	tickHz      *float64
	numChannels *int
	numLayers   *int
	defaultBPM  *float64
	metronome   *bool
	console     *bool
	logLevel    *string
	fs          *pflag.FlagSet
}

// BindFlags registers the overridable flags on fs.
func BindFlags(fs *pflag.FlagSet) *FlagSet {
	return &FlagSet{
		configFile:  fs.String("config", "", "path to a YAML config file"),
		bindAddr:    fs.String("bind-addr", "", "override the publisher bind address"),
		tickHz:      fs.Float64("tick-hz", 0, "override the tick rate in Hz"),
		numChannels: fs.Int("channels", 0, "override the number of video channels"),
		numLayers:   fs.Int("layers", 0, "override the number of mixer layers"),
		defaultBPM:  fs.Float64("bpm", 0, "override the default master BPM"),
		metronome:   fs.Bool("metronome", false, "enable the audible metronome click"),
		console:     fs.Bool("console", false, "show the operator console dashboard"),
		logLevel:    fs.String("log-level", "", "override the log level (debug/info/warn/error)"),
		fs:          fs,
	}
}

// ConfigFile returns the --config flag's value.
func (f *FlagSet) ConfigFile() string { return *f.configFile }

// Apply folds explicitly-set flags into cfg, leaving untouched fields as
// the file (or default) left them.
func (f *FlagSet) Apply(cfg Config) Config {
	if f.fs.Changed("bind-addr") {
		cfg.BindAddr = *f.bindAddr
	}
	if f.fs.Changed("tick-hz") {
		cfg.TickHz = *f.tickHz
	}
	if f.fs.Changed("channels") {
		cfg.NumChannels = *f.numChannels
	}
	if f.fs.Changed("layers") {
		cfg.NumLayers = *f.numLayers
	}
	if f.fs.Changed("bpm") {
		cfg.DefaultBPM = *f.defaultBPM
	}
	if f.fs.Changed("metronome") {
		cfg.MetronomeEnabled = *f.metronome
	}
	if f.fs.Changed("console") {
		cfg.ConsoleEnabled = *f.console
	}
	if f.fs.Changed("log-level") {
		cfg.LogLevel = *f.logLevel
	}
	return cfg
}
