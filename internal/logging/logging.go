// Package logging wraps charmbracelet/log (same family as the console
// dashboard's bubbletea/lipgloss stack) with the rate-limited per-device
// logging the control plane needs.
package logging

import (
	"os"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Logger is a thin wrapper around a charmbracelet/log logger that adds a
// per-device-per-window rate limit so a flapping controller can't flood
// the log.
type Logger struct {
	base *charmlog.Logger

	mu       sync.Mutex
	lastSeen map[string]time.Time
	window   time.Duration
}

// ParseLevel maps a config string ("debug", "info", "warn", "error") to a
// charmbracelet/log Level, defaulting to Info on an unrecognized value.
func ParseLevel(s string) charmlog.Level {
	lvl, err := charmlog.ParseLevel(s)
	if err != nil {
		return charmlog.InfoLevel
	}
	return lvl
}

// New returns a Logger writing to stderr at the given level.
func New(level charmlog.Level) *Logger {
	base := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	return &Logger{
		base:     base,
		lastSeen: make(map[string]time.Time),
		window:   time.Minute,
	}
}

func (l *Logger) Infof(format string, args ...any)  { l.base.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.base.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.base.Errorf(format, args...) }
func (l *Logger) Debugf(format string, args ...any) { l.base.Debugf(format, args...) }

// RateLimitedErrorf logs an error for deviceID at most once per window:
// repeated failures from the same flapping device collapse to one log
// line per minute rather than spamming the tick loop's output.
func (l *Logger) RateLimitedErrorf(deviceID string, format string, args ...any) {
	l.mu.Lock()
	last, seen := l.lastSeen[deviceID]
	now := time.Now()
	if seen && now.Sub(last) < l.window {
		l.mu.Unlock()
		return
	}
	l.lastSeen[deviceID] = now
	l.mu.Unlock()

	l.base.Errorf(format, args...)
}

// With returns a derived logger carrying the given key/value pair on every
// subsequent line, per charmbracelet/log's structured-field convention.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{
		base:     l.base.With(key, value),
		lastSeen: l.lastSeen,
		window:   l.window,
	}
}
